package dbx

import (
	"context"
	"time"
)

// FailoverEvent describes one run of the failover protocol.
type FailoverEvent struct {
	Database      string        `json:"database"`
	CorrelationID string        `json:"correlationId"`
	Operation     string        `json:"operation"`
	Resolved      bool          `json:"resolved"`
	Attempts      int           `json:"attempts"`
	Duration      time.Duration `json:"durationNs"`
	Cause         string        `json:"cause"`
	Timestamp     time.Time     `json:"timestamp"`
}

// EventSink receives failover events. Implementations must not block the caller for long,
// PublishFailover runs on the request path.
type EventSink interface {
	PublishFailover(ctx context.Context, event FailoverEvent)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) PublishFailover(context.Context, FailoverEvent) {}

// MultiSink fans an event out to every sink in order.
type MultiSink []EventSink

func (m MultiSink) PublishFailover(ctx context.Context, event FailoverEvent) {
	for _, sink := range m {
		if sink != nil {
			sink.PublishFailover(ctx, event)
		}
	}
}
