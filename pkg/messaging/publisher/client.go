package publisher

import (
	"context"
	"time"
)

const (
	DefaultBatchSize           = int32(10)
	DefaultFlushDelayThreshold = time.Millisecond * 10
	DefaultQueueSize           = 256
)

// Client -  Client wrapper interface.
type Client interface {
	Topic(id string) Topic
	Close() error
}

// Topic - Topic wrapper interface.
type Topic interface {
	Publish(ctx context.Context, msg Message) PublishResult
	Stop()
	Flush()
	String() string
	ConfigPublishSettings(config TopicPublishConfig)
}

// PublishResult - PubSub Publish Result wrapper interface.
type PublishResult interface {
	Get(ctx context.Context) (string, error)
	Ready() <-chan struct{}
}

// TopicPublishConfig - configuration struct for the publisher.
type TopicPublishConfig struct {
	BatchSize           int32
	FlushDelayThreshold time.Duration
	// QueueSize bounds the events waiting for the next flush, further events are dropped.
	QueueSize int
}

// WithDefaults fills the unset fields.
func (c TopicPublishConfig) WithDefaults() TopicPublishConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}

	if c.FlushDelayThreshold <= 0 {
		c.FlushDelayThreshold = DefaultFlushDelayThreshold
	}

	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}

	return c
}
