package metricsx

import (
	"context"

	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultResolved  = "resolved"
	ResultExhausted = "exhausted"
)

// FailoverCollector is a dbx.EventSink recording failover runs.
type FailoverCollector struct {
	total    *prometheus.CounterVec
	attempts *prometheus.HistogramVec
	duration *prometheus.HistogramVec
}

// NewFailoverCollector creates and registers the failover metrics.
func NewFailoverCollector(reg prometheus.Registerer) (*FailoverCollector, error) {
	c := &FailoverCollector{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dbx_failover_total",
			Help: "Failover protocol runs by outcome.",
		}, []string{"database", "operation", "result"}),
		attempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dbx_failover_attempts",
			Help:    "Primary candidates tried per failover run.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}, []string{"database"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dbx_failover_duration_seconds",
			Help:    "Time spent resolving a failover.",
			Buckets: prometheus.DefBuckets,
		}, []string{"database"}),
	}

	for _, collector := range []prometheus.Collector{c.total, c.attempts, c.duration} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *FailoverCollector) PublishFailover(_ context.Context, event dbx.FailoverEvent) {
	result := ResultExhausted
	if event.Resolved {
		result = ResultResolved
	}

	c.total.WithLabelValues(event.Database, event.Operation, result).Inc()
	c.attempts.WithLabelValues(event.Database).Observe(float64(event.Attempts))
	c.duration.WithLabelValues(event.Database).Observe(event.Duration.Seconds())
}
