package metricsx

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the service Prometheus registry.
//
// Every metric registered through Registerer carries a constant `service` label.
type Metrics struct {
	Registry   *prometheus.Registry
	Registerer prometheus.Registerer
}

// NewMetrics creates an isolated registry. With defaultCollectors the Go runtime, process and
// build info collectors are registered too.
func NewMetrics(serviceName string, defaultCollectors bool) *Metrics {
	registry := prometheus.NewRegistry()

	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, registry)

	if defaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	return &Metrics{Registry: registry, Registerer: wrapped}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
