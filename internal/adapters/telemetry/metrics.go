// Package telemetry records build and reload metrics from OpenTelemetry spans.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jig"

// Build results used as the "result" label.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the dev server collectors on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	reloads       prometheus.Counter
	clients       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		builds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "builds_total",
				Help:      "Total number of site builds by result.",
			},
			[]string{"result"},
		),
		buildDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "build_duration_seconds",
				Help:      "Duration of site builds.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		reloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "Total number of reload messages broadcast.",
			},
		),
		clients: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "reload_clients",
				Help:      "Number of connected reload clients.",
			},
		),
	}
}

// ObserveBuild records one finished build.
func (m *Metrics) ObserveBuild(d time.Duration, failed bool) {
	result := ResultSuccess
	if failed {
		result = ResultFailure
	}
	m.builds.WithLabelValues(result).Inc()
	m.buildDuration.Observe(d.Seconds())
}

// ObserveReload records one broadcast.
func (m *Metrics) ObserveReload() {
	m.reloads.Inc()
}

// SetClients records the number of connected reload clients.
func (m *Metrics) SetClients(n int) {
	m.clients.Set(float64(n))
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collected metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
