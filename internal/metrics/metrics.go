// Package metrics holds the Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ryosukesatoh/doc-digest/internal/extract"
)

// Metrics groups every collector. Each instance owns its registry so tests
// can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	summaries        *prometheus.CounterVec
	extractDuration  *prometheus.HistogramVec
	artifactsRemoved prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		// Buckets cover fast form renders up to large PDF uploads.
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		summaries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "summaries_total",
				Help: "Summarization requests by outcome",
			},
			[]string{"outcome"},
		),
		extractDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "extraction_duration_seconds",
				Help:    "Time taken to extract text from an upload",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
			[]string{"kind"},
		),
		artifactsRemoved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "artifacts_removed_total",
				Help: "Summary files removed by the retention sweep",
			},
		),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.summaries,
		m.extractDuration,
		m.artifactsRemoved,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, path, status string, d time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *Metrics) ObserveExtraction(kind extract.Kind, d time.Duration) {
	m.extractDuration.WithLabelValues(kind.String()).Observe(d.Seconds())
}

func (m *Metrics) CountSummary(outcome string) {
	m.summaries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddArtifactsRemoved(n int) {
	m.artifactsRemoved.Add(float64(n))
}
