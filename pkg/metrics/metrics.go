// Package metrics defines the Prometheus collectors used across the pipeline
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Document outcomes recorded by DocumentsProcessed.
const (
	OutcomeGenerated = "generated"
	OutcomeEmpty     = "empty"
	OutcomeMalformed = "malformed"
	OutcomeFailed    = "failed"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	DocumentsProcessed   *prometheus.CounterVec
	OccurrencesPerDoc    prometheus.Histogram
	PairsEmittedTotal    prometheus.Counter
	GenerateLatency      prometheus.Histogram
	CacheHitsTotal       *prometheus.CounterVec
	CacheMissesTotal     prometheus.Counter
	StoreWritesTotal     *prometheus.CounterVec
	SegmentFlushesTotal  *prometheus.CounterVec
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates all collectors and registers them with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all collectors and registers them with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		DocumentsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordpair_documents_processed_total",
				Help: "Documents run through the pair generator by outcome (generated, empty, malformed, failed).",
			},
			[]string{"outcome"},
		),
		OccurrencesPerDoc: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordpair_document_occurrences",
				Help:    "Occurrences per document handed to the generator.",
				Buckets: prometheus.ExponentialBuckets(2, 4, 8),
			},
		),
		PairsEmittedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordpair_pairs_emitted_total",
				Help: "Total co-occurrence pairs emitted.",
			},
		),
		GenerateLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordpair_generate_seconds",
				Help:    "Per-document pair generation latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordpair_cache_hits_total",
				Help: "Pair cache hits by tier (local, redis).",
			},
			[]string{"tier"},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordpair_cache_misses_total",
				Help: "Pair cache misses.",
			},
		),
		StoreWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordpair_store_writes_total",
				Help: "Pair store writes by status.",
			},
			[]string{"status"},
		),
		SegmentFlushesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordpair_segment_flushes_total",
				Help: "Pair segment flushes by status.",
			},
			[]string{"status"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.DocumentsProcessed,
		m.OccurrencesPerDoc,
		m.PairsEmittedTotal,
		m.GenerateLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.StoreWritesTotal,
		m.SegmentFlushesTotal,
		m.CircuitBreakerState,
	)

	return m
}

// ObserveDocument records one generator run.
func (m *Metrics) ObserveDocument(outcome string, occurrences, pairs int, seconds float64) {
	if m == nil {
		return
	}
	m.DocumentsProcessed.WithLabelValues(outcome).Inc()
	m.OccurrencesPerDoc.Observe(float64(occurrences))
	m.PairsEmittedTotal.Add(float64(pairs))
	m.GenerateLatency.Observe(seconds)
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
