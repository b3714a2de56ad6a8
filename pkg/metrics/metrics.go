// Package metrics defines the Prometheus metric collectors used by the
// normalization services and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	RecordsProcessed     *prometheus.CounterVec
	RecordDuration       prometheus.Histogram
	TokensPerRecord      prometheus.Histogram
	CorrectionsTotal     *prometheus.CounterVec
	CollapsedTokensTotal prometheus.Counter
	DictionaryLoads      *prometheus.CounterVec
	DictionaryWords      prometheus.Gauge
	CheckpointHitsTotal  prometheus.Counter
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
		RecordsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "records_processed_total",
				Help: "Records run through the pipeline by status (ok, cached, error).",
			},
			[]string{"status"},
		),
		RecordDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "record_processing_seconds",
				Help:    "Time spent normalizing a single record.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1, 5},
			},
		),
		TokensPerRecord: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "record_tokens",
				Help:    "Number of tokens produced per record.",
				Buckets: []float64{0, 1, 5, 10, 20, 40, 80},
			},
		),
		CorrectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spelling_corrections_total",
				Help: "Tokens resolved by the spelling corrector, by tier (known, edit1, edit2, none).",
			},
			[]string{"tier"},
		),
		CollapsedTokensTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "collapsed_tokens_total",
				Help: "Tokens shortened by repeated-character collapsing.",
			},
		),
		DictionaryLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dictionary_loads_total",
				Help: "Dictionary constructions by source (cache, corpus).",
			},
			[]string{"source"},
		),
		DictionaryWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dictionary_words",
				Help: "Number of distinct words in the loaded dictionary.",
			},
		),
		CheckpointHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "checkpoint_hits_total",
				Help: "Records answered from a stored checkpoint instead of recomputed.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.RecordsProcessed,
		m.RecordDuration,
		m.TokensPerRecord,
		m.CorrectionsTotal,
		m.CollapsedTokensTotal,
		m.DictionaryLoads,
		m.DictionaryWords,
		m.CheckpointHitsTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
