package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis service.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec // labels: endpoint={point,polygon}, status
	RequestDuration  *prometheus.HistogramVec
	AnalysisDuration prometheus.Histogram

	// Provider (OpenET) metrics.
	ProviderRequests *prometheus.CounterVec   // labels: variable={et,ndvi}, outcome={success,error}
	ProviderCache    *prometheus.CounterVec   // labels: variable, result={hit,miss}
	ProviderDuration *prometheus.HistogramVec // labels: variable

	// Narrative summarizer metrics.
	SummaryRequests  *prometheus.CounterVec // labels: outcome={success,error}
	SummaryFallbacks prometheus.Counter

	ReportsPublished prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "et_insight",
			Name:      "requests_total",
			Help:      "Satellite-data API requests by endpoint and HTTP status.",
		}, []string{"endpoint", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "et_insight",
			Name:      "request_duration_seconds",
			Help:      "End-to-end satellite-data request duration, provider calls included.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"endpoint"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "et_insight",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of the extraction and statistics pass over both variables.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "et_insight",
			Name:      "provider_requests_total",
			Help:      "OpenET API requests by variable and outcome.",
		}, []string{"variable", "outcome"}),
		ProviderCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "et_insight",
			Name:      "provider_cache_total",
			Help:      "Provider response cache lookups by variable and result.",
		}, []string{"variable", "result"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "et_insight",
			Name:      "provider_request_duration_seconds",
			Help:      "OpenET API request duration in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"variable"}),
		SummaryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "et_insight",
			Name:      "summary_requests_total",
			Help:      "Narrative summarizer requests by outcome.",
		}, []string{"outcome"}),
		SummaryFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "et_insight",
			Name:      "summary_fallbacks_total",
			Help:      "Reports that shipped the deterministic fallback narrative.",
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "et_insight",
			Name:      "reports_published_total",
			Help:      "Completed reports published to the report topic.",
		}),
	}

	prometheus.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.AnalysisDuration,
		m.ProviderRequests,
		m.ProviderCache,
		m.ProviderDuration,
		m.SummaryRequests,
		m.SummaryFallbacks,
		m.ReportsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RequestsTotal:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "et_insight", Name: "requests_total"}, []string{"endpoint", "status"}),
		RequestDuration:  prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "et_insight", Name: "request_duration_seconds"}, []string{"endpoint"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "et_insight", Name: "analysis_duration_seconds"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "et_insight", Name: "provider_requests_total"}, []string{"variable", "outcome"}),
		ProviderCache:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "et_insight", Name: "provider_cache_total"}, []string{"variable", "result"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "et_insight", Name: "provider_request_duration_seconds"}, []string{"variable"}),
		SummaryRequests:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "et_insight", Name: "summary_requests_total"}, []string{"outcome"}),
		SummaryFallbacks: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "et_insight", Name: "summary_fallbacks_total"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "et_insight", Name: "reports_published_total"}),
	}
}
