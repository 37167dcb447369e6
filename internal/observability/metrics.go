package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// extraction run. Request metrics are labelled by category (weather, soil).
type Metrics struct {
	RecordsProcessed *prometheus.CounterVec // labels: category
	RecordsFailed    *prometheus.CounterVec // labels: category, reason={transport,extraction}
	RequestRetries   prometheus.Counter
	ExtractorRunning prometheus.Gauge
	RequestDuration  *prometheus.HistogramVec // labels: category
}

// NewMetrics creates and registers all extractor metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsProcessed,
		m.RecordsFailed,
		m.RequestRetries,
		m.ExtractorRunning,
		m.RequestDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteobe",
			Name:      "records_processed_total",
			Help:      "Trial records that produced a flattened output row.",
		}, []string{"category"}),
		RecordsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteobe",
			Name:      "records_failed_total",
			Help:      "Trial records that produced no result, by failure reason.",
		}, []string{"category", "reason"}),
		RequestRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meteobe",
			Name:      "request_retries_total",
			Help:      "Dataset requests retried after a transport failure.",
		}),
		ExtractorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meteobe",
			Name:      "extractor_running",
			Help:      "1 while the extraction loop is active, 0 otherwise.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meteobe",
			Name:      "request_duration_seconds",
			Help:      "Dataset request duration by category.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"category"}),
	}
}
