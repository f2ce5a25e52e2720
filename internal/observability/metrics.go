package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// dashboard query service and the feed replayer.
type Metrics struct {
	// Dataset lifecycle metrics.
	DatasetsGenerated         prometheus.Counter
	DatasetGenerationDuration prometheus.Histogram
	CurrentDatasetReadings    prometheus.Gauge

	// Query metrics.
	QueriesServed    prometheus.Counter
	QueryDuration    prometheus.Histogram
	ReadingsReturned prometheus.Histogram

	// Feed replay metrics.
	ReadingsPublished prometheus.Counter
	PublishErrors     prometheus.Counter
	PublishDuration   prometheus.Histogram
	DaysReplayed      prometheus.Counter
	FeedRunning       prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatasetsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "envsim",
			Name:      "datasets_generated_total",
			Help:      "Total datasets generated since startup.",
		}),
		DatasetGenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "envsim",
			Name:      "dataset_generation_duration_seconds",
			Help:      "Time to generate one full dataset.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		CurrentDatasetReadings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "envsim",
			Name:      "current_dataset_readings",
			Help:      "Number of readings in the currently loaded dataset.",
		}),
		QueriesServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "envsim",
			Name:      "queries_total",
			Help:      "Total dashboard queries served.",
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "envsim",
			Name:      "query_duration_seconds",
			Help:      "Time to filter and summarize one query.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		ReadingsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "envsim",
			Name:      "readings_returned",
			Help:      "Number of readings returned per query.",
			Buckets:   []float64{0, 1, 30, 90, 365, 730, 1460, 2920},
		}),
		ReadingsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "envsim",
			Name:      "readings_published_total",
			Help:      "Total readings published by the feed replayer.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "envsim",
			Name:      "publish_errors_total",
			Help:      "Total failed publish attempts.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "envsim",
			Name:      "publish_duration_seconds",
			Help:      "Time to publish one day's batch of readings.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		DaysReplayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "envsim",
			Name:      "feed_days_replayed_total",
			Help:      "Total simulated days replayed onto the feed.",
		}),
		FeedRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "envsim",
			Name:      "feed_running",
			Help:      "1 when the feed replayer is active, 0 when shut down.",
		}),
	}

	prometheus.MustRegister(
		m.DatasetsGenerated,
		m.DatasetGenerationDuration,
		m.CurrentDatasetReadings,
		m.QueriesServed,
		m.QueryDuration,
		m.ReadingsReturned,
		m.ReadingsPublished,
		m.PublishErrors,
		m.PublishDuration,
		m.DaysReplayed,
		m.FeedRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetsGenerated:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "envsim", Name: "datasets_generated_total"}),
		DatasetGenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "envsim", Name: "dataset_generation_duration_seconds"}),
		CurrentDatasetReadings:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "envsim", Name: "current_dataset_readings"}),
		QueriesServed:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "envsim", Name: "queries_total"}),
		QueryDuration:             prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "envsim", Name: "query_duration_seconds"}),
		ReadingsReturned:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "envsim", Name: "readings_returned"}),
		ReadingsPublished:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "envsim", Name: "readings_published_total"}),
		PublishErrors:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "envsim", Name: "publish_errors_total"}),
		PublishDuration:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "envsim", Name: "publish_duration_seconds"}),
		DaysReplayed:              prometheus.NewCounter(prometheus.CounterOpts{Namespace: "envsim", Name: "feed_days_replayed_total"}),
		FeedRunning:               prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "envsim", Name: "feed_running"}),
	}
}
