package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// weather-file ETL pipeline.
type Metrics struct {
	ObservationsConsumed prometheus.Counter
	ObservationsRejected prometheus.Counter
	StationsBuilt        prometheus.Counter
	BuildFailures        *prometheus.CounterVec // label: reason
	FilesWritten         prometheus.Counter
	RowsWritten          prometheus.Counter
	PipelineRunning      prometheus.Gauge

	BatchSize     prometheus.Histogram
	FlushDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ObservationsConsumed,
		m.ObservationsRejected,
		m.StationsBuilt,
		m.BuildFailures,
		m.FilesWritten,
		m.RowsWritten,
		m.PipelineRunning,
		m.BatchSize,
		m.FlushDuration,
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
		ObservationsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "observations_consumed_total",
			Help:      "Total daily observations read from the source topic.",
		}),
		ObservationsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "observations_rejected_total",
			Help:      "Total malformed observation messages skipped.",
		}),
		StationsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "stations_built_total",
			Help:      "Total station record sets that passed validation.",
		}),
		BuildFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "build_failures_total",
			Help:      "Station builds rejected at validation, by reason.",
		}, []string{"reason"}),
		FilesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "files_written_total",
			Help:      "Total .WTH files written.",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "rows_written_total",
			Help:      "Total daily data rows written across all files.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_etl",
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_etl",
			Name:      "flush_duration_seconds",
			Help:      "Duration of a build-and-write flush across all stations.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
