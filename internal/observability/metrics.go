package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for a projection run.
type Metrics struct {
	RowsRead       prometheus.Counter
	RowsProjected  prometheus.Counter
	RowsDegenerate prometheus.Counter
	RowsRejected   prometheus.Counter

	BatchSize     prometheus.Histogram
	BatchDuration prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates the run metrics on a private registry. The command is
// short lived, so metrics are exported with WriteTextfile rather than served.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "osgrid",
			Name:      "rows_read_total",
			Help:      "Total input rows read.",
		}),
		RowsProjected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "osgrid",
			Name:      "rows_projected_total",
			Help:      "Total rows projected to grid coordinates.",
		}),
		RowsDegenerate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "osgrid",
			Name:      "rows_degenerate_total",
			Help:      "Projected rows whose easting or northing is NaN.",
		}),
		RowsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "osgrid",
			Name:      "rows_rejected_total",
			Help:      "Input rows that could not be parsed.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "osgrid",
			Name:      "batch_size",
			Help:      "Number of points per projected batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "osgrid",
			Name:      "batch_duration_seconds",
			Help:      "Duration of projecting one batch.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RowsRead,
		m.RowsProjected,
		m.RowsDegenerate,
		m.RowsRejected,
		m.BatchSize,
		m.BatchDuration,
	)

	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes the current metric values in the text exposition
// format, for pickup by the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
