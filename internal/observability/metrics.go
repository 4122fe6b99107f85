package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// measurement ETL pipeline.
type Metrics struct {
	VisitsConsumed     prometheus.Counter
	AggregatesProduced prometheus.Counter
	ExtractErrors      prometheus.Counter
	PipelineRunning    prometheus.Gauge

	// RecordsExtracted counts measurement records by category
	// (stage, discharge, environment, sensor).
	RecordsExtracted *prometheus.CounterVec

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Station directory metrics.
	StationLookups     *prometheus.CounterVec // labels: outcome={success,error,unknown}
	StationCache       *prometheus.CounterVec // labels: result={hit,miss}
	StationAPIDuration prometheus.Histogram
	StationAPIEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		VisitsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ehsn_etl",
			Name:      "visits_consumed_total",
			Help:      "Total field visits read from the source topic.",
		}),
		AggregatesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ehsn_etl",
			Name:      "aggregates_produced_total",
			Help:      "Total measurement aggregates written to the sink topic.",
		}),
		ExtractErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ehsn_etl",
			Name:      "extract_errors_total",
			Help:      "Total visits rejected during extraction.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ehsn_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		RecordsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ehsn_etl",
			Name:      "records_extracted_total",
			Help:      "Measurement records extracted, by category.",
		}, []string{"category"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ehsn_etl",
			Name:      "batch_size",
			Help:      "Number of visits per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ehsn_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		StationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ehsn_etl",
			Name:      "station_lookups_total",
			Help:      "Station directory lookups by outcome.",
		}, []string{"outcome"}),
		StationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ehsn_etl",
			Name:      "station_cache_total",
			Help:      "Station cache lookups by result.",
		}, []string{"result"}),
		StationAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ehsn_etl",
			Name:      "station_api_duration_seconds",
			Help:      "Station metadata API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		StationAPIEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ehsn_etl",
			Name:      "station_api_enabled",
			Help:      "1 when the station directory is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.VisitsConsumed,
		m.AggregatesProduced,
		m.ExtractErrors,
		m.PipelineRunning,
		m.RecordsExtracted,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.StationLookups,
		m.StationCache,
		m.StationAPIDuration,
		m.StationAPIEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		VisitsConsumed:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ehsn_etl", Name: "visits_consumed_total"}),
		AggregatesProduced:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ehsn_etl", Name: "aggregates_produced_total"}),
		ExtractErrors:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ehsn_etl", Name: "extract_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ehsn_etl", Name: "pipeline_running"}),
		RecordsExtracted:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ehsn_etl", Name: "records_extracted_total"}, []string{"category"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ehsn_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ehsn_etl", Name: "batch_processing_duration_seconds"}),
		StationLookups:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ehsn_etl", Name: "station_lookups_total"}, []string{"outcome"}),
		StationCache:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ehsn_etl", Name: "station_cache_total"}, []string{"result"}),
		StationAPIDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ehsn_etl", Name: "station_api_duration_seconds"}),
		StationAPIEnabled:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ehsn_etl", Name: "station_api_enabled"}),
	}
}
