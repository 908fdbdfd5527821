package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// county data pipeline and its query surface.
type Metrics struct {
	RowsLoaded         prometheus.Counter
	RowsDropped        prometheus.Counter
	ColumnsSynthesized prometheus.Counter
	LoadDuration       prometheus.Histogram
	DatasetLoaded      prometheus.Gauge

	// Query surface metrics.
	Queries *prometheus.CounterVec // labels: op={filter,top,aggregate,categories,bounds}

	// External state reference list metrics.
	StatesRefRequests *prometheus.CounterVec // labels: outcome={success,error}
	StatesRefCache    *prometheus.CounterVec // labels: result={hit,miss}

	// Kafka publisher metrics.
	RecordsPublished prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsLoaded,
		m.RowsDropped,
		m.ColumnsSynthesized,
		m.LoadDuration,
		m.DatasetLoaded,
		m.Queries,
		m.StatesRefRequests,
		m.StatesRefCache,
		m.RecordsPublished,
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
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "county_aqi",
			Name:      "rows_loaded_total",
			Help:      "Total rows that survived into the cleaned county table.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "county_aqi",
			Name:      "rows_dropped_total",
			Help:      "Total combined-table rows dropped for missing required values.",
		}),
		ColumnsSynthesized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "county_aqi",
			Name:      "columns_synthesized_total",
			Help:      "Required columns absent from the combined source and synthesized as all-missing.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "county_aqi",
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete parse-normalize-clean load.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		DatasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "county_aqi",
			Name:      "dataset_loaded",
			Help:      "1 once a load has succeeded, 0 before.",
		}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "county_aqi",
			Name:      "queries_total",
			Help:      "Query operations served, by operation.",
		}, []string{"op"}),
		StatesRefRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "county_aqi",
			Name:      "states_ref_requests_total",
			Help:      "Fetches of the external state reference list, by outcome.",
		}, []string{"outcome"}),
		StatesRefCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "county_aqi",
			Name:      "states_ref_cache_total",
			Help:      "State reference cache lookups, by result.",
		}, []string{"result"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "county_aqi",
			Name:      "records_published_total",
			Help:      "Cleaned county records published to the Kafka sink topic.",
		}),
	}
}
