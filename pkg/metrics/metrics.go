// Package metrics provides Prometheus instrumentation for the prediction engine.
// Exposition is left to whatever serving layer wraps the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// Dataset cache metrics
	DatasetCacheHits     prometheus.Counter
	DatasetCacheMisses   prometheus.Counter
	DatasetLoadDuration  prometheus.Histogram
	DatasetRecordsLoaded *prometheus.GaugeVec

	// Query metrics
	DateQueriesTotal    *prometheus.CounterVec
	MonthlyQueriesTotal prometheus.Counter
	QueryDuration       prometheus.Histogram

	// Training metrics
	TrainingRunsTotal *prometheus.CounterVec
	TrainingDuration  prometheus.Histogram
	InferenceTotal    *prometheus.CounterVec
}

// NewCollector creates a new metrics collector registered on the default registry
func NewCollector(namespace string) *Collector {
	return &Collector{
		DatasetCacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_cache_hits_total",
				Help:      "Number of location dataset lookups served from memory",
			},
		),

		DatasetCacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_cache_misses_total",
				Help:      "Number of location dataset lookups that required a disk load",
			},
		),

		DatasetLoadDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dataset_load_duration_seconds",
				Help:      "Duration of cold dataset loads from disk",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
		),

		DatasetRecordsLoaded: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_records_loaded",
				Help:      "Number of daily records held in memory per location",
			},
			[]string{"location"},
		),

		DateQueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "date_queries_total",
				Help:      "Historical date queries by outcome",
			},
			[]string{"outcome"},
		),

		MonthlyQueriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "monthly_queries_total",
				Help:      "Monthly statistics queries served",
			},
		),

		QueryDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Duration of statistical queries",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),

		TrainingRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "training_runs_total",
				Help:      "Ensemble training runs by outcome",
			},
			[]string{"outcome"},
		),

		TrainingDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "training_duration_seconds",
				Help:      "Duration of full ensemble training runs",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
			},
		),

		InferenceTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inference_total",
				Help:      "Ensemble inference calls by outcome",
			},
			[]string{"outcome"},
		),
	}
}
