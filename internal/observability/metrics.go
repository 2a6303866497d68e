package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for a report run.
type Metrics struct {
	RowsLoaded     *prometheus.CounterVec // labels: dataset
	MissingValues  *prometheus.GaugeVec   // labels: dataset, column
	CellsImputed   *prometheus.CounterVec // labels: dataset, column, action
	ColumnsDropped *prometheus.CounterVec // labels: dataset

	MonthsAggregated prometheus.Gauge
	StageDuration    *prometheus.HistogramVec // labels: stage

	ArtifactsRendered *prometheus.CounterVec // labels: kind
	RecordsPublished  prometheus.Counter
	LastRunSuccess    prometheus.Gauge
}

// NewMetrics creates and registers all report metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_report",
			Name:      "rows_loaded_total",
			Help:      "Rows read from each source extract.",
		}, []string{"dataset"}),
		MissingValues: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "crime_report",
			Name:      "missing_values",
			Help:      "Missing cells per column as seen by the quality inspector, before cleaning.",
		}, []string{"dataset", "column"}),
		CellsImputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_report",
			Name:      "cells_imputed_total",
			Help:      "Missing cells filled by the cleaning policy.",
		}, []string{"dataset", "column", "action"}),
		ColumnsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_report",
			Name:      "columns_dropped_total",
			Help:      "Columns removed by the cleaning policy.",
		}, []string{"dataset"}),
		MonthsAggregated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crime_report",
			Name:      "months_aggregated",
			Help:      "Rows in the merged monthly table.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crime_report",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		ArtifactsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_report",
			Name:      "artifacts_rendered_total",
			Help:      "Files written by the renderers.",
		}, []string{"kind"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crime_report",
			Name:      "records_published_total",
			Help:      "Monthly records published to the sink topic.",
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crime_report",
			Name:      "last_run_success",
			Help:      "1 when the last run rendered a report, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsLoaded,
		m.MissingValues,
		m.CellsImputed,
		m.ColumnsDropped,
		m.MonthsAggregated,
		m.StageDuration,
		m.ArtifactsRendered,
		m.RecordsPublished,
		m.LastRunSuccess,
	}
}
