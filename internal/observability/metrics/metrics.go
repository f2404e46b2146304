package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "salesflow_"

	// ResultSuccess labels a successful operation.
	ResultSuccess = "success"
	// ResultError labels a failed operation.
	ResultError = "error"
	// ResultRejected labels a business-rule rejection from the store.
	ResultRejected = "rejected"
)

var (
	registerOnce sync.Once

	gridFetchTotal   *prometheus.CounterVec
	gridFetchLatency *prometheus.HistogramVec

	transitionTotal   *prometheus.CounterVec
	transitionLatency *prometheus.HistogramVec
	transitionRecords *prometheus.CounterVec

	deleteTotal *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		gridFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "grid_fetch_total",
				Help: "Total grid fetch/projection operations by result",
			},
			[]string{"result"},
		)
		gridFetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "grid_fetch_latency_seconds",
				Help:    "Grid fetch/projection latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		transitionTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "transition_total",
				Help: "Total bulk stage transitions by direction and result",
			},
			[]string{"direction", "result"},
		)
		transitionLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "transition_latency_seconds",
				Help:    "Bulk stage transition latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"direction", "result"},
		)
		transitionRecords = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "transition_records_total",
				Help: "Total records moved by bulk transitions by direction",
			},
			[]string{"direction"},
		)

		deleteTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "record_delete_total",
				Help: "Total record deletions by result",
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "grid_export_total",
				Help: "Total grid export operations by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "grid_export_latency_seconds",
				Help:    "Grid export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			gridFetchTotal,
			gridFetchLatency,
			transitionTotal,
			transitionLatency,
			transitionRecords,
			deleteTotal,
			exportTotal,
			exportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveGridFetch records a grid fetch duration and result.
func ObserveGridFetch(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if gridFetchTotal != nil {
		gridFetchTotal.WithLabelValues(result).Inc()
	}
	if gridFetchLatency != nil {
		gridFetchLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveTransition records a bulk transition by direction and result.
func ObserveTransition(direction, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if transitionTotal != nil {
		transitionTotal.WithLabelValues(direction, result).Inc()
	}
	if transitionLatency != nil {
		transitionLatency.WithLabelValues(direction, result).Observe(duration.Seconds())
	}
}

// AddTransitionRecords counts records moved by a bulk transition.
func AddTransitionRecords(direction string, count int) {
	if transitionRecords != nil && count > 0 {
		transitionRecords.WithLabelValues(direction).Add(float64(count))
	}
}

// ObserveDelete records a record deletion result.
func ObserveDelete(result string) {
	if result == "" {
		result = ResultSuccess
	}
	if deleteTotal != nil {
		deleteTotal.WithLabelValues(result).Inc()
	}
}

// ObserveExport records a grid export by format and result.
func ObserveExport(format, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}
