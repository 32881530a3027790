// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric unless configured otherwise.
const DefaultNamespace = "pnl_dashboard"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	IngestsTotal   *prometheus.CounterVec
	RowsSkipped    prometheus.Counter
	TradesIngested prometheus.Counter

	// State metrics
	Strategies    prometheus.Gauge
	PersistErrors *prometheus.CounterVec

	// Sheets metrics
	SheetsFetches  *prometheus.CounterVec
	SheetsDuration prometheus.Histogram

	// Latency metrics
	HTTPRequestDuration *prometheus.HistogramVec
	ComputeDuration     *prometheus.HistogramVec

	// Scheduler metrics
	ScheduledRefreshes *prometheus.CounterVec
	ReportsGenerated   prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &Metrics{
		IngestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "ingests_total",
			Help:      "Total number of ingestion attempts by source and status",
		}, []string{"source", "status"}),
		RowsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_skipped_total",
			Help:      "Total number of data rows dropped during normalization",
		}),
		TradesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "trades_ingested_total",
			Help:      "Total number of trade records accepted",
		}),

		Strategies: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "strategies",
			Help:      "Number of strategies currently held",
		}),
		PersistErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "persist_errors_total",
			Help:      "Total number of failed state writes by operation",
		}, []string{"operation"}),

		SheetsFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheets",
			Name:      "fetches_total",
			Help:      "Total number of spreadsheet range fetches by status",
		}, []string{"status"}),
		SheetsDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sheets",
			Name:      "fetch_duration_seconds",
			Help:      "Spreadsheet range fetch latency",
			Buckets:   prometheus.DefBuckets,
		}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		ComputeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "compute_duration_seconds",
			Help:      "Duration of analytics computations by view",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"view"}),

		ScheduledRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "refreshes_total",
			Help:      "Total number of scheduled sheet refreshes by status",
		}, []string{"status"}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

var (
	initMu     sync.Mutex
	namespaces = map[string]*Metrics{DefaultNamespace: DefaultMetrics}
)

// Init points DefaultMetrics at namespace, registering it on first use.
func Init(namespace string) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	initMu.Lock()
	defer initMu.Unlock()

	m, ok := namespaces[namespace]
	if !ok {
		m = NewMetrics(namespace)
		namespaces[namespace] = m
	}
	DefaultMetrics = m
}

// RecordIngest records one ingestion attempt.
func RecordIngest(source, status string, trades, skipped int) {
	DefaultMetrics.IngestsTotal.WithLabelValues(source, status).Inc()
	DefaultMetrics.TradesIngested.Add(float64(trades))
	DefaultMetrics.RowsSkipped.Add(float64(skipped))
}

// SetStrategies updates the strategy count gauge.
func SetStrategies(n int) {
	DefaultMetrics.Strategies.Set(float64(n))
}

// RecordPersistError counts a failed state write.
func RecordPersistError(operation string) {
	DefaultMetrics.PersistErrors.WithLabelValues(operation).Inc()
}

// RecordSheetsFetch records a spreadsheet fetch.
func RecordSheetsFetch(status string, seconds float64) {
	DefaultMetrics.SheetsFetches.WithLabelValues(status).Inc()
	DefaultMetrics.SheetsDuration.Observe(seconds)
}

// RecordHTTPRequest records HTTP request latency.
func RecordHTTPRequest(method, route, status string, seconds float64) {
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// RecordCompute records the duration of an analytics view computation.
func RecordCompute(view string, seconds float64) {
	DefaultMetrics.ComputeDuration.WithLabelValues(view).Observe(seconds)
}

// RecordScheduledRefresh counts a scheduled refresh outcome.
func RecordScheduledRefresh(status string) {
	DefaultMetrics.ScheduledRefreshes.WithLabelValues(status).Inc()
}

// RecordReportGenerated counts a generated report.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}
