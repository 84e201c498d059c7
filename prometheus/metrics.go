package prometheus

import (
	"time"

	"crm-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Store operation metrics
	StoreOperationDuration prometheus.HistogramVec

	// CRM operation metrics
	CrmOperationsCounter prometheus.CounterVec

	// Follow-ups currently due
	FollowUpsDueGauge prometheus.Gauge
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	// Store operation metrics
	StoreOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_store_operation_duration_seconds",
			Help:    "Duration of backing store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// CRM operation metrics
	CrmOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_operations_total",
			Help: "Total number of CRM operations",
		},
		[]string{"operation"},
	)

	// Follow-ups currently due
	FollowUpsDueGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_follow_ups_due",
			Help: "Number of follow-ups due as of the last query",
		},
	)
}

// TrackStoreOperation returns a function that records the duration of a
// backing store operation
func TrackStoreOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		StoreOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordCrmOperation increments the counter for CRM operations
func RecordCrmOperation(operation string) {
	CrmOperationsCounter.WithLabelValues(operation).Inc()
}

// UpdateFollowUpsDue updates the follow-ups due gauge
func UpdateFollowUpsDue(count int) {
	FollowUpsDueGauge.Set(float64(count))
}
