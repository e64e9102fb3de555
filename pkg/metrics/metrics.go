package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Completion service call latency (milliseconds)
	CompletionCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_completion_call_latency_ms",
			Help:    "Completion service call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"model", "status"},
	)

	// Database query latency (seconds)
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_db_slow_query_total",
			Help: "Total number of queries slower than the configured threshold",
		},
	)

	// Forum posts by kind: query, answer
	ForumPostCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_forum_post_total",
			Help: "Total number of doubt forum posts",
		},
		[]string{"kind"},
	)

	// Authentication attempts by outcome: success, password_mismatch, not_found, invalid
	AuthAttemptCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_auth_attempt_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"outcome"},
	)

	// Rows written by the fixture seeder, per table
	SeededRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portal_seeded_rows",
			Help: "Rows written by the last seeding run",
		},
		[]string{"table"},
	)

	RateLimitedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	// Worker deliveries by handler and outcome: ok, duplicate, retry, dead_letter
	EventProcessedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_worker_events_total",
			Help: "Forum events handled by the worker",
		},
		[]string{"handler", "outcome"},
	)
)

// RecordHTTPRequestDuration records one HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordCompletionCallLatency records one completion service call.
func RecordCompletionCallLatency(model, status string, duration time.Duration) {
	CompletionCallLatency.WithLabelValues(model, status).Observe(float64(duration.Milliseconds()))
}

// RecordDBQueryDuration records one repository operation.
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery counts one slow query.
func IncrementSlowQuery() {
	SlowQueryCount.Inc()
}

// IncrementForumPost counts one forum post of the given kind.
func IncrementForumPost(kind string) {
	ForumPostCount.WithLabelValues(kind).Inc()
}

// IncrementAuthAttempt counts one authentication attempt.
func IncrementAuthAttempt(outcome string) {
	AuthAttemptCount.WithLabelValues(outcome).Inc()
}

// SetSeededRows records how many rows the seeder wrote to table.
func SetSeededRows(table string, n int) {
	SeededRows.WithLabelValues(table).Set(float64(n))
}

// IncrementRateLimited counts one rejected request.
func IncrementRateLimited(scope string) {
	RateLimitedCount.WithLabelValues(scope).Inc()
}

// IncrementEventProcessed counts one worker delivery.
func IncrementEventProcessed(handler, outcome string) {
	EventProcessedCount.WithLabelValues(handler, outcome).Inc()
}
