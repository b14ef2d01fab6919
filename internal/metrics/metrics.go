// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Engagement Metrics
	EngagementActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_engagement_actions_total",
			Help: "Likes, shares and views handled, by result",
		},
		[]string{"action", "result"}, // result: applied, duplicate, throttled, error
	)

	EngagementSync = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_engagement_sync_total",
			Help: "Backend counter increments attempted by the sync worker, by result",
		},
		[]string{"result"}, // synced, unsynced, dropped
	)

	EngagementUnsynced = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_engagement_unsynced_entries",
			Help: "Optimistic increments still waiting for backend confirmation",
		},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_recommend_requests_total",
			Help: "Recommendation requests served, by personalization",
		},
		[]string{"personalized"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "folio_recommend_duration_seconds",
			Help:    "Time spent scoring and ranking candidates",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	// Image Delivery Metrics
	ImageChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_image_checks_total",
			Help: "High resolution availability checks, by result",
		},
		[]string{"result"}, // ok, failed, breaker_open
	)

	// Comment Metrics
	CommentsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_comments_submitted_total",
			Help: "Comments and replies created",
		},
		[]string{"type"}, // root_pending, root_approved, reply
	)

	CommentsModerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_comments_moderated_total",
			Help: "Moderation decisions",
		},
		[]string{"action"}, // approve, reject
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_websocket_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "folio_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Authorization Metrics
	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_authz_decisions_total",
			Help: "Authorization decisions by role, object and outcome",
		},
		[]string{"role", "object", "action", "decision"},
	)

	AuthzCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_authz_cache_hits_total",
			Help: "Authorization decisions served from cache",
		},
	)

	// Authentication Metrics
	AuthLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_auth_logins_total",
			Help: "Sign-in attempts by outcome (success, invalid, locked)",
		},
		[]string{"outcome"},
	)

	AuthLockouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_auth_lockouts_total",
			Help: "Accounts locked after repeated failed sign-ins",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_auth_active_sessions",
			Help: "Sessions created minus sessions ended since start",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "folio_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordEngagement counts one like/share/view outcome.
func RecordEngagement(action, result string) {
	EngagementActions.WithLabelValues(action, result).Inc()
}

// RecordSync counts one backend sync attempt.
func RecordSync(result string) {
	EngagementSync.WithLabelValues(result).Inc()
}

// RecordRecommendation records a served recommendation request.
func RecordRecommendation(personalized bool, duration time.Duration) {
	label := "false"
	if personalized {
		label = "true"
	}
	RecommendRequests.WithLabelValues(label).Inc()
	RecommendDuration.Observe(duration.Seconds())
}

// RecordImageCheck counts one high-res availability check.
func RecordImageCheck(result string) {
	ImageChecks.WithLabelValues(result).Inc()
}

// RecordBreakerTransition updates the gauge and transition counter for a breaker.
// Levels: 0 closed, 1 half-open, 2 open.
func RecordBreakerTransition(name, from, to string, level float64) {
	CircuitBreakerState.WithLabelValues(name).Set(level)
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordAuthzDecision counts one policy decision.
func RecordAuthzDecision(role, object, action string, allowed, cacheHit bool) {
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	AuthzDecisions.WithLabelValues(role, object, action, decision).Inc()
	if cacheHit {
		AuthzCacheHits.Inc()
	}
}

// RecordLogin counts a sign-in attempt.
func RecordLogin(outcome string) {
	AuthLogins.WithLabelValues(outcome).Inc()
}
