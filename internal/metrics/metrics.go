package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookRequestsTotal   *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec

	// Payload routing metrics
	PayloadRoutedTotal *prometheus.CounterVec

	// Graph API metrics
	GraphRequestsTotal   *prometheus.CounterVec
	GraphDurationSeconds *prometheus.HistogramVec

	// Completion metrics
	CompletionRequestsTotal   *prometheus.CounterVec
	CompletionDurationSeconds *prometheus.HistogramVec

	// User registry metrics
	UserCacheHitsTotal   *prometheus.CounterVec
	UserCacheMissesTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterWaitDuration *prometheus.HistogramVec
	RateLimiterDropped      *prometheus.CounterVec
	RateLimiterActiveKeys   *prometheus.GaugeVec

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Webhook metrics
		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coast_webhook_requests_total",
				Help: "Total number of webhook events by event type and status",
			},
			[]string{"event_type", "status"}, // status: success, error, ignored
		),

		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coast_webhook_duration_seconds",
				Help:    "Webhook event processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30}, // staggered sends can take seconds
			},
			[]string{"event_type"}, // event_type: message, postback, referral, optin, pass_thread_control
		),

		// Payload routing metrics
		PayloadRoutedTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coast_payload_routed_total",
				Help: "Total number of routed payloads by handler",
			},
			[]string{"handler"}, // handler: welcome, curation, care, order, survey, lead, ...
		),

		// Graph API metrics
		GraphRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coast_graph_requests_total",
				Help: "Total number of Graph API calls by endpoint and status",
			},
			[]string{"endpoint", "status"}, // status: success, error, timeout
		),

		GraphDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coast_graph_duration_seconds",
				Help:    "Graph API call duration in seconds by endpoint",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}, // Matches 10s request timeout
			},
			[]string{"endpoint"}, // endpoint: messages, app_events, personas, user_profile
		),

		// Completion metrics
		CompletionRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coast_completion_requests_total",
				Help: "Total number of chat completion calls by provider and status",
			},
			[]string{"provider", "status"}, // provider: openai, gemini
		),

		CompletionDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coast_completion_duration_seconds",
				Help:    "Chat completion call duration in seconds by provider",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10}, // Matches 10s completion timeout
			},
			[]string{"provider"},
		),

		// User registry metrics
		UserCacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coast_user_cache_hits_total",
				Help: "Total number of user registry cache hits by source",
			},
			[]string{"source"}, // source: memory, sqlite
		),

		UserCacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coast_user_cache_misses_total",
				Help: "Total number of user registry cache misses by source",
			},
			[]string{"source"},
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coast_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: invalid_signature, rate_limit, bad_request, etc.
		),

		// Rate limiter metrics
		RateLimiterWaitDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coast_rate_limiter_wait_duration_seconds",
				Help:    "Time spent waiting for rate limiter token by limiter type",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5}, // 1ms to 5s
			},
			[]string{"limiter_type"}, // limiter_type: user, global
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coast_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: user, global
		),

		RateLimiterActiveKeys: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coast_rate_limiter_active_keys",
				Help: "Current number of active per-key rate limiters by limiter type",
			},
			[]string{"limiter_type"},
		),

		// Singleflight metrics
		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coast_singleflight_dedup_total",
				Help: "Total number of deduplicated requests (requests that waited instead of executing)",
			},
			[]string{"module"}, // module: user
		),
	}

	return m
}

// RecordWebhook records a processed webhook event
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordPayloadRouted records which handler a payload was routed to
func (m *Metrics) RecordPayloadRouted(handler string) {
	m.PayloadRoutedTotal.WithLabelValues(handler).Inc()
}

// RecordGraphRequest records a Graph API call with status
func (m *Metrics) RecordGraphRequest(endpoint, status string, duration float64) {
	m.GraphRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.GraphDurationSeconds.WithLabelValues(endpoint).Observe(duration)
}

// RecordCompletion records a chat completion call with status
func (m *Metrics) RecordCompletion(provider, status string, duration float64) {
	m.CompletionRequestsTotal.WithLabelValues(provider, status).Inc()
	m.CompletionDurationSeconds.WithLabelValues(provider).Observe(duration)
}

// RecordUserCacheHit records a user registry cache hit
func (m *Metrics) RecordUserCacheHit(source string) {
	m.UserCacheHitsTotal.WithLabelValues(source).Inc()
}

// RecordUserCacheMiss records a user registry cache miss
func (m *Metrics) RecordUserCacheMiss(source string) {
	m.UserCacheMissesTotal.WithLabelValues(source).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordRateLimiterWait records time spent waiting for rate limiter
func (m *Metrics) RecordRateLimiterWait(limiterType string, duration float64) {
	m.RateLimiterWaitDuration.WithLabelValues(limiterType).Observe(duration)
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetRateLimiterActiveKeys reports the current number of active per-key limiters
func (m *Metrics) SetRateLimiterActiveKeys(limiterType string, count int) {
	m.RateLimiterActiveKeys.WithLabelValues(limiterType).Set(float64(count))
}

// RecordSingleflightDedup records a deduplicated request
func (m *Metrics) RecordSingleflightDedup(module string) {
	m.SingleflightDedupTotal.WithLabelValues(module).Inc()
}
