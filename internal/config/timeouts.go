// Package config provides centralized timeout constants for the application.
//
// These values are tuned around:
//   - Messenger Platform constraints (webhook acknowledgment, Send API latency)
//   - Graph API response times
//   - SQLite performance characteristics (WAL mode, busy timeout)
//
// # Messenger Platform Constraints
//
// Messenger webhooks have specific timing requirements:
//   - Webhook response: the platform expects a fast 200 acknowledgment and
//     retries deliveries it considers failed
//   - Send API: replies are delivered out-of-band after acknowledgment
//
// Event processing therefore happens asynchronously after the HTTP response,
// and the processing timeout only bounds background work.
package config

import "time"

// Webhook timeouts
const (
	// WebhookProcessing is the timeout for processing a single webhook event.
	// This includes payload routing, Graph API sends, and any completion calls.
	// Staggered multi-message responses sleep between sends, so this must
	// comfortably exceed the longest scheduled delivery.
	WebhookProcessing = 60 * time.Second

	// WebhookHTTPRead is the HTTP server read timeout for webhook requests.
	// Should be short since the platform sends small JSON payloads.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	// Webhook responses are tiny; this mostly covers the admin endpoints.
	WebhookHTTPWrite = 30 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second
)

// Graph API timeouts
const (
	// GraphRequest is the timeout for a single Graph API call.
	GraphRequest = 10 * time.Second

	// GraphRetryInitial is the initial delay before retrying a failed call.
	// Uses exponential backoff: 500ms -> 1s -> 2s
	GraphRetryInitial = 500 * time.Millisecond
)

// Completion timeouts
const (
	// CompletionRequest is the timeout for a single chat completion call.
	// Covers the primary provider attempt; the fallback provider gets its
	// own fresh timeout.
	CompletionRequest = 10 * time.Second
)

// Delivery pacing
const (
	// DeliveryStagger is the delay step between consecutive messages of a
	// multi-message response. The k-th message is sent after k steps unless
	// the message carries its own delay override.
	DeliveryStagger = 2 * time.Second

	// RecurringNotificationDelay is how long after an opt-in confirmation
	// the demonstration recurring notification is sent.
	RecurringNotificationDelay = 5 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	// Handles concurrent write contention from parallel webhook batches.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	// Prevents stale connections and allows connection pool refresh.
	DatabaseConnMaxLifetime = time.Hour
)

// Background job intervals
const (
	// UserCleanupInterval is how often expired user records are evicted.
	UserCleanupInterval = 12 * time.Hour

	// MetricsUpdateInterval is how often registry size metrics are updated.
	MetricsUpdateInterval = 5 * time.Minute

	// RateLimiterCleanupInterval is how often inactive user rate limiters are cleaned.
	RateLimiterCleanupInterval = 5 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight webhook batches and staggered sends to complete.
	GracefulShutdown = 30 * time.Second
)
