// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Core (Required)
	EnvPageID          = "COAST_PAGE_ID"
	EnvAppID           = "COAST_APP_ID"
	EnvPageAccessToken = "COAST_PAGE_ACCESS_TOKEN"
	EnvAppSecret       = "COAST_APP_SECRET"
	EnvVerifyToken     = "COAST_VERIFY_TOKEN"
	EnvAppURL          = "COAST_APP_URL"
	EnvShopURL         = "COAST_SHOP_URL"

	// Server
	EnvPort            = "COAST_PORT"
	EnvLogLevel        = "COAST_LOG_LEVEL"
	EnvShutdownTimeout = "COAST_SHUTDOWN_TIMEOUT"

	// Localization
	EnvLocale = "COAST_LOCALE"

	// Data
	EnvDataDir = "COAST_DATA_DIR"
	EnvUserTTL = "COAST_USER_TTL"

	// Webhook
	EnvWebhookTimeout      = "COAST_WEBHOOK_TIMEOUT"
	EnvMaxEventsPerWebhook = "COAST_MAX_EVENTS_PER_WEBHOOK"

	// Handover
	EnvLeadGenAppID = "COAST_LEAD_GEN_APP_ID"

	// Rate Limits
	EnvGlobalRateRPS        = "COAST_GLOBAL_RATE_RPS"
	EnvUserRateBurst        = "COAST_USER_RATE_BURST"
	EnvUserRateRefill       = "COAST_USER_RATE_REFILL"
	EnvCompletionRateBurst  = "COAST_COMPLETION_RATE_BURST"
	EnvCompletionRateRefill = "COAST_COMPLETION_RATE_REFILL"
	EnvCompletionRateDaily  = "COAST_COMPLETION_RATE_DAILY"

	// Completion Feature
	EnvOpenAIAPIKey = "COAST_OPENAI_API_KEY"
	EnvOpenAIModel  = "COAST_OPENAI_MODEL"
	EnvGeminiAPIKey = "COAST_GEMINI_API_KEY"
	EnvGeminiModel  = "COAST_GEMINI_MODEL"

	// Sentry Feature
	EnvSentryEnabled          = "COAST_SENTRY_ENABLED"
	EnvSentryDSN              = "COAST_SENTRY_DSN"
	EnvSentryEnvironment      = "COAST_SENTRY_ENVIRONMENT"
	EnvSentryRelease          = "COAST_SENTRY_RELEASE"
	EnvSentrySampleRate       = "COAST_SENTRY_SAMPLE_RATE"
	EnvSentryTracesSampleRate = "COAST_SENTRY_TRACES_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken    = "COAST_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "COAST_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsUsername = "COAST_METRICS_USERNAME"
	EnvMetricsPassword = "COAST_METRICS_PASSWORD"
)
