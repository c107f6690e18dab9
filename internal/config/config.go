// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, timeouts, rate limits, and feature toggles.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultLeadGenAppID is the app id of the lead generation integration whose
// pass_thread_control events carry a lead form payload. Override with
// COAST_LEAD_GEN_APP_ID when a different integration owns the lead flow.
const DefaultLeadGenAppID = "413038776280800"

// Config holds all application configuration
type Config struct {
	// Messenger Platform (Required)
	PageID          string // Facebook page id the bot serves
	AppID           string // Facebook app id, used to detect our own handover events
	PageAccessToken string // Page access token for Graph API calls
	AppSecret       string // App secret for webhook signature verification
	VerifyToken     string // Token echoed back during webhook subscription
	AppURL          string // Public base URL of this deployment (webview links)
	ShopURL         string // Online shop URL linked from responses

	// Handover
	LeadGenAppID string // App id of the lead generation integration

	// Localization
	Locale string // BCP 47 locale tag for response strings (default: en_US)

	// Completion Configuration
	OpenAIAPIKey string // OpenAI API key for free-text completions
	OpenAIModel  string // OpenAI model override (empty = genai package default)
	GeminiAPIKey string // Gemini API key (fallback completion provider)
	GeminiModel  string // Gemini model override (empty = genai package default)

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string        // Data directory for SQLite database
	UserTTL time.Duration // TTL for cached user records (default: 7 days)

	// Sentry Configuration
	SentryEnabled          bool
	SentryDSN              string
	SentryEnvironment      string
	SentryRelease          string
	SentrySampleRate       float64
	SentryTracesSampleRate float64

	// Better Stack Configuration
	BetterStackToken    string
	BetterStackEndpoint string

	// Bot Configuration (embedded)
	Bot BotConfig
}

// BotConfig holds event processing configuration
type BotConfig struct {
	// Timeouts
	WebhookTimeout time.Duration // Timeout for webhook event processing (see config/timeouts.go)

	// Webhook constraints
	MaxEventsPerWebhook int // Maximum entries accepted per webhook batch (default: 100)

	// Free-text routing
	GreetingConfidenceThreshold float64 // NLP greeting confidence above which text routes to the welcome flow (default: 0.8)

	// Rate Limits (Token Bucket Algorithm)
	UserRateLimitBurst        float64 // Maximum burst tokens per user (default: 15)
	UserRateLimitRefillPerSec float64 // Tokens refilled per second (default: 0.2 = 1 per 5s)
	GlobalRateLimitRPS        float64 // Global rate limit in requests per second (default: 100)

	// Completion rate limits, applied per user on top of the event limit
	CompletionRateLimitBurst        float64 // Maximum burst completion calls per user (default: 5)
	CompletionRateLimitRefillPerSec float64 // Completion tokens refilled per second (default: 0.05 = 1 per 20s)
	CompletionDailyLimit            int     // Rolling 24h completion cap per user, 0 = unlimited (default: 200)
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Messenger Platform
		PageID:          getEnv(EnvPageID, ""),
		AppID:           getEnv(EnvAppID, ""),
		PageAccessToken: getEnv(EnvPageAccessToken, ""),
		AppSecret:       getEnv(EnvAppSecret, ""),
		VerifyToken:     getEnv(EnvVerifyToken, ""),
		AppURL:          getEnv(EnvAppURL, ""),
		ShopURL:         getEnv(EnvShopURL, ""),

		// Handover
		LeadGenAppID: getEnv(EnvLeadGenAppID, DefaultLeadGenAppID),

		// Localization
		Locale: getEnv(EnvLocale, "en_US"),

		// Completion Configuration (empty = feature disabled / provider skipped)
		OpenAIAPIKey: getEnv(EnvOpenAIAPIKey, ""),
		OpenAIModel:  getEnv(EnvOpenAIModel, ""),
		GeminiAPIKey: getEnv(EnvGeminiAPIKey, ""),
		GeminiModel:  getEnv(EnvGeminiModel, ""),

		// Metrics Authentication
		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		// Server Configuration
		Port:            getEnv(EnvPort, "3000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		// Data Configuration
		DataDir: getEnv(EnvDataDir, getDefaultDataDir()),
		UserTTL: getDurationEnv(EnvUserTTL, 168*time.Hour), // 7 days

		// Sentry Configuration
		SentryEnabled:          getBoolEnv(EnvSentryEnabled, false),
		SentryDSN:              getEnv(EnvSentryDSN, ""),
		SentryEnvironment:      getEnv(EnvSentryEnvironment, "production"),
		SentryRelease:          getEnv(EnvSentryRelease, ""),
		SentrySampleRate:       getFloatEnv(EnvSentrySampleRate, 1.0),
		SentryTracesSampleRate: getFloatEnv(EnvSentryTracesSampleRate, 0.1),

		// Better Stack Configuration
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		// Bot Configuration
		Bot: BotConfig{
			WebhookTimeout:              getDurationEnv(EnvWebhookTimeout, WebhookProcessing),
			MaxEventsPerWebhook:         getIntEnv(EnvMaxEventsPerWebhook, 100),
			GreetingConfidenceThreshold: 0.8,
			UserRateLimitBurst:          getFloatEnv(EnvUserRateBurst, 15.0),
			UserRateLimitRefillPerSec:   getFloatEnv(EnvUserRateRefill, 0.2), // 1 per 5s
			GlobalRateLimitRPS:          getFloatEnv(EnvGlobalRateRPS, 100.0),

			CompletionRateLimitBurst:        getFloatEnv(EnvCompletionRateBurst, 5.0),
			CompletionRateLimitRefillPerSec: getFloatEnv(EnvCompletionRateRefill, 0.05), // 1 per 20s
			CompletionDailyLimit:            getIntEnv(EnvCompletionRateDaily, 200),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.PageID == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPageID))
	}
	if c.AppID == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvAppID))
	}
	if c.PageAccessToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPageAccessToken))
	}
	if c.AppSecret == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvAppSecret))
	}
	if c.VerifyToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvVerifyToken))
	}
	if c.AppURL == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvAppURL))
	}
	if c.ShopURL == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvShopURL))
	}
	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	}
	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDataDir))
	}
	if c.UserTTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvUserTTL, c.UserTTL))
	}
	if err := c.Bot.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bot config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks if the bot configuration is valid.
func (c *BotConfig) Validate() error {
	var errs []error

	if c.WebhookTimeout <= 0 {
		errs = append(errs, fmt.Errorf("webhook timeout must be positive, got %v", c.WebhookTimeout))
	}
	if c.MaxEventsPerWebhook < 1 {
		errs = append(errs, fmt.Errorf("max events per webhook must be positive, got %d", c.MaxEventsPerWebhook))
	}
	if c.GreetingConfidenceThreshold <= 0 || c.GreetingConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("greeting confidence threshold must be in (0, 1], got %f", c.GreetingConfidenceThreshold))
	}
	if c.UserRateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("user rate limit burst must be positive, got %f", c.UserRateLimitBurst))
	}
	if c.UserRateLimitRefillPerSec <= 0 {
		errs = append(errs, fmt.Errorf("user rate limit refill rate must be positive, got %f", c.UserRateLimitRefillPerSec))
	}
	if c.GlobalRateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("global rate limit RPS must be positive, got %f", c.GlobalRateLimitRPS))
	}
	if c.CompletionRateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("completion rate limit burst must be positive, got %f", c.CompletionRateLimitBurst))
	}
	if c.CompletionRateLimitRefillPerSec <= 0 {
		errs = append(errs, fmt.Errorf("completion rate limit refill rate must be positive, got %f", c.CompletionRateLimitRefillPerSec))
	}
	if c.CompletionDailyLimit < 0 {
		errs = append(errs, fmt.Errorf("completion daily limit must not be negative, got %d", c.CompletionDailyLimit))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "users.db")
}

// HasCompletionProvider returns true if at least one completion provider is configured.
func (c *Config) HasCompletionProvider() bool {
	return c.OpenAIAPIKey != "" || c.GeminiAPIKey != ""
}
