// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyellow/coast-messenger-go/internal/bot"
	"github.com/garyellow/coast-messenger-go/internal/buildinfo"
	"github.com/garyellow/coast-messenger-go/internal/bot/care"
	"github.com/garyellow/coast-messenger-go/internal/bot/curation"
	"github.com/garyellow/coast-messenger-go/internal/bot/lead"
	"github.com/garyellow/coast-messenger-go/internal/bot/order"
	"github.com/garyellow/coast-messenger-go/internal/bot/survey"
	"github.com/garyellow/coast-messenger-go/internal/config"
	"github.com/garyellow/coast-messenger-go/internal/genai"
	"github.com/garyellow/coast-messenger-go/internal/graph"
	"github.com/garyellow/coast-messenger-go/internal/i18n"
	"github.com/garyellow/coast-messenger-go/internal/logger"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
	"github.com/garyellow/coast-messenger-go/internal/metrics"
	"github.com/garyellow/coast-messenger-go/internal/profile"
	"github.com/garyellow/coast-messenger-go/internal/ratelimit"
	"github.com/garyellow/coast-messenger-go/internal/scheduler"
	"github.com/garyellow/coast-messenger-go/internal/sentry"
	"github.com/garyellow/coast-messenger-go/internal/storage"
	"github.com/garyellow/coast-messenger-go/internal/user"
	"github.com/garyellow/coast-messenger-go/internal/webhook"
)

// graphMaxRetries bounds retried Graph API reads (profile, personas).
const graphMaxRetries = 3

// userCacheMaxEntries bounds the in-memory user registry.
const userCacheMaxEntries = 10_000

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg      *config.Config
	logger   *logger.Logger
	db       *storage.DB
	metrics  *metrics.Metrics
	registry *prometheus.Registry

	graphClient       *graph.Client
	users             *user.Registry
	chain             *genai.Chain
	delivery          *scheduler.Scheduler
	personaCache      *profile.Cache
	setup             *profile.Setup
	webhookHandler    *webhook.Handler
	eventLimiter      *ratelimit.PerKeyLimiter
	completionLimiter *ratelimit.KeyedLimiter

	router *gin.Engine
	server *http.Server
	wg     sync.WaitGroup
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", "coast-messenger-go")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Set as default logger so package-level slog.*Context() calls pick
	// up request and user ids via the context handler.
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")
	if cfg.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	release := cfg.SentryRelease
	if release == "" {
		release = buildinfo.Version
	}
	if err := sentry.Initialize(sentry.Config{
		Enabled:          cfg.SentryEnabled,
		DSN:              cfg.SentryDSN,
		Environment:      cfg.SentryEnvironment,
		Release:          release,
		SampleRate:       cfg.SentrySampleRate,
		TracesSampleRate: cfg.SentryTracesSampleRate,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed, continuing without error tracking")
	} else if sentry.IsEnabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error tracking enabled")
	}

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	graphClient := graph.NewClient(graph.Options{
		PageID:          cfg.PageID,
		AppID:           cfg.AppID,
		AppSecret:       cfg.AppSecret,
		PageAccessToken: cfg.PageAccessToken,
		MaxRetries:      graphMaxRetries,
		RateLimitRPS:    cfg.Bot.GlobalRateLimitRPS,
		Logger:          log,
		Metrics:         m,
	})

	users := user.NewRegistry(user.RegistryConfig{
		Store:        db,
		FetchProfile: profileFetcher(graphClient),
		TTL:          cfg.UserTTL,
		MaxEntries:   userCacheMaxEntries,
		Metrics:      m,
		Logger:       log,
	})

	chain, err := genai.New(ctx, cfg, m)
	if err != nil {
		log.WithError(err).Warn("Completion chain initialization failed, free-text AI disabled")
		chain = nil
	}
	if chain.Enabled() {
		log.Info("Completion chain enabled for free-text replies")
	}

	delivery := scheduler.New(graphClient)
	tr := i18n.New(cfg.Locale)

	personaCache := profile.NewCache(cfg.AppURL)
	setup := profile.New(profile.Config{
		API:         graphClient,
		Translator:  tr,
		Cache:       personaCache,
		Logger:      log,
		AppURL:      cfg.AppURL,
		ShopURL:     cfg.ShopURL,
		VerifyToken: cfg.VerifyToken,
	})

	surveyHandler := survey.New(tr)
	careHandler := care.New(tr, personaCache, surveyHandler)
	curationHandler := curation.New(tr, cfg.AppURL, cfg.ShopURL)
	orderHandler := order.New(tr, cfg.AppURL)
	leadHandler := lead.New(tr, personaCache, graphClient, func(u *user.User) []*messenger.Message {
		return bot.NuxMessages(tr, u)
	})

	payloadRouter := bot.NewRouter(bot.RouterConfig{
		Translator: tr,
		Care:       careHandler,
		Curation:   curationHandler,
		Order:      orderHandler,
		Lead:       leadHandler,
		Survey:     surveyHandler,
		Metrics:    m,
	})

	fallback := bot.NewFallbackStrategy(tr)
	var strategy bot.TextStrategy = fallback
	var completionLimiter *ratelimit.KeyedLimiter
	if chain.Enabled() {
		completionLimiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
			Name:          "completion",
			Burst:         cfg.Bot.CompletionRateLimitBurst,
			RefillRate:    cfg.Bot.CompletionRateLimitRefillPerSec,
			DailyLimit:    cfg.Bot.CompletionDailyLimit,
			CleanupPeriod: config.RateLimiterCleanupInterval,
			Metrics:       m,
		})
		strategy = bot.NewCompletionStrategy(chain, completionLimiter, fallback, m)
	}

	eventLimiter := ratelimit.NewPerKeyLimiter(ratelimit.PerKeyLimiterConfig{
		MaxTokens:     cfg.Bot.UserRateLimitBurst,
		RefillRate:    cfg.Bot.UserRateLimitRefillPerSec,
		CleanupPeriod: config.RateLimiterCleanupInterval,
	})

	processor := bot.NewProcessor(bot.ProcessorConfig{
		Users:             users,
		Router:            payloadRouter,
		Lead:              leadHandler,
		Curation:          curationHandler,
		Strategy:          strategy,
		Delivery:          delivery,
		Translator:        tr,
		Metrics:           m,
		EventLimiter:      eventLimiter,
		AppID:             cfg.AppID,
		LeadGenAppID:      cfg.LeadGenAppID,
		GreetingThreshold: cfg.Bot.GreetingConfidenceThreshold,
	})

	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		AppSecret:           cfg.AppSecret,
		VerifyToken:         cfg.VerifyToken,
		Processor:           processor,
		Metrics:             m,
		Logger:              log,
		MaxEventsPerWebhook: cfg.Bot.MaxEventsPerWebhook,
		EventTimeout:        cfg.Bot.WebhookTimeout,
	})

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentry.Middleware())
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))

	app := &Application{
		cfg:               cfg,
		logger:            log,
		db:                db,
		metrics:           m,
		registry:          registry,
		graphClient:       graphClient,
		users:             users,
		chain:             chain,
		delivery:          delivery,
		personaCache:      personaCache,
		setup:             setup,
		webhookHandler:    webhookHandler,
		eventLimiter:      eventLimiter,
		completionLimiter: completionLimiter,
		router:            router,
	}

	router.GET("/", app.redirectToShop)
	router.HEAD("/", app.redirectToShop)
	router.GET("/livez", app.livenessCheck)
	router.HEAD("/livez", app.livenessCheck)
	router.GET("/readyz", app.readinessCheck)
	router.HEAD("/readyz", app.readinessCheck)
	router.GET("/webhook", webhookHandler.HandleVerify)
	router.POST("/webhook", webhookHandler.HandleEvents)
	router.GET("/profile", setup.HandleSetup)
	router.GET("/metrics",
		metricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: config.WebhookHTTPRead,
		ReadTimeout:       config.WebhookHTTPRead,
		WriteTimeout:      config.WebhookHTTPWrite,
		IdleTimeout:       config.WebhookHTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// profileFetcher adapts the Graph profile lookup to the registry's
// hydration hook.
func profileFetcher(client *graph.Client) user.ProfileFunc {
	return func(ctx context.Context, psid string) (user.Profile, error) {
		p, err := client.GetUserProfile(ctx, psid)
		if err != nil {
			return user.Profile{}, err
		}
		return user.Profile{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Gender:    p.Gender,
			Locale:    p.Locale,
			Timezone:  p.Timezone.String(),
		}, nil
	}
}

func (a *Application) redirectToShop(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, a.cfg.ShopURL)
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "alive",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	if err := a.db.Ping(); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "connected",
		"cache": gin.H{
			"users": a.users.Len(),
		},
		"features": gin.H{
			"completion": a.chain.Enabled(),
			"sentry":     sentry.IsEnabled(),
		},
	})
}

// Run starts the HTTP server and background jobs, then blocks until a
// shutdown signal arrives.
//
// Graceful shutdown order matters: the HTTP server stops accepting
// deliveries first, then in-flight webhook batches drain, then the
// delivery scheduler flushes its pending sends, and only then are the
// database and remaining resources closed.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startHTTPServer starts the HTTP server in a goroutine.
func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown performs graceful shutdown of the HTTP server and resources.
// Called after background jobs have stopped.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Waiting for webhook events to complete...")
	if err := a.webhookHandler.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Webhook handler shutdown timeout")
	}

	a.logger.Info("Flushing scheduled deliveries...")
	if err := a.delivery.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Delivery scheduler shutdown timeout")
	}

	a.logger.Info("Closing resources...")

	a.users.Stop()
	a.eventLimiter.Stop()
	if a.completionLimiter != nil {
		a.completionLimiter.Stop()
	}
	if err := a.chain.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "completion_chain").Error("Component close error")
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}

	if sentry.IsEnabled() {
		sentry.Flush(2 * time.Second)
	}

	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}

	a.logger.Info("Shutdown complete")
	return nil
}
