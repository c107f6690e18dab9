package app

import (
	"context"
	"time"

	"github.com/garyellow/coast-messenger-go/internal/config"
)

// startBackgroundJobs starts the periodic maintenance goroutines,
// tracked by the application WaitGroup for graceful shutdown.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.userCleanup(ctx)
	})
	a.wg.Go(func() {
		a.updateRegistryMetrics(ctx)
	})
}

// userCleanup periodically deletes users not seen within the retention
// window, so the store doesn't accumulate one row per drive-by visitor
// forever.
func (a *Application) userCleanup(ctx context.Context) {
	a.logger.Debug("User cleanup job started")
	defer a.logger.Debug("User cleanup job stopped")

	a.runUserCleanup(ctx)

	ticker := time.NewTicker(config.UserCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runUserCleanup(ctx)
		}
	}
}

func (a *Application) runUserCleanup(ctx context.Context) {
	deleted, err := a.db.DeleteStaleUsers(ctx, a.cfg.UserTTL)
	if err != nil {
		a.logger.WithError(err).Error("User cleanup failed")
		return
	}
	if deleted > 0 {
		a.logger.WithField("deleted", deleted).Info("User cleanup completed")
	}
}

// updateRegistryMetrics keeps the active-key gauges current for
// dashboards; the counters are updated inline by their owners.
func (a *Application) updateRegistryMetrics(ctx context.Context) {
	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.metrics.SetRateLimiterActiveKeys("event", a.eventLimiter.GetActiveCount())
			if a.completionLimiter != nil {
				a.metrics.SetRateLimiterActiveKeys("completion", a.completionLimiter.GetActiveCount())
			}
		}
	}
}
