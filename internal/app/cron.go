package app

import (
	"context"
	"time"

	"github.com/folio-space/folio/internal/middleware"
	pkgcron "github.com/folio-space/folio/internal/pkg/cron"
	"go.uber.org/zap"
)

const (
	jobCatalogRefresh  = "catalog.refresh"
	jobSessionsCleanup = "sessions.cleanup"
	jobCachePurge      = "cache.purge"

	sessionsCleanupInterval = time.Hour
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, a *App) {
	cronLogger := a.logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        jobCatalogRefresh,
		Description: "Reload every portfolio collection from the record store",
		Interval:    a.cfg.Catalog.RefreshInterval,
		Fn:          a.catalog.LoadAll,
	})

	sched.Register(pkgcron.Job{
		Name:        jobSessionsCleanup,
		Description: "Delete expired and revoked admin sessions",
		Interval:    sessionsCleanupInterval,
		Fn: func(ctx context.Context) error {
			removed, err := a.identity.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if removed > 0 {
				cronLogger.Info("expired sessions removed", zap.Int("count", removed))
			}
			return nil
		},
	})

	// Manual only: the cache is already purged after every mutation.
	sched.Register(pkgcron.Job{
		Name:        jobCachePurge,
		Description: "Drop every cached public API response",
		Fn: func(ctx context.Context) error {
			deleted, err := middleware.PurgeHTTPCache(ctx, a.redis.Raw())
			if err != nil {
				return err
			}
			cronLogger.Info("http cache purged", zap.Int64("keys", deleted))
			return nil
		},
	})
}
