package jobs

import (
	"context"

	"github.com/wonny/rrg/pkg/logger"
)

// StaleCleaner drops expired cache entries; *cache.SeriesCache implements it
type StaleCleaner interface {
	CleanStale() int
}

// CacheCleanupJob cleans stale series from in-process caches
type CacheCleanupJob struct {
	caches []StaleCleaner
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(caches []StaleCleaner, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		caches: caches,
		logger: log,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *CacheCleanupJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled cache cleanup")

	removed := 0
	for _, c := range j.caches {
		if err := ctx.Err(); err != nil {
			return err
		}
		removed += c.CleanStale()
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Cache cleanup completed")
	}

	return nil
}
