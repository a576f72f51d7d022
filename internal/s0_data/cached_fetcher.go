package s0_data

import (
	"context"
	"time"

	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/pkg/logger"
	"github.com/wonny/rrg/pkg/redis"
)

// CachedFetcher serves repeated fetches of the same window from Redis.
// Failed fetches are never cached.
type CachedFetcher struct {
	inner  contracts.PriceFetcher
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedFetcher wraps a fetcher; a disabled Redis client makes it a pass-through
func NewCachedFetcher(inner contracts.PriceFetcher, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedFetcher {
	if ttl <= 0 {
		ttl = redis.TTLShort
	}
	return &CachedFetcher{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// Name implements contracts.PriceFetcher
func (f *CachedFetcher) Name() string { return f.inner.Name() }

// Fetch implements contracts.PriceFetcher
func (f *CachedFetcher) Fetch(ctx context.Context, symbol string, start, end time.Time) (contracts.PriceSeries, error) {
	key := redis.PriceSeriesKey(f.inner.Name(), symbol, start, end)

	var series contracts.PriceSeries
	err := f.cache.GetOrSet(ctx, key, &series, f.ttl, func() (interface{}, error) {
		f.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"source": f.inner.Name(),
		}).Debug("Price cache miss")
		return f.inner.Fetch(ctx, symbol, start, end)
	})
	if err != nil {
		return contracts.PriceSeries{}, err
	}

	return series, nil
}
