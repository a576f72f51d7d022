package cache

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/pkg/logger"
	"github.com/wonny/rrg/pkg/redis"
)

// SeriesCache is an in-process price cache used when Redis is disabled
// ⭐ SSOT: 프로세스 내 가격 캐싱은 이 구조체에서만
type SeriesCache struct {
	inner  contracts.PriceFetcher
	mu     sync.RWMutex
	series map[string]entry
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time

	hits   int
	misses int
}

type entry struct {
	series   contracts.PriceSeries
	storedAt time.Time
}

// NewSeriesCache wraps a fetcher with a TTL cache
func NewSeriesCache(inner contracts.PriceFetcher, ttl time.Duration, log *logger.Logger) *SeriesCache {
	if ttl <= 0 {
		ttl = redis.TTLShort
	}
	return &SeriesCache{
		inner:  inner,
		series: make(map[string]entry),
		ttl:    ttl,
		logger: log,
		now:    time.Now,
	}
}

// Name implements contracts.PriceFetcher
func (c *SeriesCache) Name() string { return c.inner.Name() }

// Fetch implements contracts.PriceFetcher; errors are never cached
func (c *SeriesCache) Fetch(ctx context.Context, symbol string, start, end time.Time) (contracts.PriceSeries, error) {
	key := redis.PriceSeriesKey(c.inner.Name(), symbol, start, end)

	if series, ok := c.get(key); ok {
		return series, nil
	}

	series, err := c.inner.Fetch(ctx, symbol, start, end)
	if err != nil {
		return contracts.PriceSeries{}, err
	}

	c.mu.Lock()
	c.series[key] = entry{series: clone(series), storedAt: c.now()}
	c.mu.Unlock()

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"source": c.inner.Name(),
		"points": len(series.Points),
	}).Debug("Updated series cache")

	return series, nil
}

func (c *SeriesCache) get(key string) (contracts.PriceSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.series[key]
	if !exists || c.now().Sub(e.storedAt) > c.ttl {
		c.misses++
		return contracts.PriceSeries{}, false
	}
	c.hits++
	// 호출자가 슬라이스를 수정해도 캐시는 보존
	return clone(e.series), true
}

// Len returns the number of cached series
func (c *SeriesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.series)
}

// Clear drops every cached series
func (c *SeriesCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.series = make(map[string]entry)
	c.logger.Info("Cleared series cache")
}

// CleanStale removes series older than the TTL
func (c *SeriesCache) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0

	for key, e := range c.series {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.series, key)
			count++
		}
	}

	if count > 0 {
		c.logger.WithFields(map[string]interface{}{
			"source": c.inner.Name(),
			"count":  count,
		}).Info("Cleaned stale series from cache")
	}

	return count
}

// Stats returns cache statistics
func (c *SeriesCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		Source:     c.inner.Name(),
		TotalCount: len(c.series),
		Hits:       c.hits,
		Misses:     c.misses,
	}

	now := c.now()
	for _, e := range c.series {
		if now.Sub(e.storedAt) > c.ttl {
			stats.StaleCount++
		}
	}
	stats.FreshCount = stats.TotalCount - stats.StaleCount

	return stats
}

// Stats represents cache statistics
type Stats struct {
	Source     string `json:"source"`
	TotalCount int    `json:"total_count"`
	FreshCount int    `json:"fresh_count"`
	StaleCount int    `json:"stale_count"`
	Hits       int    `json:"hits"`
	Misses     int    `json:"misses"`
}

func clone(s contracts.PriceSeries) contracts.PriceSeries {
	points := make([]contracts.PricePoint, len(s.Points))
	copy(points, s.Points)
	return contracts.PriceSeries{Symbol: s.Symbol, Points: points}
}
