package collector

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/pkg/logger"
)

// PriceStore persists fetched close series
type PriceStore interface {
	SaveSeries(ctx context.Context, source string, series contracts.PriceSeries) (int, error)
}

// Collector copies close series from a live source into the price store,
// so later runs can use the postgres source offline
// ⭐ SSOT: 가격 수집 오케스트레이션은 이 패키지에서만
type Collector struct {
	source contracts.PriceFetcher
	store  PriceStore
	logger *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers int // Number of concurrent workers
}

// NewCollector creates a new Collector instance
func NewCollector(source contracts.PriceFetcher, store PriceStore, log *logger.Logger) *Collector {
	return &Collector{
		source: source,
		store:  store,
		logger: log.WithField("module", "collector"),
	}
}

// FetchResult represents the result of one symbol's collection
type FetchResult struct {
	Symbol     string
	PriceCount int
	Error      error
}

// CollectPrices fetches and stores [from, to] for every symbol; results follow input order
func (c *Collector) CollectPrices(ctx context.Context, symbols []string, from, to time.Time, cfg Config) []FetchResult {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	c.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"source":  c.source.Name(),
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
		"workers": workers,
	}).Info("Starting price collection")

	type job struct {
		index  int
		symbol string
	}
	type indexed struct {
		index int
		FetchResult
	}

	jobCh := make(chan job, len(symbols))
	resultCh := make(chan indexed, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range jobCh {
				resultCh <- indexed{index: j.index, FetchResult: c.collectOne(ctx, workerID, j.symbol, from, to)}
			}
		}(i)
	}

	for i, symbol := range symbols {
		jobCh <- job{index: i, symbol: symbol}
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	collected := make([]indexed, 0, len(symbols))
	successCount, failCount := 0, 0
	for r := range resultCh {
		collected = append(collected, r)
		if r.Error != nil {
			failCount++
		} else {
			successCount++
		}
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })
	results := make([]FetchResult, len(collected))
	for i, r := range collected {
		results[i] = r.FetchResult
	}

	c.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Price collection completed")

	return results
}

func (c *Collector) collectOne(ctx context.Context, workerID int, symbol string, from, to time.Time) FetchResult {
	if err := ctx.Err(); err != nil {
		return FetchResult{Symbol: symbol, Error: err}
	}

	series, err := c.source.Fetch(ctx, symbol, from, to)
	if err != nil {
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"worker": workerID,
			"symbol": symbol,
		}).Warn("Failed to fetch prices")
		return FetchResult{Symbol: symbol, Error: err}
	}

	count, err := c.store.SaveSeries(ctx, c.source.Name(), series)
	if err != nil {
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"worker": workerID,
			"symbol": symbol,
		}).Error("Failed to save prices")
		return FetchResult{Symbol: symbol, PriceCount: count, Error: err}
	}

	c.logger.WithFields(map[string]interface{}{
		"worker": workerID,
		"symbol": symbol,
		"count":  count,
	}).Debug("Collected prices")

	return FetchResult{Symbol: symbol, PriceCount: count}
}
