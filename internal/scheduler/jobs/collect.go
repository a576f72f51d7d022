package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/internal/s0_data/collector"
	"github.com/wonny/rrg/internal/watchlist"
	"github.com/wonny/rrg/pkg/logger"
)

// PriceCollectionJob copies a watchlist's closes into the price store
// ⭐ SSOT: 가격 수집 스케줄은 이 Job에서만
type PriceCollectionJob struct {
	collector    *collector.Collector
	watchlist    watchlist.Watchlist
	lookbackDays int
	workers      int
	schedule     string
	logger       *logger.Logger
	now          func() time.Time
}

// NewPriceCollectionJob creates a collection job covering one analysis window
func NewPriceCollectionJob(col *collector.Collector, w watchlist.Watchlist, lookbackDays, workers int, schedule string, log *logger.Logger) *PriceCollectionJob {
	return &PriceCollectionJob{
		collector:    col,
		watchlist:    w,
		lookbackDays: lookbackDays,
		workers:      workers,
		schedule:     schedule,
		logger:       log.WithField("watchlist", w.Name),
		now:          time.Now,
	}
}

// Name returns the job name
func (j *PriceCollectionJob) Name() string {
	return "price_collection:" + j.watchlist.Name
}

// Schedule returns the cron schedule
func (j *PriceCollectionJob) Schedule() string {
	return j.schedule
}

// Run collects the benchmark and every instrument; it fails only when nothing was stored
func (j *PriceCollectionJob) Run(ctx context.Context) error {
	window := contracts.NewAnalysisWindow(contracts.TradingDay(j.now()), j.lookbackDays)
	symbols := append([]string{j.watchlist.Benchmark}, j.watchlist.Symbols...)

	results := j.collector.CollectPrices(ctx, symbols, window.Start, window.End, collector.Config{Workers: j.workers})

	stored, failed := 0, 0
	var firstErr error
	for _, r := range results {
		if r.Error != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", r.Symbol, r.Error)
			}
			continue
		}
		stored += r.PriceCount
	}

	j.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"failed":  failed,
		"rows":    stored,
	}).Info("Scheduled price collection finished")

	if failed == len(results) && firstErr != nil {
		return fmt.Errorf("price collection %s: all %d symbols failed: %w", j.watchlist.Name, failed, firstErr)
	}
	return nil
}
