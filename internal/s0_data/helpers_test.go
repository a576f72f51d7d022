package s0_data

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/wonny/rrg/internal/contracts"
)

// fakeFetcher produces one close per calendar day from a per-symbol generator
type fakeFetcher struct {
	mu     sync.Mutex
	prices map[string]func(i int) float64
	errs   map[string]error
	calls  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		prices: make(map[string]func(i int) float64),
		errs:   make(map[string]error),
	}
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch(ctx context.Context, symbol string, start, end time.Time) (contracts.PriceSeries, error) {
	f.mu.Lock()
	f.calls = append(f.calls, symbol)
	gen := f.prices[symbol]
	err := f.errs[symbol]
	f.mu.Unlock()

	if err != nil {
		return contracts.PriceSeries{}, err
	}
	if err := ctx.Err(); err != nil {
		return contracts.PriceSeries{}, err
	}

	series := contracts.PriceSeries{Symbol: symbol}
	if gen == nil {
		return series, contracts.ErrEmptySeries
	}
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		series.Points = append(series.Points, contracts.PricePoint{Date: d, Close: gen(i)})
		i++
	}
	return series, nil
}

func (f *fakeFetcher) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func wave(i int) float64 {
	return 100 + 10*math.Sin(float64(i)/7)
}

func doubled(i int) float64 {
	return 2 * wave(i)
}
