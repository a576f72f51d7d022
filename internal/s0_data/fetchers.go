package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/internal/external/naver"
	"github.com/wonny/rrg/internal/external/yahoo"
)

// YahooFetcher adapts the Yahoo chart client to contracts.PriceFetcher.
// Adjusted closes are preferred when the response carries them.
type YahooFetcher struct {
	client *yahoo.Client
}

// NewYahooFetcher creates a new Yahoo price fetcher
func NewYahooFetcher(client *yahoo.Client) *YahooFetcher {
	return &YahooFetcher{client: client}
}

// Name implements contracts.PriceFetcher
func (f *YahooFetcher) Name() string { return "yahoo" }

// Fetch implements contracts.PriceFetcher
func (f *YahooFetcher) Fetch(ctx context.Context, symbol string, start, end time.Time) (contracts.PriceSeries, error) {
	bars, err := f.client.FetchDaily(ctx, symbol, start, end)
	if err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("%w: %w", contracts.ErrProvider, err)
	}

	series := contracts.PriceSeries{Symbol: symbol, Points: make([]contracts.PricePoint, 0, len(bars))}
	for _, b := range bars {
		price := b.Close
		if b.AdjClose > 0 {
			price = b.AdjClose
		}
		series.Points = append(series.Points, contracts.PricePoint{Date: b.Date, Close: price})
	}

	return nonEmpty(series)
}

// NaverFetcher adapts the Naver Finance client to contracts.PriceFetcher
type NaverFetcher struct {
	client *naver.Client
}

// NewNaverFetcher creates a new Naver price fetcher
func NewNaverFetcher(client *naver.Client) *NaverFetcher {
	return &NaverFetcher{client: client}
}

// Name implements contracts.PriceFetcher
func (f *NaverFetcher) Name() string { return "naver" }

// Fetch implements contracts.PriceFetcher
func (f *NaverFetcher) Fetch(ctx context.Context, symbol string, start, end time.Time) (contracts.PriceSeries, error) {
	prices, err := f.client.FetchPrices(ctx, symbol, start, end)
	if err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("%w: %w", contracts.ErrProvider, err)
	}

	series := contracts.PriceSeries{Symbol: symbol, Points: make([]contracts.PricePoint, 0, len(prices))}
	for _, p := range prices {
		series.Points = append(series.Points, contracts.PricePoint{Date: p.TradeDate, Close: p.ClosePrice})
	}

	return nonEmpty(series)
}

func nonEmpty(series contracts.PriceSeries) (contracts.PriceSeries, error) {
	if series.IsEmpty() {
		return series, fmt.Errorf("%s: %w", series.Symbol, contracts.ErrEmptySeries)
	}
	return series, nil
}
