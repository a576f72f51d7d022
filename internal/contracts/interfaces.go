package contracts

import (
	"context"
	"time"
)

// PriceFetcher retrieves daily closes for a symbol (S0)
// ⭐ SSOT: S0 가격 조회 인터페이스
//
// An empty result must be reported as ErrEmptySeries; transport and decoding
// failures wrap ErrProvider. No minimum length is guaranteed.
type PriceFetcher interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time) (PriceSeries, error)
	Name() string
}
