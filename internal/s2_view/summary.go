package s2_view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/rrg/internal/contracts"
)

// SortKey selects the summary column to order by
type SortKey string

const (
	SortByRatio    SortKey = "ratio"
	SortByMomentum SortKey = "momentum"
	SortBySymbol   SortKey = "symbol"
	SortByQuadrant SortKey = "quadrant"
)

// ParseSortKey validates a user-supplied sort column; empty means ratio
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case "":
		return SortByRatio, nil
	case SortByRatio, SortByMomentum, SortBySymbol, SortByQuadrant:
		return key, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (ratio|momentum|symbol|quadrant)", s)
	}
}

// SummaryRow is one line of the summary table; values rounded to 2 decimals
type SummaryRow struct {
	Symbol     string             `json:"ticker"`
	RSRatio    float64            `json:"rs_ratio"`
	RSMomentum float64            `json:"rs_momentum"`
	Quadrant   contracts.Quadrant `json:"quadrant"`

	ratio    float64 // unrounded, for ordering
	momentum float64
}

func summarize(views []InstrumentView, key SortKey, ascending bool) []SummaryRow {
	rows := make([]SummaryRow, 0, len(views))
	for _, v := range views {
		rows = append(rows, SummaryRow{
			Symbol:     v.Symbol,
			RSRatio:    round2(v.Current.Ratio),
			RSMomentum: round2(v.Current.Momentum),
			Quadrant:   v.Quadrant,
			ratio:      v.Current.Ratio,
			momentum:   v.Current.Momentum,
		})
	}
	SortSummary(rows, key, ascending)
	return rows
}

// SortSummary orders rows in place; ties keep their current order
func SortSummary(rows []SummaryRow, key SortKey, ascending bool) {
	less := lessFunc(key)
	sort.SliceStable(rows, func(i, j int) bool {
		if ascending {
			return less(rows[i], rows[j])
		}
		return less(rows[j], rows[i])
	})
}

func lessFunc(key SortKey) func(a, b SummaryRow) bool {
	switch key {
	case SortByMomentum:
		return func(a, b SummaryRow) bool { return a.momentum < b.momentum }
	case SortBySymbol:
		return func(a, b SummaryRow) bool { return a.Symbol < b.Symbol }
	case SortByQuadrant:
		return func(a, b SummaryRow) bool { return quadrantRank(a.Quadrant) < quadrantRank(b.Quadrant) }
	default:
		return func(a, b SummaryRow) bool { return a.ratio < b.ratio }
	}
}

func quadrantRank(q contracts.Quadrant) int {
	for i, candidate := range contracts.Quadrants {
		if candidate == q {
			return i
		}
	}
	return len(contracts.Quadrants)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
