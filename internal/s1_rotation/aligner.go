package s1_rotation

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wonny/rrg/internal/contracts"
)

// dayIndex maps a trading day to its valid close
type dayIndex map[time.Time]float64

// Align reduces an instrument and the benchmark to their common trading days
// ⭐ SSOT: 날짜 정렬(교집합)은 여기서만
//
// Days missing from either side are dropped, never interpolated. Non-positive or
// non-finite closes are dropped too, so the RS division is always defined.
func Align(instrument, benchmark contracts.PriceSeries) (*contracts.AlignedPair, error) {
	return alignIndexed(instrument, indexByDay(benchmark.Points))
}

// ValidObservations counts the usable closes of a series
func ValidObservations(series contracts.PriceSeries) int {
	return len(indexByDay(series.Points))
}

// CheckBenchmark fails when a benchmark cannot anchor a run
func CheckBenchmark(benchmark contracts.PriceSeries) error {
	n := ValidObservations(benchmark)
	if n == 0 {
		return fmt.Errorf("%w: %s: %w", contracts.ErrBenchmarkUnavailable, benchmark.Symbol, contracts.ErrEmptySeries)
	}
	if n < contracts.MinAlignedObservations {
		return fmt.Errorf("%w: %s has %d valid observations, need %d: %w",
			contracts.ErrBenchmarkUnavailable, benchmark.Symbol, n,
			contracts.MinAlignedObservations, contracts.ErrInsufficientData)
	}
	return nil
}

func alignIndexed(instrument contracts.PriceSeries, bench dayIndex) (*contracts.AlignedPair, error) {
	if instrument.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", instrument.Symbol, contracts.ErrEmptySeries)
	}

	inst := indexByDay(instrument.Points)

	days := make([]time.Time, 0, len(inst))
	for d := range inst {
		if _, ok := bench[d]; ok {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	if len(days) < contracts.MinAlignedObservations {
		return nil, fmt.Errorf("%s: %d aligned observations, need %d: %w",
			instrument.Symbol, len(days), contracts.MinAlignedObservations, contracts.ErrInsufficientData)
	}

	pair := &contracts.AlignedPair{
		Symbol:    instrument.Symbol,
		Dates:     days,
		Prices:    make([]float64, len(days)),
		Benchmark: make([]float64, len(days)),
	}
	for i, d := range days {
		pair.Prices[i] = inst[d]
		pair.Benchmark[i] = bench[d]
	}

	return pair, nil
}

// indexByDay keys valid closes by trading day; a repeated day keeps the later point
func indexByDay(points []contracts.PricePoint) dayIndex {
	idx := make(dayIndex, len(points))
	for _, p := range points {
		if !validPrice(p.Close) {
			continue
		}
		idx[contracts.TradingDay(p.Date)] = p.Close
	}
	return idx
}

func validPrice(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
