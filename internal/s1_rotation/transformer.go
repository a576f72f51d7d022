package s1_rotation

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/wonny/rrg/internal/contracts"
)

// RelativeStrength returns price / benchmark for every aligned day
func RelativeStrength(pair *contracts.AlignedPair) contracts.Series {
	rs := make(contracts.Series, pair.Len())
	for i := range pair.Dates {
		rs[i] = contracts.Point{
			Date:  pair.Dates[i],
			Value: pair.Prices[i] / pair.Benchmark[i],
		}
	}
	return rs
}

// Transform computes RS-Ratio and RS-Momentum from an aligned pair
// ⭐ SSOT: RS-Ratio / RS-Momentum 계산은 여기서만
//
//	ratio[t]    = rs[t] / mean(rs[t-39..t]) * 100
//	momentum[t] = ratio[t] / ratio[t-10] * 100
//
// Days without a full window are omitted, so len(ratio) == n-39 and
// len(momentum) == len(ratio)-10.
func Transform(pair *contracts.AlignedPair) (*contracts.InstrumentResult, error) {
	n := pair.Len()
	if n < contracts.MinAlignedObservations {
		return nil, fmt.Errorf("%s: %d aligned observations, need %d: %w",
			pair.Symbol, n, contracts.MinAlignedObservations, contracts.ErrInsufficientData)
	}

	rs := RelativeStrength(pair)
	values := rs.Values()

	ratio := make(contracts.Series, 0, n-contracts.RatioWindow+1)
	for t := contracts.RatioWindow - 1; t < n; t++ {
		mean, err := stats.Mean(stats.Float64Data(values[t-contracts.RatioWindow+1 : t+1]))
		if err != nil {
			return nil, fmt.Errorf("%s: trailing mean: %w", pair.Symbol, err)
		}
		ratio = append(ratio, contracts.Point{
			Date:  rs[t].Date,
			Value: (values[t] / mean) * contracts.RatioCenter,
		})
	}

	momentum := make(contracts.Series, 0, len(ratio)-contracts.MomentumLag)
	for t := contracts.MomentumLag; t < len(ratio); t++ {
		momentum = append(momentum, contracts.Point{
			Date:  ratio[t].Date,
			Value: (ratio[t].Value / ratio[t-contracts.MomentumLag].Value) * contracts.RatioCenter,
		})
	}

	return &contracts.InstrumentResult{
		Symbol:   pair.Symbol,
		Ratio:    ratio,
		Momentum: momentum,
	}, nil
}
