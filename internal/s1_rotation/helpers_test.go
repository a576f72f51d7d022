package s1_rotation

import (
	"math"
	"time"

	"github.com/wonny/rrg/internal/contracts"
)

var baseDay = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// synthetic builds n daily closes starting at offset days after baseDay
func synthetic(symbol string, offset, n int, price func(i int) float64) contracts.PriceSeries {
	points := make([]contracts.PricePoint, n)
	for i := 0; i < n; i++ {
		points[i] = contracts.PricePoint{
			Date:  baseDay.AddDate(0, 0, offset+i),
			Close: price(offset + i),
		}
	}
	return contracts.PriceSeries{Symbol: symbol, Points: points}
}

// wave is a positive, non-trivial benchmark path
func wave(i int) float64 {
	return 100 + 10*math.Sin(float64(i)/7) + 0.3*float64(i)
}

func doubled(i int) float64 {
	return 2 * wave(i)
}

// trending outperforms the benchmark with a wobble so ratio and momentum move
func trending(i int) float64 {
	return wave(i) * (1 + 0.004*float64(i) + 0.02*math.Cos(float64(i)/5))
}
