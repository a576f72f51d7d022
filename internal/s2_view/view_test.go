package s2_view

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rrg/internal/contracts"
)

var baseDay = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// result builds an instrument whose ratio and momentum share the same dates
func result(symbol string, ratios, momenta []float64) *contracts.InstrumentResult {
	r := &contracts.InstrumentResult{Symbol: symbol}
	for i := range ratios {
		d := baseDay.AddDate(0, 0, i)
		r.Ratio = append(r.Ratio, contracts.Point{Date: d, Value: ratios[i]})
		r.Momentum = append(r.Momentum, contracts.Point{Date: d, Value: momenta[i]})
	}
	return r
}

func resultSet(results ...*contracts.InstrumentResult) *contracts.ResultSet {
	rs := contracts.NewResultSet("run-view", "^NSEI", contracts.NewAnalysisWindow(baseDay.AddDate(0, 3, 0), 60))
	for _, r := range results {
		rs.Add(r)
	}
	return rs
}

func TestBuild_TightClusterKeepsCrosshairVisible(t *testing.T) {
	rs := resultSet(
		result("A", []float64{100.2, 100.5}, []float64{99.8, 100.1}),
		result("B", []float64{99.7, 99.9}, []float64{100.3, 100.4}),
	)

	chart := Build(rs, Options{TailLength: 5})

	assert.Equal(t, Range{Min: 97, Max: 103}, chart.Bounds.Ratio)
	assert.Equal(t, Range{Min: 97, Max: 103}, chart.Bounds.Momentum)
	assert.Equal(t, contracts.RatioCenter, chart.Center)
}

func TestBuild_WideClusterPadsByOne(t *testing.T) {
	rs := resultSet(
		result("A", []float64{92, 108.5}, []float64{95, 104}),
		result("B", []float64{101, 99}, []float64{90.5, 110}),
	)

	chart := Build(rs, Options{TailLength: 2})

	assert.Equal(t, Range{Min: 91, Max: 109.5}, chart.Bounds.Ratio)
	assert.Equal(t, Range{Min: 89.5, Max: 111}, chart.Bounds.Momentum)
}

func TestBuild_BoundsUseOnlyTail(t *testing.T) {
	// the outlier at index 0 falls outside a tail of 2
	rs := resultSet(result("A", []float64{80, 100, 101}, []float64{120, 100, 101}))

	chart := Build(rs, Options{TailLength: 2})

	assert.Equal(t, Range{Min: 97, Max: 103}, chart.Bounds.Ratio)
	assert.Equal(t, Range{Min: 97, Max: 103}, chart.Bounds.Momentum)
}

func TestBuild_TailClamping(t *testing.T) {
	rs := resultSet(result("A", []float64{98, 99, 101, 102}, []float64{97, 101, 99, 103}))

	tests := []struct {
		name     string
		tail     int
		wantLen  int
		wantTail int
	}{
		{"zero clamps to one", 0, 1, 1},
		{"negative clamps to one", -3, 1, 1},
		{"within length", 3, 3, 3},
		{"longer than series", 50, 4, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chart := Build(rs, Options{TailLength: tt.tail})
			require.Len(t, chart.Instruments, 1)

			view := chart.Instruments[0]
			assert.Len(t, view.Tail, tt.wantLen)
			assert.Equal(t, tt.wantTail, chart.TailLength)

			// the current position is always the latest joint point
			assert.Equal(t, 102.0, view.Current.Ratio)
			assert.Equal(t, 103.0, view.Current.Momentum)
			assert.Equal(t, contracts.QuadrantLeading, view.Quadrant)
		})
	}
}

func TestBuild_TailStaysJointWhenRatioIsLonger(t *testing.T) {
	r := &contracts.InstrumentResult{Symbol: "A"}
	for i := 0; i < 15; i++ {
		r.Ratio = append(r.Ratio, contracts.Point{Date: baseDay.AddDate(0, 0, i), Value: 90 + float64(i)})
	}
	for i := 10; i < 15; i++ {
		r.Momentum = append(r.Momentum, contracts.Point{Date: baseDay.AddDate(0, 0, i), Value: 100})
	}

	chart := Build(resultSet(r), Options{TailLength: 8})
	view := chart.Instruments[0]

	require.Len(t, view.Tail, 5)
	assert.Equal(t, 100.0, view.Tail[0].Ratio)
	assert.True(t, view.Tail[0].Date.Equal(baseDay.AddDate(0, 0, 10)))
}

func TestBuild_QuadrantPerTailPoint(t *testing.T) {
	rs := resultSet(result("ROT", []float64{99, 101, 101, 99}, []float64{101, 101, 99, 99}))

	chart := Build(rs, Options{TailLength: 4})
	tail := chart.Instruments[0].Tail

	assert.Equal(t, contracts.QuadrantImproving, tail[0].Quadrant)
	assert.Equal(t, contracts.QuadrantLeading, tail[1].Quadrant)
	assert.Equal(t, contracts.QuadrantWeakening, tail[2].Quadrant)
	assert.Equal(t, contracts.QuadrantLagging, tail[3].Quadrant)
}

func TestBuild_Regions(t *testing.T) {
	chart := Build(resultSet(result("A", []float64{100}, []float64{100})), Options{TailLength: 1})

	require.Len(t, chart.Regions, 4)
	leading := chart.Regions[0]
	assert.Equal(t, contracts.QuadrantLeading, leading.Quadrant)
	assert.Equal(t, Region{Quadrant: contracts.QuadrantLeading, X0: 100, Y0: 100, X1: 103, Y1: 103}, leading)

	lagging := chart.Regions[2]
	assert.Equal(t, Region{Quadrant: contracts.QuadrantLagging, X0: 97, Y0: 97, X1: 100, Y1: 100}, lagging)
}

func TestBuild_SummaryDefaultsToRatioDescending(t *testing.T) {
	rs := resultSet(
		result("MID", []float64{100.456}, []float64{99.001}),
		result("LOW", []float64{97.3}, []float64{102.2}),
		result("TOP", []float64{104.999}, []float64{101.5}),
	)

	chart := Build(rs, Options{TailLength: 3})

	require.Len(t, chart.Summary, 3)
	assert.Equal(t, "TOP", chart.Summary[0].Symbol)
	assert.Equal(t, "MID", chart.Summary[1].Symbol)
	assert.Equal(t, "LOW", chart.Summary[2].Symbol)

	assert.Equal(t, 105.0, chart.Summary[0].RSRatio)
	assert.Equal(t, 100.46, chart.Summary[1].RSRatio)
	assert.Equal(t, 99.0, chart.Summary[1].RSMomentum)
	assert.Equal(t, contracts.QuadrantWeakening, chart.Summary[1].Quadrant)

	// instrument order in the chart keeps ResultSet order
	assert.Equal(t, "MID", chart.Instruments[0].Symbol)
}

func TestBuild_Legend(t *testing.T) {
	rs := resultSet(
		result("A", []float64{101}, []float64{101}),
		result("B", []float64{102}, []float64{103}),
		result("C", []float64{98}, []float64{97}),
	)

	chart := Build(rs, Options{TailLength: 1})

	require.Len(t, chart.Legend, 4)
	counts := map[contracts.Quadrant]int{}
	for _, entry := range chart.Legend {
		counts[entry.Quadrant] = entry.Count
		assert.NotEmpty(t, entry.Description)
	}
	assert.Equal(t, 2, counts[contracts.QuadrantLeading])
	assert.Equal(t, 1, counts[contracts.QuadrantLagging])
	assert.Equal(t, 0, counts[contracts.QuadrantImproving])
}

func TestBuild_EmptyResultSet(t *testing.T) {
	rs := resultSet()
	rs.Exclude("GONE.NS", contracts.ErrEmptySeries)

	chart := Build(rs, Options{TailLength: 10})

	assert.Empty(t, chart.Instruments)
	assert.Empty(t, chart.Summary)
	assert.Equal(t, Range{Min: 97, Max: 103}, chart.Bounds.Ratio)
	assert.Contains(t, chart.Excluded, "GONE.NS")
}

func TestMarkdown(t *testing.T) {
	rs := resultSet(result("INFY.NS", []float64{101.234}, []float64{99.5}))
	rs.Exclude("LTIM.NS", contracts.ErrInsufficientData)

	md := Markdown(Build(rs, Options{TailLength: 15}))

	assert.True(t, strings.Contains(md, "| INFY.NS | 101.23 | 99.50 | Weakening |"), md)
	assert.Contains(t, md, "vs ^NSEI")
	assert.Contains(t, md, "- LTIM.NS: insufficient_data")
	for _, q := range contracts.Quadrants {
		assert.Contains(t, md, string(q))
	}
}
