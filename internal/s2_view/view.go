package s2_view

import (
	"math"
	"time"

	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/internal/s1_rotation"
)

// Axis padding around the plotted tails
const (
	boundPadding = 1.0
	minSpan      = 2.0 // the axis always covers [center-2, center+2]
)

// Options are the presentation parameters of one chart
type Options struct {
	TailLength int     // clamped to >= 1
	SortBy     SortKey // default: ratio
	Ascending  bool    // default: descending
}

// TailPoint is a joint observation with its quadrant
type TailPoint struct {
	Date     time.Time          `json:"date"`
	Ratio    float64            `json:"rs_ratio"`
	Momentum float64            `json:"rs_momentum"`
	Quadrant contracts.Quadrant `json:"quadrant"`
}

// InstrumentView is what the rendering layer draws for one instrument
type InstrumentView struct {
	Symbol   string             `json:"symbol"`
	Tail     []TailPoint        `json:"tail"`
	Current  TailPoint          `json:"current"`
	Quadrant contracts.Quadrant `json:"quadrant"`
}

// Range is a closed axis interval
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Bounds are the plot ranges of both axes
type Bounds struct {
	Ratio    Range `json:"rs_ratio"`
	Momentum Range `json:"rs_momentum"`
}

// Region is the rectangle of one quadrant clipped to the bounds
type Region struct {
	Quadrant contracts.Quadrant `json:"quadrant"`
	X0       float64            `json:"x0"`
	Y0       float64            `json:"y0"`
	X1       float64            `json:"x1"`
	Y1       float64            `json:"y1"`
}

// LegendEntry explains a quadrant and counts its current members
type LegendEntry struct {
	Quadrant    contracts.Quadrant `json:"quadrant"`
	Description string             `json:"description"`
	Count       int                `json:"count"`
}

// Chart is the plot-ready view of a ResultSet
// ⭐ SSOT: S2 → 렌더링 계층 전달 구조
type Chart struct {
	RunID       string                         `json:"run_id"`
	Benchmark   string                         `json:"benchmark"`
	Window      contracts.AnalysisWindow       `json:"window"`
	TailLength  int                            `json:"tail_length"`
	Center      float64                        `json:"center"`
	Bounds      Bounds                         `json:"bounds"`
	Regions     []Region                       `json:"regions"`
	Instruments []InstrumentView               `json:"instruments"`
	Summary     []SummaryRow                   `json:"summary"`
	Legend      []LegendEntry                  `json:"legend"`
	Excluded    map[string]contracts.Exclusion `json:"excluded"`
}

// Build derives tails, current positions, bounds and the summary table
func Build(rs *contracts.ResultSet, opts Options) *Chart {
	tailLength := opts.TailLength
	if tailLength < 1 {
		tailLength = 1
	}

	chart := &Chart{
		RunID:       rs.RunID,
		Benchmark:   rs.Benchmark,
		Window:      rs.Window,
		TailLength:  tailLength,
		Center:      contracts.RatioCenter,
		Instruments: make([]InstrumentView, 0, rs.Len()),
		Excluded:    rs.Excluded,
	}

	for _, result := range rs.Results() {
		view, ok := instrumentView(result, tailLength)
		if !ok {
			continue
		}
		chart.Instruments = append(chart.Instruments, view)
	}

	chart.Bounds = bounds(chart.Instruments)
	chart.Regions = regions(chart.Bounds)
	chart.Summary = summarize(chart.Instruments, opts.SortBy, opts.Ascending)
	chart.Legend = legend(chart.Instruments)

	return chart
}

// instrumentView keeps the last n jointly valid points so ratio and momentum stay paired
func instrumentView(result *contracts.InstrumentResult, n int) (InstrumentView, bool) {
	joint := result.Joint()
	if len(joint) == 0 {
		return InstrumentView{}, false
	}
	if n > len(joint) {
		n = len(joint)
	}

	tail := make([]TailPoint, 0, n)
	for _, p := range joint[len(joint)-n:] {
		tail = append(tail, TailPoint{
			Date:     p.Date,
			Ratio:    p.Ratio,
			Momentum: p.Momentum,
			Quadrant: s1_rotation.ClassifyPoint(p),
		})
	}

	current := tail[len(tail)-1]
	return InstrumentView{
		Symbol:   result.Symbol,
		Tail:     tail,
		Current:  current,
		Quadrant: current.Quadrant,
	}, true
}

// bounds spans every tail point, always includes center±2 and pads by 1
func bounds(views []InstrumentView) Bounds {
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)

	for _, v := range views {
		for _, p := range v.Tail {
			xMin = math.Min(xMin, p.Ratio)
			xMax = math.Max(xMax, p.Ratio)
			yMin = math.Min(yMin, p.Momentum)
			yMax = math.Max(yMax, p.Momentum)
		}
	}

	return Bounds{
		Ratio:    padded(xMin, xMax),
		Momentum: padded(yMin, yMax),
	}
}

func padded(lo, hi float64) Range {
	center := contracts.RatioCenter
	return Range{
		Min: math.Min(lo, center-minSpan) - boundPadding,
		Max: math.Max(hi, center+minSpan) + boundPadding,
	}
}

// regions mirrors the four shaded rectangles of the rotation graph
func regions(b Bounds) []Region {
	c := contracts.RatioCenter
	return []Region{
		{Quadrant: contracts.QuadrantLeading, X0: c, Y0: c, X1: b.Ratio.Max, Y1: b.Momentum.Max},
		{Quadrant: contracts.QuadrantWeakening, X0: c, Y0: b.Momentum.Min, X1: b.Ratio.Max, Y1: c},
		{Quadrant: contracts.QuadrantLagging, X0: b.Ratio.Min, Y0: b.Momentum.Min, X1: c, Y1: c},
		{Quadrant: contracts.QuadrantImproving, X0: b.Ratio.Min, Y0: c, X1: c, Y1: b.Momentum.Max},
	}
}

func legend(views []InstrumentView) []LegendEntry {
	counts := make(map[contracts.Quadrant]int, len(contracts.Quadrants))
	for _, v := range views {
		counts[v.Quadrant]++
	}

	entries := make([]LegendEntry, 0, len(contracts.Quadrants))
	for _, q := range contracts.Quadrants {
		entries = append(entries, LegendEntry{
			Quadrant:    q,
			Description: q.Description(),
			Count:       counts[q],
		})
	}
	return entries
}
