package contracts

import (
	"encoding/json"
	"time"
)

// Rotation constants
// ⭐ SSOT: 100 중심값과 윈도우 길이는 여기서만 정의
const (
	RatioCenter            = 100.0 // ratio == 100: RS equals its own trailing mean
	RatioWindow            = 40    // trailing mean length for RS-Ratio
	MomentumLag            = 10    // lag for RS-Momentum
	MinAlignedObservations = 50    // RatioWindow + MomentumLag
	FetchBufferDays        = 80    // calendar days added to the lookback when fetching
)

// AlignedPair holds an instrument and the benchmark reduced to their common dates
type AlignedPair struct {
	Symbol    string
	Dates     []time.Time
	Prices    []float64
	Benchmark []float64
}

// Len returns the number of jointly observed dates
func (p *AlignedPair) Len() int {
	return len(p.Dates)
}

// Point is one dated value of a derived series
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is a chronological derived series (RS, RS-Ratio or RS-Momentum)
type Series []Point

// Len returns the number of points
func (s Series) Len() int {
	return len(s)
}

// Last returns the most recent point
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// Tail returns the last n points (all of them when n exceeds the length)
func (s Series) Tail(n int) Series {
	if n <= 0 {
		return Series{}
	}
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Values returns the bare values
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// RotationPoint is a joint (RS-Ratio, RS-Momentum) observation
type RotationPoint struct {
	Date     time.Time `json:"date"`
	Ratio    float64   `json:"rs_ratio"`
	Momentum float64   `json:"rs_momentum"`
}

// InstrumentResult holds the rotation series of one instrument
// ⭐ SSOT: S1 → S2 종목별 RRG 결과
type InstrumentResult struct {
	Symbol   string `json:"symbol"`
	Ratio    Series `json:"rs_ratio"`
	Momentum Series `json:"rs_momentum"`
}

// Joint returns the points where both series are defined.
// Momentum's domain is a suffix of Ratio's, so the last len(Momentum) ratio points pair up.
func (r *InstrumentResult) Joint() []RotationPoint {
	n := len(r.Momentum)
	if n > len(r.Ratio) {
		n = len(r.Ratio)
	}
	ratio := r.Ratio.Tail(n)
	momentum := r.Momentum.Tail(n)

	points := make([]RotationPoint, n)
	for i := 0; i < n; i++ {
		points[i] = RotationPoint{
			Date:     momentum[i].Date,
			Ratio:    ratio[i].Value,
			Momentum: momentum[i].Value,
		}
	}
	return points
}

// Latest returns the most recent joint observation
func (r *InstrumentResult) Latest() (RotationPoint, bool) {
	ratio, ok := r.Ratio.Last()
	if !ok {
		return RotationPoint{}, false
	}
	momentum, ok := r.Momentum.Last()
	if !ok {
		return RotationPoint{}, false
	}
	return RotationPoint{Date: momentum.Date, Ratio: ratio.Value, Momentum: momentum.Value}, true
}

// ExclusionReason explains why an instrument is absent from a ResultSet
type ExclusionReason string

const (
	ExclusionEmptySeries      ExclusionReason = "empty_series"
	ExclusionInsufficientData ExclusionReason = "insufficient_data"
	ExclusionProviderError    ExclusionReason = "provider_error"
)

// Exclusion is the diagnostic recorded for an omitted instrument
type Exclusion struct {
	Reason ExclusionReason `json:"reason"`
	Detail string          `json:"detail,omitempty"`
}

// ResultSet maps instrument symbol to its result, keeping input order
// ⭐ SSOT: S1 → S2 RRG 결과 집합 (삽입 순서 보존)
type ResultSet struct {
	RunID     string               `json:"run_id"`
	Benchmark string               `json:"benchmark"`
	Window    AnalysisWindow       `json:"window"`
	Excluded  map[string]Exclusion `json:"excluded"` // 제외 종목: 사유

	order   []string
	results map[string]*InstrumentResult
}

// NewResultSet creates an empty result set
func NewResultSet(runID, benchmark string, window AnalysisWindow) *ResultSet {
	return &ResultSet{
		RunID:     runID,
		Benchmark: benchmark,
		Window:    window,
		Excluded:  make(map[string]Exclusion),
		results:   make(map[string]*InstrumentResult),
	}
}

// Add appends a result.
// The first occurrence of a symbol wins: a symbol already added or excluded is ignored.
func (rs *ResultSet) Add(result *InstrumentResult) bool {
	if rs.seen(result.Symbol) {
		return false
	}
	rs.order = append(rs.order, result.Symbol)
	rs.results[result.Symbol] = result
	return true
}

// Exclude records why a symbol has no result; the first recorded outcome wins
func (rs *ResultSet) Exclude(symbol string, err error) {
	if rs.seen(symbol) {
		return
	}
	exclusion := Exclusion{Reason: ReasonFor(err)}
	if err != nil {
		exclusion.Detail = err.Error()
	}
	rs.Excluded[symbol] = exclusion
}

func (rs *ResultSet) seen(symbol string) bool {
	if _, exists := rs.results[symbol]; exists {
		return true
	}
	_, excluded := rs.Excluded[symbol]
	return excluded
}

// Get returns the result for a symbol
func (rs *ResultSet) Get(symbol string) (*InstrumentResult, bool) {
	result, exists := rs.results[symbol]
	return result, exists
}

// IsExcluded checks if a symbol was excluded with reason
func (rs *ResultSet) IsExcluded(symbol string) (bool, Exclusion) {
	exclusion, exists := rs.Excluded[symbol]
	return exists, exclusion
}

// Symbols returns the symbols in insertion order
func (rs *ResultSet) Symbols() []string {
	symbols := make([]string, len(rs.order))
	copy(symbols, rs.order)
	return symbols
}

// Results returns the results in insertion order
func (rs *ResultSet) Results() []*InstrumentResult {
	results := make([]*InstrumentResult, 0, len(rs.order))
	for _, symbol := range rs.order {
		results = append(results, rs.results[symbol])
	}
	return results
}

// Len returns the number of instruments with results
func (rs *ResultSet) Len() int {
	return len(rs.order)
}

// MarshalJSON encodes results as an ordered array
func (rs *ResultSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RunID     string               `json:"run_id"`
		Benchmark string               `json:"benchmark"`
		Window    AnalysisWindow       `json:"window"`
		Results   []*InstrumentResult  `json:"results"`
		Excluded  map[string]Exclusion `json:"excluded"`
	}{
		RunID:     rs.RunID,
		Benchmark: rs.Benchmark,
		Window:    rs.Window,
		Results:   rs.Results(),
		Excluded:  rs.Excluded,
	})
}
