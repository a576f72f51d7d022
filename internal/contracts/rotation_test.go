package contracts

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func seriesOf(start int, values ...float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Point{Date: day(start + i), Value: v}
	}
	return s
}

func TestSeries_Tail(t *testing.T) {
	s := seriesOf(0, 1, 2, 3, 4, 5)

	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{-1, 0},
		{2, 2},
		{5, 5},
		{10, 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			if got := s.Tail(tt.n).Len(); got != tt.want {
				t.Errorf("Tail(%d).Len() = %d, want %d", tt.n, got, tt.want)
			}
		})
	}

	if last := s.Tail(2); last[1].Value != 5 || last[0].Value != 4 {
		t.Errorf("Tail(2) = %v, want [4 5]", last.Values())
	}
}

func TestSeries_Last(t *testing.T) {
	if _, ok := (Series{}).Last(); ok {
		t.Error("Expected empty series to have no last point")
	}

	p, ok := seriesOf(0, 1, 2).Last()
	if !ok || p.Value != 2 {
		t.Errorf("Last() = %v, %v; want 2, true", p, ok)
	}
}

func TestInstrumentResult_Joint(t *testing.T) {
	// ratio covers days 0..4, momentum the suffix days 2..4
	result := &InstrumentResult{
		Symbol:   "INFY.NS",
		Ratio:    seriesOf(0, 99, 100, 101, 102, 103),
		Momentum: seriesOf(2, 98, 99, 100),
	}

	joint := result.Joint()
	if len(joint) != 3 {
		t.Fatalf("Joint() len = %d, want 3", len(joint))
	}

	for i, p := range joint {
		if !p.Date.Equal(day(2 + i)) {
			t.Errorf("joint[%d].Date = %v, want %v", i, p.Date, day(2+i))
		}
	}
	if joint[0].Ratio != 101 || joint[0].Momentum != 98 {
		t.Errorf("joint[0] = %+v, want ratio 101 momentum 98", joint[0])
	}

	latest, ok := result.Latest()
	if !ok {
		t.Fatal("Expected latest point")
	}
	if latest.Ratio != 103 || latest.Momentum != 100 || !latest.Date.Equal(day(4)) {
		t.Errorf("Latest() = %+v", latest)
	}
}

func TestInstrumentResult_LatestEmpty(t *testing.T) {
	result := &InstrumentResult{Symbol: "X", Ratio: seriesOf(0, 100)}
	if _, ok := result.Latest(); ok {
		t.Error("Expected no latest point without momentum")
	}
}

func TestResultSet_Order(t *testing.T) {
	rs := NewResultSet("run-1", "^NSEI", AnalysisWindow{})

	for _, symbol := range []string{"TCS.NS", "INFY.NS", "ITC.NS"} {
		if !rs.Add(&InstrumentResult{Symbol: symbol}) {
			t.Fatalf("Add(%s) returned false", symbol)
		}
	}

	// Duplicate keeps first position
	if rs.Add(&InstrumentResult{Symbol: "TCS.NS"}) {
		t.Error("Expected duplicate Add to return false")
	}

	want := []string{"TCS.NS", "INFY.NS", "ITC.NS"}
	got := rs.Symbols()
	if len(got) != len(want) {
		t.Fatalf("Symbols() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Symbols()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if rs.Len() != 3 {
		t.Errorf("Len() = %d, want 3", rs.Len())
	}

	results := rs.Results()
	if results[1].Symbol != "INFY.NS" {
		t.Errorf("Results()[1] = %s, want INFY.NS", results[1].Symbol)
	}
}

func TestResultSet_Exclude(t *testing.T) {
	rs := NewResultSet("run-1", "^NSEI", AnalysisWindow{})
	rs.Add(&InstrumentResult{Symbol: "TCS.NS"})

	rs.Exclude("LTIM.NS", fmt.Errorf("aligned 49 points: %w", ErrInsufficientData))
	rs.Exclude("TCS.NS", ErrEmptySeries) // already present, ignored

	excluded, exclusion := rs.IsExcluded("LTIM.NS")
	if !excluded {
		t.Fatal("Expected LTIM.NS to be excluded")
	}
	if exclusion.Reason != ExclusionInsufficientData {
		t.Errorf("Reason = %s, want %s", exclusion.Reason, ExclusionInsufficientData)
	}

	if excluded, _ := rs.IsExcluded("TCS.NS"); excluded {
		t.Error("Expected TCS.NS not to be excluded")
	}

	if _, ok := rs.Get("LTIM.NS"); ok {
		t.Error("Excluded symbol must be absent from results")
	}
}

func TestResultSet_JSONKeepsOrder(t *testing.T) {
	rs := NewResultSet("run-1", "^NSEI", AnalysisWindow{LookbackDays: 150})
	rs.Add(&InstrumentResult{Symbol: "ZEE.NS"})
	rs.Add(&InstrumentResult{Symbol: "ABB.NS"})

	data, err := json.Marshal(rs)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded struct {
		RunID   string `json:"run_id"`
		Results []struct {
			Symbol string `json:"symbol"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if decoded.RunID != "run-1" {
		t.Errorf("RunID = %s, want run-1", decoded.RunID)
	}
	if len(decoded.Results) != 2 || decoded.Results[0].Symbol != "ZEE.NS" {
		t.Errorf("Results order mismatch: %+v", decoded.Results)
	}
}

func TestResultSet_FirstOccurrenceWins(t *testing.T) {
	rs := NewResultSet("run-1", "^NSEI", AnalysisWindow{})

	rs.Exclude("TCS.NS", ErrEmptySeries)
	if rs.Add(&InstrumentResult{Symbol: "TCS.NS"}) {
		t.Error("Expected Add after Exclude to return false")
	}
	if excluded, exclusion := rs.IsExcluded("TCS.NS"); !excluded || exclusion.Reason != ExclusionEmptySeries {
		t.Errorf("IsExcluded(TCS.NS) = %v, %+v, want empty series exclusion", excluded, exclusion)
	}
	if rs.Len() != 0 {
		t.Errorf("Len() = %d, want 0", rs.Len())
	}

	rs.Exclude("TCS.NS", fmt.Errorf("aligned 49 points: %w", ErrInsufficientData))
	if _, exclusion := rs.IsExcluded("TCS.NS"); exclusion.Reason != ExclusionEmptySeries {
		t.Errorf("Reason = %s, want %s", exclusion.Reason, ExclusionEmptySeries)
	}
}
