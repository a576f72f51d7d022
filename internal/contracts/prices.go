package contracts

import "time"

// PricePoint is a single daily close
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries represents closing prices of one symbol passed from S0 to S1
// ⭐ SSOT: S0 → S1 가격 시계열 전달
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"` // 날짜 오름차순
}

// Len returns the number of observations
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// IsEmpty reports whether the fetch produced no observations
func (s PriceSeries) IsEmpty() bool {
	return len(s.Points) == 0
}

// AnalysisWindow is the calendar range requested from the price source
type AnalysisWindow struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	LookbackDays int       `json:"lookback_days"`
}

// NewAnalysisWindow computes the fetch range for a lookback ending at end.
// FetchBufferDays extra calendar days cover the 40-period mean and 10-period lag warm-up.
func NewAnalysisWindow(end time.Time, lookbackDays int) AnalysisWindow {
	return AnalysisWindow{
		Start:        end.AddDate(0, 0, -(lookbackDays + FetchBufferDays)),
		End:          end,
		LookbackDays: lookbackDays,
	}
}

// TradingDay normalizes a timestamp to its calendar date at UTC midnight
func TradingDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
