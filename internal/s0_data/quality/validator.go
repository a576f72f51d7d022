package quality

import (
	"sort"
	"time"

	"github.com/wonny/rrg/internal/contracts"
)

// Config holds quality gate thresholds
type Config struct {
	MinCoverage float64 `yaml:"min_coverage"` // 0.9: instrument must trade on 90% of benchmark days
}

// DefaultConfig returns the thresholds used by the pipeline
func DefaultConfig() Config {
	return Config{MinCoverage: 0.9}
}

// Report summarizes how well each fetched instrument covers the benchmark calendar
type Report struct {
	BenchmarkDays int                `json:"benchmark_days"`
	Coverage      map[string]float64 `json:"coverage"`
	LowCoverage   []string           `json:"low_coverage"` // 정렬됨
	QualityScore  float64            `json:"quality_score"`
}

// QualityGate checks fetched series before they reach S1.
// It only reports; exclusion stays with the aligner's 50-observation rule.
type QualityGate struct {
	config Config
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config) *QualityGate {
	return &QualityGate{config: config}
}

// Check computes per-instrument coverage against the benchmark's trading days
// ⭐ SSOT: S0 → S1 품질 검증
func (g *QualityGate) Check(benchmark contracts.PriceSeries, instruments []contracts.PriceSeries) *Report {
	benchDays := tradingDays(benchmark)
	report := &Report{
		BenchmarkDays: len(benchDays),
		Coverage:      make(map[string]float64, len(instruments)),
	}
	if len(benchDays) == 0 || len(instruments) == 0 {
		return report
	}

	total := 0.0
	for _, series := range instruments {
		matched := 0
		for day := range tradingDays(series) {
			if _, ok := benchDays[day]; ok {
				matched++
			}
		}

		coverage := float64(matched) / float64(len(benchDays))
		report.Coverage[series.Symbol] = coverage
		total += coverage

		if coverage < g.config.MinCoverage {
			report.LowCoverage = append(report.LowCoverage, series.Symbol)
		}
	}

	sort.Strings(report.LowCoverage)
	report.QualityScore = total / float64(len(instruments))
	return report
}

// tradingDays collects days with a positive close
func tradingDays(series contracts.PriceSeries) map[time.Time]struct{} {
	days := make(map[time.Time]struct{}, series.Len())
	for _, p := range series.Points {
		if p.Close > 0 {
			days[contracts.TradingDay(p.Date)] = struct{}{}
		}
	}
	return days
}
