package s0_data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/internal/s0_data/quality"
	"github.com/wonny/rrg/internal/s1_rotation"
	"github.com/wonny/rrg/pkg/logger"
)

// Params are the inputs of one analysis run
type Params struct {
	Benchmark    string    `json:"benchmark" validate:"required"`
	Symbols      []string  `json:"symbols" validate:"required,min=1,dive,required"`
	LookbackDays int       `json:"lookback_days" validate:"min=60,max=500"`
	End          time.Time `json:"end"` // zero: today
}

// Pipeline fetches prices and runs the orchestrator
// ⭐ SSOT: 가격 조회 → RRG 계산 파이프라인은 여기서만
type Pipeline struct {
	fetcher      contracts.PriceFetcher
	orchestrator *s1_rotation.Orchestrator
	gate         *quality.QualityGate
	validate     *validator.Validate
	concurrency  int
	logger       *logger.Logger
	now          func() time.Time
}

// NewPipeline creates a pipeline; concurrency bounds parallel fetches and transforms
func NewPipeline(fetcher contracts.PriceFetcher, concurrency int, log *logger.Logger) *Pipeline {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pipeline{
		fetcher:      fetcher,
		orchestrator: s1_rotation.NewOrchestrator(concurrency, log),
		gate:         quality.NewQualityGate(quality.DefaultConfig()),
		validate:     validator.New(),
		concurrency:  concurrency,
		logger:       log.WithField("stage", contracts.StageData),
		now:          time.Now,
	}
}

// Source returns the name of the underlying price source
func (p *Pipeline) Source() string {
	return p.fetcher.Name()
}

// fetched is one instrument's fetch slot
type fetched struct {
	series contracts.PriceSeries
	err    error
}

// Run executes one analysis.
// The benchmark is fetched and checked first; if it is unavailable or too short
// the run fails before any instrument is requested. Instrument fetch failures land in ResultSet.Excluded.
func (p *Pipeline) Run(ctx context.Context, params Params) (*contracts.ResultSet, error) {
	params = normalize(params)
	if err := p.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrInvalidParams, err)
	}

	end := params.End
	if end.IsZero() {
		end = p.now()
	}
	window := contracts.NewAnalysisWindow(contracts.TradingDay(end), params.LookbackDays)
	runID := uuid.NewString()

	log := p.logger.WithRun(runID).WithFields(map[string]interface{}{
		"benchmark": params.Benchmark,
		"source":    p.fetcher.Name(),
	})
	log.WithFields(map[string]interface{}{
		"symbols": len(params.Symbols),
		"start":   window.Start.Format("2006-01-02"),
		"end":     window.End.Format("2006-01-02"),
	}).Info("Starting RRG run")

	// 1. 벤치마크 먼저 (실패 시 즉시 중단)
	benchmark, err := p.fetcher.Fetch(ctx, params.Benchmark, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", contracts.ErrBenchmarkUnavailable, params.Benchmark, err)
	}
	benchmark.Symbol = params.Benchmark
	if err := s1_rotation.CheckBenchmark(benchmark); err != nil {
		return nil, err
	}

	// 2. 종목 병렬 조회 → 입력 순서대로 슬롯에 기록
	slots := make([]fetched, len(params.Symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, symbol := range params.Symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			series, err := p.fetcher.Fetch(gctx, symbol, window.Start, window.End)
			series.Symbol = symbol
			slots[i] = fetched{series: series, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	instruments := make([]contracts.PriceSeries, 0, len(slots))
	for _, slot := range slots {
		if slot.err == nil {
			instruments = append(instruments, slot.series)
		}
	}

	report := p.gate.Check(benchmark, instruments)
	if len(report.LowCoverage) > 0 {
		log.WithFields(map[string]interface{}{
			"low_coverage":  strings.Join(report.LowCoverage, ","),
			"quality_score": report.QualityScore,
		}).Info("Some instruments miss benchmark trading days")
	}

	// 3. RRG 계산
	rs, err := p.orchestrator.Compute(ctx, s1_rotation.Request{
		RunID:       runID,
		Window:      window,
		Benchmark:   benchmark,
		Instruments: instruments,
	})
	if err != nil {
		return nil, err
	}

	// 4. 조회 실패 종목 기록
	for i, slot := range slots {
		if slot.err == nil {
			continue
		}
		symbol := params.Symbols[i]
		rs.Exclude(symbol, slot.err)
		log.WithSymbol(symbol).WithFields(map[string]interface{}{
			"reason": contracts.ReasonFor(slot.err),
			"error":  slot.err.Error(),
		}).Warn("Instrument fetch failed")
	}

	return rs, nil
}

// normalize trims symbols and drops duplicates, keeping the first occurrence
func normalize(params Params) Params {
	params.Benchmark = strings.TrimSpace(params.Benchmark)

	seen := make(map[string]bool, len(params.Symbols))
	symbols := make([]string, 0, len(params.Symbols))
	for _, s := range params.Symbols {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}
	params.Symbols = symbols
	return params
}
