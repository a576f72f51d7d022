package s1_rotation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/pkg/logger"
)

// Request is the input of one orchestrated run
type Request struct {
	RunID       string
	Window      contracts.AnalysisWindow
	Benchmark   contracts.PriceSeries
	Instruments []contracts.PriceSeries
}

// Orchestrator runs the transformer for every instrument against one benchmark
// ⭐ SSOT: 종목별 RRG 계산 오케스트레이션은 여기서만
type Orchestrator struct {
	concurrency int
	logger      *logger.Logger
}

// NewOrchestrator creates a new orchestrator; concurrency bounds parallel transforms
func NewOrchestrator(concurrency int, log *logger.Logger) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Orchestrator{
		concurrency: concurrency,
		logger:      log.WithField("stage", contracts.StageRotation),
	}
}

// outcome is one instrument's slot, written by exactly one goroutine
type outcome struct {
	result *contracts.InstrumentResult
	err    error
}

// Compute builds the ResultSet.
// A benchmark without enough valid observations fails the run before any instrument work.
// Instrument failures are recorded in ResultSet.Excluded and never abort siblings.
func (o *Orchestrator) Compute(ctx context.Context, req Request) (*contracts.ResultSet, error) {
	if err := CheckBenchmark(req.Benchmark); err != nil {
		return nil, err
	}
	bench := indexByDay(req.Benchmark.Points)
	log := o.logger.WithRun(req.RunID)

	log.WithFields(map[string]interface{}{
		"benchmark":   req.Benchmark.Symbol,
		"instruments": len(req.Instruments),
	}).Debug("Computing rotation metrics")

	// 종목별 독립 계산 → 입력 순서대로 슬롯에 기록
	slots := make([]outcome, len(req.Instruments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, series := range req.Instruments {
		i, series := i, series
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := computeInstrument(series, bench)
			slots[i] = outcome{result: result, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rs := contracts.NewResultSet(req.RunID, req.Benchmark.Symbol, req.Window)
	for i, slot := range slots {
		symbol := req.Instruments[i].Symbol
		if slot.err != nil {
			rs.Exclude(symbol, slot.err)
			log.WithSymbol(symbol).WithFields(map[string]interface{}{
				"reason": contracts.ReasonFor(slot.err),
				"error":  slot.err.Error(),
			}).Warn("Instrument excluded")
			continue
		}
		rs.Add(slot.result)
	}

	log.WithFields(map[string]interface{}{
		"total":    len(req.Instruments),
		"success":  rs.Len(),
		"excluded": len(rs.Excluded),
	}).Info("Rotation metrics computed")

	return rs, nil
}

func computeInstrument(series contracts.PriceSeries, bench dayIndex) (*contracts.InstrumentResult, error) {
	pair, err := alignIndexed(series, bench)
	if err != nil {
		return nil, err
	}
	return Transform(pair)
}
