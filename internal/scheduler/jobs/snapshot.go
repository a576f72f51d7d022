package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/rrg/internal/analysis"
	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/internal/s2_view"
	"github.com/wonny/rrg/pkg/logger"
)

// Analyzer runs one RRG analysis; *analysis.Service implements it
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*s2_view.Chart, error)
}

// Transition is a change of quadrant between two consecutive snapshots
type Transition struct {
	Symbol string             `json:"symbol"`
	From   contracts.Quadrant `json:"from"`
	To     contracts.Quadrant `json:"to"`
}

// RotationSnapshotJob recomputes a watchlist's RRG and reports quadrant changes
// ⭐ SSOT: 주기적 로테이션 스냅샷은 이 Job에서만
type RotationSnapshotJob struct {
	analyzer  Analyzer
	watchlist string
	schedule  string
	logger    *logger.Logger

	mu          sync.Mutex
	previous    map[string]contracts.Quadrant
	last        *s2_view.Chart
	transitions []Transition
}

// NewRotationSnapshotJob creates a snapshot job for one watchlist
func NewRotationSnapshotJob(analyzer Analyzer, watchlist, schedule string, log *logger.Logger) *RotationSnapshotJob {
	return &RotationSnapshotJob{
		analyzer:  analyzer,
		watchlist: watchlist,
		schedule:  schedule,
		logger:    log.WithField("watchlist", watchlist),
	}
}

// Name returns the job name
func (j *RotationSnapshotJob) Name() string {
	return "rrg_snapshot:" + j.watchlist
}

// Schedule returns the cron schedule
func (j *RotationSnapshotJob) Schedule() string {
	return j.schedule
}

// Run computes a fresh chart and diffs its quadrants against the previous run
func (j *RotationSnapshotJob) Run(ctx context.Context) error {
	chart, err := j.analyzer.Analyze(ctx, analysis.Request{Watchlist: j.watchlist})
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", j.watchlist, err)
	}

	current := make(map[string]contracts.Quadrant, len(chart.Instruments))
	for _, v := range chart.Instruments {
		current[v.Symbol] = v.Quadrant
	}

	j.mu.Lock()
	transitions := diffQuadrants(chart.Instruments, j.previous)
	first := j.previous == nil
	j.previous = current
	j.last = chart
	j.transitions = transitions
	j.mu.Unlock()

	for _, t := range transitions {
		j.logger.WithFields(map[string]interface{}{
			"symbol": t.Symbol,
			"from":   t.From,
			"to":     t.To,
		}).Info("Quadrant transition")
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":      chart.RunID,
		"plotted":     len(chart.Instruments),
		"excluded":    len(chart.Excluded),
		"transitions": len(transitions),
		"first":       first,
	}).Info("RRG snapshot completed")

	return nil
}

// Last returns the most recent chart, nil before the first successful run
func (j *RotationSnapshotJob) Last() *s2_view.Chart {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}

// Transitions returns the quadrant changes found by the most recent run
func (j *RotationSnapshotJob) Transitions() []Transition {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Transition, len(j.transitions))
	copy(out, j.transitions)
	return out
}

// diffQuadrants lists instruments whose quadrant changed, in chart order.
// Instruments absent from the previous snapshot are not transitions.
func diffQuadrants(views []s2_view.InstrumentView, previous map[string]contracts.Quadrant) []Transition {
	var transitions []Transition
	for _, v := range views {
		before, ok := previous[v.Symbol]
		if !ok || before == v.Quadrant {
			continue
		}
		transitions = append(transitions, Transition{Symbol: v.Symbol, From: before, To: v.Quadrant})
	}
	return transitions
}
