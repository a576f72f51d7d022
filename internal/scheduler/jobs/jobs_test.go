package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rrg/internal/analysis"
	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/internal/s0_data/collector"
	"github.com/wonny/rrg/internal/s2_view"
	"github.com/wonny/rrg/internal/watchlist"
	"github.com/wonny/rrg/pkg/logger"
)

type scriptedAnalyzer struct {
	charts   []*s2_view.Chart
	err      error
	requests []analysis.Request
}

func (a *scriptedAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*s2_view.Chart, error) {
	a.requests = append(a.requests, req)
	if a.err != nil {
		return nil, a.err
	}
	chart := a.charts[0]
	a.charts = a.charts[1:]
	return chart, nil
}

func chartOf(quadrants ...string) *s2_view.Chart {
	chart := &s2_view.Chart{RunID: "run"}
	for i := 0; i+1 < len(quadrants); i += 2 {
		chart.Instruments = append(chart.Instruments, s2_view.InstrumentView{
			Symbol:   quadrants[i],
			Quadrant: contracts.Quadrant(quadrants[i+1]),
		})
	}
	return chart
}

func TestRotationSnapshotJob_Transitions(t *testing.T) {
	analyzer := &scriptedAnalyzer{charts: []*s2_view.Chart{
		chartOf("INFY.NS", "Leading", "TCS.NS", "Improving"),
		chartOf("INFY.NS", "Weakening", "TCS.NS", "Improving", "WIPRO.NS", "Lagging"),
	}}
	job := NewRotationSnapshotJob(analyzer, "it", "0 30 16 * * 1-5", logger.Nop())

	assert.Equal(t, "rrg_snapshot:it", job.Name())
	assert.Equal(t, "0 30 16 * * 1-5", job.Schedule())
	assert.Nil(t, job.Last())

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, job.Transitions())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []Transition{
		{Symbol: "INFY.NS", From: contracts.QuadrantLeading, To: contracts.QuadrantWeakening},
	}, job.Transitions())
	assert.Len(t, job.Last().Instruments, 3)

	require.Len(t, analyzer.requests, 2)
	assert.Equal(t, analysis.Request{Watchlist: "it"}, analyzer.requests[0])
}

func TestRotationSnapshotJob_ErrorKeepsPrevious(t *testing.T) {
	analyzer := &scriptedAnalyzer{charts: []*s2_view.Chart{chartOf("INFY.NS", "Leading")}}
	job := NewRotationSnapshotJob(analyzer, "it", "@daily", logger.Nop())
	require.NoError(t, job.Run(context.Background()))

	analyzer.err = contracts.ErrBenchmarkUnavailable
	err := job.Run(context.Background())
	assert.ErrorIs(t, err, contracts.ErrBenchmarkUnavailable)
	assert.Equal(t, "INFY.NS", job.Last().Instruments[0].Symbol)
}

type fakeSource struct {
	errs map[string]error
}

func (f *fakeSource) Name() string { return "yahoo" }

func (f *fakeSource) Fetch(ctx context.Context, symbol string, start, end time.Time) (contracts.PriceSeries, error) {
	if err := f.errs[symbol]; err != nil {
		return contracts.PriceSeries{}, err
	}
	return contracts.PriceSeries{
		Symbol: symbol,
		Points: []contracts.PricePoint{{Date: start, Close: 1}, {Date: end, Close: 2}},
	}, nil
}

type memoryStore struct {
	mu      sync.Mutex
	symbols []string
}

func (m *memoryStore) SaveSeries(ctx context.Context, source string, series contracts.PriceSeries) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols = append(m.symbols, series.Symbol)
	return len(series.Points), nil
}

func TestPriceCollectionJob_Run(t *testing.T) {
	w := watchlist.Watchlist{Name: "it", Benchmark: "^CNXIT", Symbols: []string{"INFY.NS", "TCS.NS"}}
	source := &fakeSource{errs: map[string]error{"TCS.NS": errors.New("timeout")}}
	store := &memoryStore{}

	job := NewPriceCollectionJob(collector.NewCollector(source, store, logger.Nop()), w, 150, 2, "@daily", logger.Nop())
	job.now = func() time.Time { return time.Date(2024, 6, 28, 18, 0, 0, 0, time.UTC) }

	assert.Equal(t, "price_collection:it", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.ElementsMatch(t, []string{"^CNXIT", "INFY.NS"}, store.symbols)
}

func TestPriceCollectionJob_AllFailed(t *testing.T) {
	w := watchlist.Watchlist{Name: "it", Benchmark: "^CNXIT", Symbols: []string{"INFY.NS"}}
	boom := errors.New("blocked")
	source := &fakeSource{errs: map[string]error{"^CNXIT": boom, "INFY.NS": boom}}

	job := NewPriceCollectionJob(collector.NewCollector(source, &memoryStore{}, logger.Nop()), w, 150, 1, "@daily", logger.Nop())

	err := job.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "all 2 symbols failed")
}

type fixedCleaner int

func (f fixedCleaner) CleanStale() int { return int(f) }

func TestCacheCleanupJob_Run(t *testing.T) {
	job := NewCacheCleanupJob([]StaleCleaner{fixedCleaner(2), fixedCleaner(0)}, logger.Nop())

	assert.Equal(t, "cache_cleanup", job.Name())
	assert.Equal(t, "0 */5 * * * *", job.Schedule())
	assert.NoError(t, job.Run(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, job.Run(ctx), context.Canceled)
}
