package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/internal/s0_data"
	"github.com/wonny/rrg/internal/s2_view"
	"github.com/wonny/rrg/internal/watchlist"
	"github.com/wonny/rrg/pkg/config"
	"github.com/wonny/rrg/pkg/logger"
)

// Runner executes one fetch + compute run; *s0_data.Pipeline implements it
type Runner interface {
	Run(ctx context.Context, params s0_data.Params) (*contracts.ResultSet, error)
}

// Request is a user-facing analysis request; zero fields take configured defaults
type Request struct {
	Watchlist    string
	Benchmark    string
	Symbols      []string
	Source       string
	LookbackDays int
	TailLength   int
	SortBy       string
	Ascending    bool
	End          time.Time
}

// resolved is a request after defaults and watchlist expansion
type resolved struct {
	Source       string `validate:"required"`
	Benchmark    string
	Symbols      []string
	LookbackDays int
	TailLength   int `validate:"min=1,max=50"`
	SortBy       s2_view.SortKey
	Ascending    bool
	End          time.Time
}

// Service resolves requests, runs the pipeline of the chosen source and builds the chart
// ⭐ SSOT: CLI / API / 스케줄러 공통 분석 진입점
type Service struct {
	runners       map[string]Runner
	defaultSource string
	defaults      config.RRGConfig
	watchlists    *watchlist.Registry
	validate      *validator.Validate
	logger        *logger.Logger
}

// NewService creates a service; runners maps a source name to its pipeline
func NewService(runners map[string]Runner, defaults config.RRGConfig, watchlists *watchlist.Registry, log *logger.Logger) *Service {
	return &Service{
		runners:       runners,
		defaultSource: defaults.Source,
		defaults:      defaults,
		watchlists:    watchlists,
		validate:      validator.New(),
		logger:        log,
	}
}

// Watchlists returns the loaded registry (may be nil)
func (s *Service) Watchlists() *watchlist.Registry {
	return s.watchlists
}

// Analyze runs one analysis and returns the plot-ready chart
func (s *Service) Analyze(ctx context.Context, req Request) (*s2_view.Chart, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	runner, ok := s.runners[r.Source]
	if !ok {
		return nil, fmt.Errorf("%w: price source %q is not configured", contracts.ErrInvalidParams, r.Source)
	}

	rs, err := runner.Run(ctx, s0_data.Params{
		Benchmark:    r.Benchmark,
		Symbols:      r.Symbols,
		LookbackDays: r.LookbackDays,
		End:          r.End,
	})
	if err != nil {
		return nil, err
	}

	chart := s2_view.Build(rs, s2_view.Options{
		TailLength: r.TailLength,
		SortBy:     r.SortBy,
		Ascending:  r.Ascending,
	})

	s.logger.WithFields(map[string]interface{}{
		"run_id":    chart.RunID,
		"source":    r.Source,
		"benchmark": chart.Benchmark,
		"plotted":   len(chart.Instruments),
		"excluded":  len(chart.Excluded),
	}).Info("RRG analysis completed")

	return chart, nil
}

func (s *Service) resolve(req Request) (resolved, error) {
	r := resolved{
		Source:       strings.ToLower(strings.TrimSpace(req.Source)),
		Benchmark:    strings.TrimSpace(req.Benchmark),
		Symbols:      req.Symbols,
		LookbackDays: req.LookbackDays,
		TailLength:   req.TailLength,
		Ascending:    req.Ascending,
		End:          req.End,
	}

	if req.Watchlist != "" {
		if s.watchlists == nil {
			return r, fmt.Errorf("%w: no watchlists loaded", contracts.ErrInvalidParams)
		}
		w, err := s.watchlists.Get(req.Watchlist)
		if err != nil {
			return r, fmt.Errorf("%w: %w", contracts.ErrInvalidParams, err)
		}
		if r.Benchmark == "" {
			r.Benchmark = w.Benchmark
		}
		if len(r.Symbols) == 0 {
			r.Symbols = w.Symbols
		}
		if r.Source == "" {
			r.Source = w.Source
		}
	}

	if r.Source == "" {
		r.Source = s.defaultSource
	}
	if r.Benchmark == "" {
		r.Benchmark = s.defaults.Benchmark
	}
	if r.LookbackDays == 0 {
		r.LookbackDays = s.defaults.LookbackDays
	}
	if r.TailLength == 0 {
		r.TailLength = s.defaults.TailLength
	}

	sortBy, err := s2_view.ParseSortKey(req.SortBy)
	if err != nil {
		return r, fmt.Errorf("%w: %w", contracts.ErrInvalidParams, err)
	}
	r.SortBy = sortBy

	if err := s.validate.Struct(r); err != nil {
		return r, fmt.Errorf("%w: %w", contracts.ErrInvalidParams, err)
	}

	return r, nil
}
