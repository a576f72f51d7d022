package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/rrg/internal/analysis"
	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/internal/s2_view"
	"github.com/wonny/rrg/internal/watchlist"
	"github.com/wonny/rrg/pkg/logger"
)

// Analyzer runs one RRG analysis; *analysis.Service implements it
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*s2_view.Chart, error)
	Watchlists() *watchlist.Registry
}

// RRGHandler handles RRG API endpoints
// ⭐ SSOT: RRG API 핸들러는 이 구조체에서만
type RRGHandler struct {
	analyzer Analyzer
	logger   *logger.Logger
}

// NewRRGHandler creates a new RRG handler
func NewRRGHandler(analyzer Analyzer, log *logger.Logger) *RRGHandler {
	return &RRGHandler{
		analyzer: analyzer,
		logger:   log,
	}
}

// GetRRG computes a chart for an ad-hoc basket
// GET /api/rrg?benchmark=^NSEI&symbols=INFY.NS,TCS.NS&lookback=150&tail=15&sort=ratio&asc=false
func (h *RRGHandler) GetRRG(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Watchlist == "" && len(req.Symbols) == 0 {
		respondError(w, http.StatusBadRequest, "symbols or watchlist is required")
		return
	}

	h.analyze(w, r, req)
}

// GetWatchlistRRG computes a chart for a configured watchlist
// GET /api/rrg/watchlists/{name}
func (h *RRGHandler) GetWatchlistRRG(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Watchlist = mux.Vars(r)["name"]

	h.analyze(w, r, req)
}

// ListWatchlists returns the configured watchlists
// GET /api/watchlists
func (h *RRGHandler) ListWatchlists(w http.ResponseWriter, r *http.Request) {
	registry := h.analyzer.Watchlists()
	if registry == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"watchlists": []watchlist.Watchlist{},
			"count":      0,
		})
		return
	}

	all := registry.All()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"watchlists": all,
		"count":      len(all),
	})
}

func (h *RRGHandler) analyze(w http.ResponseWriter, r *http.Request, req analysis.Request) {
	chart, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		h.logger.WithFields(map[string]interface{}{
			"status":    status,
			"watchlist": req.Watchlist,
			"benchmark": req.Benchmark,
		}).WithError(err).Warn("RRG analysis failed")
		respondError(w, status, err.Error())
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "markdown") {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, s2_view.Markdown(chart))
		return
	}

	respondJSON(w, http.StatusOK, chart)
}

// parseRequest reads analysis parameters from the query string; absent values keep defaults
func parseRequest(q url.Values) (analysis.Request, error) {
	req := analysis.Request{
		Watchlist: strings.TrimSpace(q.Get("watchlist")),
		Benchmark: strings.TrimSpace(q.Get("benchmark")),
		Source:    strings.TrimSpace(q.Get("source")),
		SortBy:    q.Get("sort"),
	}

	if symbols := q.Get("symbols"); symbols != "" {
		for _, s := range strings.Split(symbols, ",") {
			if s = strings.TrimSpace(s); s != "" {
				req.Symbols = append(req.Symbols, s)
			}
		}
	}

	var err error
	if req.LookbackDays, err = intParam(q, "lookback"); err != nil {
		return req, err
	}
	if req.TailLength, err = intParam(q, "tail"); err != nil {
		return req, err
	}

	if asc := q.Get("asc"); asc != "" {
		if req.Ascending, err = strconv.ParseBool(asc); err != nil {
			return req, fmt.Errorf("%w: asc must be a boolean", contracts.ErrInvalidParams)
		}
	}

	if end := q.Get("end"); end != "" {
		if req.End, err = time.Parse("2006-01-02", end); err != nil {
			return req, fmt.Errorf("%w: end must be YYYY-MM-DD", contracts.ErrInvalidParams)
		}
	}

	return req, nil
}

func intParam(q url.Values, key string) (int, error) {
	s := q.Get(key)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", contracts.ErrInvalidParams, key)
	}
	return v, nil
}
