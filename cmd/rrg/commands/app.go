package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/wonny/rrg/internal/analysis"
	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/internal/external/naver"
	"github.com/wonny/rrg/internal/external/yahoo"
	"github.com/wonny/rrg/internal/s0_data"
	"github.com/wonny/rrg/internal/s0_data/cache"
	"github.com/wonny/rrg/internal/watchlist"
	"github.com/wonny/rrg/pkg/config"
	"github.com/wonny/rrg/pkg/database"
	"github.com/wonny/rrg/pkg/httputil"
	"github.com/wonny/rrg/pkg/logger"
	"github.com/wonny/rrg/pkg/redis"
)

// cachePrefix namespaces every Redis key written by this binary
const cachePrefix = "rrg"

// app holds the wired dependencies shared by all commands
// ⭐ SSOT: 의존성 조립(와이어링)은 여기서만
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	redis      *redis.Client
	db         *database.DB
	prices     *s0_data.PriceRepository
	fetchers   map[string]contracts.PriceFetcher
	memCaches  []*cache.SeriesCache
	watchlists *watchlist.Registry
	service    *analysis.Service
}

// newApp loads config and wires every price source that can be reached
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	a := &app{
		cfg:      cfg,
		log:      log,
		fetchers: make(map[string]contracts.PriceFetcher),
	}

	// 1. Redis (optional): price cache + shared rate limit
	a.redis, err = redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, running without price cache")
		a.redis = redis.NewFromRedis(nil)
	}
	limiter := redis.NewRateLimiter(a.redis, cachePrefix)

	// 2. Live sources (each with its own HTTP client: headers differ)
	yahooHTTP := httputil.New(cfg, log).WithRateLimiter(limiter, redis.YahooRateLimit)
	a.addFetcher(s0_data.NewYahooFetcher(yahoo.NewClient(yahooHTTP, log, cfg.Yahoo.BaseURL)))

	naverHTTP := httputil.New(cfg, log).WithRateLimiter(limiter, redis.NaverRateLimit)
	a.addFetcher(s0_data.NewNaverFetcher(naver.NewClient(naverHTTP, log, cfg.Naver.BaseURL, cfg.Naver.ChartURL)))

	// 3. Postgres (optional): stored closes
	if cfg.Database.URL != "" {
		if err := a.connectDatabase(ctx); err != nil {
			if cfg.RRG.Source == config.SourcePostgres {
				a.Close()
				return nil, err
			}
			log.WithError(err).Warn("Database unavailable, postgres source disabled")
		}
	}

	// 4. Watchlists (optional file)
	a.watchlists, err = watchlist.Load(cfg.RRG.WatchlistFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.Close()
			return nil, fmt.Errorf("load watchlists: %w", err)
		}
		log.WithField("path", cfg.RRG.WatchlistFile).Warn("Watchlist file not found")
		a.watchlists = nil
	}

	// 5. Analysis service: one pipeline per source
	runners := make(map[string]analysis.Runner, len(a.fetchers))
	for name, fetcher := range a.fetchers {
		runners[name] = s0_data.NewPipeline(fetcher, cfg.Fetch.Concurrency, log)
	}
	a.service = analysis.NewService(runners, cfg.RRG, a.watchlists, log)

	log.WithFields(map[string]interface{}{
		"sources":    len(a.fetchers),
		"default":    cfg.RRG.Source,
		"redis":      a.redis.Enabled(),
		"database":   a.db != nil,
		"watchlists": a.watchlists != nil,
	}).Debug("Application wired")

	return a, nil
}

// addFetcher registers a live source behind the Redis cache, or an in-process cache without Redis
func (a *app) addFetcher(f contracts.PriceFetcher) {
	if a.redis.Enabled() {
		shared := redis.NewCache(a.redis, cachePrefix)
		a.fetchers[f.Name()] = s0_data.NewCachedFetcher(f, shared, a.cfg.Redis.PriceTTL, a.log)
		return
	}
	local := cache.NewSeriesCache(f, a.cfg.Redis.PriceTTL, a.log)
	a.memCaches = append(a.memCaches, local)
	a.fetchers[f.Name()] = local
}

func (a *app) connectDatabase(ctx context.Context) error {
	db, err := database.New(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	prices := s0_data.NewPriceRepository(db.Pool)
	if err := prices.EnsureSchema(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ensure price schema: %w", err)
	}

	a.db = db
	a.prices = prices
	// 저장된 종가는 캐시를 거치지 않음
	a.fetchers[prices.Name()] = prices
	return nil
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
