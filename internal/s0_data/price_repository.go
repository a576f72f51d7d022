package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/rrg/internal/contracts"
)

// Schema of the stored close series
const priceSchema = `
	CREATE SCHEMA IF NOT EXISTS data;
	CREATE TABLE IF NOT EXISTS data.daily_prices (
		symbol      TEXT          NOT NULL,
		trade_date  DATE          NOT NULL,
		close_price NUMERIC(18,6) NOT NULL,
		source      TEXT          NOT NULL DEFAULT '',
		updated_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
		PRIMARY KEY (symbol, trade_date)
	);
`

// PriceRepository reads and writes daily closes in PostgreSQL.
// It also serves as the postgres contracts.PriceFetcher.
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// EnsureSchema creates data.daily_prices when missing
func (r *PriceRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, priceSchema); err != nil {
		return fmt.Errorf("ensure price schema: %w", err)
	}
	return nil
}

// Name implements contracts.PriceFetcher
func (r *PriceRepository) Name() string { return "postgres" }

// Fetch implements contracts.PriceFetcher over data.daily_prices
func (r *PriceRepository) Fetch(ctx context.Context, symbol string, start, end time.Time) (contracts.PriceSeries, error) {
	query := `
		SELECT trade_date, close_price::float8
		FROM data.daily_prices
		WHERE symbol = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, start, end)
	if err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("%w: query prices for %s: %w", contracts.ErrProvider, symbol, err)
	}
	defer rows.Close()

	series := contracts.PriceSeries{Symbol: symbol}
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return contracts.PriceSeries{}, fmt.Errorf("%w: scan price for %s: %w", contracts.ErrProvider, symbol, err)
		}
		series.Points = append(series.Points, p)
	}
	if err := rows.Err(); err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("%w: iterate prices for %s: %w", contracts.ErrProvider, symbol, err)
	}

	return nonEmpty(series)
}

// SaveSeries upserts a series in one batch and returns the number of rows written
func (r *PriceRepository) SaveSeries(ctx context.Context, source string, series contracts.PriceSeries) (int, error) {
	if series.IsEmpty() {
		return 0, nil
	}

	query := `
		INSERT INTO data.daily_prices (symbol, trade_date, close_price, source, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			close_price = EXCLUDED.close_price,
			source = EXCLUDED.source,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, p := range series.Points {
		batch.Queue(query, series.Symbol, contracts.TradingDay(p.Date), p.Close, source)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("upsert price for %s: %w", series.Symbol, err)
		}
	}

	return batch.Len(), nil
}
