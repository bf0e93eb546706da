package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"crypto_backend/internal/app/config"
	candleadapters "crypto_backend/internal/feature/candles/adapters"
	candleusecase "crypto_backend/internal/feature/candles/usecase"
	pairentity "crypto_backend/internal/feature/pairs/domain/entity"
	pnladapters "crypto_backend/internal/feature/pnl/adapters"
	"crypto_backend/internal/platform/clickhouse"
	"crypto_backend/internal/platform/db"
	infraredis "crypto_backend/internal/platform/redis"
)

// Models lists every gorm model migrated when RUN_MIGRATIONS=true.
var Models = []any{
	&candleadapters.CandleModel{},
	&pnladapters.TradeModel{},
	&pairentity.TradingPair{},
}

// NewDB opens PostgreSQL from the DB_* environment.
func NewDB() (*gorm.DB, error) {
	return db.OpenDB(db.LoadConfigFromEnv(), Models...)
}

// NewRedis returns a connected client, or nil when REDIS_HOST is unset or unreachable.
// Callers treat a nil client as "no cache".
func NewRedis(ctx context.Context) *redisv9.Client {
	cfg := infraredis.LoadConfig()
	if !cfg.Enabled() {
		slog.Info("REDIS_HOST not set; running without cache")
		return nil
	}
	rdb, err := infraredis.NewRedisClient(ctx, cfg)
	if err != nil {
		slog.Warn("Redis unavailable; running without cache", "error", err)
		return nil
	}
	return rdb
}

// NewClickHouseStore connects to ClickHouse and makes sure the candle table exists.
// The returned func closes the connection.
func NewClickHouseStore(ctx context.Context) (*clickhouse.CandleStore, func() error, error) {
	cfg := clickhouse.LoadConfig()
	conn, err := clickhouse.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := clickhouse.NewCandleStore(conn, cfg.Table)
	if err == nil {
		err = store.EnsureSchema(ctx)
	}
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return store, conn.Close, nil
}

// CandleBackend is a candle source that can also be written by the ingest job.
type CandleBackend interface {
	candleusecase.CandleSource
	candleusecase.CandleWriter
}

func noop() error { return nil }

// NewCandleSource returns the read side selected by CANDLE_SOURCE.
func NewCandleSource(ctx context.Context, kind string, gdb *gorm.DB) (candleusecase.CandleSource, func() error, error) {
	if kind == config.SourceExchange {
		return NewMarket(), noop, nil
	}
	return NewCandleStore(ctx, kind, gdb)
}

// NewCandleStore returns the persistent candle store for kind ("db" or "clickhouse").
func NewCandleStore(ctx context.Context, kind string, gdb *gorm.DB) (CandleBackend, func() error, error) {
	switch kind {
	case config.SourceDB:
		if gdb == nil {
			return nil, nil, errors.New("candle store db requires a database connection")
		}
		return candleadapters.NewCandleRepository(gdb), noop, nil
	case config.SourceClickHouse:
		return NewClickHouseStore(ctx)
	default:
		return nil, nil, fmt.Errorf("unknown candle store %q", kind)
	}
}
