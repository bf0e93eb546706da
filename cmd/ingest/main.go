package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"crypto_backend/internal/app/config"
	"crypto_backend/internal/app/di"
	candlesusecase "crypto_backend/internal/feature/candles/usecase"
	pairsadapters "crypto_backend/internal/feature/pairs/adapters"
	pairentity "crypto_backend/internal/feature/pairs/domain/entity"
	pairsusecase "crypto_backend/internal/feature/pairs/usecase"
	"crypto_backend/internal/platform/cache"
	"crypto_backend/internal/shared/ratelimiter"
)

const (
	jobTimeout = 10 * time.Minute
	// ingestRequestsPerMinute は取引所APIへのリクエスト間隔の目安です。
	ingestRequestsPerMinute = 120
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
	slog.Info("ingest ok")
}

func run(ctx context.Context) error {
	target := os.Getenv("INGEST_TARGET")
	if target == "" {
		target = config.SourceDB
	}

	gdb, err := di.NewDB()
	if err != nil {
		return err
	}
	store, closeStore, err := di.NewCandleStore(ctx, target, gdb)
	if err != nil {
		return err
	}
	defer closeStore()

	// サーバーと同じ名前空間のキャッシュを書き込み後に破棄する
	var invalidator candlesusecase.CacheInvalidator
	if rdb := di.NewRedis(ctx); rdb != nil {
		defer rdb.Close()
		invalidator = cache.NewCachingCandleSource(rdb, store, "candles")
	}

	pairUC := pairsusecase.NewPairUsecase(pairsadapters.NewPairRepository(gdb))
	symbols, err := pairUC.ListActiveSymbols(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		if _, err := pairUC.EnsureDefaults(ctx, pairentity.Defaults); err != nil {
			return err
		}
		if symbols, err = pairUC.ListActiveSymbols(ctx); err != nil {
			return err
		}
	}

	limiter := ratelimiter.NewRateLimiter("ingest", ingestRequestsPerMinute, time.Minute)
	uc := candlesusecase.NewIngestUsecase(di.NewMarket(), store, invalidator, limiter)
	slog.Info("ingest started", "target", target, "symbols", len(symbols))
	return uc.IngestAll(ctx, symbols)
}
