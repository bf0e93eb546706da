package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"crypto_backend/internal/app/config"
	"crypto_backend/internal/app/di"
	"crypto_backend/internal/app/router"
	candleshandler "crypto_backend/internal/feature/candles/transport/handler"
	candlesusecase "crypto_backend/internal/feature/candles/usecase"
	pairsadapters "crypto_backend/internal/feature/pairs/adapters"
	pairshandler "crypto_backend/internal/feature/pairs/transport/handler"
	pairsusecase "crypto_backend/internal/feature/pairs/usecase"
	pnladapters "crypto_backend/internal/feature/pnl/adapters"
	pnlhandler "crypto_backend/internal/feature/pnl/transport/handler"
	pnlusecase "crypto_backend/internal/feature/pnl/usecase"
	strategyhandler "crypto_backend/internal/feature/strategy/transport/handler"
	strategyusecase "crypto_backend/internal/feature/strategy/usecase"
	"crypto_backend/internal/platform/cache"
	healthhandler "crypto_backend/internal/platform/http/handler"
	jwtmw "crypto_backend/internal/platform/jwt"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .envを読み込む
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	// db
	gdb, err := di.NewDB()
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// Redis（接続できなければキャッシュなしで動作）
	rdb := di.NewRedis(ctx)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// ローソク足の取得元をRedisキャッシュでラップ
	source, closeSource, err := di.NewCandleSource(ctx, cfg.CandleSource, gdb)
	if err != nil {
		return err
	}
	defer closeSource()
	cached := cache.NewCachingCandleSource(rdb, source, "candles")
	slog.Info("candle source selected", "source", cfg.CandleSource, "cache", rdb != nil)

	// Usecase
	pairUC := pairsusecase.NewPairUsecase(pairsadapters.NewPairRepository(gdb))
	candlesUC := candlesusecase.NewCandlesUsecase(cached)
	analysisUC := strategyusecase.NewAnalysisUsecase(cached, cfg.AnalysisTimeout)
	pnlUC := pnlusecase.NewPnLUsecase(pnladapters.NewTradeRepository(gdb))

	checks := []healthhandler.Check{{Name: "database", Ping: sqlDB.PingContext}}
	if rdb != nil {
		checks = append(checks, healthhandler.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	var authz jwtmw.Authorizer
	if cfg.AuthDisabled {
		slog.Warn("AUTH_DISABLED=true; protected routes are open")
	} else if authz, err = jwtmw.NewHMACVerifier(cfg.JWTSecret); err != nil {
		return errors.New("JWT_SECRET is not set; set a strong secret or AUTH_DISABLED=true for local development")
	}

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		Health:   healthhandler.Health(checks...),
		Pairs:    pairshandler.NewPairHandler(pairUC),
		Candles:  candleshandler.NewCandlesHandler(candlesUC),
		Strategy: strategyhandler.NewStrategyHandler(analysisUC),
		PnL:      pnlhandler.NewPnLHandler(pnlUC),
	}, router.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Authorizer:     authz,
		AuthDisabled:   cfg.AuthDisabled,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
