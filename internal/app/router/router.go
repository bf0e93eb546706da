// Package router はアプリケーションのルーティングを定義します。
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	candleshandler "crypto_backend/internal/feature/candles/transport/handler"
	pairshandler "crypto_backend/internal/feature/pairs/transport/handler"
	pnlhandler "crypto_backend/internal/feature/pnl/transport/handler"
	strategyhandler "crypto_backend/internal/feature/strategy/transport/handler"
	"crypto_backend/internal/platform/http/middleware"
	jwtmw "crypto_backend/internal/platform/jwt"
)

// Handlers はルーターに登録するフィーチャーごとのハンドラーです。
type Handlers struct {
	Health   gin.HandlerFunc
	Pairs    *pairshandler.PairHandler
	Candles  *candleshandler.CandlesHandler
	Strategy *strategyhandler.StrategyHandler
	PnL      *pnlhandler.PnLHandler
}

type Options struct {
	// AllowedOrigins が空の場合はすべてのオリジンを許可します。
	AllowedOrigins []string
	Authorizer     jwtmw.Authorizer
	// AuthDisabled はローカル開発用です。認証必須ルートも素通しになります。
	AuthDisabled bool
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func NewRouter(h Handlers, opt Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), cors.New(corsConfig(opt.AllowedOrigins)))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health)
	r.HEAD("/healthz", h.Health)
	r.OPTIONS("/healthz", h.Health)
	r.GET("/pairs", h.Pairs.List)
	r.GET("/strategies", h.Strategy.ListStrategiesHandler)

	// 認証必須のルート
	auth := r.Group("/")
	if !opt.AuthDisabled {
		auth.Use(jwtmw.AuthRequired(opt.Authorizer))
	}
	{
		auth.GET("/candles", h.Candles.GetCandlesHandler)

		auth.GET("/strategies/:id/analysis", h.Strategy.AnalyzeHandler)
		auth.GET("/strategies/:id/signals/recent", h.Strategy.RecentSignalsHandler)
		auth.GET("/strategies/:id/backtest", h.Strategy.BacktestHandler)
		auth.POST("/strategies/:id/scan", h.Strategy.ScanHandler)

		auth.GET("/pnl", h.PnL.ReportHandler)
		auth.GET("/pnl/daily", h.PnL.DailyHandler)
		auth.POST("/pnl/compute", h.PnL.ComputeHandler)
		auth.GET("/trades", h.PnL.ListTradesHandler)
		auth.POST("/trades", h.PnL.ImportTradesHandler)
	}

	return r
}
