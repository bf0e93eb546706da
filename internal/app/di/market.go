// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"crypto_backend/internal/platform/externalapi/binance"
	infrahttp "crypto_backend/internal/platform/http"
	"crypto_backend/internal/shared/ratelimiter"
)

// NewMarket creates a Binance klines client with its own HTTP client and request budget.
func NewMarket() *binance.BinanceMarket {
	cfg := binance.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	limiter := ratelimiter.NewRateLimiter("binance", cfg.RequestsPerMinute, time.Minute)
	return binance.NewBinanceMarket(cfg, httpClient, limiter)
}
