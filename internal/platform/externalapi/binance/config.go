// Package binance provides a client for the Binance spot market REST API.
package binance

import (
	"os"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.binance.com"

// Config holds configuration for the Binance API client.
type Config struct {
	BaseURL           string        // Base URL for the API (e.g., "https://api.binance.com")
	Timeout           time.Duration // HTTP request timeout
	RequestsPerMinute int           // Client-side request budget shared by all callers
}

// LoadConfig loads Binance configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		BaseURL:           os.Getenv("BINANCE_BASE_URL"),
		Timeout:           10 * time.Second,
		RequestsPerMinute: 600,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if v, err := strconv.Atoi(os.Getenv("BINANCE_RATE_LIMIT")); err == nil && v > 0 {
		cfg.RequestsPerMinute = v
	}
	return cfg
}
