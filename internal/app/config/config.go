// Package config loads process-wide settings from the environment.
// Settings owned by a single platform package (db, redis, clickhouse, binance)
// are loaded by that package's own LoadConfig.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// CandleSource values.
const (
	SourceExchange   = "exchange"
	SourceDB         = "db"
	SourceClickHouse = "clickhouse"
)

type Config struct {
	Port               string
	CandleSource       string
	AnalysisTimeout    time.Duration
	CORSAllowedOrigins []string
	JWTSecret          string
	AuthDisabled       bool
	LogLevel           slog.Level
}

// Load reads the process configuration. Unknown CANDLE_SOURCE values and
// unparsable durations or levels are rejected so a typo fails at startup.
func Load() (Config, error) {
	cfg := Config{
		Port:            envOr("PORT", "8080"),
		CandleSource:    strings.ToLower(envOr("CANDLE_SOURCE", SourceExchange)),
		AnalysisTimeout: 10 * time.Second,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		LogLevel:        slog.LevelInfo,
	}

	switch cfg.CandleSource {
	case SourceExchange, SourceDB, SourceClickHouse:
	default:
		return cfg, fmt.Errorf("CANDLE_SOURCE must be exchange, db or clickhouse, got %q", cfg.CandleSource)
	}

	if v := os.Getenv("ANALYSIS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("ANALYSIS_TIMEOUT must be a positive duration, got %q", v)
		}
		cfg.AnalysisTimeout = d
	}

	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	if v := os.Getenv("AUTH_DISABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("AUTH_DISABLED must be a boolean, got %q", v)
		}
		cfg.AuthDisabled = b
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
