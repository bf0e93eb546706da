// Package clickhouse provides a ClickHouse-backed candle store.
package clickhouse

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config holds connection settings for ClickHouse.
type Config struct {
	Addr     string
	Database string
	User     string
	Password string
	Table    string
}

// LoadConfig loads ClickHouse configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Addr:     envOr("CLICKHOUSE_ADDR", "localhost:9000"),
		Database: envOr("CLICKHOUSE_DB", "default"),
		User:     envOr("CLICKHOUSE_USER", "default"),
		Password: os.Getenv("CLICKHOUSE_PASSWORD"),
		Table:    envOr("CLICKHOUSE_TABLE", "candles"),
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Open connects to ClickHouse and verifies the connection with a ping.
func Open(ctx context.Context, cfg Config) (driver.Conn, error) {
	conn, err := ch.Open(&ch.Options{
		Addr: []string{cfg.Addr},
		Auth: ch.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		DialTimeout: 5 * time.Second,
		Settings: ch.Settings{
			"max_execution_time": 30,
		},
	})
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}

	slog.Info("ClickHouse connection successful", "address", cfg.Addr, "database", cfg.Database)
	return conn, nil
}
