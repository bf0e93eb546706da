package clickhouse

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/candles/usecase"
)

var tableName = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)?$`)

// rowScanner is the subset of driver.Rows the store reads.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// batchAppender is the subset of driver.Batch the store writes.
type batchAppender interface {
	Append(v ...any) error
	Send() error
	Abort() error
}

type (
	queryFunc   func(ctx context.Context, query string, args ...any) (rowScanner, error)
	prepareFunc func(ctx context.Context, query string) (batchAppender, error)
	execFunc    func(ctx context.Context, query string) error
)

// CandleStore reads and writes candles in a ReplacingMergeTree table keyed by
// (symbol, interval, open_time_ms). Symbols are stored in exchange form ("BTCUSDT").
type CandleStore struct {
	table   string
	query   queryFunc
	prepare prepareFunc
	exec    execFunc
	now     func() time.Time
}

var (
	_ usecase.CandleSource = (*CandleStore)(nil)
	_ usecase.CandleWriter = (*CandleStore)(nil)
)

// NewCandleStore wraps an open ClickHouse connection. table may be "db.table" or "table".
func NewCandleStore(conn driver.Conn, table string) (*CandleStore, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("clickhouse: invalid table name %q", table)
	}
	return &CandleStore{
		table: table,
		query: func(ctx context.Context, q string, args ...any) (rowScanner, error) {
			rows, err := conn.Query(ctx, q, args...)
			if err != nil {
				return nil, err
			}
			return rows, nil
		},
		prepare: func(ctx context.Context, q string) (batchAppender, error) {
			b, err := conn.PrepareBatch(ctx, q)
			if err != nil {
				return nil, err
			}
			return b, nil
		},
		exec: func(ctx context.Context, q string) error {
			return conn.Exec(ctx, q)
		},
		now: time.Now,
	}, nil
}

func storedSymbol(symbol string) string {
	return strings.ReplaceAll(entity.NormalizeSymbol(symbol), "/", "")
}

// EnsureSchema creates the candle table if it does not exist.
func (s *CandleStore) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	symbol String,
	interval LowCardinality(String),
	open_time_ms UInt64,
	open Float64,
	high Float64,
	low Float64,
	close Float64,
	volume Float64,
	version UInt64
)
ENGINE = ReplacingMergeTree(version)
ORDER BY (symbol, interval, open_time_ms)`, s.table)
	if err := s.exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// GetCandles returns the most recent limit candles in ascending time order.
func (s *CandleStore) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error) {
	q := fmt.Sprintf(`SELECT open_time_ms, open, high, low, close, volume
FROM %s FINAL
WHERE symbol = ? AND interval = ?
ORDER BY open_time_ms DESC
LIMIT ?`, s.table)

	rows, err := s.query(ctx, q, storedSymbol(symbol), timeframe, limit)
	if err != nil {
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	norm := entity.NormalizeSymbol(symbol)
	var out []entity.Candle
	for rows.Next() {
		var (
			openMs        uint64
			o, h, l, c, v float64
		)
		if err := rows.Scan(&openMs, &o, &h, &l, &c, &v); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, entity.Candle{
			Symbol:    norm,
			Timeframe: timeframe,
			Timestamp: int64(openMs),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    v,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candles: %w", err)
	}

	slices.Reverse(out)
	return out, nil
}

// UpsertBatch appends candles with a fresh version; ReplacingMergeTree keeps the newest row per key.
func (s *CandleStore) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	batch, err := s.prepare(ctx, fmt.Sprintf("INSERT INTO %s", s.table))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	ver := uint64(s.now().UnixNano())
	for _, c := range candles {
		if err := batch.Append(
			storedSymbol(c.Symbol), c.Timeframe,
			uint64(c.Timestamp),
			c.Open, c.High, c.Low, c.Close,
			c.Volume,
			ver,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("batch append: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("batch send: %w", err)
	}
	return nil
}
