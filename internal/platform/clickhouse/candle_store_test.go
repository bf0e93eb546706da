package clickhouse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto_backend/internal/feature/candles/domain/entity"
)

type fakeRow struct {
	openMs        uint64
	o, h, l, c, v float64
}

type fakeRows struct {
	rows    []fakeRow
	pos     int
	scanErr error
	iterErr error
	closed  bool
}

func (f *fakeRows) Next() bool {
	if f.pos >= len(f.rows) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	r := f.rows[f.pos-1]
	*dest[0].(*uint64) = r.openMs
	*dest[1].(*float64) = r.o
	*dest[2].(*float64) = r.h
	*dest[3].(*float64) = r.l
	*dest[4].(*float64) = r.c
	*dest[5].(*float64) = r.v
	return nil
}

func (f *fakeRows) Close() error { f.closed = true; return nil }
func (f *fakeRows) Err() error   { return f.iterErr }

type fakeBatch struct {
	appended  [][]any
	appendErr error
	sendErr   error
	sent      bool
	aborted   bool
}

func (b *fakeBatch) Append(v ...any) error {
	if b.appendErr != nil {
		return b.appendErr
	}
	b.appended = append(b.appended, v)
	return nil
}
func (b *fakeBatch) Send() error  { b.sent = true; return b.sendErr }
func (b *fakeBatch) Abort() error { b.aborted = true; return nil }

func newTestStore(rows *fakeRows, batch *fakeBatch) (*CandleStore, *[]string, *[]any) {
	var queries []string
	var args []any
	s := &CandleStore{
		table: "market.candles",
		query: func(ctx context.Context, q string, a ...any) (rowScanner, error) {
			queries = append(queries, q)
			args = append(args, a...)
			return rows, nil
		},
		prepare: func(ctx context.Context, q string) (batchAppender, error) {
			queries = append(queries, q)
			return batch, nil
		},
		exec: func(ctx context.Context, q string) error {
			queries = append(queries, q)
			return nil
		},
		now: func() time.Time { return time.Unix(0, 42) },
	}
	return s, &queries, &args
}

func TestNewCandleStore_TableValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"plain", "candles", false},
		{"qualified", "market.candles", false},
		{"injection", "candles; DROP TABLE x", true},
		{"empty", "", true},
		{"too many dots", "a.b.c", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewCandleStore(nil, tt.table)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCandleStore_GetCandles(t *testing.T) {
	t.Parallel()

	rows := &fakeRows{rows: []fakeRow{
		{openMs: 3000, o: 3, h: 4, l: 2, c: 3.5, v: 30},
		{openMs: 2000, o: 2, h: 3, l: 1, c: 2.5, v: 20},
		{openMs: 1000, o: 1, h: 2, l: 0.5, c: 1.5, v: 10},
	}}
	s, queries, args := newTestStore(rows, nil)

	got, err := s.GetCandles(context.Background(), "btc/usdt", "1h", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(1000), got[0].Timestamp)
	assert.Equal(t, int64(3000), got[2].Timestamp)
	assert.Equal(t, "BTC/USDT", got[0].Symbol)
	assert.Equal(t, "1h", got[0].Timeframe)
	assert.Equal(t, 1.5, got[0].Close)
	assert.True(t, rows.closed)

	require.Len(t, *queries, 1)
	assert.Contains(t, (*queries)[0], "FROM market.candles FINAL")
	assert.Equal(t, []any{"BTCUSDT", "1h", 3}, *args)
}

func TestCandleStore_GetCandles_Errors(t *testing.T) {
	t.Parallel()

	t.Run("query error", func(t *testing.T) {
		t.Parallel()
		s := &CandleStore{table: "candles", query: func(ctx context.Context, q string, a ...any) (rowScanner, error) {
			return nil, errors.New("connection refused")
		}}
		_, err := s.GetCandles(context.Background(), "BTC/USDT", "1h", 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query candles")
	})

	t.Run("scan error", func(t *testing.T) {
		t.Parallel()
		rows := &fakeRows{rows: []fakeRow{{openMs: 1}}, scanErr: errors.New("bad type")}
		s, _, _ := newTestStore(rows, nil)
		_, err := s.GetCandles(context.Background(), "BTC/USDT", "1h", 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scan candle")
		assert.True(t, rows.closed)
	})

	t.Run("iteration error", func(t *testing.T) {
		t.Parallel()
		rows := &fakeRows{iterErr: errors.New("stream reset")}
		s, _, _ := newTestStore(rows, nil)
		_, err := s.GetCandles(context.Background(), "BTC/USDT", "1h", 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "iterate candles")
	})
}

func TestCandleStore_UpsertBatch(t *testing.T) {
	t.Parallel()

	batch := &fakeBatch{}
	s, queries, _ := newTestStore(nil, batch)

	err := s.UpsertBatch(context.Background(), []entity.Candle{
		{Symbol: "ETH/USDT", Timeframe: "4h", Timestamp: 1000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 9},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"INSERT INTO market.candles"}, *queries)
	require.Len(t, batch.appended, 1)
	assert.Equal(t, []any{"ETHUSDT", "4h", uint64(1000), 1.0, 2.0, 0.5, 1.5, 9.0, uint64(42)}, batch.appended[0])
	assert.True(t, batch.sent)
}

func TestCandleStore_UpsertBatch_Empty(t *testing.T) {
	t.Parallel()

	batch := &fakeBatch{}
	s, queries, _ := newTestStore(nil, batch)

	require.NoError(t, s.UpsertBatch(context.Background(), nil))
	assert.Empty(t, *queries)
	assert.False(t, batch.sent)
}

func TestCandleStore_UpsertBatch_AppendError(t *testing.T) {
	t.Parallel()

	batch := &fakeBatch{appendErr: errors.New("column mismatch")}
	s, _, _ := newTestStore(nil, batch)

	err := s.UpsertBatch(context.Background(), []entity.Candle{{Symbol: "BTC/USDT", Timeframe: "1h"}})
	require.Error(t, err)
	assert.True(t, batch.aborted)
	assert.False(t, batch.sent)
}

func TestCandleStore_EnsureSchema(t *testing.T) {
	t.Parallel()

	s, queries, _ := newTestStore(nil, nil)
	require.NoError(t, s.EnsureSchema(context.Background()))

	require.Len(t, *queries, 1)
	ddl := (*queries)[0]
	assert.True(t, strings.HasPrefix(ddl, "CREATE TABLE IF NOT EXISTS market.candles"))
	assert.Contains(t, ddl, "ReplacingMergeTree(version)")
	assert.Contains(t, ddl, "ORDER BY (symbol, interval, open_time_ms)")
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("CLICKHOUSE_ADDR", "")
	t.Setenv("CLICKHOUSE_TABLE", "market.klines")
	t.Setenv("CLICKHOUSE_PASSWORD", "secret")

	cfg := LoadConfig()

	assert.Equal(t, "localhost:9000", cfg.Addr)
	assert.Equal(t, "market.klines", cfg.Table)
	assert.Equal(t, "secret", cfg.Password)
}
