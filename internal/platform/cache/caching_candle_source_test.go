package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"crypto_backend/internal/feature/candles/domain/entity"
)

// mockCandleSource はテスト用のCandleSourceモック実装です。
type mockCandleSource struct {
	getCandlesFn func(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error)
	calls        int
}

func (m *mockCandleSource) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error) {
	m.calls++
	if m.getCandlesFn != nil {
		return m.getCandlesFn(ctx, symbol, timeframe, limit)
	}
	return nil, nil
}

// fixedNow は1h足の確定まで残り15分となる時刻です。
var fixedNow = time.Date(2024, 1, 1, 10, 45, 0, 0, time.UTC)

func newTestSource(t *testing.T, inner *mockCandleSource) (*CachingCandleSource, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = rdb.Close() })

	src := NewCachingCandleSource(rdb, inner, "candles")
	src.now = func() time.Time { return fixedNow }
	return src, mock
}

// TestNewCachingCandleSource_Defaults は名前空間のデフォルト値が設定されることを検証します。
func TestNewCachingCandleSource_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		namespace string
		expected  string
	}{
		{"empty uses default", "", "candles"},
		{"custom preserved", "klines", "klines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := NewCachingCandleSource(nil, &mockCandleSource{}, tt.namespace)
			if src.namespace != tt.expected {
				t.Errorf("expected namespace %q, got %q", tt.expected, src.namespace)
			}
		})
	}
}

// TestCachingCandleSource_GetCandles_NilRedis はRedis未設定時に内部ソースへ素通しすることを検証します。
func TestCachingCandleSource_GetCandles_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockCandleSource{
		getCandlesFn: func(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error) {
			return []entity.Candle{{Symbol: "BTC/USDT", Timeframe: "1h", Close: 42000}}, nil
		},
	}

	src := NewCachingCandleSource(nil, inner, "")
	candles, err := src.GetCandles(context.Background(), "BTC/USDT", "1h", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 || inner.calls != 1 {
		t.Errorf("expected pass-through, got %d candles and %d inner calls", len(candles), inner.calls)
	}
	if err := src.Invalidate(context.Background(), "BTC/USDT", "1h"); err != nil {
		t.Errorf("expected no-op invalidate, got %v", err)
	}
}

// TestCachingCandleSource_GetCandles_CacheHit はキャッシュヒット時に内部ソースを呼ばないことを検証します。
func TestCachingCandleSource_GetCandles_CacheHit(t *testing.T) {
	t.Parallel()

	inner := &mockCandleSource{}
	src, mock := newTestSource(t, inner)

	cached, _ := json.Marshal([]entity.Candle{{Symbol: "BTC/USDT", Timeframe: "1h", Timestamp: 1, Close: 42000}})
	mock.ExpectGet("candles:BTC/USDT:1h:100").SetVal(string(cached))

	candles, err := src.GetCandles(context.Background(), "btc/usdt", "1h", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Error("inner source should not be called on cache hit")
	}
	if len(candles) != 1 || candles[0].Close != 42000 {
		t.Errorf("unexpected candles: %+v", candles)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingCandleSource_GetCandles_CacheMiss はキャッシュミス時に取得結果を足の確定までのTTLで保存することを検証します。
func TestCachingCandleSource_GetCandles_CacheMiss(t *testing.T) {
	t.Parallel()

	want := []entity.Candle{{Symbol: "BTC/USDT", Timeframe: "1h", Timestamp: 1, Close: 42000}}
	wantJSON, _ := json.Marshal(want)

	inner := &mockCandleSource{
		getCandlesFn: func(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error) {
			return want, nil
		},
	}
	src, mock := newTestSource(t, inner)

	mock.ExpectGet("candles:BTC/USDT:1h:100").RedisNil()
	mock.ExpectSet("candles:BTC/USDT:1h:100", wantJSON, 15*time.Minute).SetVal("OK")

	candles, err := src.GetCandles(context.Background(), "BTC/USDT", "1h", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 {
		t.Errorf("expected 1 candle, got %d", len(candles))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingCandleSource_GetCandles_SetFailure はキャッシュ保存の失敗が呼び出し元に影響しないことを検証します。
func TestCachingCandleSource_GetCandles_SetFailure(t *testing.T) {
	t.Parallel()

	want := []entity.Candle{{Symbol: "BTC/USDT", Timeframe: "1h", Timestamp: 1}}
	wantJSON, _ := json.Marshal(want)

	inner := &mockCandleSource{
		getCandlesFn: func(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error) {
			return want, nil
		},
	}
	src, mock := newTestSource(t, inner)

	mock.ExpectGet("candles:BTC/USDT:1h:100").RedisNil()
	mock.ExpectSet("candles:BTC/USDT:1h:100", wantJSON, 15*time.Minute).SetErr(errors.New("READONLY"))

	if _, err := src.GetCandles(context.Background(), "BTC/USDT", "1h", 100); err != nil {
		t.Fatalf("expected cache failure to be ignored, got %v", err)
	}
}

// TestCachingCandleSource_GetCandles_InnerError は内部ソースのエラーが伝播され、キャッシュされないことを検証します。
func TestCachingCandleSource_GetCandles_InnerError(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("binance http 503")
	inner := &mockCandleSource{
		getCandlesFn: func(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error) {
			return nil, expectedErr
		},
	}
	src, mock := newTestSource(t, inner)

	mock.ExpectGet("candles:BTC/USDT:1h:100").RedisNil()

	_, err := src.GetCandles(context.Background(), "BTC/USDT", "1h", 100)
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingCandleSource_GetCandles_CorruptedCache は破損したキャッシュを削除して内部ソースにフォールバックすることを検証します。
func TestCachingCandleSource_GetCandles_CorruptedCache(t *testing.T) {
	t.Parallel()

	want := []entity.Candle{{Symbol: "ETH/USDT", Timeframe: "4h", Timestamp: 1}}
	wantJSON, _ := json.Marshal(want)

	inner := &mockCandleSource{
		getCandlesFn: func(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error) {
			return want, nil
		},
	}
	src, mock := newTestSource(t, inner)

	mock.ExpectGet("candles:ETH/USDT:4h:50").SetVal("invalid json")
	mock.ExpectDel("candles:ETH/USDT:4h:50").SetVal(1)
	mock.ExpectSet("candles:ETH/USDT:4h:50", wantJSON, time.Hour).SetVal("OK")

	candles, err := src.GetCandles(context.Background(), "ETH/USDT", "4h", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 || inner.calls != 1 {
		t.Errorf("expected fallback to inner, got %d candles and %d calls", len(candles), inner.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingCandleSource_Invalidate はSCANとDELで関連キーを全て削除することを検証します。
func TestCachingCandleSource_Invalidate(t *testing.T) {
	t.Parallel()

	src, mock := newTestSource(t, &mockCandleSource{})

	mock.ExpectScan(0, "candles:BTC/USDT:1h:*", 200).SetVal([]string{"candles:BTC/USDT:1h:100"}, 7)
	mock.ExpectDel("candles:BTC/USDT:1h:100").SetVal(1)
	mock.ExpectScan(7, "candles:BTC/USDT:1h:*", 200).SetVal([]string{"candles:BTC/USDT:1h:500"}, 0)
	mock.ExpectDel("candles:BTC/USDT:1h:500").SetVal(1)

	if err := src.Invalidate(context.Background(), "BTC/USDT", "1h"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingCandleSource_Invalidate_ScanError はSCANの失敗を返すことを検証します。
func TestCachingCandleSource_Invalidate_ScanError(t *testing.T) {
	t.Parallel()

	src, mock := newTestSource(t, &mockCandleSource{})
	mock.ExpectScan(0, "candles:BTC/USDT:1h:*", 200).SetErr(errors.New("connection reset"))

	if err := src.Invalidate(context.Background(), "BTC/USDT", "1h"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

// TestSafe はsafe関数がRedisキーで問題となる文字を正しくエスケープすることを検証します。
func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"BTC/USDT", "BTC/USDT"},
		{"BTC USDT", "BTC_USDT"},
		{"key:value", "key_value"},
		{"a*b", "a_b"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := safe(tt.input); got != tt.expected {
				t.Errorf("safe(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
