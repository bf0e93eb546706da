package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	candleentity "crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/strategy/domain"
	"crypto_backend/internal/feature/strategy/domain/entity"
	"crypto_backend/internal/feature/strategy/usecase"
)

var errExchange = errors.New("exchange error")

// mockCandleSource はCandleSourceのモックです。Scanから並行に呼ばれるためtestify/mockを使います。
type mockCandleSource struct {
	mock.Mock
}

func (m *mockCandleSource) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]candleentity.Candle, error) {
	args := m.Called(ctx, symbol, timeframe, limit)
	candles, _ := args.Get(0).([]candleentity.Candle)
	return candles, args.Error(1)
}

// breakoutCandles は3つの高値で水平なレジスタンス、4つの安値で上昇するサポートを作り、
// index 40でレジスタンスを上抜ける50本の1時間足です。
func breakoutCandles() []candleentity.Candle {
	anchors := []struct {
		i int
		v float64
	}{
		{0, 108}, {5, 100}, {10, 110}, {15, 102}, {20, 110}, {25, 104.04},
		{30, 110}, {35, 106.1208}, {39, 110}, {40, 112}, {49, 116.5},
	}
	out := make([]candleentity.Candle, 50)
	for k := 0; k+1 < len(anchors); k++ {
		a, b := anchors[k], anchors[k+1]
		for i := a.i; i <= b.i; i++ {
			c := a.v + (b.v-a.v)*float64(i-a.i)/float64(b.i-a.i)
			out[i] = candleentity.Candle{
				Timestamp: 1_704_067_200_000 + int64(i)*3_600_000,
				Open:      c,
				High:      c + 0.5,
				Low:       c - 0.5,
				Close:     c,
				Volume:    1,
			}
		}
	}
	return out
}

func reversed(in []candleentity.Candle) []candleentity.Candle {
	out := make([]candleentity.Candle, len(in))
	for i, c := range in {
		out[len(in)-1-i] = c
	}
	return out
}

func TestAnalysisUsecase_Analyze_Breakout(t *testing.T) {
	t.Parallel()

	src := new(mockCandleSource)
	// 取引所から降順で返ってきても正規化される
	src.On("GetCandles", mock.Anything, "BTC/USDT", "1h", 500).Return(reversed(breakoutCandles()), nil).Once()

	uc := usecase.NewAnalysisUsecase(src, time.Second)
	res, err := uc.Analyze(context.Background(), usecase.AnalyzeRequest{Symbol: " btc/usdt "})
	require.NoError(t, err)
	src.AssertExpectations(t)

	assert.Equal(t, entity.TrendlineBreakout, res.Strategy)
	assert.Equal(t, "BTC/USDT", res.Symbol)
	assert.Equal(t, "1h", res.Timeframe)
	assert.Equal(t, map[string]string{"window_order": "4", "lookback_count": "30", "tolerance": "2"}, res.Params)
	assert.Equal(t, 50, res.CandleCount)
	assert.InDelta(t, 116.5, res.CurrentPrice, 1e-9)
	assert.Equal(t, int64(1_704_067_200_000+49*3_600_000), res.LastTimestamp)
	assert.Len(t, res.Extrema, 7)

	require.NotNil(t, res.Resistance)
	assert.InDelta(t, 0, res.Resistance.Slope, 1e-9)
	assert.InDelta(t, 110.5, res.Resistance.Intercept, 1e-9)
	require.NotNil(t, res.Support)
	assert.Equal(t, 4, res.Support.Points)

	require.Len(t, res.Signals, 1)
	assert.Equal(t, 40, res.Signals[0].Index)
	assert.Equal(t, entity.Buy, res.Signals[0].Type)
	assert.Equal(t, entity.ReasonResistanceBreakout, res.Signals[0].Reason)

	assert.Equal(t, entity.Buy, res.CurrentSignal)
	assert.Equal(t, entity.Long, res.Position)
	assert.Equal(t, 1, res.TotalBuySignals)
	assert.Equal(t, 0, res.TotalSellSignals)
}

func TestAnalysisUsecase_Analyze_Errors(t *testing.T) {
	t.Parallel()

	flat := func(n int) []candleentity.Candle {
		out := make([]candleentity.Candle, n)
		for i := range out {
			out[i] = candleentity.Candle{Timestamp: int64(i) * 60_000, Open: 1, High: 1, Low: 1, Close: 1}
		}
		return out
	}

	tests := []struct {
		name      string
		req       usecase.AnalyzeRequest
		setup     func(m *mockCandleSource)
		wantErr   error
		wantCause error
		wantCalls int
	}{
		{
			name:      "invalid timeframe is rejected before fetching",
			req:       usecase.AnalyzeRequest{Timeframe: "1day"},
			wantErr:   domain.ErrInvalidParameter,
			wantCalls: 0,
		},
		{
			name:      "unknown strategy",
			req:       usecase.AnalyzeRequest{Strategy: "bollinger"},
			wantErr:   domain.ErrUnknownStrategy,
			wantCalls: 0,
		},
		{
			name:      "invalid parameter",
			req:       usecase.AnalyzeRequest{Params: map[string]string{"window_order": "0"}},
			wantErr:   domain.ErrInvalidParameter,
			wantCalls: 0,
		},
		{
			name: "source error",
			setup: func(m *mockCandleSource) {
				m.On("GetCandles", mock.Anything, "BTC/USDT", "1h", 500).Return(nil, errExchange)
			},
			wantErr:   domain.ErrDataUnavailable,
			wantCause: errExchange,
			wantCalls: 1,
		},
		{
			name: "source timeout",
			setup: func(m *mockCandleSource) {
				m.On("GetCandles", mock.Anything, "BTC/USDT", "1h", 500).
					Run(func(args mock.Arguments) {
						<-args.Get(0).(context.Context).Done()
					}).
					Return(nil, nil)
			},
			wantErr:   domain.ErrDataUnavailable,
			wantCause: context.DeadlineExceeded,
			wantCalls: 1,
		},
		{
			name: "too few candles",
			setup: func(m *mockCandleSource) {
				m.On("GetCandles", mock.Anything, "BTC/USDT", "1h", 500).Return(flat(37), nil)
			},
			wantErr:   domain.ErrDataUnavailable,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := new(mockCandleSource)
			if tt.setup != nil {
				tt.setup(src)
			}
			uc := usecase.NewAnalysisUsecase(src, 20*time.Millisecond)

			res, err := uc.Analyze(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantCause != nil {
				assert.ErrorIs(t, err, tt.wantCause)
			}
			assert.Nil(t, res)
			src.AssertNumberOfCalls(t, "GetCandles", tt.wantCalls)
		})
	}
}

func TestAnalysisUsecase_Analyze_LimitDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want int
	}{
		{0, 500}, {-5, 500}, {1001, 1000}, {50000, 1000}, {1000, 1000}, {120, 120},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			t.Parallel()

			src := new(mockCandleSource)
			src.On("GetCandles", mock.Anything, "ETH/USDT", "4h", tt.want).Return(breakoutCandles(), nil).Once()

			uc := usecase.NewAnalysisUsecase(src, 0)
			_, err := uc.Analyze(context.Background(), usecase.AnalyzeRequest{Symbol: "eth/usdt", Timeframe: "4h", Limit: tt.in})
			require.NoError(t, err)
			src.AssertExpectations(t)
		})
	}
}

func TestAnalysisUsecase_Scan(t *testing.T) {
	t.Parallel()

	src := new(mockCandleSource)
	src.On("GetCandles", mock.Anything, "BTC/USDT", "1h", 500).Return(breakoutCandles(), nil)
	src.On("GetCandles", mock.Anything, "ETH/USDT", "1h", 500).Return(nil, errExchange)
	src.On("GetCandles", mock.Anything, "SOL/USDT", "1h", 500).Return(breakoutCandles()[:10], nil)
	src.On("GetCandles", mock.Anything, "XRP/USDT", "1h", 500).Return(breakoutCandles(), nil)

	uc := usecase.NewAnalysisUsecase(src, time.Second)
	results, err := uc.Scan(context.Background(), usecase.ScanRequest{
		Symbols: []string{"btc/usdt", "ETH/USDT", "", "SOL/USDT", "XRP/USDT"},
	})
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT", "", "SOL/USDT", "XRP/USDT"},
		[]string{results[0].Symbol, results[1].Symbol, results[2].Symbol, results[3].Symbol, results[4].Symbol})

	require.NoError(t, results[0].Err)
	assert.Equal(t, entity.Buy, results[0].Result.CurrentSignal)

	assert.ErrorIs(t, results[1].Err, domain.ErrDataUnavailable)
	assert.ErrorIs(t, results[1].Err, errExchange)
	assert.Nil(t, results[1].Result)

	assert.ErrorIs(t, results[2].Err, domain.ErrInvalidParameter)
	assert.ErrorIs(t, results[3].Err, domain.ErrDataUnavailable)

	require.NoError(t, results[4].Err)
	assert.Equal(t, "XRP/USDT", results[4].Result.Symbol)

	// 各結果のParamsは独立している
	results[0].Result.Params["tolerance"] = "9"
	assert.Equal(t, "2", results[4].Result.Params["tolerance"])

	src.AssertNumberOfCalls(t, "GetCandles", 4)
}

func TestAnalysisUsecase_Scan_Validation(t *testing.T) {
	t.Parallel()

	tooMany := strings.Split(strings.Repeat("BTC/USDT,", usecase.MaxScanSymbols+1), ",")[:usecase.MaxScanSymbols+1]

	tests := []struct {
		name    string
		req     usecase.ScanRequest
		wantErr error
	}{
		{name: "no symbols", req: usecase.ScanRequest{}, wantErr: domain.ErrInvalidParameter},
		{name: "too many symbols", req: usecase.ScanRequest{Symbols: tooMany}, wantErr: domain.ErrInvalidParameter},
		{name: "bad timeframe", req: usecase.ScanRequest{Symbols: []string{"BTC/USDT"}, Timeframe: "7m"}, wantErr: domain.ErrInvalidParameter},
		{name: "unknown strategy", req: usecase.ScanRequest{Symbols: []string{"BTC/USDT"}, Strategy: "x"}, wantErr: domain.ErrUnknownStrategy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := new(mockCandleSource)
			uc := usecase.NewAnalysisUsecase(src, time.Second)
			results, err := uc.Scan(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, results)
			src.AssertNotCalled(t, "GetCandles", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAnalysisUsecase_RecentSignals(t *testing.T) {
	t.Parallel()

	// RSIで売買が複数回出る系列
	closes := []float64{100}
	for cycle := 0; cycle < 6; cycle++ {
		for i := 0; i < 8; i++ {
			closes = append(closes, closes[len(closes)-1]-5)
		}
		for i := 0; i < 8; i++ {
			closes = append(closes, closes[len(closes)-1]+5)
		}
	}
	candles := make([]candleentity.Candle, len(closes))
	for i, c := range closes {
		candles[i] = candleentity.Candle{Timestamp: int64(i) * 3_600_000, Open: c, High: c + 1, Low: c - 1, Close: c}
	}

	src := new(mockCandleSource)
	src.On("GetCandles", mock.Anything, "BTC/USDT", "1h", 500).Return(candles, nil)
	uc := usecase.NewAnalysisUsecase(src, time.Second)
	req := usecase.AnalyzeRequest{Strategy: entity.RSI, Params: map[string]string{"period": "4"}}

	full, err := uc.Analyze(context.Background(), req)
	require.NoError(t, err)
	require.Greater(t, len(full.Signals), 2)

	got, err := uc.RecentSignals(context.Background(), req, 2)
	require.NoError(t, err)
	assert.Equal(t, full.Signals[len(full.Signals)-2:], got)

	got, err = uc.RecentSignals(context.Background(), req, 0)
	require.NoError(t, err)
	assert.Len(t, got, min(len(full.Signals), usecase.DefaultRecentSignals))

	got, err = uc.RecentSignals(context.Background(), req, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, full.Signals, got)

	src.On("GetCandles", mock.Anything, "ETH/USDT", "1h", 500).Return(nil, errExchange)
	_, err = uc.RecentSignals(context.Background(), usecase.AnalyzeRequest{Symbol: "ETH/USDT"}, 5)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}
