package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pnlentity "crypto_backend/internal/feature/pnl/domain/entity"
	"crypto_backend/internal/feature/strategy/domain/entity"
	"crypto_backend/internal/feature/strategy/usecase"
)

func TestSignalTrades(t *testing.T) {
	t.Parallel()

	signals := []entity.Signal{
		{Index: 3, Timestamp: 3000, Price: 100, Type: entity.Buy, Reason: entity.ReasonRSIOversold},
		{Index: 9, Timestamp: 9000, Price: 110, Type: entity.Sell, Reason: entity.ReasonRSIOverbought},
	}
	got := usecase.SignalTrades("ETH/USDT", signals)

	assert.Equal(t, []pnlentity.Trade{
		{ID: "signal-3", Timestamp: 3000, Symbol: "ETH/USDT", Side: pnlentity.SideBuy, Price: 100, Quantity: 1, Value: 100},
		{ID: "signal-9", Timestamp: 9000, Symbol: "ETH/USDT", Side: pnlentity.SideSell, Price: 110, Quantity: 1, Value: 110},
	}, got)
	assert.Empty(t, usecase.SignalTrades("ETH/USDT", nil))
}

func TestBacktest(t *testing.T) {
	t.Parallel()

	res := &entity.AnalysisResult{
		Strategy:    entity.RSI,
		Symbol:      "BTC/USDT",
		Timeframe:   "4h",
		Params:      map[string]string{"period": "14"},
		CandleCount: 100,
		Position:    entity.Long,
		Signals: []entity.Signal{
			{Index: 10, Timestamp: 10, Price: 100, Type: entity.Buy},
			{Index: 20, Timestamp: 20, Price: 110, Type: entity.Sell},
			{Index: 30, Timestamp: 30, Price: 120, Type: entity.Buy},
			{Index: 40, Timestamp: 40, Price: 108, Type: entity.Sell},
			{Index: 50, Timestamp: 50, Price: 105, Type: entity.Buy},
		},
	}

	bt, err := usecase.Backtest(res)
	require.NoError(t, err)
	assert.Equal(t, entity.RSI, bt.Strategy)
	assert.Equal(t, "4h", bt.Timeframe)
	assert.Equal(t, entity.Long, bt.Position)
	assert.Equal(t, 100, bt.CandleCount)

	rep := bt.Report
	require.Len(t, rep.MatchedLots, 2)
	assert.Equal(t, "signal-10", rep.MatchedLots[0].BuyTradeID)
	assert.Equal(t, "signal-20", rep.MatchedLots[0].SellTradeID)
	assert.InDelta(t, 10, rep.MatchedLots[0].Profit, 1e-9)
	assert.InDelta(t, -12, rep.MatchedLots[1].Profit, 1e-9)
	assert.InDelta(t, -2, rep.TotalRealizedPnL, 1e-9)
	assert.Equal(t, 1, rep.Summary.Wins)
	assert.Equal(t, 1, rep.Summary.Losses)
	assert.InDelta(t, 50, rep.Summary.WinRate, 1e-9)
	assert.Empty(t, rep.Unmatched)

	// 決済されていない最後のBUYは未消化ロットになる
	require.Len(t, rep.OpenLots["BTC/USDT"], 1)
	assert.Equal(t, "signal-50", rep.OpenLots["BTC/USDT"][0].TradeID)
}

func TestBacktest_NoSignals(t *testing.T) {
	t.Parallel()

	bt, err := usecase.Backtest(&entity.AnalysisResult{Strategy: entity.TrendlineBreakout, Symbol: "BTC/USDT", Position: entity.Flat})
	require.NoError(t, err)
	assert.Empty(t, bt.Report.MatchedLots)
	assert.Zero(t, bt.Report.TotalRealizedPnL)
	assert.Zero(t, bt.Report.Summary.TradeCount)
}

func TestAnalysisUsecase_Backtest(t *testing.T) {
	t.Parallel()

	src := new(mockCandleSource)
	src.On("GetCandles", mock.Anything, "BTC/USDT", "1h", 500).Return(breakoutCandles(), nil).Once()

	uc := usecase.NewAnalysisUsecase(src, time.Second)
	bt, err := uc.Backtest(context.Background(), usecase.AnalyzeRequest{})
	require.NoError(t, err)
	src.AssertExpectations(t)

	// index 40の上抜けで買ったまま終わる
	assert.Equal(t, entity.Long, bt.Position)
	assert.Equal(t, 50, bt.CandleCount)
	assert.Empty(t, bt.Report.MatchedLots)
	require.Len(t, bt.Report.OpenLots["BTC/USDT"], 1)
	assert.Equal(t, "signal-40", bt.Report.OpenLots["BTC/USDT"][0].TradeID)

	src2 := new(mockCandleSource)
	src2.On("GetCandles", mock.Anything, "BTC/USDT", "1h", 500).Return(nil, errExchange).Once()
	_, err = usecase.NewAnalysisUsecase(src2, time.Second).Backtest(context.Background(), usecase.AnalyzeRequest{})
	assert.ErrorIs(t, err, errExchange)
}
