package usecase

import (
	"context"
	"fmt"

	pnlentity "crypto_backend/internal/feature/pnl/domain/entity"
	"crypto_backend/internal/feature/pnl/domain/ledger"
	"crypto_backend/internal/feature/strategy/domain/entity"
)

// BacktestQuantity はシグナル1件あたりの売買数量です。
const BacktestQuantity = 1.0

// SignalTrades はシグナル列をFIFO台帳に渡せる取引に変換します。
func SignalTrades(symbol string, signals []entity.Signal) []pnlentity.Trade {
	out := make([]pnlentity.Trade, 0, len(signals))
	for _, s := range signals {
		side := pnlentity.SideBuy
		if s.Type == entity.Sell {
			side = pnlentity.SideSell
		}
		out = append(out, pnlentity.Trade{
			ID:        fmt.Sprintf("signal-%d", s.Index),
			Timestamp: s.Timestamp,
			Symbol:    symbol,
			Side:      side,
			Price:     s.Price,
			Quantity:  BacktestQuantity,
			Value:     s.Price * BacktestQuantity,
		})
	}
	return out
}

// Backtest は分析結果のシグナルを台帳で照合します。
func Backtest(res *entity.AnalysisResult) (*entity.Backtest, error) {
	report, err := ledger.Compute(SignalTrades(res.Symbol, res.Signals))
	if err != nil {
		return nil, err
	}
	return &entity.Backtest{
		Strategy:    res.Strategy,
		Symbol:      res.Symbol,
		Timeframe:   res.Timeframe,
		Params:      res.Params,
		CandleCount: res.CandleCount,
		Position:    res.Position,
		Report:      report,
	}, nil
}

// Backtest は1銘柄を分析し、そのシグナルで売買した場合の損益を返します。
func (u *analysisUsecase) Backtest(ctx context.Context, req AnalyzeRequest) (*entity.Backtest, error) {
	res, err := u.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	return Backtest(res)
}
