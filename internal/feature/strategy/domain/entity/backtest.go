package entity

import pnlentity "crypto_backend/internal/feature/pnl/domain/entity"

// Backtest はシグナルどおりに1単位ずつ売買した場合の損益です。
// 最後のBUYが決済されていなければReport.OpenLotsに残ります。
type Backtest struct {
	Strategy    StrategyID
	Symbol      string
	Timeframe   string
	Params      map[string]string
	CandleCount int
	Position    Position
	Report      *pnlentity.Report
}
