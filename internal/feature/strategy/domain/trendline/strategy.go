package trendline

import (
	candleentity "crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/strategy/domain/entity"
)

// Params はトレンドラインブレイクアウト戦略のパラメータです。
type Params struct {
	WindowOrder   int
	LookbackCount int
	Tolerance     float64
}

// Strategy は3段階のパイプラインをParamsで束ねたものです。
type Strategy struct {
	p Params
}

func New(p Params) *Strategy {
	return &Strategy{p: p}
}

// MinCandles は分析に必要な最小本数です。
func (s *Strategy) MinCandles() int {
	return 2*s.p.WindowOrder + s.p.LookbackCount
}

func (s *Strategy) DetectExtrema(candles []candleentity.Candle) ([]entity.Extremum, error) {
	return DetectExtrema(candles, s.p.WindowOrder)
}

func (s *Strategy) FitTrendlines(extrema []entity.Extremum) (support, resistance *entity.Trendline) {
	support = FitTrendline(extrema, entity.Support, s.p.LookbackCount, s.p.Tolerance)
	resistance = FitTrendline(extrema, entity.Resistance, s.p.LookbackCount, s.p.Tolerance)
	return support, resistance
}

func (s *Strategy) GenerateSignals(candles []candleentity.Candle, extrema []entity.Extremum, support, resistance *entity.Trendline) []entity.Signal {
	return GenerateSignals(candles, support, resistance, extrema, s.p.WindowOrder)
}
