package momentum

import (
	"github.com/sdcoffey/techan"

	candleentity "crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/strategy/domain/entity"
)

type MAType string

const (
	SMA MAType = "sma"
	EMA MAType = "ema"
)

type CrossoverParams struct {
	FastPeriod int
	SlowPeriod int
	Type       MAType
}

// CrossoverStrategy はゴールデンクロスで買い、デッドクロスで手仕舞います。
type CrossoverStrategy struct {
	noGeometry
	p CrossoverParams
}

func NewCrossover(p CrossoverParams) *CrossoverStrategy {
	return &CrossoverStrategy{p: p}
}

func (s *CrossoverStrategy) MinCandles() int {
	return s.p.SlowPeriod + 2
}

func (s *CrossoverStrategy) GenerateSignals(candles []candleentity.Candle, _ []entity.Extremum, _, _ *entity.Trendline) []entity.Signal {
	if len(candles) == 0 {
		return nil
	}
	closes := techan.NewClosePriceIndicator(toSeries(candles))
	fast := s.movingAverage(closes, s.p.FastPeriod)
	slow := s.movingAverage(closes, s.p.SlowPeriod)
	return crossoverSignals(candles, values(fast, len(candles)), values(slow, len(candles)), s.p.SlowPeriod)
}

func (s *CrossoverStrategy) movingAverage(ind techan.Indicator, window int) techan.Indicator {
	if s.p.Type == EMA {
		return techan.NewEMAIndicator(ind, window)
	}
	return techan.NewSimpleMovingAverage(ind, window)
}

// crossoverSignals はstart以降の足で短期線と長期線の交差を判定します。
func crossoverSignals(candles []candleentity.Candle, fast, slow []float64, start int) []entity.Signal {
	var out []entity.Signal
	pos := entity.Flat

	if start < 1 {
		start = 1
	}
	for i := start; i < len(candles); i++ {
		if !finite(fast[i-1], slow[i-1], fast[i], slow[i]) {
			continue
		}
		prevDiff, curDiff := fast[i-1]-slow[i-1], fast[i]-slow[i]

		switch {
		case pos == entity.Flat && prevDiff <= 0 && curDiff > 0:
			out = append(out, signalAt(candles, i, entity.Buy, entity.ReasonGoldenCross))
			pos = entity.Long
		case pos == entity.Long && prevDiff >= 0 && curDiff < 0:
			out = append(out, signalAt(candles, i, entity.Sell, entity.ReasonDeathCross))
			pos = entity.Flat
		}
	}
	return out
}
