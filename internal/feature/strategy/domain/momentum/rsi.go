package momentum

import (
	"github.com/sdcoffey/techan"

	candleentity "crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/strategy/domain/entity"
)

const rsiMidline = 50.0

type RSIParams struct {
	Period     int
	Overbought float64
	Oversold   float64
}

// RSIStrategy は売られすぎで買い、買われすぎまたは50割れで手仕舞います。
type RSIStrategy struct {
	noGeometry
	p RSIParams
}

func NewRSI(p RSIParams) *RSIStrategy {
	return &RSIStrategy{p: p}
}

func (s *RSIStrategy) MinCandles() int {
	return s.p.Period + 2
}

func (s *RSIStrategy) GenerateSignals(candles []candleentity.Candle, _ []entity.Extremum, _, _ *entity.Trendline) []entity.Signal {
	if len(candles) == 0 {
		return nil
	}
	rsi := techan.NewRelativeStrengthIndexIndicator(techan.NewClosePriceIndicator(toSeries(candles)), s.p.Period)
	return rsiSignals(candles, values(rsi, len(candles)), s.p)
}

func rsiSignals(candles []candleentity.Candle, rsi []float64, p RSIParams) []entity.Signal {
	var out []entity.Signal
	pos := entity.Flat

	for i := p.Period + 1; i < len(candles); i++ {
		prev, cur := rsi[i-1], rsi[i]
		if !finite(prev, cur) {
			continue
		}

		if pos == entity.Flat {
			if prev >= p.Oversold && cur < p.Oversold {
				out = append(out, signalAt(candles, i, entity.Buy, entity.ReasonRSIOversold))
				pos = entity.Long
			}
			continue
		}

		switch {
		case prev <= p.Overbought && cur > p.Overbought:
			out = append(out, signalAt(candles, i, entity.Sell, entity.ReasonRSIOverbought))
			pos = entity.Flat
		case prev >= rsiMidline && cur < rsiMidline:
			out = append(out, signalAt(candles, i, entity.Sell, entity.ReasonRSIMomentumLoss))
			pos = entity.Flat
		}
	}
	return out
}
