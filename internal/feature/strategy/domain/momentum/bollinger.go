package momentum

import (
	"github.com/sdcoffey/techan"

	candleentity "crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/strategy/domain/entity"
)

type BollingerParams struct {
	Period int
	StdDev float64
}

// BollingerStrategy は終値が下限バンド以下で買い、上限バンド以上または
// 中心線の下抜けで手仕舞います。
type BollingerStrategy struct {
	noGeometry
	p BollingerParams
}

func NewBollinger(p BollingerParams) *BollingerStrategy {
	return &BollingerStrategy{p: p}
}

func (s *BollingerStrategy) MinCandles() int {
	return s.p.Period + 2
}

func (s *BollingerStrategy) GenerateSignals(candles []candleentity.Candle, _ []entity.Extremum, _, _ *entity.Trendline) []entity.Signal {
	if len(candles) == 0 {
		return nil
	}
	closes := techan.NewClosePriceIndicator(toSeries(candles))
	b := bands{
		middle: values(techan.NewSimpleMovingAverage(closes, s.p.Period), len(candles)),
		upper:  values(techan.NewBollingerUpperBandIndicator(closes, s.p.Period, s.p.StdDev), len(candles)),
		lower:  values(techan.NewBollingerLowerBandIndicator(closes, s.p.Period, s.p.StdDev), len(candles)),
	}
	return bollingerSignals(candles, b, s.p.Period)
}

type bands struct {
	middle, upper, lower []float64
}

// bollingerSignals はstart以降の足を判定します。バンド幅が0の足は無視します。
func bollingerSignals(candles []candleentity.Candle, b bands, start int) []entity.Signal {
	var out []entity.Signal
	pos := entity.Flat

	start = max(start, 1)
	for i := start; i < len(candles); i++ {
		mid, up, low := b.middle[i], b.upper[i], b.lower[i]
		if !finite(mid, up, low, b.middle[i-1]) || up <= low {
			continue
		}
		price, prev := candles[i].Close, candles[i-1].Close

		switch {
		case pos == entity.Flat:
			if price <= low {
				out = append(out, signalAt(candles, i, entity.Buy, entity.ReasonBollingerLower))
				pos = entity.Long
			}
		case price >= up:
			out = append(out, signalAt(candles, i, entity.Sell, entity.ReasonBollingerUpper))
			pos = entity.Flat
		case price < mid && prev >= b.middle[i-1]:
			out = append(out, signalAt(candles, i, entity.Sell, entity.ReasonBollingerMiddleCross))
			pos = entity.Flat
		}
	}
	return out
}
