package momentum

import (
	"github.com/sdcoffey/techan"

	candleentity "crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/strategy/domain/entity"
)

// 出来高急増で建てたポジションの決済条件
const (
	takeProfitRatio = 1.05
	stopLossRatio   = 0.97
	maxHoldBars     = 24
)

type VolumeSpikeParams struct {
	VolumePeriod         int
	SpikeMultiplier      float64
	PriceChangeThreshold float64 // 始値からの変化率（0.01 = 1%）
}

// VolumeSpikeStrategy は出来高が平均のSpikeMultiplier倍を超えた陽線で買い、
// 陰線の急増・利確・損切り・保有期間上限のいずれかで手仕舞います。
type VolumeSpikeStrategy struct {
	noGeometry
	p VolumeSpikeParams
}

func NewVolumeSpike(p VolumeSpikeParams) *VolumeSpikeStrategy {
	return &VolumeSpikeStrategy{p: p}
}

func (s *VolumeSpikeStrategy) MinCandles() int {
	return s.p.VolumePeriod + 2
}

func (s *VolumeSpikeStrategy) GenerateSignals(candles []candleentity.Candle, _ []entity.Extremum, _, _ *entity.Trendline) []entity.Signal {
	if len(candles) == 0 {
		return nil
	}
	avg := techan.NewSimpleMovingAverage(techan.NewVolumeIndicator(toSeries(candles)), s.p.VolumePeriod)
	return volumeSpikeSignals(candles, values(avg, len(candles)), s.p)
}

// spike は出来高急増の向き（陽線1、陰線-1）を返します。急増でなければ0です。
func spike(c candleentity.Candle, avgVolume float64, p VolumeSpikeParams) int {
	if !(avgVolume > 0) || !(c.Open > 0) || c.Volume/avgVolume <= p.SpikeMultiplier {
		return 0
	}
	switch change := (c.Close - c.Open) / c.Open; {
	case change > p.PriceChangeThreshold:
		return 1
	case change < -p.PriceChangeThreshold:
		return -1
	}
	return 0
}

func volumeSpikeSignals(candles []candleentity.Candle, avgVolume []float64, p VolumeSpikeParams) []entity.Signal {
	var out []entity.Signal
	pos := entity.Flat
	var entry float64
	var held int

	for i := p.VolumePeriod; i < len(candles); i++ {
		if !finite(avgVolume[i]) {
			continue
		}
		c := candles[i]
		dir := spike(c, avgVolume[i], p)

		if pos == entity.Flat {
			if dir > 0 {
				out = append(out, signalAt(candles, i, entity.Buy, entity.ReasonVolumeSpikeBullish))
				pos, entry, held = entity.Long, c.Close, 0
			}
			continue
		}

		held++
		reason := ""
		switch {
		case dir < 0:
			reason = entity.ReasonVolumeSpikeBearish
		case c.Close >= entry*takeProfitRatio:
			reason = entity.ReasonTakeProfit
		case c.Close <= entry*stopLossRatio:
			reason = entity.ReasonStopLoss
		case held >= maxHoldBars:
			reason = entity.ReasonMaxHold
		}
		if reason != "" {
			out = append(out, signalAt(candles, i, entity.Sell, reason))
			pos = entity.Flat
		}
	}
	return out
}
