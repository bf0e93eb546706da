// Package momentum はテクニカル指標（RSI・移動平均）に基づく補助ストラテジーを提供します。
// 指標の計算はtechanに任せ、ここではクロス判定とポジション管理のみを行います。
package momentum

import (
	"math"
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"

	candleentity "crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/strategy/domain/entity"
)

// toSeries はローソク足をtechanの時系列に変換します。
// 足の期間は隣接タイムスタンプの最小間隔とし、AddCandleが欠損のある系列も受け付けるようにします。
func toSeries(candles []candleentity.Candle) *techan.TimeSeries {
	var period time.Duration
	for i := 1; i < len(candles); i++ {
		gap := time.Duration(candles[i].Timestamp-candles[i-1].Timestamp) * time.Millisecond
		if gap > 0 && (period == 0 || gap < period) {
			period = gap
		}
	}
	if period == 0 {
		period = time.Minute
	}

	series := techan.NewTimeSeries()
	for _, c := range candles {
		tc := techan.NewCandle(techan.NewTimePeriod(time.UnixMilli(c.Timestamp).UTC(), period))
		tc.OpenPrice = big.NewDecimal(c.Open)
		tc.ClosePrice = big.NewDecimal(c.Close)
		tc.MaxPrice = big.NewDecimal(c.High)
		tc.MinPrice = big.NewDecimal(c.Low)
		tc.Volume = big.NewDecimal(c.Volume)
		series.AddCandle(tc)
	}
	return series
}

// values は指標を先頭から順に評価します。非有限値はNaNのまま返し、判定側で無視します。
func values(ind techan.Indicator, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = ind.Calculate(i).Float()
	}
	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// noGeometry はトレンドラインを持たないストラテジー向けの空実装です。
type noGeometry struct{}

func (noGeometry) DetectExtrema([]candleentity.Candle) ([]entity.Extremum, error) { return nil, nil }

func (noGeometry) FitTrendlines([]entity.Extremum) (support, resistance *entity.Trendline) {
	return nil, nil
}

func signalAt(candles []candleentity.Candle, i int, typ entity.SignalType, reason string) entity.Signal {
	return entity.Signal{
		Index:     i,
		Timestamp: candles[i].Timestamp,
		Price:     candles[i].Close,
		Type:      typ,
		Reason:    reason,
	}
}
