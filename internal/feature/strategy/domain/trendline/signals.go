package trendline

import (
	candleentity "crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/strategy/domain/entity"
)

// GenerateSignals は終値とトレンドラインの交差からBUY/SELLシグナルを生成します。
//
// ノーポジション時:
//   - レジスタンスの上抜け → BUY (resistance_breakout)
//   - サポートの上抜け（割り込み後の回復） → BUY (support_breakout)
//
// ロング時（上から順に優先）:
//   - サポートの下抜け → SELL (support_breakdown)
//   - レジスタンスの下抜け（ダマシ） → SELL (resistance_breakdown)
//   - 確定済み極値の価格を下抜け → SELL (level_break)
//
// 極値はk+windowOrder < iとなった時点で確定とみなし、未来の足を参照しません。
// 1本の足で発生するシグナルは最大1つです。
func GenerateSignals(candles []candleentity.Candle, support, resistance *entity.Trendline, extrema []entity.Extremum, windowOrder int) []entity.Signal {
	var out []entity.Signal
	pos := entity.Flat

	for i := 1; i < len(candles); i++ {
		prev, cur := candles[i-1].Close, candles[i].Close

		var typ entity.SignalType
		var reason string
		if pos == entity.Flat {
			switch {
			case crossesUp(resistance, i, prev, cur):
				typ, reason = entity.Buy, entity.ReasonResistanceBreakout
			case crossesUp(support, i, prev, cur):
				typ, reason = entity.Buy, entity.ReasonSupportBreakout
			}
		} else {
			switch {
			case crossesDown(support, i, prev, cur):
				typ, reason = entity.Sell, entity.ReasonSupportBreakdown
			case crossesDown(resistance, i, prev, cur):
				typ, reason = entity.Sell, entity.ReasonResistanceBreakdown
			case breaksLevel(extrema, windowOrder, i, prev, cur):
				typ, reason = entity.Sell, entity.ReasonLevelBreak
			}
		}
		if typ == "" {
			continue
		}

		out = append(out, entity.Signal{
			Index:     i,
			Timestamp: candles[i].Timestamp,
			Price:     cur,
			Type:      typ,
			Reason:    reason,
		})
		if typ == entity.Buy {
			pos = entity.Long
		} else {
			pos = entity.Flat
		}
	}
	return out
}

func crossesUp(line *entity.Trendline, i int, prev, cur float64) bool {
	if !line.ActiveAt(i - 1) {
		return false
	}
	return prev < line.ValueAt(i-1) && cur > line.ValueAt(i)
}

func crossesDown(line *entity.Trendline, i int, prev, cur float64) bool {
	if !line.ActiveAt(i - 1) {
		return false
	}
	return prev > line.ValueAt(i-1) && cur < line.ValueAt(i)
}

func breaksLevel(extrema []entity.Extremum, windowOrder, i int, prev, cur float64) bool {
	for _, e := range extrema {
		if e.Index+windowOrder >= i {
			continue
		}
		if prev >= e.Price && cur < e.Price {
			return true
		}
	}
	return false
}
