// Package trendline はトレンドラインブレイクアウト戦略のアルゴリズムを実装します。
// 局所極値の検出、回帰直線の当てはめ、ブレイクアウトによるシグナル生成の3段階から成ります。
package trendline

import (
	"fmt"

	candleentity "crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/strategy/domain"
	"crypto_backend/internal/feature/strategy/domain/entity"
)

// DetectExtrema は前後windowOrder本の範囲で高値が厳密に最大の足をTOP、
// 安値が厳密に最小の足をBOTTOMとして返します。
//
// 先頭と末尾のwindowOrder本は判定しません。TOPとBOTTOMの両方を満たす足
// （前後を包む大陰線・大陽線）はどちらとしても扱いません。
// 戻り値はインデックス昇順です。
func DetectExtrema(candles []candleentity.Candle, windowOrder int) ([]entity.Extremum, error) {
	n := len(candles)
	if windowOrder < 1 || 2*windowOrder >= n {
		return nil, fmt.Errorf("%w: window_order %d with %d candles", domain.ErrInvalidParameter, windowOrder, n)
	}

	var out []entity.Extremum
	for i := windowOrder; i < n-windowOrder; i++ {
		top, bottom := true, true
		for j := i - windowOrder; j <= i+windowOrder && (top || bottom); j++ {
			if j == i {
				continue
			}
			if candles[j].High >= candles[i].High {
				top = false
			}
			if candles[j].Low <= candles[i].Low {
				bottom = false
			}
		}

		switch {
		case top && bottom:
			// outside bar
		case top:
			out = append(out, entity.Extremum{Index: i, Timestamp: candles[i].Timestamp, Price: candles[i].High, Kind: entity.Top})
		case bottom:
			out = append(out, entity.Extremum{Index: i, Timestamp: candles[i].Timestamp, Price: candles[i].Low, Kind: entity.Bottom})
		}
	}
	return out, nil
}
