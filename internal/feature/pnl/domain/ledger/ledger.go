// Package ledger は約定履歴を先入先出（FIFO）で照合し、実現損益を計算します。
// 入力は変更せず、内部で丸めも行いません。
package ledger

import (
	"fmt"
	"math"
	"sort"
	"time"

	"crypto_backend/internal/feature/pnl/domain"
	"crypto_backend/internal/feature/pnl/domain/entity"
)

// relTolerance は数量に対する相対誤差の許容幅です。
const relTolerance = 1e-9

// negligible は残量qが元の数量sizeに対して浮動小数点の誤差程度かどうかを返します。
func negligible(q, size float64) bool {
	return q <= relTolerance*math.Max(1, math.Abs(size))
}

// Validate は台帳に渡せる取引かどうかを検証します。
func Validate(t entity.Trade) error {
	switch {
	case t.Symbol == "":
		return fmt.Errorf("%w: trade %q: empty symbol", domain.ErrInvalidParameter, t.ID)
	case t.Side != entity.SideBuy && t.Side != entity.SideSell:
		return fmt.Errorf("%w: trade %q: side must be buy or sell, got %q", domain.ErrInvalidParameter, t.ID, t.Side)
	case !(t.Quantity > 0) || math.IsInf(t.Quantity, 0):
		return fmt.Errorf("%w: trade %q: quantity must be positive, got %v", domain.ErrInvalidParameter, t.ID, t.Quantity)
	case !(t.Price >= 0) || math.IsInf(t.Price, 0):
		return fmt.Errorf("%w: trade %q: price must be non-negative, got %v", domain.ErrInvalidParameter, t.ID, t.Price)
	}
	return nil
}

// ordered は銘柄→時刻→買い優先の順に並べたコピーを返します。それ以外は入力順を保ちます。
func ordered(trades []entity.Trade) []entity.Trade {
	out := make([]entity.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return a.Side == entity.SideBuy && b.Side == entity.SideSell
	})
	return out
}

// Compute は取引を銘柄ごとにFIFOで照合してレポートを返します。
// 対応する買いのない売り数量はReport.Unmatchedに記録し、処理を続けます。
func Compute(trades []entity.Trade) (*entity.Report, error) {
	for _, t := range trades {
		if err := Validate(t); err != nil {
			return nil, err
		}
	}

	rep := &entity.Report{
		MatchedLots: []entity.MatchedLot{},
		PerAsset:    []entity.AssetBreakdown{},
		OpenLots:    map[string][]entity.OpenLot{},
		Unmatched:   []entity.UnmatchedSell{},
	}

	var assets []string
	spans := map[string][2]int{}
	var queue []entity.OpenLot
	flush := func(asset string, from int) {
		spans[asset] = [2]int{from, len(rep.MatchedLots)}
		if len(queue) > 0 {
			rep.OpenLots[asset] = queue
		}
		queue = nil
	}

	sorted := ordered(trades)
	from := 0
	for i, t := range sorted {
		if i == 0 || t.Symbol != sorted[i-1].Symbol {
			if i > 0 {
				flush(sorted[i-1].Symbol, from)
			}
			assets = append(assets, t.Symbol)
			from = len(rep.MatchedLots)
		}

		if t.Side == entity.SideBuy {
			queue = append(queue, entity.OpenLot{TradeID: t.ID, Quantity: t.Quantity, Price: t.Price, Timestamp: t.Timestamp})
			continue
		}

		remaining := t.Quantity
		for !negligible(remaining, t.Quantity) && len(queue) > 0 {
			front := &queue[0]
			before := front.Quantity
			qty := math.Min(remaining, before)
			rep.MatchedLots = append(rep.MatchedLots, matchLot(t, *front, qty))

			remaining -= qty
			front.Quantity -= qty
			if negligible(front.Quantity, math.Max(before, t.Quantity)) {
				queue = queue[1:]
			}
		}
		if !negligible(remaining, t.Quantity) {
			rep.Unmatched = append(rep.Unmatched, entity.UnmatchedSell{
				TradeID:   t.ID,
				Asset:     t.Symbol,
				Timestamp: t.Timestamp,
				Price:     t.Price,
				Quantity:  remaining,
			})
		}
	}
	if len(sorted) > 0 {
		flush(sorted[len(sorted)-1].Symbol, from)
	}

	for _, a := range assets {
		span := spans[a]
		rep.PerAsset = append(rep.PerAsset, entity.AssetBreakdown{
			Asset: a,
			Stats: stats(rep.MatchedLots[span[0]:span[1]]),
		})
	}
	rep.Summary = stats(rep.MatchedLots)
	rep.TotalRealizedPnL = rep.Summary.TotalPnL
	return rep, nil
}

func matchLot(sell entity.Trade, buy entity.OpenLot, qty float64) entity.MatchedLot {
	profit := (sell.Price - buy.Price) * qty
	pct := 0.0
	if buy.Price != 0 {
		pct = (sell.Price - buy.Price) / buy.Price * 100
	}
	return entity.MatchedLot{
		Asset:         sell.Symbol,
		BuyTradeID:    buy.TradeID,
		SellTradeID:   sell.ID,
		BuyPrice:      buy.Price,
		SellPrice:     sell.Price,
		Quantity:      qty,
		Profit:        profit,
		ProfitPct:     pct,
		IsWin:         profit > 0,
		BuyTimestamp:  buy.Timestamp,
		SellTimestamp: sell.Timestamp,
	}
}

// stats は照合済みロットの勝敗統計を計算します。Best/Worstはlotsの要素を指します。
func stats(lots []entity.MatchedLot) entity.Stats {
	s := entity.Stats{TradeCount: len(lots)}
	var winSum, lossSum float64
	for i := range lots {
		l := &lots[i]
		s.TotalPnL += l.Profit
		if l.Profit > 0 {
			s.Wins++
			winSum += l.Profit
		} else {
			s.Losses++
			lossSum += l.Profit
		}
		if s.Best == nil || l.Profit > s.Best.Profit {
			s.Best = l
		}
		if s.Worst == nil || l.Profit < s.Worst.Profit {
			s.Worst = l
		}
	}
	if s.Wins > 0 {
		s.AverageWin = winSum / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AverageLoss = lossSum / float64(s.Losses)
	}
	if n := s.Wins + s.Losses; n > 0 {
		s.WinRate = float64(s.Wins) / float64(n) * 100
	}
	return s
}

// Daily は照合済みロットを売却日（UTC）ごとに集計し、新しい日付順に返します。
func Daily(lots []entity.MatchedLot) []entity.DailyPnL {
	byDate := map[string]*entity.DailyPnL{}
	for _, l := range lots {
		date := time.UnixMilli(l.SellTimestamp).UTC().Format(time.DateOnly)
		d, ok := byDate[date]
		if !ok {
			d = &entity.DailyPnL{Date: date}
			byDate[date] = d
		}
		d.PnL += l.Profit
		d.Trades++
		if l.Profit > 0 {
			d.Wins++
		} else {
			d.Losses++
		}
	}

	out := make([]entity.DailyPnL, 0, len(byDate))
	for _, d := range byDate {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
