// Package dto はpnlフィーチャーのリクエスト/レスポンスDTOを定義します。
// 金額は小数2桁、数量は小数8桁に丸めて返します。
package dto

import (
	"sort"

	"crypto_backend/internal/feature/pnl/domain/entity"
	"crypto_backend/internal/shared/numfmt"
)

// TradeRequest は POST /trades と POST /pnl/compute の1要素です。
// Timestamp は0（エポック）も有効なため、省略との区別にポインタを使います。
type TradeRequest struct {
	ID        string  `json:"id"`
	Timestamp *int64  `json:"timestamp" binding:"required"`
	Symbol    string  `json:"symbol" binding:"required"`
	Side      string  `json:"side" binding:"required"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity" binding:"required"`
	Value     float64 `json:"value"`
}

func (r TradeRequest) ToEntity() entity.Trade {
	var ts int64
	if r.Timestamp != nil {
		ts = *r.Timestamp
	}
	return entity.Trade{
		ID:        r.ID,
		Timestamp: ts,
		Symbol:    r.Symbol,
		Side:      entity.Side(r.Side),
		Price:     r.Price,
		Quantity:  r.Quantity,
		Value:     r.Value,
	}
}

func ToEntities(rs []TradeRequest) []entity.Trade {
	out := make([]entity.Trade, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ToEntity())
	}
	return out
}

type TradeResponse struct {
	ID        string  `json:"id"`
	Timestamp int64   `json:"timestamp"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	Value     float64 `json:"value"`
}

type ImportResponse struct {
	Received int `json:"received"`
	Inserted int `json:"inserted"`
}

type MatchedLotResponse struct {
	Asset         string  `json:"asset"`
	BuyTradeID    string  `json:"buy_trade_id"`
	SellTradeID   string  `json:"sell_trade_id"`
	BuyPrice      float64 `json:"buy_price"`
	SellPrice     float64 `json:"sell_price"`
	Quantity      float64 `json:"quantity"`
	Profit        float64 `json:"profit"`
	ProfitPct     float64 `json:"profit_pct"`
	IsWin         bool    `json:"is_win"`
	BuyTimestamp  int64   `json:"buy_timestamp"`
	SellTimestamp int64   `json:"sell_timestamp"`
}

type StatsResponse struct {
	TradeCount  int                 `json:"trade_count"`
	Wins        int                 `json:"wins"`
	Losses      int                 `json:"losses"`
	WinRate     float64             `json:"win_rate"`
	AverageWin  float64             `json:"average_win"`
	AverageLoss float64             `json:"average_loss"`
	TotalPnL    float64             `json:"total_pnl"`
	Best        *MatchedLotResponse `json:"best"`
	Worst       *MatchedLotResponse `json:"worst"`
}

type AssetResponse struct {
	Asset    string            `json:"asset"`
	Stats    StatsResponse     `json:"stats"`
	OpenLots []OpenLotResponse `json:"open_lots"`
}

type OpenLotResponse struct {
	TradeID   string  `json:"trade_id"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

type UnmatchedSellResponse struct {
	TradeID   string  `json:"trade_id"`
	Asset     string  `json:"asset"`
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
}

// ReportResponse は GET /pnl と POST /pnl/compute のレスポンスです。
type ReportResponse struct {
	TotalRealizedPnL float64                 `json:"total_realized_pnl"`
	Summary          StatsResponse           `json:"summary"`
	Assets           []AssetResponse         `json:"assets"`
	MatchedLots      []MatchedLotResponse    `json:"matched_lots"`
	Unmatched        []UnmatchedSellResponse `json:"unmatched_sells"`
}

type DailyPnLResponse struct {
	Date   string  `json:"date"`
	PnL    float64 `json:"pnl"`
	Trades int     `json:"trades"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
}

func FromTrades(ts []entity.Trade) []TradeResponse {
	out := make([]TradeResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, TradeResponse{
			ID:        t.ID,
			Timestamp: t.Timestamp,
			Symbol:    t.Symbol,
			Side:      string(t.Side),
			Price:     numfmt.Money(t.Price),
			Quantity:  numfmt.Quantity(t.Quantity),
			Value:     numfmt.Money(t.Value),
		})
	}
	return out
}

func fromLot(l entity.MatchedLot) MatchedLotResponse {
	return MatchedLotResponse{
		Asset:         l.Asset,
		BuyTradeID:    l.BuyTradeID,
		SellTradeID:   l.SellTradeID,
		BuyPrice:      numfmt.Money(l.BuyPrice),
		SellPrice:     numfmt.Money(l.SellPrice),
		Quantity:      numfmt.Quantity(l.Quantity),
		Profit:        numfmt.Money(l.Profit),
		ProfitPct:     numfmt.Percent(l.ProfitPct),
		IsWin:         l.IsWin,
		BuyTimestamp:  l.BuyTimestamp,
		SellTimestamp: l.SellTimestamp,
	}
}

func lotPtr(l *entity.MatchedLot) *MatchedLotResponse {
	if l == nil {
		return nil
	}
	r := fromLot(*l)
	return &r
}

func fromStats(s entity.Stats) StatsResponse {
	return StatsResponse{
		TradeCount:  s.TradeCount,
		Wins:        s.Wins,
		Losses:      s.Losses,
		WinRate:     numfmt.Percent(s.WinRate),
		AverageWin:  numfmt.Money(s.AverageWin),
		AverageLoss: numfmt.Money(s.AverageLoss),
		TotalPnL:    numfmt.Money(s.TotalPnL),
		Best:        lotPtr(s.Best),
		Worst:       lotPtr(s.Worst),
	}
}

// FromReport はレポートをレスポンスに変換します。
// 買いのみで照合ロットのない銘柄も、未消化ロットがあればassetsに含めます。
func FromReport(r *entity.Report) ReportResponse {
	assets := make([]AssetResponse, 0, len(r.PerAsset))
	seen := make(map[string]bool, len(r.PerAsset))
	for _, a := range r.PerAsset {
		seen[a.Asset] = true
		assets = append(assets, AssetResponse{Asset: a.Asset, Stats: fromStats(a.Stats), OpenLots: fromOpenLots(r.OpenLots[a.Asset])})
	}
	for asset, lots := range r.OpenLots {
		if !seen[asset] {
			assets = append(assets, AssetResponse{Asset: asset, Stats: fromStats(entity.Stats{}), OpenLots: fromOpenLots(lots)})
		}
	}
	sort.SliceStable(assets, func(i, j int) bool { return assets[i].Asset < assets[j].Asset })

	lots := make([]MatchedLotResponse, 0, len(r.MatchedLots))
	for _, l := range r.MatchedLots {
		lots = append(lots, fromLot(l))
	}
	unmatched := make([]UnmatchedSellResponse, 0, len(r.Unmatched))
	for _, u := range r.Unmatched {
		unmatched = append(unmatched, UnmatchedSellResponse{
			TradeID:   u.TradeID,
			Asset:     u.Asset,
			Timestamp: u.Timestamp,
			Price:     numfmt.Money(u.Price),
			Quantity:  numfmt.Quantity(u.Quantity),
		})
	}

	return ReportResponse{
		TotalRealizedPnL: numfmt.Money(r.TotalRealizedPnL),
		Summary:          fromStats(r.Summary),
		Assets:           assets,
		MatchedLots:      lots,
		Unmatched:        unmatched,
	}
}

func fromOpenLots(ls []entity.OpenLot) []OpenLotResponse {
	out := make([]OpenLotResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, OpenLotResponse{
			TradeID:   l.TradeID,
			Quantity:  numfmt.Quantity(l.Quantity),
			Price:     numfmt.Money(l.Price),
			Timestamp: l.Timestamp,
		})
	}
	return out
}

func FromDaily(ds []entity.DailyPnL) []DailyPnLResponse {
	out := make([]DailyPnLResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, DailyPnLResponse{
			Date:   d.Date,
			PnL:    numfmt.Money(d.PnL),
			Trades: d.Trades,
			Wins:   d.Wins,
			Losses: d.Losses,
		})
	}
	return out
}
