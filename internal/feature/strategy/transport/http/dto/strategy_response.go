// Package dto はstrategyフィーチャーのリクエスト/レスポンスDTOを定義します。
package dto

import (
	"time"

	pnldto "crypto_backend/internal/feature/pnl/transport/http/dto"
	"crypto_backend/internal/feature/strategy/domain/entity"
	"crypto_backend/internal/shared/numfmt"
)

type ParamSpecResponse struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Default     string   `json:"default"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Options     []string `json:"options,omitempty"`
	Description string   `json:"description,omitempty"`
}

// StrategyResponse は GET /strategies の1要素です。
type StrategyResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Params      []ParamSpecResponse `json:"params"`
}

type ExtremumResponse struct {
	Index     int     `json:"index"`
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Kind      string  `json:"kind"`
}

// TrendlineResponse の傾き・切片は丸めずに返します（クライアント側で線を再描画するため）。
type TrendlineResponse struct {
	Kind       string  `json:"kind"`
	Slope      float64 `json:"slope"`
	Intercept  float64 `json:"intercept"`
	FittedFrom int     `json:"fitted_from"`
	FittedTo   int     `json:"fitted_to"`
	Points     int     `json:"points"`
}

type SignalResponse struct {
	Index     int     `json:"index"`
	Timestamp int64   `json:"timestamp"`
	Time      string  `json:"time"`
	Price     float64 `json:"price"`
	Type      string  `json:"type"`
	Reason    string  `json:"reason"`
}

// AnalysisResponse は GET /strategies/:id/analysis のレスポンスです。
type AnalysisResponse struct {
	Strategy         string             `json:"strategy"`
	Symbol           string             `json:"symbol"`
	Timeframe        string             `json:"timeframe"`
	Params           map[string]string  `json:"params"`
	CurrentSignal    string             `json:"current_signal"`
	Position         string             `json:"position"`
	CurrentPrice     float64            `json:"current_price"`
	LastTimestamp    int64              `json:"last_timestamp"`
	CandleCount      int                `json:"candle_count"`
	Extrema          []ExtremumResponse `json:"extrema"`
	Support          *TrendlineResponse `json:"support"`
	Resistance       *TrendlineResponse `json:"resistance"`
	Signals          []SignalResponse   `json:"signals"`
	TotalBuySignals  int                `json:"total_buy_signals"`
	TotalSellSignals int                `json:"total_sell_signals"`
}

// BacktestResponse は GET /strategies/:id/backtest のレスポンスです。
type BacktestResponse struct {
	Strategy    string                `json:"strategy"`
	Symbol      string                `json:"symbol"`
	Timeframe   string                `json:"timeframe"`
	Params      map[string]string     `json:"params"`
	CandleCount int                   `json:"candle_count"`
	Position    string                `json:"position"`
	Result      pnldto.ReportResponse `json:"result"`
}

// ScanRequest は POST /strategies/:id/scan のリクエストボディです。
type ScanRequest struct {
	Symbols   []string          `json:"symbols" binding:"required,min=1"`
	Timeframe string            `json:"timeframe"`
	Limit     int               `json:"limit"`
	Params    map[string]string `json:"params"`
}

// ScanItemResponse はresultかerrorのどちらか一方を持ちます。
type ScanItemResponse struct {
	Symbol string            `json:"symbol"`
	Result *AnalysisResponse `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func FromDescriptor(d entity.Descriptor) StrategyResponse {
	params := make([]ParamSpecResponse, 0, len(d.Params))
	for _, p := range d.Params {
		pr := ParamSpecResponse{
			Name:        p.Name,
			Type:        string(p.Type),
			Default:     p.Default,
			Options:     p.Options,
			Description: p.Description,
		}
		if p.Type != entity.ParamEnum {
			lo, hi := p.Min, p.Max
			pr.Min, pr.Max = &lo, &hi
		}
		params = append(params, pr)
	}
	return StrategyResponse{
		ID:          string(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Params:      params,
	}
}

func FromTrendline(t *entity.Trendline) *TrendlineResponse {
	if t == nil {
		return nil
	}
	return &TrendlineResponse{
		Kind:       string(t.Kind),
		Slope:      t.Slope,
		Intercept:  t.Intercept,
		FittedFrom: t.FittedFrom,
		FittedTo:   t.FittedTo,
		Points:     t.Points,
	}
}

func FromSignals(signals []entity.Signal) []SignalResponse {
	out := make([]SignalResponse, 0, len(signals))
	for _, s := range signals {
		out = append(out, SignalResponse{
			Index:     s.Index,
			Timestamp: s.Timestamp,
			Time:      time.UnixMilli(s.Timestamp).UTC().Format(time.RFC3339),
			Price:     numfmt.Money(s.Price),
			Type:      string(s.Type),
			Reason:    s.Reason,
		})
	}
	return out
}

func FromAnalysis(r *entity.AnalysisResult) *AnalysisResponse {
	extrema := make([]ExtremumResponse, 0, len(r.Extrema))
	for _, e := range r.Extrema {
		extrema = append(extrema, ExtremumResponse{
			Index:     e.Index,
			Timestamp: e.Timestamp,
			Price:     numfmt.Money(e.Price),
			Kind:      string(e.Kind),
		})
	}
	return &AnalysisResponse{
		Strategy:         string(r.Strategy),
		Symbol:           r.Symbol,
		Timeframe:        r.Timeframe,
		Params:           r.Params,
		CurrentSignal:    string(r.CurrentSignal),
		Position:         string(r.Position),
		CurrentPrice:     numfmt.Money(r.CurrentPrice),
		LastTimestamp:    r.LastTimestamp,
		CandleCount:      r.CandleCount,
		Extrema:          extrema,
		Support:          FromTrendline(r.Support),
		Resistance:       FromTrendline(r.Resistance),
		Signals:          FromSignals(r.Signals),
		TotalBuySignals:  r.TotalBuySignals,
		TotalSellSignals: r.TotalSellSignals,
	}
}

func FromBacktest(b *entity.Backtest) *BacktestResponse {
	return &BacktestResponse{
		Strategy:    string(b.Strategy),
		Symbol:      b.Symbol,
		Timeframe:   b.Timeframe,
		Params:      b.Params,
		CandleCount: b.CandleCount,
		Position:    string(b.Position),
		Result:      pnldto.FromReport(b.Report),
	}
}

func FromScan(results []entity.ScanResult) []ScanItemResponse {
	out := make([]ScanItemResponse, 0, len(results))
	for _, r := range results {
		item := ScanItemResponse{Symbol: r.Symbol}
		if r.Err != nil {
			item.Error = r.Err.Error()
		} else if r.Result != nil {
			item.Result = FromAnalysis(r.Result)
		}
		out = append(out, item)
	}
	return out
}
