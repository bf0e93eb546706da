// Package usecase はストラテジー実行（ローソク足取得→極値→トレンドライン→シグナル）を統括します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"golang.org/x/sync/errgroup"

	candleentity "crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/strategy/domain"
	"crypto_backend/internal/feature/strategy/domain/entity"
)

const (
	DefaultStrategy  = entity.TrendlineBreakout
	DefaultSymbol    = "BTC/USDT"
	DefaultTimeframe = "1h"
	DefaultLimit     = 500
	MaxLimit         = 1000

	DefaultFetchTimeout = 10 * time.Second

	// MaxScanSymbols はScan1回で分析できる銘柄数の上限です。
	MaxScanSymbols  = 20
	scanConcurrency = 4

	DefaultRecentSignals = 10
	MaxRecentSignals     = 100
)

// CandleSource はローソク足の取得元を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleSource interface {
	GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]candleentity.Candle, error)
}

type AnalyzeRequest struct {
	Strategy  entity.StrategyID
	Symbol    string
	Timeframe string
	Limit     int
	Params    map[string]string
}

type ScanRequest struct {
	Strategy  entity.StrategyID
	Symbols   []string
	Timeframe string
	Limit     int
	Params    map[string]string
}

type analysisUsecase struct {
	source  CandleSource
	timeout time.Duration
}

// NewAnalysisUsecase はanalysisUsecaseを生成します。timeoutが0以下の場合は10秒です。
func NewAnalysisUsecase(source CandleSource, timeout time.Duration) *analysisUsecase {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &analysisUsecase{source: source, timeout: timeout}
}

// Strategies は利用可能なストラテジー一覧を返します。
func (u *analysisUsecase) Strategies() []entity.Descriptor {
	return Descriptors()
}

func withDefaults(req AnalyzeRequest) (AnalyzeRequest, error) {
	if req.Strategy == "" {
		req.Strategy = DefaultStrategy
	}
	req.Symbol = candleentity.NormalizeSymbol(req.Symbol)
	if req.Symbol == "" {
		req.Symbol = DefaultSymbol
	}
	if req.Timeframe == "" {
		req.Timeframe = DefaultTimeframe
	}
	if _, ok := candleentity.TimeframeDuration(req.Timeframe); !ok {
		return req, fmt.Errorf("%w: timeframe %q", domain.ErrInvalidParameter, req.Timeframe)
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	req.Limit = min(req.Limit, MaxLimit)
	return req, nil
}

// Analyze はローソク足を取得してストラテジーを実行します。
// 取得失敗・タイムアウト・本数不足はいずれもErrDataUnavailableとなり、部分的な結果は返しません。
func (u *analysisUsecase) Analyze(ctx context.Context, req AnalyzeRequest) (*entity.AnalysisResult, error) {
	req, err := withDefaults(req)
	if err != nil {
		return nil, err
	}
	strategy, params, err := BuildStrategy(req.Strategy, req.Params)
	if err != nil {
		return nil, err
	}
	return u.run(ctx, req, strategy, params)
}

func (u *analysisUsecase) run(ctx context.Context, req AnalyzeRequest, strategy Strategy, params map[string]string) (*entity.AnalysisResult, error) {
	candles, err := u.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if need := strategy.MinCandles(); len(candles) < need {
		return nil, fmt.Errorf("%w: %s %s needs %d candles, got %d", domain.ErrDataUnavailable, req.Symbol, req.Timeframe, need, len(candles))
	}

	extrema, err := strategy.DetectExtrema(candles)
	if err != nil {
		return nil, err
	}
	support, resistance := strategy.FitTrendlines(extrema)
	signals := strategy.GenerateSignals(candles, extrema, support, resistance)

	last := candles[len(candles)-1]
	res := &entity.AnalysisResult{
		Strategy:      req.Strategy,
		Symbol:        req.Symbol,
		Timeframe:     req.Timeframe,
		Params:        params,
		CurrentSignal: entity.Hold,
		Position:      entity.FinalPosition(signals),
		CurrentPrice:  last.Close,
		LastTimestamp: last.Timestamp,
		CandleCount:   len(candles),
		Extrema:       extrema,
		Support:       support,
		Resistance:    resistance,
		Signals:       signals,
	}
	if len(signals) > 0 {
		res.CurrentSignal = signals[len(signals)-1].Type
	}
	for _, s := range signals {
		if s.Type == entity.Buy {
			res.TotalBuySignals++
		} else {
			res.TotalSellSignals++
		}
	}
	return res, nil
}

func (u *analysisUsecase) fetch(ctx context.Context, req AnalyzeRequest) ([]candleentity.Candle, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	candles, err := u.source.GetCandles(fetchCtx, req.Symbol, req.Timeframe, req.Limit)
	if err == nil {
		err = fetchCtx.Err()
	}
	if err != nil {
		slog.Warn("candle fetch failed", "symbol", req.Symbol, "timeframe", req.Timeframe, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrDataUnavailable, req.Symbol, req.Timeframe, err)
	}
	return candleentity.NormalizeCandles(candles), nil
}

// Scan は複数銘柄を同じストラテジーで並列に分析します。結果は入力順で、
// 銘柄ごとの失敗はScanResult.Errに格納されます。
func (u *analysisUsecase) Scan(ctx context.Context, req ScanRequest) ([]entity.ScanResult, error) {
	if len(req.Symbols) == 0 || len(req.Symbols) > MaxScanSymbols {
		return nil, fmt.Errorf("%w: symbols must contain 1 to %d entries, got %d", domain.ErrInvalidParameter, MaxScanSymbols, len(req.Symbols))
	}

	base, err := withDefaults(AnalyzeRequest{Strategy: req.Strategy, Symbol: DefaultSymbol, Timeframe: req.Timeframe, Limit: req.Limit, Params: req.Params})
	if err != nil {
		return nil, err
	}
	strategy, params, err := BuildStrategy(base.Strategy, base.Params)
	if err != nil {
		return nil, err
	}

	results := make([]entity.ScanResult, len(req.Symbols))
	var g errgroup.Group
	g.SetLimit(scanConcurrency)
	for i, sym := range req.Symbols {
		r := base
		r.Symbol = candleentity.NormalizeSymbol(sym)
		results[i].Symbol = r.Symbol
		if r.Symbol == "" {
			results[i].Err = fmt.Errorf("%w: empty symbol at position %d", domain.ErrInvalidParameter, i)
			continue
		}
		g.Go(func() error {
			res, err := u.run(ctx, r, strategy, maps.Clone(params))
			results[i].Result, results[i].Err = res, err
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// RecentSignals は分析結果のうち直近n件のシグナルを返します。
// nが0以下なら10件、100件を超える場合は100件に制限します。
func (u *analysisUsecase) RecentSignals(ctx context.Context, req AnalyzeRequest, n int) ([]entity.Signal, error) {
	if n <= 0 {
		n = DefaultRecentSignals
	}
	n = min(n, MaxRecentSignals)

	res, err := u.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	signals := res.Signals
	if len(signals) > n {
		signals = signals[len(signals)-n:]
	}
	return signals, nil
}
