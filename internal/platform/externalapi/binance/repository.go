package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/candles/usecase"
	"crypto_backend/internal/platform/externalapi/binance/dto"
	"crypto_backend/internal/shared/ratelimiter"
)

// BinanceMarket はBinance REST APIからローソク足を取得するCandleSource実装です。
type BinanceMarket struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
}

// BinanceMarketがCandleSourceを実装していることをコンパイル時に検証します。
var _ usecase.CandleSource = (*BinanceMarket)(nil)

// NewBinanceMarket は指定された設定とHTTPクライアントでBinanceMarketの新しいインスタンスを生成します。
// limiter が nil の場合はレート制限を行いません。
func NewBinanceMarket(cfg Config, client *http.Client, limiter ratelimiter.Limiter) *BinanceMarket {
	return &BinanceMarket{cfg: cfg, client: client, limiter: limiter}
}

// exchangeSymbol は "BTC/USDT" 形式の銘柄を Binance の "BTCUSDT" 形式に変換します。
func exchangeSymbol(symbol string) string {
	return strings.ReplaceAll(entity.NormalizeSymbol(symbol), "/", "")
}

// GetCandles はBinanceのklinesエンドポイントから直近limit件のローソク足を取得し、
// 時系列昇順のentity.Candleスライスとして返します。
func (b *BinanceMarket) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	q := url.Values{}
	q.Set("symbol", exchangeSymbol(symbol))
	q.Set("interval", timeframe)
	q.Set("limit", strconv.Itoa(limit))

	u := fmt.Sprintf("%s/api/v3/klines?%s", strings.TrimRight(b.cfg.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		var apiErr dto.APIError
		if err := json.NewDecoder(res.Body).Decode(&apiErr); err == nil && apiErr.Msg != "" {
			return nil, fmt.Errorf("binance http %d: %s", res.StatusCode, apiErr.Msg)
		}
		return nil, fmt.Errorf("binance http %d", res.StatusCode)
	}

	var rows []dto.Kline
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	norm := entity.NormalizeSymbol(symbol)
	candles := make([]entity.Candle, 0, len(rows))
	for _, k := range rows {
		c, err := toCandle(k)
		if err != nil {
			return nil, err
		}
		c.Symbol = norm
		c.Timeframe = timeframe
		candles = append(candles, c)
	}
	return candles, nil
}

func toCandle(k dto.Kline) (entity.Candle, error) {
	o, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse open %q: %w", k.Open, err)
	}
	h, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse high %q: %w", k.High, err)
	}
	l, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse low %q: %w", k.Low, err)
	}
	c, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse close %q: %w", k.Close, err)
	}
	v, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse volume %q: %w", k.Volume, err)
	}
	return entity.Candle{
		Timestamp: k.OpenTime,
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    v,
	}, nil
}
