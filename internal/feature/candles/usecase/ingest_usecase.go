package usecase

import (
	"context"
	"log/slog"

	"crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/shared/ratelimiter"
)

const (
	ingestLimit = 500 // 1回のリクエストで取得するローソク足の件数
)

// ingestTimeframes はデータ取得の対象となる時間足のリストです。
var ingestTimeframes = []string{"1h", "4h", "1d"}

// CandleWriter はローソク足を永続化するリポジトリのインターフェイスです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CandleWriter interface {
	UpsertBatch(ctx context.Context, candles []entity.Candle) error
}

// CacheInvalidator は書き込み後に古いキャッシュを破棄するためのインターフェイスです。
type CacheInvalidator interface {
	Invalidate(ctx context.Context, symbol, timeframe string) error
}

// IngestUsecase は取引所APIからローソク足を取得し、データベースに永続化するユースケースを定義します。
type IngestUsecase struct {
	market      CandleSource
	store       CandleWriter
	cache       CacheInvalidator
	rateLimiter ratelimiter.Limiter
}

// NewIngestUsecase は新しい IngestUsecase を作成します。cache は nil でも構いません。
func NewIngestUsecase(market CandleSource, store CandleWriter, cache CacheInvalidator, rateLimiter ratelimiter.Limiter) *IngestUsecase {
	return &IngestUsecase{market: market, store: store, cache: cache, rateLimiter: rateLimiter}
}

// ingestOne は指定された銘柄と時間足のローソク足を取引所から取得し、
// データベースに一括で挿入（または更新）します。
func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol, timeframe string, limit int) error {
	cs, err := iu.market.GetCandles(ctx, symbol, timeframe, limit)
	if err != nil {
		return err
	}

	// 取得したデータに銘柄と時間足を設定
	for i := range cs {
		cs[i].Symbol = symbol
		cs[i].Timeframe = timeframe
	}
	if err := iu.store.UpsertBatch(ctx, cs); err != nil {
		return err
	}

	if iu.cache != nil {
		if err := iu.cache.Invalidate(ctx, symbol, timeframe); err != nil {
			slog.Warn("failed to invalidate candle cache", "symbol", symbol, "timeframe", timeframe, "error", err)
		}
	}
	return nil
}

// IngestAll は指定された全銘柄のローソク足を複数の時間足（1h, 4h, 1d）で取得し、
// データベースに永続化します。取引所のレートリミットを考慮してリクエスト前に待機します。
// 1つの銘柄で失敗しても処理は継続し、コンテキストがキャンセルされた場合のみエラーを返します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string) error {
	for _, s := range symbols {
		for _, tf := range ingestTimeframes {
			if err := iu.rateLimiter.Wait(ctx); err != nil {
				return err
			}
			if err := iu.ingestOne(ctx, s, tf, ingestLimit); err != nil {
				slog.Error("failed to ingest candles", "symbol", s, "timeframe", tf, "error", err)
				continue
			}
		}
	}
	return nil
}
