// Package usecase はローソク足データ操作のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"

	"crypto_backend/internal/feature/candles/domain"
	"crypto_backend/internal/feature/candles/domain/entity"
)

const (
	// DefaultTimeframe はローソク足クエリのデフォルト時間足です。
	DefaultTimeframe = "1h"
	// DefaultLimit はデフォルトのローソク足返却件数です。
	DefaultLimit = 200
	// MaxLimit はローソク足の最大返却件数です（取引所APIの上限に合わせる）。
	MaxLimit = 1000
)

// CandleSource はローソク足データの読み取りレイヤーを抽象化します。
// 取引所API・RDB・ClickHouseのいずれもこのインターフェースを満たします。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleSource interface {
	// GetCandles は指定された銘柄・時間足の直近limit件のローソク足を返します。
	GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error)
}

// candlesUsecase はローソク足データ操作のユースケースを定義します。
type candlesUsecase struct {
	source CandleSource
}

// NewCandlesUsecase はcandlesUsecaseの新しいインスタンスを生成します。
func NewCandlesUsecase(source CandleSource) *candlesUsecase {
	return &candlesUsecase{source: source}
}

// GetCandles は指定された銘柄と時間足のローソク足データを時系列昇順で取得します。
func (cu *candlesUsecase) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error) {
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}
	if _, ok := entity.TimeframeDuration(timeframe); !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTimeframe, timeframe)
	}
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	cs, err := cu.source.GetCandles(ctx, entity.NormalizeSymbol(symbol), timeframe, limit)
	if err != nil {
		return nil, err
	}

	// ソースによって降順で返るため、ここで昇順・重複なしに揃える
	return entity.NormalizeCandles(cs), nil
}
