// Package adapters はcandlesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"slices"

	"crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/candles/usecase"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// candleStore はローソク足をRDBに保存・検索するgorm実装です。
type candleStore struct {
	db *gorm.DB
}

var (
	_ usecase.CandleSource = (*candleStore)(nil)
	_ usecase.CandleWriter = (*candleStore)(nil)
)

// NewCandleRepository は指定されたDB接続でcandleStoreの新しいインスタンスを生成します。
func NewCandleRepository(db *gorm.DB) *candleStore {
	return &candleStore{db: db}
}

// CandleModel は candles テーブルの行です。(symbol, timeframe, open_time) で一意になります。
type CandleModel struct {
	ID        uint   `gorm:"primaryKey"`
	Symbol    string `gorm:"size:32;not null;uniqueIndex:candle_sym_tf_time,priority:1"`
	Timeframe string `gorm:"size:8;not null;uniqueIndex:candle_sym_tf_time,priority:2"`
	OpenTime  int64  `gorm:"not null;uniqueIndex:candle_sym_tf_time,priority:3"`

	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume float64 `gorm:"not null;default:0"`
}

func (CandleModel) TableName() string {
	return "candles"
}

func toModel(e entity.Candle) CandleModel {
	return CandleModel{
		Symbol:    e.Symbol,
		Timeframe: e.Timeframe,
		OpenTime:  e.Timestamp,
		Open:      e.Open,
		High:      e.High,
		Low:       e.Low,
		Close:     e.Close,
		Volume:    e.Volume,
	}
}

func toEntity(m CandleModel) entity.Candle {
	return entity.Candle{
		Symbol:    m.Symbol,
		Timeframe: m.Timeframe,
		Timestamp: m.OpenTime,
		Open:      m.Open,
		High:      m.High,
		Low:       m.Low,
		Close:     m.Close,
		Volume:    m.Volume,
	}
}

// UpsertBatch はローソク足を一括で挿入し、既存の行はOHLCVを更新します。
func (r *candleStore) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	ms := make([]CandleModel, 0, len(candles))
	for _, e := range candles {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "timeframe"}, {Name: "open_time"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(&ms).Error
}

// GetCandles は直近limit件のローソク足を時系列昇順で返します。limit が 0 以下の場合は全件返します。
func (r *candleStore) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error) {
	var rows []CandleModel
	q := r.db.WithContext(ctx).
		Where("symbol = ? AND timeframe = ?", symbol, timeframe).
		Order("open_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.Candle, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	// 最新limit件を取るため降順で検索し、返却前に昇順へ戻す
	slices.Reverse(out)
	return out, nil
}
