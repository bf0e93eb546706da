// Package adapters はpnlフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crypto_backend/internal/feature/pnl/domain/entity"
	"crypto_backend/internal/feature/pnl/usecase"
)

type tradeStore struct {
	db *gorm.DB
}

var _ usecase.TradeRepository = (*tradeStore)(nil)

func NewTradeRepository(db *gorm.DB) *tradeStore {
	return &tradeStore{db: db}
}

// TradeModel は trades テーブルの行です。IDは取引所または取り込み時に採番した値です。
type TradeModel struct {
	ID         string  `gorm:"primaryKey;size:64"`
	ExecutedAt int64   `gorm:"not null;index:trade_sym_time,priority:2"`
	Symbol     string  `gorm:"size:32;not null;index:trade_sym_time,priority:1"`
	Side       string  `gorm:"size:4;not null"`
	Price      float64 `gorm:"not null"`
	Quantity   float64 `gorm:"not null"`
	Value      float64 `gorm:"not null;default:0"`
}

func (TradeModel) TableName() string {
	return "trades"
}

func toModel(t entity.Trade) TradeModel {
	return TradeModel{
		ID:         t.ID,
		ExecutedAt: t.Timestamp,
		Symbol:     t.Symbol,
		Side:       string(t.Side),
		Price:      t.Price,
		Quantity:   t.Quantity,
		Value:      t.Value,
	}
}

func toEntity(m TradeModel) entity.Trade {
	return entity.Trade{
		ID:        m.ID,
		Timestamp: m.ExecutedAt,
		Symbol:    m.Symbol,
		Side:      entity.Side(m.Side),
		Price:     m.Price,
		Quantity:  m.Quantity,
		Value:     m.Value,
	}
}

// List は約定時刻の昇順でトレードを返します。
func (r *tradeStore) List(ctx context.Context, f entity.TradeFilter) ([]entity.Trade, error) {
	q := r.db.WithContext(ctx).Order("executed_at ASC").Order("id ASC")
	if f.Symbol != "" {
		q = q.Where("symbol = ?", f.Symbol)
	}
	if f.Since > 0 {
		q = q.Where("executed_at >= ?", f.Since)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []TradeModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Trade, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// Save は既存IDの行を無視して挿入し、新規に挿入した件数を返します。
func (r *tradeStore) Save(ctx context.Context, trades []entity.Trade) (int, error) {
	if len(trades) == 0 {
		return 0, nil
	}
	ms := make([]TradeModel, 0, len(trades))
	for _, t := range trades {
		ms = append(ms, toModel(t))
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ms)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
