// Package adapters はpairsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"crypto_backend/internal/feature/pairs/domain"
	"crypto_backend/internal/feature/pairs/domain/entity"
	"crypto_backend/internal/feature/pairs/usecase"
	"crypto_backend/internal/platform/db"
)

// pairStore はPairRepositoryのgorm実装です。
type pairStore struct {
	db *gorm.DB
}

var _ usecase.PairRepository = (*pairStore)(nil)

func NewPairRepository(db *gorm.DB) *pairStore {
	return &pairStore{db: db}
}

// ListActive はsort_key順にすべてのアクティブなペアを返します。
func (r *pairStore) ListActive(ctx context.Context) ([]entity.TradingPair, error) {
	var pairs []entity.TradingPair
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Find(&pairs).Error; err != nil {
		return nil, err
	}
	return pairs, nil
}

// ListActiveSymbols はsort_key順にアクティブなペアのシンボルのみを返します。
func (r *pairStore) ListActiveSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	if err := r.db.WithContext(ctx).
		Model(&entity.TradingPair{}).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Pluck("symbol", &symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// Create はペアを1件登録します。シンボルが重複する場合はErrDuplicatePairを返します。
func (r *pairStore) Create(ctx context.Context, p *entity.TradingPair) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicatePair, p.Symbol)
		}
		return err
	}
	return nil
}
