// Package usecase implements the business logic for trading pair operations.
package usecase

import (
	"context"
	"errors"
	"log/slog"

	"crypto_backend/internal/feature/pairs/domain"
	"crypto_backend/internal/feature/pairs/domain/entity"
)

// PairRepository abstracts the persistence layer for trading pairs.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type PairRepository interface {
	ListActive(ctx context.Context) ([]entity.TradingPair, error)
	ListActiveSymbols(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p *entity.TradingPair) error
}

// PairUsecase provides business logic for pair operations.
type PairUsecase struct {
	repo PairRepository
}

func NewPairUsecase(r PairRepository) *PairUsecase {
	return &PairUsecase{repo: r}
}

// ListActivePairs returns all active pairs in sort_key order.
func (u *PairUsecase) ListActivePairs(ctx context.Context) ([]entity.TradingPair, error) {
	return u.repo.ListActive(ctx)
}

// ListActiveSymbols returns the symbols of all active pairs in sort_key order.
func (u *PairUsecase) ListActiveSymbols(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveSymbols(ctx)
}

// EnsureDefaults inserts every pair that is not registered yet and reports how many were added.
// Existing rows are left untouched.
func (u *PairUsecase) EnsureDefaults(ctx context.Context, pairs []entity.TradingPair) (int, error) {
	added := 0
	for _, p := range pairs {
		err := u.repo.Create(ctx, &p)
		switch {
		case err == nil:
			added++
		case errors.Is(err, domain.ErrDuplicatePair):
			continue
		default:
			return added, err
		}
	}
	if added > 0 {
		slog.Info("seeded trading pairs", "added", added)
	}
	return added, nil
}
