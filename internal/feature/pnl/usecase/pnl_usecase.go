// Package usecase はトレード履歴の取得・取り込みとP&L計算を統括します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"crypto_backend/internal/feature/pnl/domain"
	"crypto_backend/internal/feature/pnl/domain/entity"
	"crypto_backend/internal/feature/pnl/domain/ledger"
)

const (
	DefaultTradeLimit = 1000
	MaxTradeLimit     = 10000
	// MaxImportBatch はImport1回で受け付ける最大件数です。
	MaxImportBatch = 1000
	// ReportPageSize はReport/Dailyがストアから1回に読む件数です。
	ReportPageSize = MaxTradeLimit
)

// TradeRepository は約定履歴の永続化を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type TradeRepository interface {
	List(ctx context.Context, filter entity.TradeFilter) ([]entity.Trade, error)
	// Save は未登録のトレードのみを保存し、新規に保存した件数を返します。
	Save(ctx context.Context, trades []entity.Trade) (int, error)
}

type pnlUsecase struct {
	repo TradeRepository
}

func NewPnLUsecase(repo TradeRepository) *pnlUsecase {
	return &pnlUsecase{repo: repo}
}

func normalizeFilter(f entity.TradeFilter) (entity.TradeFilter, error) {
	f.Symbol = strings.ToUpper(strings.TrimSpace(f.Symbol))
	if f.Since < 0 {
		return f, fmt.Errorf("%w: since must not be negative", domain.ErrInvalidParameter)
	}
	if f.Offset < 0 {
		return f, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidParameter)
	}
	if f.Limit <= 0 || f.Limit > MaxTradeLimit {
		f.Limit = DefaultTradeLimit
	}
	return f, nil
}

// ListTrades は条件に合うトレードを返します。
func (u *pnlUsecase) ListTrades(ctx context.Context, filter entity.TradeFilter) ([]entity.Trade, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	trades, err := u.repo.List(ctx, filter)
	if err != nil {
		slog.Error("failed to list trades", "symbol", filter.Symbol, "error", err)
		return nil, fmt.Errorf("%w: list trades: %w", domain.ErrDataUnavailable, err)
	}
	return trades, nil
}

// Compute は与えられたトレードのみからレポートを計算します。ストアには触れません。
func (u *pnlUsecase) Compute(trades []entity.Trade) (*entity.Report, error) {
	return ledger.Compute(trades)
}

// allTrades は条件に合うトレードをページ単位ですべて読み出します。
// filterのLimitとOffsetは無視します。
func (u *pnlUsecase) allTrades(ctx context.Context, filter entity.TradeFilter) ([]entity.Trade, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	filter.Limit = ReportPageSize

	var all []entity.Trade
	for filter.Offset = 0; ; filter.Offset += ReportPageSize {
		page, err := u.repo.List(ctx, filter)
		if err != nil {
			slog.Error("failed to list trades", "symbol", filter.Symbol, "offset", filter.Offset, "error", err)
			return nil, fmt.Errorf("%w: list trades: %w", domain.ErrDataUnavailable, err)
		}
		all = append(all, page...)
		if len(page) < ReportPageSize {
			return all, nil
		}
	}
}

// Report は条件に合う保存済みトレード全件からレポートを計算します。
func (u *pnlUsecase) Report(ctx context.Context, filter entity.TradeFilter) (*entity.Report, error) {
	trades, err := u.allTrades(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ledger.Compute(trades)
}

// Daily は保存済みトレードの日次実現損益を返します。
func (u *pnlUsecase) Daily(ctx context.Context, filter entity.TradeFilter) ([]entity.DailyPnL, error) {
	rep, err := u.Report(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ledger.Daily(rep.MatchedLots), nil
}

// Import はトレードを正規化・検証してから保存します。1件でも不正なら何も保存しません。
// IDのないトレードにはUUIDを割り当て、同じIDの再取り込みは無視されます。
func (u *pnlUsecase) Import(ctx context.Context, trades []entity.Trade) (int, error) {
	if len(trades) == 0 || len(trades) > MaxImportBatch {
		return 0, fmt.Errorf("%w: import needs 1 to %d trades, got %d", domain.ErrInvalidParameter, MaxImportBatch, len(trades))
	}

	out := make([]entity.Trade, 0, len(trades))
	for _, t := range trades {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
		t.Side = entity.Side(strings.ToLower(strings.TrimSpace(string(t.Side))))
		if t.Value == 0 {
			t.Value = t.Price * t.Quantity
		}
		if err := ledger.Validate(t); err != nil {
			return 0, err
		}
		out = append(out, t)
	}

	n, err := u.repo.Save(ctx, out)
	if err != nil {
		slog.Error("failed to save trades", "count", len(out), "error", err)
		return 0, fmt.Errorf("%w: save trades: %w", domain.ErrDataUnavailable, err)
	}
	slog.Info("trades imported", "received", len(out), "inserted", n)
	return n, nil
}
