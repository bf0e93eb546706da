// Package handler はpnlフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crypto_backend/internal/api"
	"crypto_backend/internal/feature/pnl/domain"
	"crypto_backend/internal/feature/pnl/domain/entity"
	"crypto_backend/internal/feature/pnl/transport/http/dto"
)

// PnLUsecase はP&L計算とトレード管理のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PnLUsecase interface {
	Report(ctx context.Context, filter entity.TradeFilter) (*entity.Report, error)
	Daily(ctx context.Context, filter entity.TradeFilter) ([]entity.DailyPnL, error)
	Compute(trades []entity.Trade) (*entity.Report, error)
	ListTrades(ctx context.Context, filter entity.TradeFilter) ([]entity.Trade, error)
	Import(ctx context.Context, trades []entity.Trade) (int, error)
}

type PnLHandler struct {
	uc PnLUsecase
}

func NewPnLHandler(uc PnLUsecase) *PnLHandler {
	return &PnLHandler{uc: uc}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func bindFilter(c *gin.Context) (entity.TradeFilter, bool) {
	var f entity.TradeFilter
	q := c.Request.URL.Query()
	if err := api.BindQueries(q, map[string]any{"symbol": &f.Symbol, "since": &f.Since, "limit": &f.Limit, "offset": &f.Offset}); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return f, false
	}
	return f, true
}

// ReportHandler は保存済みトレードのFIFO損益レポートを返します。
//
// GET /pnl?symbol=BTC/USDT&since=1704067200000
func (h *PnLHandler) ReportHandler(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	rep, err := h.uc.Report(c.Request.Context(), f)
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromReport(rep))
}

// DailyHandler は日次の実現損益を新しい順に返します。
//
// GET /pnl/daily
func (h *PnLHandler) DailyHandler(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	days, err := h.uc.Daily(c.Request.Context(), f)
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromDaily(days))
}

// ComputeHandler はリクエストボディのトレードのみから損益を計算します。何も保存しません。
//
// POST /pnl/compute
func (h *PnLHandler) ComputeHandler(c *gin.Context) {
	var body []dto.TradeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	rep, err := h.uc.Compute(dto.ToEntities(body))
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromReport(rep))
}

// ListTradesHandler は保存済みトレードを約定時刻順に返します。
//
// GET /trades?symbol=ETH/USDT&limit=100
func (h *PnLHandler) ListTradesHandler(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	trades, err := h.uc.ListTrades(c.Request.Context(), f)
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromTrades(trades))
}

// ImportTradesHandler はトレードを取り込みます。同じIDの再送は無視されます。
//
// POST /trades
func (h *PnLHandler) ImportTradesHandler(c *gin.Context) {
	var body []dto.TradeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	n, err := h.uc.Import(c.Request.Context(), dto.ToEntities(body))
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, dto.ImportResponse{Received: len(body), Inserted: n})
}
