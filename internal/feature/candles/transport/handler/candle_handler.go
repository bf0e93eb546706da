// Package handler はcandlesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"crypto_backend/internal/api"
	"crypto_backend/internal/feature/candles/domain"
	"crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/candles/transport/http/dto"

	"github.com/gin-gonic/gin"
)

// CandlesUsecase はローソク足データ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CandlesUsecase interface {
	GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]entity.Candle, error)
}

// CandlesHandler はローソク足データのHTTPリクエストを処理します。
type CandlesHandler struct {
	uc CandlesUsecase
}

// NewCandlesHandler は指定されたusecaseでCandlesHandlerの新しいインスタンスを生成します。
func NewCandlesHandler(uc CandlesUsecase) *CandlesHandler {
	return &CandlesHandler{uc: uc}
}

// GetCandlesHandler は銘柄と時間足を受け取り、ローソク足データをJSONで返します。
//
// エンドポイント例:
// GET /candles?symbol=BTC/USDT&timeframe=1h&limit=200
func (h *CandlesHandler) GetCandlesHandler(c *gin.Context) {
	q := c.Request.URL.Query()
	// 未指定の場合はデフォルト値を使用（limitの補正はusecaseレイヤーで行う）
	symbol := "BTC/USDT"
	timeframe := "1h"
	limit := 0
	if err := api.BindQueries(q, map[string]any{"symbol": &symbol, "timeframe": &timeframe, "limit": &limit}); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	candles, err := h.uc.GetCandles(c.Request.Context(), symbol, timeframe, limit)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrInvalidTimeframe) {
			status = http.StatusBadRequest
		}
		c.JSON(status, api.ErrorResponse{Error: err.Error()})
		return
	}

	// データをフォーマット
	out := make([]dto.CandleResponse, 0, len(candles))
	for _, x := range candles {
		out = append(out, dto.CandleResponse{
			Timestamp: x.Timestamp,
			Time:      x.Time().Format(time.RFC3339),
			Open:      x.Open,
			High:      x.High,
			Low:       x.Low,
			Close:     x.Close,
			Volume:    x.Volume,
		})
	}

	c.JSON(http.StatusOK, out)
}
