package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"crypto_backend/internal/api"
	"crypto_backend/internal/feature/pairs/domain/entity"
	"crypto_backend/internal/feature/pairs/transport/http/dto"
)

// PairUsecase は取引ペア情報に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type PairUsecase interface {
	ListActivePairs(ctx context.Context) ([]entity.TradingPair, error)
}

// PairHandler は取引ペア一覧のHTTPリクエストを処理します。
type PairHandler struct {
	uc PairUsecase
}

func NewPairHandler(uc PairUsecase) *PairHandler {
	return &PairHandler{uc: uc}
}

// List は有効な取引ペアをカテゴリごとにまとめて返します。
// カテゴリはsort_key順で最初に現れた順に並びます。
//
// GET /pairs
func (h *PairHandler) List(c *gin.Context) {
	pairs, err := h.uc.ListActivePairs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.PairGroup, 0)
	index := map[entity.Category]int{}
	for _, p := range pairs {
		i, ok := index[p.Category]
		if !ok {
			i = len(out)
			index[p.Category] = i
			out = append(out, dto.PairGroup{Category: string(p.Category), Pairs: []dto.PairItem{}})
		}
		out[i].Pairs = append(out[i].Pairs, dto.PairItem{Symbol: p.Symbol, Name: p.Name})
	}
	c.JSON(http.StatusOK, out)
}
