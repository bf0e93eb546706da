// Package handler はstrategyフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"crypto_backend/internal/api"
	"crypto_backend/internal/feature/strategy/domain"
	"crypto_backend/internal/feature/strategy/domain/entity"
	"crypto_backend/internal/feature/strategy/transport/http/dto"
	"crypto_backend/internal/feature/strategy/usecase"
)

// AnalysisUsecase はストラテジー実行のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AnalysisUsecase interface {
	Strategies() []entity.Descriptor
	Analyze(ctx context.Context, req usecase.AnalyzeRequest) (*entity.AnalysisResult, error)
	Scan(ctx context.Context, req usecase.ScanRequest) ([]entity.ScanResult, error)
	RecentSignals(ctx context.Context, req usecase.AnalyzeRequest, n int) ([]entity.Signal, error)
	Backtest(ctx context.Context, req usecase.AnalyzeRequest) (*entity.Backtest, error)
}

type StrategyHandler struct {
	uc AnalysisUsecase
}

func NewStrategyHandler(uc AnalysisUsecase) *StrategyHandler {
	return &StrategyHandler{uc: uc}
}

// reservedQuery はストラテジーパラメータとして扱わないクエリキーです。
var reservedQuery = map[string]bool{"symbol": true, "timeframe": true, "limit": true, "count": true}

// statusFor はドメインエラーをHTTPステータスに変換します。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownStrategy):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
}

// analyzeRequest はパスとクエリからAnalyzeRequestを組み立てます。
// symbol/timeframe/limit/count 以外のキーはすべてストラテジーパラメータになります。
func analyzeRequest(c *gin.Context) (usecase.AnalyzeRequest, url.Values, error) {
	q := c.Request.URL.Query()
	req := usecase.AnalyzeRequest{Strategy: entity.StrategyID(c.Param("id"))}
	if err := api.BindQueries(q, map[string]any{"symbol": &req.Symbol, "timeframe": &req.Timeframe, "limit": &req.Limit}); err != nil {
		return req, q, err
	}
	for k, vs := range q {
		if reservedQuery[k] || len(vs) == 0 {
			continue
		}
		if req.Params == nil {
			req.Params = make(map[string]string)
		}
		req.Params[k] = vs[0]
	}
	return req, q, nil
}

// ListStrategiesHandler は登録済みストラテジーの一覧を返します。
//
// GET /strategies
func (h *StrategyHandler) ListStrategiesHandler(c *gin.Context) {
	ds := h.uc.Strategies()
	out := make([]dto.StrategyResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, dto.FromDescriptor(d))
	}
	c.JSON(http.StatusOK, out)
}

// AnalyzeHandler は1銘柄を分析します。
//
// エンドポイント例:
// GET /strategies/trendline_breakout/analysis?symbol=BTC/USDT&timeframe=1h&window_order=5
func (h *StrategyHandler) AnalyzeHandler(c *gin.Context) {
	req, _, err := analyzeRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	res, err := h.uc.Analyze(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAnalysis(res))
}

// RecentSignalsHandler は直近のシグナルのみを返します。
//
// GET /strategies/:id/signals/recent?symbol=ETH/USDT&count=5
func (h *StrategyHandler) RecentSignalsHandler(c *gin.Context) {
	req, q, err := analyzeRequest(c)
	count := 0
	if err == nil {
		err = api.BindQuery(q, "count", &count)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	signals, err := h.uc.RecentSignals(c.Request.Context(), req, count)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSignals(signals))
}

// BacktestHandler はシグナルどおりに1単位ずつ売買した場合の損益を返します。
//
// GET /strategies/:id/backtest?symbol=BTC/USDT&timeframe=4h
func (h *StrategyHandler) BacktestHandler(c *gin.Context) {
	req, _, err := analyzeRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	bt, err := h.uc.Backtest(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBacktest(bt))
}

// ScanHandler は複数銘柄を一括で分析します。銘柄単位の失敗は200のまま各要素のerrorに入ります。
//
// POST /strategies/:id/scan  {"symbols":["BTC/USDT","ETH/USDT"],"timeframe":"4h"}
func (h *StrategyHandler) ScanHandler(c *gin.Context) {
	var body dto.ScanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	results, err := h.uc.Scan(c.Request.Context(), usecase.ScanRequest{
		Strategy:  entity.StrategyID(c.Param("id")),
		Symbols:   body.Symbols,
		Timeframe: body.Timeframe,
		Limit:     body.Limit,
		Params:    body.Params,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromScan(results))
}
