// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 2 * time.Second

// Check は依存先（DB・Redisなど）の疎通確認を表します。
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Health は /healthz を処理するハンドラーを返します。
// GETではchecksを順に実行し、1つでも失敗すれば503を返します。
// HEAD/OPTIONSは依存先を確認せずに応答します。
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		switch c.Request.Method {
		case http.MethodHead:
			c.Status(http.StatusOK)
			return
		case http.MethodOptions:
			c.Status(http.StatusNoContent)
			return
		}

		status := http.StatusOK
		result := gin.H{"status": "ok"}
		if len(checks) > 0 {
			deps := make(map[string]string, len(checks))
			for _, chk := range checks {
				ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
				err := chk.Ping(ctx)
				cancel()
				if err != nil {
					slog.Warn("health check failed", "dependency", chk.Name, "error", err)
					deps[chk.Name] = "down"
					status = http.StatusServiceUnavailable
					result["status"] = "degraded"
					continue
				}
				deps[chk.Name] = "ok"
			}
			result["dependencies"] = deps
		}
		c.JSON(status, result)
	}
}
