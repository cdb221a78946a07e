// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plate_reader/internal/api"
)

// DetectorInfo は起動時に選ばれた検出器の情報です。
type DetectorInfo struct {
	Backend  string
	Model    string
	Degraded bool // フォールバックモデルで稼働中
}

// Health は /healthz エンドポイントを処理するハンドラーを返します。
// 検出器がフォールバックで稼働していても200を返し、degradedで知らせます。
func Health(info DetectorInfo) gin.HandlerFunc {
	body := api.HealthResponse{
		Status:   "ok",
		Detector: info.Backend,
		Model:    info.Model,
		Degraded: info.Degraded,
	}
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodHead {
			c.Status(http.StatusOK)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}
