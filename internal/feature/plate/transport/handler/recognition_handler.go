package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"plate_reader/internal/api"
	"plate_reader/internal/feature/plate/domain/entity"
	"plate_reader/internal/feature/plate/usecase"
)

// RecognitionUsecase は認識履歴参照のユースケースインターフェースを定義します。
type RecognitionUsecase interface {
	ListRecognitions(ctx context.Context, limit int) ([]entity.Recognition, error)
}

// RecognitionHandler は認識履歴のHTTPリクエストを処理します。
type RecognitionHandler struct {
	uc RecognitionUsecase
}

// NewRecognitionHandler はRecognitionHandlerの新しいインスタンスを生成します。
func NewRecognitionHandler(uc RecognitionUsecase) *RecognitionHandler {
	return &RecognitionHandler{uc: uc}
}

// ListRecognitions は直近の認識履歴を新しい順に返します。
//
// エンドポイント: GET /v1/recognitions?limit=N
func (h *RecognitionHandler) ListRecognitions(c *gin.Context) {
	limit := usecase.DefaultHistoryLimit
	if err := runtime.BindQueryParameter("form", true, false, "limit", c.Request.URL.Query(), &limit); err != nil {
		slog.Warn("limitパラメータの解析に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid limit parameter"})
		return
	}
	if limit <= 0 || limit > usecase.MaxHistoryLimit {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "limit must be between 1 and 500"})
		return
	}

	recs, err := h.uc.ListRecognitions(c.Request.Context(), limit)
	if err != nil {
		slog.Error("認識履歴の取得に失敗", "error", err, "limit", limit)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list recognitions"})
		return
	}

	items := make([]api.RecognitionResponse, 0, len(recs))
	for _, r := range recs {
		item := api.RecognitionResponse{
			ID:         r.ID,
			Outcome:    string(r.Outcome),
			Detections: r.Detections,
			Backend:    r.Backend,
			CreatedAt:  r.CreatedAt,
		}
		if r.Plate != nil {
			pt := toPlateText(r.Plate)
			item.PlateText = &pt
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, api.RecognitionListResponse{Items: items, Limit: limit})
}
