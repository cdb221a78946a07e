// Package handler はplateフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"plate_reader/internal/api"
	"plate_reader/internal/feature/plate/domain/entity"
	"plate_reader/internal/feature/plate/usecase"
)

// PlateNotFoundMessage は文字が1つも認識できなかった場合の応答メッセージです。
const PlateNotFoundMessage = "پلاک موجود نیست"

// PlateUsecase はナンバープレート認識のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PlateUsecase interface {
	RecognizePlate(ctx context.Context, imageData []byte) (*entity.PlateParts, error)
}

// PlateHandler はナンバープレート認識のHTTPリクエストを処理します。
type PlateHandler struct {
	uc PlateUsecase
}

// NewPlateHandler はPlateHandlerの新しいインスタンスを生成します。
func NewPlateHandler(uc PlateUsecase) *PlateHandler {
	return &PlateHandler{uc: uc}
}

// DetectPlate はアップロードされた画像からナンバープレートを読み取ります。
//
// エンドポイント: POST /detect_plate
// Content-Type: multipart/form-data
// フィールド: image（画像ファイル）
func (h *PlateHandler) DetectPlate(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "No image uploaded"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("画像ファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid image: " + err.Error()})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()

	imageData, err := io.ReadAll(f)
	if err != nil {
		slog.Error("画像データの読み取りに失敗", "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid image: " + err.Error()})
		return
	}

	plate, err := h.uc.RecognizePlate(c.Request.Context(), imageData)
	if err != nil {
		var invalid *usecase.InvalidImageError
		switch {
		case errors.As(err, &invalid):
			slog.Warn("画像のデコードに失敗", "error", err, "filename", file.Filename, "size", file.Size)
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid image: " + invalid.Error()})
		case errors.Is(err, usecase.ErrPlateNotFound):
			c.JSON(http.StatusOK, api.MessageResponse{Message: PlateNotFoundMessage})
		default:
			slog.Error("プレート検出に失敗", "error", err)
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "Plate detection failed"})
		}
		return
	}

	c.JSON(http.StatusOK, api.PlateTextResponse{PlateText: toPlateText(plate)})
}

func toPlateText(p *entity.PlateParts) api.PlateText {
	return api.PlateText{
		LeftDigits:  p.LeftDigits,
		Letter:      p.Letter,
		RightDigits: p.RightDigits,
		CityDigits:  p.CityDigits,
	}
}
