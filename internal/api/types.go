// Package api はHTTP APIのリクエスト・レスポンス型を定義します。
package api

import "time"

// ErrorResponse はエラー応答の共通形式です。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は情報メッセージのみを返す応答です。
type MessageResponse struct {
	Message string `json:"message"`
}

// PlateText は認識されたナンバープレートの各フィールドです。
type PlateText struct {
	LeftDigits  string `json:"left_digits"`
	Letter      string `json:"letter"`
	RightDigits string `json:"right_digits"`
	CityDigits  string `json:"city_digits"`
}

// PlateTextResponse は POST /detect_plate の成功応答です。
type PlateTextResponse struct {
	PlateText PlateText `json:"plate_text"`
}

// RecognitionResponse は認識履歴の1件分です。
type RecognitionResponse struct {
	ID         string     `json:"id"`
	Outcome    string     `json:"outcome"`
	PlateText  *PlateText `json:"plate_text,omitempty"`
	Detections int        `json:"detections"`
	Backend    string     `json:"backend"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RecognitionListResponse は GET /v1/recognitions の応答です。
type RecognitionListResponse struct {
	Items []RecognitionResponse `json:"items"`
	Limit int                   `json:"limit"`
}

// HealthResponse は GET /healthz の応答です。
type HealthResponse struct {
	Status   string `json:"status"`
	Detector string `json:"detector"`
	Model    string `json:"model,omitempty"`
	Degraded bool   `json:"degraded"`
}
