// Package gemini はGoogle Gemini APIのマルチモーダル入力を使用した文字検出器を提供します。
package gemini

import (
	"context"
	"fmt"
	"image"
	"net/http"

	"google.golang.org/genai"

	"plate_reader/internal/feature/plate/domain/entity"
	"plate_reader/internal/feature/plate/usecase"
	"plate_reader/internal/shared/imageutil"
	"plate_reader/internal/shared/ratelimiter"
)

const (
	// BackendName はログ・メトリクスで使用するバックエンド名です。
	BackendName = "gemini"
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// DefaultFallbackModel はデフォルトモデルが利用できない場合のモデルです。
	DefaultFallbackModel = "gemini-2.0-flash"
)

const prompt = `This image shows an Iranian vehicle licence plate.
List every Persian digit and letter printed on the plate, ignoring the "I.R. IRAN" strip and the flag.
Respond only with JSON of the form {"characters":[{"char":"۱","x":12}]}
where "char" is a single Persian digit or letter and "x" is the left edge of the character in pixels from the left of the image.`

// GeminiPlateDetector はGemini APIに画像を送り、文字と位置をJSONで受け取ります。
type GeminiPlateDetector struct {
	client  *genai.Client
	model   string
	limiter ratelimiter.Limiter
}

// GeminiPlateDetectorがPlateDetectorを実装していることをコンパイル時に検証します。
var _ usecase.PlateDetector = (*GeminiPlateDetector)(nil)

// NewClient は指定したHTTPクライアントでgenai.Clientを生成します。
// 認証情報は環境変数（GEMINI_API_KEY または GOOGLE_GENAI_USE_VERTEXAI など）から読み込まれます。
func NewClient(ctx context.Context, httpClient *http.Client) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{HTTPClient: httpClient})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiPlateDetector はモデルの存在を確認してGeminiPlateDetectorを生成します。
// limiterはnilでも構いません。
func NewGeminiPlateDetector(ctx context.Context, client *genai.Client, model string, limiter ratelimiter.Limiter) (*GeminiPlateDetector, error) {
	if _, err := client.Models.Get(ctx, model, nil); err != nil {
		return nil, fmt.Errorf("gemini model %s unavailable: %w", model, err)
	}
	return &GeminiPlateDetector{client: client, model: model, limiter: limiter}, nil
}

// Backend はバックエンド名を返します。
func (g *GeminiPlateDetector) Backend() string { return BackendName }

// Model は使用中のモデル名を返します。
func (g *GeminiPlateDetector) Model() string { return g.model }

// Detect は画像をGeminiに送信し、応答の文字列を検出結果に変換します。
func (g *GeminiPlateDetector) Detect(ctx context.Context, img image.Image) ([]entity.Detection, error) {
	data, err := imageutil.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, "image/jpeg"),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini API request failed: %w", err)
	}

	return ParseDetections(resp.Text())
}
