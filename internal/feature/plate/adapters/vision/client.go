// Package vision はGoogle Cloud Vision APIのテキスト検出を使用した文字検出器を提供します。
package vision

import (
	"context"
	"fmt"
	"image"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"plate_reader/internal/feature/plate/domain/entity"
	"plate_reader/internal/feature/plate/usecase"
	"plate_reader/internal/shared/imageutil"
)

// BackendName はログ・メトリクスで使用するバックエンド名です。
const BackendName = "vision"

// languageHints はペルシア語の字形を優先させるためのヒントです。
var languageHints = []string{"fa"}

// VisionPlateDetector はVision APIのOCR結果を文字検出結果に変換します。
type VisionPlateDetector struct {
	client *gvision.ImageAnnotatorClient
}

// VisionPlateDetectorがPlateDetectorを実装していることをコンパイル時に検証します。
var _ usecase.PlateDetector = (*VisionPlateDetector)(nil)

// NewVisionPlateDetector はADCを使用してVisionPlateDetectorの新しいインスタンスを生成します。
func NewVisionPlateDetector(ctx context.Context) (*VisionPlateDetector, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionPlateDetector{client: client}, nil
}

// Backend はバックエンド名を返します。
func (v *VisionPlateDetector) Backend() string { return BackendName }

// Close はVision APIクライアントを解放します。
func (v *VisionPlateDetector) Close() error {
	return v.client.Close()
}

// Detect は画像をVision APIに送信し、認識したシンボルを検出結果として返します。
func (v *VisionPlateDetector) Detect(ctx context.Context, img image.Image) ([]entity.Detection, error) {
	content, err := imageutil.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{LanguageHints: languageHints},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return nil, nil
	}

	if resp.Responses[0].Error != nil {
		return nil, fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	return SymbolsToDetections(resp.Responses[0].GetFullTextAnnotation()), nil
}
