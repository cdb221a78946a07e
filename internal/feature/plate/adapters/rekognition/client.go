// Package rekognition はAmazon RekognitionのDetectTextを使用した文字検出器を提供します。
package rekognition

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsrek "github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"plate_reader/internal/feature/plate/domain/entity"
	"plate_reader/internal/feature/plate/usecase"
	"plate_reader/internal/shared/imageutil"
)

// BackendName はログ・メトリクスで使用するバックエンド名です。
const BackendName = "rekognition"

// DefaultMinConfidence はWORD検出を採用する最低信頼度（0〜100）です。
const DefaultMinConfidence float32 = 80

// TextDetector はRekognitionクライアントのうち本パッケージが使用する部分です。
// テストではフェイク実装に差し替えます。
type TextDetector interface {
	DetectText(ctx context.Context, params *awsrek.DetectTextInput, optFns ...func(*awsrek.Options)) (*awsrek.DetectTextOutput, error)
}

// RekognitionPlateDetector はDetectTextの単語検出を文字検出結果に変換します。
type RekognitionPlateDetector struct {
	client        TextDetector
	minConfidence float32
}

// RekognitionPlateDetectorがPlateDetectorを実装していることをコンパイル時に検証します。
var _ usecase.PlateDetector = (*RekognitionPlateDetector)(nil)

// NewClient はデフォルトの認証情報チェーンからRekognitionクライアントを生成します。
// regionが空の場合はAWS_REGIONなどの環境設定に従います。
func NewClient(ctx context.Context, region string) (*awsrek.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsrek.NewFromConfig(cfg), nil
}

// NewRekognitionPlateDetector はRekognitionPlateDetectorの新しいインスタンスを生成します。
func NewRekognitionPlateDetector(client TextDetector, minConfidence float32) *RekognitionPlateDetector {
	return &RekognitionPlateDetector{client: client, minConfidence: minConfidence}
}

// Backend はバックエンド名を返します。
func (r *RekognitionPlateDetector) Backend() string { return BackendName }

// Detect は画像をDetectTextに送信し、単語内の各文字を検出結果として返します。
func (r *RekognitionPlateDetector) Detect(ctx context.Context, img image.Image) ([]entity.Detection, error) {
	content, err := imageutil.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}

	out, err := r.client.DetectText(ctx, &awsrek.DetectTextInput{
		Image: &types.Image{Bytes: content},
		Filters: &types.DetectTextFilters{
			WordFilter: &types.DetectionFilter{MinConfidence: aws.Float32(r.minConfidence)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition DetectText failed: %w", err)
	}

	dets := WordsToDetections(out.TextDetections, float64(img.Bounds().Dx()))
	slog.DebugContext(ctx, "rekognition text detected", "blocks", len(out.TextDetections), "characters", len(dets))
	return dets, nil
}

// WordsToDetections はWORD検出を1文字ずつに分解して文字クラスへ変換します。
// DetectTextは文字単位の座標を返さないため、単語の枠を文字数で等分し、
// 各区間の中心をその文字のx座標とします。LINE検出は単語と重複するため無視します。
func WordsToDetections(words []types.TextDetection, width float64) []entity.Detection {
	var dets []entity.Detection
	for _, w := range words {
		if w.Type != types.TextTypesWord || w.DetectedText == nil {
			continue
		}
		box := boundingBox(w)
		if box == nil || box.Left == nil || box.Width == nil {
			continue
		}
		runes := []rune(*w.DetectedText)
		step := float64(*box.Width) / float64(len(runes))
		for i, ch := range runes {
			class, ok := entity.LookupGlyph(string(ch))
			if !ok {
				continue
			}
			x := float64(*box.Left) + step*(float64(i)+0.5)
			dets = append(dets, entity.Detection{Left: x * width, ClassID: int(class)})
		}
	}
	return dets
}

func boundingBox(d types.TextDetection) *types.BoundingBox {
	if d.Geometry == nil {
		return nil
	}
	return d.Geometry.BoundingBox
}
