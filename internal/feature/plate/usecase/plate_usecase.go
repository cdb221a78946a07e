package usecase

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"plate_reader/internal/feature/plate/domain/entity"
)

const (
	// DefaultHistoryLimit は認識履歴のデフォルト返却件数です。
	DefaultHistoryLimit = 50
	// MaxHistoryLimit は認識履歴の最大返却件数です。
	MaxHistoryLimit = 500
)

// PlateDetector は画像から文字領域を検出する検出器インターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PlateDetector interface {
	// Detect は画像から検出結果（左端x座標とクラスID）を返します。
	Detect(ctx context.Context, img image.Image) ([]entity.Detection, error)
	// Backend は検出バックエンドの名前を返します（ログ・メトリクス用）。
	Backend() string
}

// DetectionCache はアップロード画像ごとの検出結果キャッシュです。
// 実装はベストエフォートであり、失敗してもエラーを返しません。
type DetectionCache interface {
	Get(ctx context.Context, imageData []byte) ([]entity.Detection, bool)
	Set(ctx context.Context, imageData []byte, dets []entity.Detection)
}

// RecognitionRepository は認識履歴の永続化レイヤーを抽象化します。
type RecognitionRepository interface {
	Save(ctx context.Context, rec *entity.Recognition) error
	ListRecent(ctx context.Context, limit int) ([]entity.Recognition, error)
}

// Metrics は認識処理の計測を受け取ります。
type Metrics interface {
	ObserveDetection(backend string, elapsed time.Duration, err error)
	ObserveOutcome(outcome entity.Outcome)
}

// plateUsecase はナンバープレート認識のビジネスロジックを提供します。
type plateUsecase struct {
	detector PlateDetector
	cache    DetectionCache
	history  RecognitionRepository
	metrics  Metrics
}

// NewPlateUsecase はplateUsecaseの新しいインスタンスを生成します。
// cache・history・metricsはnilでも構いません。
func NewPlateUsecase(detector PlateDetector, cache DetectionCache, history RecognitionRepository, metrics Metrics) *plateUsecase {
	return &plateUsecase{detector: detector, cache: cache, history: history, metrics: metrics}
}

// RecognizePlate は画像データをデコードし、検出器と組み立て処理を通してプレートを返します。
// 文字が1つも認識できなかった場合は ErrPlateNotFound を返します。
func (u *plateUsecase) RecognizePlate(ctx context.Context, imageData []byte) (*entity.PlateParts, error) {
	img, format, err := DecodeImage(imageData)
	if err != nil {
		return nil, err
	}

	dets, err := u.detect(ctx, img, imageData)
	if err != nil {
		return nil, err
	}

	chars := ResolveCharacters(dets)
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		names := make([]string, 0, len(chars))
		for _, c := range chars {
			names = append(names, c.Class.Name())
		}
		slog.DebugContext(ctx, "plate characters resolved",
			"format", format, "detections", len(dets), "characters", names)
	}

	plate, found := AssemblePlate(chars)
	outcome := entity.OutcomeNotFound
	switch {
	case found && IsCanonical(plate):
		outcome = entity.OutcomeCanonical
	case found:
		outcome = entity.OutcomeFallback
	}
	if u.metrics != nil {
		u.metrics.ObserveOutcome(outcome)
	}
	u.record(ctx, outcome, plate, len(chars))

	if !found {
		return nil, ErrPlateNotFound
	}
	return plate, nil
}

// ListRecognitions は直近の認識履歴を返します。
func (u *plateUsecase) ListRecognitions(ctx context.Context, limit int) ([]entity.Recognition, error) {
	if u.history == nil {
		return []entity.Recognition{}, nil
	}
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = DefaultHistoryLimit
	}
	recs, err := u.history.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recognitions: %w", err)
	}
	return recs, nil
}

func (u *plateUsecase) detect(ctx context.Context, img image.Image, imageData []byte) ([]entity.Detection, error) {
	if u.cache != nil {
		if dets, ok := u.cache.Get(ctx, imageData); ok {
			return dets, nil
		}
	}

	start := time.Now()
	dets, err := u.detector.Detect(ctx, img)
	if u.metrics != nil {
		u.metrics.ObserveDetection(u.detector.Backend(), time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("plate detector %s failed: %w", u.detector.Backend(), err)
	}

	if u.cache != nil {
		u.cache.Set(ctx, imageData, dets)
	}
	return dets, nil
}

// record は認識結果を履歴に保存します。保存の失敗は応答に影響させません。
func (u *plateUsecase) record(ctx context.Context, outcome entity.Outcome, plate *entity.PlateParts, n int) {
	if u.history == nil {
		return
	}
	rec := &entity.Recognition{
		Outcome:    outcome,
		Plate:      plate,
		Detections: n,
		Backend:    u.detector.Backend(),
		CreatedAt:  time.Now(),
	}
	if err := u.history.Save(ctx, rec); err != nil {
		slog.WarnContext(ctx, "failed to save recognition", "error", err, "outcome", outcome)
	}
}
