package usecase

import (
	"context"
	"errors"
	"log/slog"

	"plate_reader/internal/feature/plate/domain/entity"
)

// PlateRecognizer は1枚の画像を認識するインターフェースです。
type PlateRecognizer interface {
	RecognizePlate(ctx context.Context, imageData []byte) (*entity.PlateParts, error)
}

// ImageSource は名前から画像データを読み込みます（ファイルシステムなど）。
type ImageSource func(name string) ([]byte, error)

// BatchResult は1ファイル分の認識結果です。Errが非nilの場合Plateはnilです。
// 文字が見つからなかった場合はPlateもErrもnilになります。
type BatchResult struct {
	Name  string
	Plate *entity.PlateParts
	Err   error
}

// BatchUsecase は複数画像をまとめて認識するユースケースです。
type BatchUsecase struct {
	recognizer PlateRecognizer
	source     ImageSource
}

// NewBatchUsecase はBatchUsecaseの新しいインスタンスを生成します。
func NewBatchUsecase(recognizer PlateRecognizer, source ImageSource) *BatchUsecase {
	return &BatchUsecase{recognizer: recognizer, source: source}
}

// RecognizeAll は指定された全画像を順に認識します。
// 1枚でエラーが発生しても処理を止めずにログに出力し、次の画像を続けます。
// ctxがキャンセルされた場合、未処理の画像はctxのエラーを結果として返します。
func (b *BatchUsecase) RecognizeAll(ctx context.Context, names []string) []BatchResult {
	results := make([]BatchResult, 0, len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			slog.Error("batch aborted", "remaining", len(names)-i, "error", err)
			for _, rest := range names[i:] {
				results = append(results, BatchResult{Name: rest, Err: err})
			}
			break
		}
		res := BatchResult{Name: name}

		data, err := b.source(name)
		if err != nil {
			res.Err = err
			slog.Error("failed to read image", "name", name, "error", err)
			results = append(results, res)
			continue
		}

		plate, err := b.recognizer.RecognizePlate(ctx, data)
		switch {
		case errors.Is(err, ErrPlateNotFound):
		case err != nil:
			res.Err = err
			slog.Error("failed to recognize plate", "name", name, "error", err)
		default:
			res.Plate = plate
		}
		results = append(results, res)
	}
	return results
}
