// Package usecase はplateフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

var (
	// ErrPlateNotFound は画像から文字が1つも認識できなかった場合に返されます。
	// エラー応答ではなく「プレートなし」の通常応答として扱います。
	ErrPlateNotFound = errors.New("no plate characters found")

	// ErrInvalidImage はアップロードされたデータを画像としてデコードできない場合に返されます。
	ErrInvalidImage = errors.New("invalid image")
)

// InvalidImageError はデコード失敗の理由を保持します。
// errors.Is(err, ErrInvalidImage) で判定できます。
type InvalidImageError struct {
	Reason error
}

func (e *InvalidImageError) Error() string {
	return e.Reason.Error()
}

func (e *InvalidImageError) Unwrap() error {
	return e.Reason
}

func (e *InvalidImageError) Is(target error) bool {
	return target == ErrInvalidImage
}
