package usecase

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// MaxImageSize は画像アップロードの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024
	// MaxImagePixels はデコードを許可する最大ピクセル数です。
	// 小さな圧縮ファイルが巨大なラスタに展開されるのを防ぎます。
	MaxImagePixels = 178956970
)

// DecodeImage はアップロードされたバイト列を画像としてデコードします。
// 空データ・サイズ超過・未対応形式はすべて *InvalidImageError になります。
func DecodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", &InvalidImageError{Reason: errors.New("image data is empty")}
	}
	if len(data) > MaxImageSize {
		return nil, "", &InvalidImageError{Reason: fmt.Errorf("image size exceeds maximum of %d bytes", MaxImageSize)}
	}
	// ヘッダーだけを読んでサイズを確認してから本体をデコード
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", &InvalidImageError{Reason: err}
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > MaxImagePixels {
		return nil, "", &InvalidImageError{Reason: fmt.Errorf("image size (%d pixels) exceeds limit of %d pixels", pixels, MaxImagePixels)}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &InvalidImageError{Reason: err}
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", &InvalidImageError{Reason: errors.New("image has no pixels")}
	}
	return img, format, nil
}
