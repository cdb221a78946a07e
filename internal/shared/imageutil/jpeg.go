// Package imageutil は外部APIへ送信する画像の共通処理を提供します。
package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// JPEGQuality は外部APIへ送信する際のJPEG品質です。
const JPEGQuality = 90

// EncodeJPEG は画像をJPEGバイト列にエンコードします。
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
