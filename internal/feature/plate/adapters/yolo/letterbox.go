// Package yolo implements the model-independent parts of YOLOv8 inference:
// letterbox preprocessing, output tensor decoding and non-maximum suppression.
package yolo

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// padColor matches the gray used by the training pipeline.
var padColor = color.RGBA{R: 114, G: 114, B: 114, A: 255}

// Letterbox describes how a source image was fitted into a square model input.
type Letterbox struct {
	Size  int
	Scale float64
	PadX  float64
	PadY  float64
}

// NewLetterbox computes the aspect-preserving fit of src into a size x size square.
func NewLetterbox(src image.Rectangle, size int) Letterbox {
	w, h := float64(src.Dx()), float64(src.Dy())
	scale := math.Min(float64(size)/w, float64(size)/h)
	nw, nh := math.Round(w*scale), math.Round(h*scale)
	return Letterbox{
		Size:  size,
		Scale: scale,
		PadX:  math.Floor((float64(size) - nw) / 2),
		PadY:  math.Floor((float64(size) - nh) / 2),
	}
}

// Inner returns the rectangle the resized image occupies inside the square.
func (l Letterbox) Inner(src image.Rectangle) image.Rectangle {
	nw := int(math.Round(float64(src.Dx()) * l.Scale))
	nh := int(math.Round(float64(src.Dy()) * l.Scale))
	x0, y0 := int(l.PadX), int(l.PadY)
	return image.Rect(x0, y0, x0+nw, y0+nh)
}

// Apply renders src into a new padded RGBA square.
func (l Letterbox) Apply(src image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, l.Size, l.Size))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: padColor}, image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, l.Inner(src.Bounds()), src, src.Bounds(), draw.Src, nil)
	return dst
}

// ToSource maps an x coordinate from model input space back to the source image.
func (l Letterbox) ToSource(x float64) float64 {
	return (x - l.PadX) / l.Scale
}

// ToSourceY is ToSource for the vertical axis.
func (l Letterbox) ToSourceY(y float64) float64 {
	return (y - l.PadY) / l.Scale
}
