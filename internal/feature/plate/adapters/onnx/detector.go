// Package onnx はOpenCV DNN（gocv）でYOLOv8のONNXモデルを実行する文字検出器を提供します。
package onnx

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"plate_reader/internal/feature/plate/adapters/yolo"
	"plate_reader/internal/feature/plate/domain/entity"
	"plate_reader/internal/feature/plate/usecase"
)

// BackendName はログ・メトリクスで使用するバックエンド名です。
const BackendName = "onnx"

// Detector はgocvのDNNモジュールでYOLOv8モデルを実行します。
// cv::dnn::Net はスレッドセーフではないため、推論はmuで直列化します。
type Detector struct {
	mu        sync.Mutex
	net       gocv.Net
	modelPath string
	cfg       Config
}

// Detectorがusecase.PlateDetectorを実装していることをコンパイル時に検証します。
var _ usecase.PlateDetector = (*Detector)(nil)

// Load は指定パスのONNXモデルを読み込みます。
func Load(path string, cfg Config) (*Detector, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("model file %s: %w", path, err)
	}
	net := gocv.ReadNetFromONNX(path)
	if net.Empty() {
		return nil, fmt.Errorf("failed to read onnx model %s", path)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		_ = net.Close()
		return nil, fmt.Errorf("set backend for %s: %w", path, err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		_ = net.Close()
		return nil, fmt.Errorf("set target for %s: %w", path, err)
	}
	return &Detector{net: net, modelPath: path, cfg: cfg}, nil
}

// Backend はバックエンド名を返します。
func (d *Detector) Backend() string { return BackendName }

// ModelPath は読み込んだモデルのパスを返します。
func (d *Detector) ModelPath() string { return d.modelPath }

// Close はネットワークを解放します。
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

// Detect は画像をレターボックス変換して推論し、NMS後の検出結果を返します。
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]entity.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lb := yolo.NewLetterbox(img.Bounds(), d.cfg.InputSize)
	input, err := gocv.ImageToMatRGB(lb.Apply(img))
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer input.Close()

	// ImageToMatRGBはBGR順のMatを返すため、swapRBでRGBに戻します。
	blob := gocv.BlobFromImage(input, 1.0/255.0, image.Pt(d.cfg.InputSize, d.cfg.InputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	d.mu.Unlock()
	defer out.Close()

	if out.Empty() {
		return nil, errors.New("model produced empty output")
	}
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output tensor: %w", err)
	}

	boxes, err := yolo.Decode(data, out.Size(), d.cfg.ConfThreshold, lb)
	if err != nil {
		return nil, err
	}
	boxes = yolo.NMS(boxes, d.cfg.IoUThreshold)

	dets := make([]entity.Detection, 0, len(boxes))
	for _, b := range boxes {
		dets = append(dets, entity.Detection{Left: b.X1, ClassID: b.Class})
	}
	return dets, nil
}
