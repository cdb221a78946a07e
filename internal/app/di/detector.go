// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"plate_reader/internal/feature/plate/adapters/gemini"
	"plate_reader/internal/feature/plate/adapters/onnx"
	"plate_reader/internal/feature/plate/adapters/rekognition"
	"plate_reader/internal/feature/plate/adapters/vision"
	"plate_reader/internal/feature/plate/usecase"
	infrahttp "plate_reader/internal/platform/http"
	"plate_reader/internal/platform/http/handler"
	"plate_reader/internal/shared/ratelimiter"
)

// Detector bundles the selected detector with its health info and cleanup.
type Detector struct {
	usecase.PlateDetector
	Info  handler.DetectorInfo
	Close func() error
}

// CacheNamespace identifies the detector output for the detection cache.
// The loaded model is included so results from a fallback model are never
// served after a restart on the primary one.
func (d *Detector) CacheNamespace() string {
	if d.Info.Model == "" {
		return d.Info.Backend
	}
	return d.Info.Backend + ":" + d.Info.Model
}

// NewDetector creates the detector named by DETECTOR_BACKEND (default onnx).
// Each backend tries its primary model first and falls back to a secondary one;
// the process only fails when both are unavailable.
func NewDetector(ctx context.Context) (*Detector, error) {
	backend := os.Getenv("DETECTOR_BACKEND")
	if backend == "" {
		backend = onnx.BackendName
	}

	switch backend {
	case onnx.BackendName:
		return newONNXDetector()
	case vision.BackendName:
		return newVisionDetector(ctx)
	case gemini.BackendName:
		return newGeminiDetector(ctx)
	case rekognition.BackendName:
		return newRekognitionDetector(ctx)
	default:
		return nil, fmt.Errorf("unknown DETECTOR_BACKEND %q", backend)
	}
}

func newONNXDetector() (*Detector, error) {
	cfg, err := onnx.LoadConfig()
	if err != nil {
		return nil, err
	}
	d, model, degraded, err := loadWithFallback(cfg.ModelPath, cfg.FallbackModelPath, func(path string) (*onnx.Detector, error) {
		return onnx.Load(path, cfg)
	})
	if err != nil {
		return nil, err
	}
	return &Detector{
		PlateDetector: d,
		Info:          handler.DetectorInfo{Backend: onnx.BackendName, Model: model, Degraded: degraded},
		Close:         d.Close,
	}, nil
}

func newVisionDetector(ctx context.Context) (*Detector, error) {
	d, err := vision.NewVisionPlateDetector(ctx)
	if err != nil {
		return nil, err
	}
	return &Detector{
		PlateDetector: d,
		Info:          handler.DetectorInfo{Backend: vision.BackendName},
		Close:         d.Close,
	}, nil
}

func newGeminiDetector(ctx context.Context) (*Detector, error) {
	primary := envOr("GEMINI_MODEL", gemini.DefaultModel)
	fallback := envOr("GEMINI_FALLBACK_MODEL", gemini.DefaultFallbackModel)

	rpm := 0
	if v := os.Getenv("GEMINI_RPM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid GEMINI_RPM %q", v)
		}
		rpm = n
	}

	client, err := gemini.NewClient(ctx, infrahttp.NewHTTPClient(60*time.Second))
	if err != nil {
		return nil, err
	}
	limiter := ratelimiter.NewRateLimiter(rpm, time.Minute)

	d, model, degraded, err := loadWithFallback(primary, fallback, func(model string) (*gemini.GeminiPlateDetector, error) {
		return gemini.NewGeminiPlateDetector(ctx, client, model, limiter)
	})
	if err != nil {
		return nil, err
	}
	return &Detector{
		PlateDetector: d,
		Info:          handler.DetectorInfo{Backend: gemini.BackendName, Model: model, Degraded: degraded},
		Close:         func() error { return nil },
	}, nil
}

func newRekognitionDetector(ctx context.Context) (*Detector, error) {
	minConf := rekognition.DefaultMinConfidence
	if v := os.Getenv("REKOGNITION_MIN_CONFIDENCE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil || f < 0 || f > 100 {
			return nil, fmt.Errorf("invalid REKOGNITION_MIN_CONFIDENCE %q", v)
		}
		minConf = float32(f)
	}

	// DetectText reads Latin script only, so only digits come back.
	slog.Warn("rekognition reads Latin script only; plate letters will not be recognized and results use the fallback form")

	client, err := rekognition.NewClient(ctx, os.Getenv("AWS_REGION"))
	if err != nil {
		return nil, err
	}
	return &Detector{
		PlateDetector: rekognition.NewRekognitionPlateDetector(client, minConf),
		Info:          handler.DetectorInfo{Backend: rekognition.BackendName},
		Close:         func() error { return nil },
	}, nil
}

// loadWithFallback loads primary, logging and switching to fallback on failure.
// It reports which name was loaded and whether that is the fallback.
func loadWithFallback[T any](primary, fallback string, load func(string) (T, error)) (T, string, bool, error) {
	d, err := load(primary)
	if err == nil {
		slog.Info("detector model loaded", "model", primary)
		return d, primary, false, nil
	}
	slog.Error("Error loading model, using fallback", "model", primary, "fallback", fallback, "error", err)

	var zero T
	if fallback == "" || fallback == primary {
		return zero, "", false, fmt.Errorf("load model %s: %w", primary, err)
	}
	d, ferr := load(fallback)
	if ferr != nil {
		return zero, "", false, fmt.Errorf("load model %s: %v; fallback %s: %w", primary, err, fallback, ferr)
	}
	slog.Warn("running with fallback model", "model", fallback)
	return d, fallback, true, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
