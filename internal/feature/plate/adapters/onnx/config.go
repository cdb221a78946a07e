package onnx

import (
	"fmt"
	"os"
	"strconv"
)

const (
	DefaultModelPath         = "best.onnx"
	DefaultFallbackModelPath = "yolov8n.onnx"
	DefaultInputSize         = 640
	DefaultConfThreshold     = 0.25
	DefaultIoUThreshold      = 0.7
)

// Config はONNX検出器の設定です。
type Config struct {
	ModelPath         string
	FallbackModelPath string
	InputSize         int
	ConfThreshold     float32
	IoUThreshold      float64
}

// LoadConfig は環境変数から検出器の設定を読み込みます。
// 未設定の項目はデフォルト値になり、不正な数値はエラーになります。
func LoadConfig() (Config, error) {
	cfg := Config{
		ModelPath:         getEnv("MODEL_PATH", DefaultModelPath),
		FallbackModelPath: getEnv("FALLBACK_MODEL_PATH", DefaultFallbackModelPath),
		InputSize:         DefaultInputSize,
		ConfThreshold:     DefaultConfThreshold,
		IoUThreshold:      DefaultIoUThreshold,
	}

	if v := os.Getenv("MODEL_INPUT_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n%32 != 0 {
			return Config{}, fmt.Errorf("MODEL_INPUT_SIZE must be a positive multiple of 32, got %q", v)
		}
		cfg.InputSize = n
	}
	if v := os.Getenv("MODEL_CONF_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil || f < 0 || f > 1 {
			return Config{}, fmt.Errorf("MODEL_CONF_THRESHOLD must be within [0,1], got %q", v)
		}
		cfg.ConfThreshold = float32(f)
	}
	if v := os.Getenv("MODEL_IOU_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return Config{}, fmt.Errorf("MODEL_IOU_THRESHOLD must be within [0,1], got %q", v)
		}
		cfg.IoUThreshold = f
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
