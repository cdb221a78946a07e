// Package logger configures the process-wide slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls log level, format and the optional rotating log file.
type Config struct {
	Level  slog.Level
	JSON   bool
	File   string // empty disables file output
	MaxMB  int
	MaxAge int // days
}

// LoadConfig reads LOG_LEVEL, LOG_FORMAT and LOG_FILE from the environment.
func LoadConfig() (Config, error) {
	cfg := Config{Level: slog.LevelInfo, JSON: true, File: os.Getenv("LOG_FILE"), MaxMB: 100, MaxAge: 7}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.Level.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
	}
	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "", "json":
	case "text":
		cfg.JSON = false
	default:
		return Config{}, fmt.Errorf("invalid LOG_FORMAT %q", os.Getenv("LOG_FORMAT"))
	}
	return cfg, nil
}

// New builds a logger writing to stdout and, if configured, a rotating file.
// The returned closer flushes the file writer and is safe to call when no file is used.
func New(cfg Config, stdout io.Writer) (*slog.Logger, io.Closer) {
	writers := []io.Writer{stdout}
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    cfg.MaxMB,
			MaxAge:     cfg.MaxAge,
			MaxBackups: 3,
		}
		writers = append(writers, fileWriter)
		closer = fileWriter
	}

	out := io.MultiWriter(writers...)
	opts := &slog.HandlerOptions{Level: cfg.Level}
	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
