package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"plate_reader/internal/app/di"
	"plate_reader/internal/app/router"
	platehandler "plate_reader/internal/feature/plate/transport/handler"
	plateusecase "plate_reader/internal/feature/plate/usecase"
	infradb "plate_reader/internal/platform/db"
	"plate_reader/internal/platform/http/handler"
	"plate_reader/internal/platform/logger"
	"plate_reader/internal/platform/metrics"
	infraredis "plate_reader/internal/platform/redis"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	logCfg, err := logger.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	l, logCloser := logger.New(logCfg, os.Stdout)
	slog.SetDefault(l)
	defer func() { _ = logCloser.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 検出器（プライマリ失敗時はフォールバック、両方失敗で終了）
	detector, err := di.NewDetector(ctx)
	if err != nil {
		slog.Error("failed to initialize detector", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := detector.Close(); err != nil {
			slog.Warn("failed to close detector", "error", err)
		}
	}()

	// Redis（任意）
	var rdb *redisv9.Client
	if redisCfg, err := infraredis.LoadConfig(); err != nil {
		slog.Error("invalid redis config", "error", err)
		os.Exit(1)
	} else if redisCfg.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, redisCfg); err != nil {
			log.Println("[WARN] Redis unavailable. Running without detection cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Println("[ERROR] Failed to close Redis client:", err)
				}
			}()
		}
	}

	// DB（任意）
	var db *gorm.DB
	if dbCfg := infradb.LoadConfigFromEnv(); dbCfg.Enabled() {
		if db, err = infradb.OpenDB(dbCfg); err != nil {
			slog.Error("database unavailable", "error", err)
			os.Exit(1)
		}
	} else {
		log.Println("[WARN] DB_HOST/DB_NAME not set. Recognition history is disabled.")
	}

	cacheTTL, err := durationEnv("DETECTION_CACHE_TTL", 0)
	if err != nil {
		slog.Error("invalid DETECTION_CACHE_TTL", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	// Usecase
	plateUC := plateusecase.NewPlateUsecase(
		detector,
		di.NewDetectionCache(rdb, cacheTTL, detector.CacheNamespace()),
		di.NewRecognitionRepository(db),
		m,
	)

	// Handler・ルータ生成
	r := router.NewRouter(router.Deps{
		Plate:          platehandler.NewPlateHandler(plateUC),
		Recognitions:   platehandler.NewRecognitionHandler(plateUC),
		Health:         handler.Health(detector.Info),
		Metrics:        m.Handler(),
		Observer:       m,
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	})

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv("JWT_SECRET") == "" {
		log.Println("[WARN] JWT_SECRET is not set. /v1 routes will answer 500.")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr, "detector", detector.Info.Backend, "model", detector.Info.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
