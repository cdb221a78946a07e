// Command recognize reads plates from image files without starting the server.
// Each result is printed as one JSON line in the same shape as POST /detect_plate.
//
//	go run ./cmd/recognize photos/*.jpg
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"plate_reader/internal/api"
	"plate_reader/internal/app/di"
	platehandler "plate_reader/internal/feature/plate/transport/handler"
	"plate_reader/internal/feature/plate/usecase"
	infradb "plate_reader/internal/platform/db"
	"plate_reader/internal/platform/logger"
)

// line は1ファイル分の出力です。成功時はplate_text、プレートなしはmessage、失敗時はerrorのみを持ちます。
type line struct {
	File      string         `json:"file"`
	PlateText *api.PlateText `json:"plate_text,omitempty"`
	Message   string         `json:"message,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func toLine(r usecase.BatchResult) line {
	out := line{File: r.Name}
	switch {
	case r.Err != nil:
		out.Error = r.Err.Error()
	case r.Plate == nil:
		out.Message = platehandler.PlateNotFoundMessage
	default:
		out.PlateText = &api.PlateText{
			LeftDigits:  r.Plate.LeftDigits,
			Letter:      r.Plate.Letter,
			RightDigits: r.Plate.RightDigits,
			CityDigits:  r.Plate.CityDigits,
		}
	}
	return out
}

func main() {
	timeout := flag.Duration("timeout", 10*time.Minute, "overall deadline")
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatal("usage: recognize [-timeout d] image...")
	}

	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}
	logCfg, err := logger.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	l, closer := logger.New(logCfg, os.Stderr)
	slog.SetDefault(l)
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	detector, err := di.NewDetector(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = detector.Close() }()

	// 履歴はDBが設定されている場合のみ記録
	var history usecase.RecognitionRepository
	if dbCfg := infradb.LoadConfigFromEnv(); dbCfg.Enabled() {
		db, err := infradb.OpenDB(dbCfg)
		if err != nil {
			log.Fatal(err)
		}
		history = di.NewRecognitionRepository(db)
	}

	uc := usecase.NewPlateUsecase(detector, nil, history, nil)
	batch := usecase.NewBatchUsecase(uc, os.ReadFile)

	enc := json.NewEncoder(os.Stdout)
	failed := 0
	for _, r := range batch.RecognizeAll(ctx, flag.Args()) {
		if r.Err != nil {
			failed++
		}
		if err := enc.Encode(toLine(r)); err != nil {
			log.Fatal(err)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}
