package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	platehandler "plate_reader/internal/feature/plate/transport/handler"
	"plate_reader/internal/platform/http/middleware"
	jwtmw "plate_reader/internal/platform/jwt"
)

// Deps はルーティングに必要なハンドラー群です。
type Deps struct {
	Plate        *platehandler.PlateHandler
	Recognitions *platehandler.RecognitionHandler
	Health       gin.HandlerFunc
	Metrics      http.Handler
	Observer     middleware.RequestObserver
	// AllowedOrigins が空の場合はCORSヘッダーを付与しません。
	AllowedOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(d.Observer))

	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  d.AllowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders: []string{middleware.HeaderRequestID},
			MaxAge:        12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", d.Health)
	r.HEAD("/healthz", d.Health)
	// Prometheusスクレイプ用
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}
	// ナンバープレート認識
	r.POST("/detect_plate", d.Plate.DetectPlate)

	// 認証必須のルート
	v1 := r.Group("/v1")
	v1.Use(jwtmw.AuthRequired())
	{
		v1.GET("/recognitions", d.Recognitions.ListRecognitions)
	}

	return r
}
