package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	plateadapters "plate_reader/internal/feature/plate/adapters"
	"plate_reader/internal/feature/plate/usecase"
	"plate_reader/internal/platform/cache"
)

// NewRecognitionRepository creates the history repository.
// Without a database it returns nil and the usecase skips history.
func NewRecognitionRepository(db *gorm.DB) usecase.RecognitionRepository {
	if db == nil {
		return nil
	}
	return plateadapters.NewRecognitionRepository(db)
}

// NewDetectionCache creates the detection cache.
// Without Redis it returns nil and every request runs the detector.
func NewDetectionCache(rdb *redis.Client, ttl time.Duration, namespace string) usecase.DetectionCache {
	if rdb == nil {
		return nil
	}
	return cache.NewDetectionCache(rdb, ttl, namespace)
}
