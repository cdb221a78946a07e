package adapters

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"plate_reader/internal/feature/plate/domain/entity"
	"plate_reader/internal/feature/plate/usecase"
)

type recognitionGorm struct {
	db *gorm.DB
}

var _ usecase.RecognitionRepository = (*recognitionGorm)(nil)

func NewRecognitionRepository(db *gorm.DB) *recognitionGorm {
	return &recognitionGorm{db: db}
}

// RecognitionModel は認識履歴1件分のテーブル行です。IDはULIDで時系列順に並びます。
type RecognitionModel struct {
	ID          string    `gorm:"primaryKey;size:26"`
	Outcome     string    `gorm:"size:16;not null;index"`
	LeftDigits  string    `gorm:"size:8;not null;default:''"`
	Letter      string    `gorm:"size:8;not null;default:''"`
	RightDigits string    `gorm:"size:64;not null;default:''"`
	CityDigits  string    `gorm:"size:8;not null;default:''"`
	Detections  int       `gorm:"not null;default:0"`
	Backend     string    `gorm:"size:16;not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (RecognitionModel) TableName() string {
	return "recognitions"
}

func toModel(e *entity.Recognition) RecognitionModel {
	m := RecognitionModel{
		ID:         e.ID,
		Outcome:    string(e.Outcome),
		Detections: e.Detections,
		Backend:    e.Backend,
		CreatedAt:  e.CreatedAt,
	}
	if e.Plate != nil {
		m.LeftDigits = e.Plate.LeftDigits
		m.Letter = e.Plate.Letter
		m.RightDigits = e.Plate.RightDigits
		m.CityDigits = e.Plate.CityDigits
	}
	return m
}

func toEntity(m RecognitionModel) entity.Recognition {
	e := entity.Recognition{
		ID:         m.ID,
		Outcome:    entity.Outcome(m.Outcome),
		Detections: m.Detections,
		Backend:    m.Backend,
		CreatedAt:  m.CreatedAt,
	}
	if e.Outcome != entity.OutcomeNotFound {
		e.Plate = &entity.PlateParts{
			LeftDigits:  m.LeftDigits,
			Letter:      m.Letter,
			RightDigits: m.RightDigits,
			CityDigits:  m.CityDigits,
		}
	}
	return e
}

// Save は認識結果を保存します。IDとCreatedAtが空の場合はここで採番します。
func (r *recognitionGorm) Save(ctx context.Context, rec *entity.Recognition) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.ID == "" {
		rec.ID = ulid.MustNew(ulid.Timestamp(rec.CreatedAt), ulid.DefaultEntropy()).String()
	}
	m := toModel(rec)
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *recognitionGorm) ListRecent(ctx context.Context, limit int) ([]entity.Recognition, error) {
	var rows []RecognitionModel
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Recognition, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
