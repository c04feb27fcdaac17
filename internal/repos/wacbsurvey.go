package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/types"
)

type WacbSurveyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.WacbSurvey) (*types.WacbSurvey, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.WacbSurvey, error)
	// GetLatestByChildID returns nil, nil when the child has no survey yet.
	GetLatestByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (*types.WacbSurvey, error)
}

type wacbSurveyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWacbSurveyRepo(db *gorm.DB, baseLog *logger.Logger) WacbSurveyRepo {
	repoLog := baseLog.With("repo", "WacbSurveyRepo")
	return &wacbSurveyRepo{db: db, log: repoLog}
}

func (r *wacbSurveyRepo) Create(ctx context.Context, tx *gorm.DB, row *types.WacbSurvey) (*types.WacbSurvey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = row.SubmittedAt
	}
	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *wacbSurveyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.WacbSurvey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.WacbSurvey
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *wacbSurveyRepo) GetLatestByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (*types.WacbSurvey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.WacbSurvey
	err := transaction.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("submitted_at DESC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
