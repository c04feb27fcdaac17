package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/types"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Session) (*types.Session, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Session, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
	MarkProfiled(ctx context.Context, tx *gorm.DB, id uuid.UUID, observations string, profiledAt time.Time) error
	CountByChildSince(ctx context.Context, tx *gorm.DB, childID uuid.UUID, since time.Time) (int64, error)
	CountProfiledByChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (int64, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	repoLog := baseLog.With("repo", "SessionRepo")
	return &sessionRepo{db: db, log: repoLog}
}

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Session) (*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *sessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Session
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *sessionRepo) MarkProfiled(ctx context.Context, tx *gorm.DB, id uuid.UUID, observations string, profiledAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"observations": observations,
			"profiled_at":  profiledAt,
		}).Error
}

func (r *sessionRepo) CountByChildSince(ctx context.Context, tx *gorm.DB, childID uuid.UUID, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("child_id = ? AND created_at > ?", childID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *sessionRepo) CountProfiledByChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("child_id = ? AND profiled_at IS NOT NULL", childID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
