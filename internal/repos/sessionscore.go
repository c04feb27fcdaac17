package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/types"
)

type SessionScoreRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.SessionScore) error
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.SessionScore, error)
}

type sessionScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionScoreRepo(db *gorm.DB, baseLog *logger.Logger) SessionScoreRepo {
	repoLog := baseLog.With("repo", "SessionScoreRepo")
	return &sessionScoreRepo{db: db, log: repoLog}
}

func (r *sessionScoreRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.SessionScore) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"mode", "score", "passed", "updated_at"}),
		}).
		Create(row).Error
}

func (r *sessionScoreRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.SessionScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.SessionScore
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
