package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/types"
)

type ChildRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Child) (*types.Child, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Child, error)
	UpdateRawIssues(ctx context.Context, tx *gorm.DB, id uuid.UUID, rawIssues string) error
	UpdatePriorityFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, primaryIssue, primaryStrategy, secondaryIssue, secondaryStrategy *string) error
}

type childRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChildRepo(db *gorm.DB, baseLog *logger.Logger) ChildRepo {
	repoLog := baseLog.With("repo", "ChildRepo")
	return &childRepo{db: db, log: repoLog}
}

func (r *childRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Child) (*types.Child, error) {
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

func (r *childRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Child, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Child
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *childRepo) UpdateRawIssues(ctx context.Context, tx *gorm.DB, id uuid.UUID, rawIssues string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Child{}).
		Where("id = ?", id).
		Update("raw_issues", rawIssues).Error
}

func (r *childRepo) UpdatePriorityFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, primaryIssue, primaryStrategy, secondaryIssue, secondaryStrategy *string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Child{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"primary_issue":      primaryIssue,
			"primary_strategy":   primaryStrategy,
			"secondary_issue":    secondaryIssue,
			"secondary_strategy": secondaryStrategy,
		}).Error
}
