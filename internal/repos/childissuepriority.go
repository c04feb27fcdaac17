package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/types"
)

type ChildIssuePriorityRepo interface {
	// Append inserts new history rows. There is deliberately no update or
	// delete: the table is an immutable timeline.
	Append(ctx context.Context, tx *gorm.DB, rows []*types.ChildIssuePriority) ([]*types.ChildIssuePriority, error)
	// GetCurrentByChildID returns the rows of the most recent engine run,
	// ranked, or an empty slice when no run has happened.
	GetCurrentByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.ChildIssuePriority, error)
	GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.ChildIssuePriority, error)
}

type childIssuePriorityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChildIssuePriorityRepo(db *gorm.DB, baseLog *logger.Logger) ChildIssuePriorityRepo {
	repoLog := baseLog.With("repo", "ChildIssuePriorityRepo")
	return &childIssuePriorityRepo{db: db, log: repoLog}
}

func (r *childIssuePriorityRepo) Append(ctx context.Context, tx *gorm.DB, rows []*types.ChildIssuePriority) ([]*types.ChildIssuePriority, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.ChildIssuePriority{}, nil
	}

	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = row.ComputedAt
		}
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *childIssuePriorityRepo) GetCurrentByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.ChildIssuePriority, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ChildIssuePriority
	if childID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("child_id = ? AND computed_at = (?)", childID,
			transaction.Model(&types.ChildIssuePriority{}).
				Select("MAX(computed_at)").
				Where("child_id = ?", childID)).
		Order("priority_rank ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *childIssuePriorityRepo) GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.ChildIssuePriority, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ChildIssuePriority
	if childID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("computed_at ASC, priority_rank ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
