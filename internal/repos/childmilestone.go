package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/types"
)

type ChildMilestoneRepo interface {
	GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.ChildMilestone, error)
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ChildMilestone) ([]*types.ChildMilestone, error)
	// MarkAchieved is the only permitted mutation: EMERGING -> ACHIEVED.
	MarkAchieved(ctx context.Context, tx *gorm.DB, id uuid.UUID, achievedAt time.Time) error
}

type childMilestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChildMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) ChildMilestoneRepo {
	repoLog := baseLog.With("repo", "ChildMilestoneRepo")
	return &childMilestoneRepo{db: db, log: repoLog}
}

func (r *childMilestoneRepo) GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.ChildMilestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ChildMilestone
	if childID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("child_id = ?", childID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *childMilestoneRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ChildMilestone) ([]*types.ChildMilestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.ChildMilestone{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *childMilestoneRepo) MarkAchieved(ctx context.Context, tx *gorm.DB, id uuid.UUID, achievedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.ChildMilestone{}).
		Where("id = ? AND status = ?", id, types.MilestoneStatusEmerging).
		Updates(map[string]interface{}{
			"status":      types.MilestoneStatusAchieved,
			"achieved_at": achievedAt,
		}).Error
}
