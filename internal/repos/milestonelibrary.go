package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/types"
)

type MilestoneLibraryRepo interface {
	// Seed upserts the embedded taxonomy by key; the table is otherwise
	// read-only to the pipeline.
	Seed(ctx context.Context, tx *gorm.DB, rows []*types.MilestoneLibraryEntry) error
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.MilestoneLibraryEntry, error)
	GetByKeys(ctx context.Context, tx *gorm.DB, keys []string) ([]*types.MilestoneLibraryEntry, error)
}

type milestoneLibraryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneLibraryRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneLibraryRepo {
	repoLog := baseLog.With("repo", "MilestoneLibraryRepo")
	return &milestoneLibraryRepo{db: db, log: repoLog}
}

func (r *milestoneLibraryRepo) Seed(ctx context.Context, tx *gorm.DB, rows []*types.MilestoneLibraryEntry) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"category", "stage_label", "median_age_months", "mastery90_age_months", "threshold_value", "tip", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *milestoneLibraryRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.MilestoneLibraryEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.MilestoneLibraryEntry
	if err := transaction.WithContext(ctx).
		Order("category ASC, median_age_months ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *milestoneLibraryRepo) GetByKeys(ctx context.Context, tx *gorm.DB, keys []string) ([]*types.MilestoneLibraryEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.MilestoneLibraryEntry
	if len(keys) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("key IN ?", keys).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
