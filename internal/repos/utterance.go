package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/types"
)

type UtteranceRepo interface {
	// ReplaceForSession swaps the session's full timeline in one statement
	// pair so the normalized set is written atomically or not at all.
	ReplaceForSession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, rows []*types.Utterance) ([]*types.Utterance, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.Utterance, error)
	// UpdateTags attaches role and behavior/display tags in place.
	UpdateTags(ctx context.Context, tx *gorm.DB, rows []*types.Utterance) error
}

type utteranceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUtteranceRepo(db *gorm.DB, baseLog *logger.Logger) UtteranceRepo {
	repoLog := baseLog.With("repo", "UtteranceRepo")
	return &utteranceRepo{db: db, log: repoLog}
}

func (r *utteranceRepo) ReplaceForSession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, rows []*types.Utterance) ([]*types.Utterance, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("session_id = ?", sessionID).
		Delete(&types.Utterance{}).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*types.Utterance{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *utteranceRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.Utterance, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Utterance
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *utteranceRepo) UpdateTags(ctx context.Context, tx *gorm.DB, rows []*types.Utterance) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	for _, row := range rows {
		if row == nil {
			continue
		}
		if err := transaction.WithContext(ctx).
			Model(&types.Utterance{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"role":         row.Role,
				"behavior_tag": row.BehaviorTag,
				"display_tag":  row.DisplayTag,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}
