package types

import (
	"time"

	"github.com/google/uuid"
)

// ChildIssuePriority is an append-only history row. Every priority engine run
// appends one row per active level; rows are never mutated or deleted, so the
// table is a timeline and "current priorities" is the maximal ComputedAt per
// child. No UpdatedAt/DeletedAt on purpose; all fields are set by the engine.
type ChildIssuePriority struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID uuid.UUID `gorm:"type:uuid;not null;index" json:"child_id"`
	Child   *Child    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChildID;references:ID" json:"child,omitempty"`

	ClinicalLevel ClinicalLevel `gorm:"column:clinical_level;not null" json:"clinical_level"`
	Strategy      string        `gorm:"column:strategy;not null" json:"strategy"`
	PriorityRank  int           `gorm:"column:priority_rank;not null" json:"priority_rank"`

	FromUserIssue bool `gorm:"column:from_user_issue;not null" json:"from_user_issue"`
	FromWacb      bool `gorm:"column:from_wacb;not null" json:"from_wacb"`
	WacbScore     int  `gorm:"column:wacb_score;not null" json:"wacb_score"`

	ComputedAt         time.Time  `gorm:"column:computed_at;not null;index" json:"computed_at"`
	TriggeringSurveyID *uuid.UUID `gorm:"type:uuid;column:triggering_survey_id" json:"triggering_survey_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (ChildIssuePriority) TableName() string { return "child_issue_priority" }
