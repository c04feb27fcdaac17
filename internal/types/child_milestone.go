package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	MilestoneStatusEmerging = "EMERGING"
	MilestoneStatusAchieved = "ACHIEVED"
)

// ChildMilestone tracks one (child, milestone) pair through the two-state
// lifecycle. Status only ever moves EMERGING -> ACHIEVED; a row is created at
// most once per pair and never deleted by the engine.
type ChildMilestone struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ChildID      uuid.UUID `gorm:"type:uuid;not null;index:idx_child_milestone,unique" json:"child_id"`
	Child        *Child    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChildID;references:ID" json:"child,omitempty"`
	MilestoneKey string    `gorm:"column:milestone_key;not null;index:idx_child_milestone,unique" json:"milestone_key"`

	Status          string     `gorm:"column:status;not null;default:'EMERGING'" json:"status"`
	FirstObservedAt time.Time  `gorm:"column:first_observed_at;not null" json:"first_observed_at"`
	AchievedAt      *time.Time `gorm:"column:achieved_at" json:"achieved_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ChildMilestone) TableName() string { return "child_milestone" }
