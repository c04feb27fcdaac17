package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SessionModeCDI = "CDI"
	SessionModePDI = "PDI"
)

const (
	SessionStatusRecorded   = "recorded"
	SessionStatusProcessing = "processing"
	SessionStatusProcessed  = "processed"
	SessionStatusFailed     = "failed"
)

type Session struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ChildID uuid.UUID `gorm:"type:uuid;not null;index" json:"child_id"`
	Child   *Child    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChildID;references:ID" json:"child,omitempty"`

	Mode   string `gorm:"column:mode;not null;default:'CDI'" json:"mode"`
	Status string `gorm:"column:status;not null;default:'recorded'" json:"status"`

	RecordingDurationSeconds float64 `gorm:"column:recording_duration_seconds" json:"recording_duration_seconds"`

	// Observations is the free-text developmental observation summary produced
	// for the session; input to the milestone progression engine.
	Observations string     `gorm:"column:observations" json:"observations,omitempty"`
	ProfiledAt   *time.Time `gorm:"column:profiled_at" json:"profiled_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Session) TableName() string { return "session" }
