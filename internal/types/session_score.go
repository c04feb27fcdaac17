package types

import (
	"time"

	"github.com/google/uuid"
)

// SessionScore is the single competency verdict per session. Recomputing from
// the same utterance set overwrites with identical values (upsert by session).
type SessionScore struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	Session   *Session  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`

	Mode   string `gorm:"column:mode;not null" json:"mode"`
	Score  int    `gorm:"column:score;not null" json:"score"`
	Passed bool   `gorm:"column:passed;not null" json:"passed"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SessionScore) TableName() string { return "session_score" }
