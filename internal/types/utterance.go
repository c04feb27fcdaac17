package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SilentSpeakerID is the reserved speaker id for synthetic silent slots.
const SilentSpeakerID = "silence"

const (
	RoleCaregiver = "caregiver"
	RoleChild     = "child"
)

// Utterance is one timeline entry of a session transcript. Silent slots are
// rows with SpeakerID == SilentSpeakerID, empty text and the silent_slot
// behavior tag; they share the ordering invariant with spoken utterances:
// Position is a dense 0-based index consistent with ascending StartTime.
type Utterance struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index:idx_session_position,unique" json:"session_id"`
	Session   *Session  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`

	SpeakerID string  `gorm:"column:speaker_id;not null" json:"speaker_id"`
	Text      string  `gorm:"column:text" json:"text"`
	StartTime float64 `gorm:"column:start_time;not null" json:"start_time"`
	EndTime   float64 `gorm:"column:end_time;not null" json:"end_time"`
	Position  int     `gorm:"column:position;not null;index:idx_session_position,unique" json:"order"`

	Role        *string `gorm:"column:role" json:"role,omitempty"`
	BehaviorTag *string `gorm:"column:behavior_tag" json:"behavior_tag,omitempty"`
	DisplayTag  *string `gorm:"column:display_tag" json:"display_tag,omitempty"`

	// Feedback carries the coaching message for silent slots, null otherwise.
	Feedback *string `gorm:"column:feedback" json:"feedback,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Utterance) TableName() string { return "utterance" }

func (u *Utterance) IsSilent() bool { return u.SpeakerID == SilentSpeakerID }
