package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WacbSurvey is one Weekly Assessment of Child Behavior submission. Each
// question scores 1..7; Raw keeps the submitted payload verbatim.
type WacbSurvey struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ChildID uuid.UUID `gorm:"type:uuid;not null;index" json:"child_id"`
	Child   *Child    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChildID;references:ID" json:"child,omitempty"`

	Q1Dawdle  int `gorm:"column:q1_dawdle;not null;default:0" json:"q1_dawdle"`
	Q2Refuse  int `gorm:"column:q2_refuse;not null;default:0" json:"q2_refuse"`
	Q3Ignore  int `gorm:"column:q3_ignore;not null;default:0" json:"q3_ignore"`
	Q4Tantrum int `gorm:"column:q4_tantrum;not null;default:0" json:"q4_tantrum"`
	Q5Whine   int `gorm:"column:q5_whine;not null;default:0" json:"q5_whine"`
	Q6Scream  int `gorm:"column:q6_scream;not null;default:0" json:"q6_scream"`
	Q7Hit     int `gorm:"column:q7_hit;not null;default:0" json:"q7_hit"`
	Q8Destroy int `gorm:"column:q8_destroy;not null;default:0" json:"q8_destroy"`
	Q9Cling   int `gorm:"column:q9_cling;not null;default:0" json:"q9_cling"`
	Q10Fear   int `gorm:"column:q10_fear;not null;default:0" json:"q10_fear"`

	Raw datatypes.JSON `gorm:"type:jsonb;column:raw" json:"raw,omitempty"`

	SubmittedAt time.Time `gorm:"column:submitted_at;not null" json:"submitted_at"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (WacbSurvey) TableName() string { return "wacb_survey" }
