package types

import (
	"time"

	"github.com/google/uuid"
)

// Milestone domains. The library spans exactly these five.
const (
	MilestoneDomainGrossMotor      = "gross_motor"
	MilestoneDomainFineMotor       = "fine_motor"
	MilestoneDomainLanguage        = "language"
	MilestoneDomainSocialEmotional = "social_emotional"
	MilestoneDomainCognitive       = "cognitive"
)

// MilestoneLibraryEntry is static reference data seeded from the embedded
// taxonomy; read-only to the pipeline.
type MilestoneLibraryEntry struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Key                string    `gorm:"column:key;not null;uniqueIndex" json:"key"`
	Category           string    `gorm:"column:category;not null;index" json:"category"`
	StageLabel         string    `gorm:"column:stage_label;not null" json:"stage_label"`
	MedianAgeMonths    int       `gorm:"column:median_age_months;not null" json:"median_age_months"`
	Mastery90AgeMonths int       `gorm:"column:mastery90_age_months;not null" json:"mastery90_age_months"`

	// ThresholdValue is the session count since first observation that must be
	// strictly exceeded before an EMERGING milestone counts as ACHIEVED.
	ThresholdValue int `gorm:"column:threshold_value;not null" json:"threshold_value"`

	Tip string `gorm:"column:tip" json:"tip,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (MilestoneLibraryEntry) TableName() string { return "milestone_library" }
