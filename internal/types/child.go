package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Child struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string     `gorm:"column:name;not null" json:"name"`
	Birthday  *time.Time `gorm:"column:birthday" json:"birthday,omitempty"`
	BirthYear *int       `gorm:"column:birth_year" json:"birth_year,omitempty"`

	// RawIssues is the onboarding issue selection exactly as submitted: either
	// a JSON array string or a bare string. Parsed only at the persistence
	// boundary (services.ParseIssueList).
	RawIssues string `gorm:"column:raw_issues" json:"raw_issues,omitempty"`

	PrimaryIssue      *string `gorm:"column:primary_issue" json:"primary_issue,omitempty"`
	PrimaryStrategy   *string `gorm:"column:primary_strategy" json:"primary_strategy,omitempty"`
	SecondaryIssue    *string `gorm:"column:secondary_issue" json:"secondary_issue,omitempty"`
	SecondaryStrategy *string `gorm:"column:secondary_strategy" json:"secondary_strategy,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Child) TableName() string { return "child" }

// AgeMonths computes the child's age in whole months at the given time.
// Birthday wins over birth year (which carries 0-month precision); with
// neither, ok is false and age-conditioned prompts omit the age.
func (c *Child) AgeMonths(at time.Time) (int, bool) {
	var born time.Time
	switch {
	case c.Birthday != nil:
		born = *c.Birthday
	case c.BirthYear != nil:
		born = time.Date(*c.BirthYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return 0, false
	}
	if born.After(at) {
		return 0, true
	}
	months := (at.Year()-born.Year())*12 + int(at.Month()) - int(born.Month())
	if at.Day() < born.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months, true
}
