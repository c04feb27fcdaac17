package milestonelib

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/playnest/playnest-backend/internal/types"
)

//go:embed milestones.yaml
var milestonesYAML []byte

type fileEntry struct {
	Key                string `yaml:"key"`
	Category           string `yaml:"category"`
	StageLabel         string `yaml:"stage_label"`
	MedianAgeMonths    int    `yaml:"median_age_months"`
	Mastery90AgeMonths int    `yaml:"mastery90_age_months"`
	ThresholdValue     int    `yaml:"threshold_value"`
	Tip                string `yaml:"tip"`
}

type file struct {
	Milestones []fileEntry `yaml:"milestones"`
}

var validCategories = map[string]bool{
	types.MilestoneDomainGrossMotor:      true,
	types.MilestoneDomainFineMotor:       true,
	types.MilestoneDomainLanguage:        true,
	types.MilestoneDomainSocialEmotional: true,
	types.MilestoneDomainCognitive:       true,
}

// Load parses the embedded taxonomy into library rows, validating keys and
// domains so a bad edit fails at startup instead of mid-pipeline.
func Load() ([]*types.MilestoneLibraryEntry, error) {
	var f file
	if err := yaml.Unmarshal(milestonesYAML, &f); err != nil {
		return nil, fmt.Errorf("parse milestone library: %w", err)
	}
	if len(f.Milestones) == 0 {
		return nil, fmt.Errorf("milestone library is empty")
	}

	seen := map[string]bool{}
	rows := make([]*types.MilestoneLibraryEntry, 0, len(f.Milestones))
	for _, e := range f.Milestones {
		if e.Key == "" {
			return nil, fmt.Errorf("milestone library entry with empty key")
		}
		if seen[e.Key] {
			return nil, fmt.Errorf("duplicate milestone key %q", e.Key)
		}
		seen[e.Key] = true
		if !validCategories[e.Category] {
			return nil, fmt.Errorf("milestone %q has unknown category %q", e.Key, e.Category)
		}
		if e.ThresholdValue < 1 {
			return nil, fmt.Errorf("milestone %q has threshold %d, want >= 1", e.Key, e.ThresholdValue)
		}
		rows = append(rows, &types.MilestoneLibraryEntry{
			Key:                e.Key,
			Category:           e.Category,
			StageLabel:         e.StageLabel,
			MedianAgeMonths:    e.MedianAgeMonths,
			Mastery90AgeMonths: e.Mastery90AgeMonths,
			ThresholdValue:     e.ThresholdValue,
			Tip:                e.Tip,
		})
	}
	return rows, nil
}
