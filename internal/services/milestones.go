package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/repos"
	"github.com/playnest/playnest-backend/internal/types"
)

// Celebration is the UI-facing summary of one milestone transition.
type Celebration struct {
	Key    string `json:"key"`
	Status string `json:"status"`
	Domain string `json:"domain"`
	Title  string `json:"title"`
	Tip    string `json:"tip"`
}

// ProfilingResult reports what one profiling run changed.
type ProfilingResult struct {
	NewlyEmerging int           `json:"newly_emerging"`
	NewlyAchieved int           `json:"newly_achieved"`
	Celebrations  []Celebration `json:"celebrations"`
}

// ChildMilestoneView is one observed milestone joined with its library entry.
type ChildMilestoneView struct {
	Key             string     `json:"key"`
	Domain          string     `json:"domain"`
	Title           string     `json:"title"`
	Status          string     `json:"status"`
	Tip             string     `json:"tip,omitempty"`
	FirstObservedAt time.Time  `json:"first_observed_at"`
	AchievedAt      *time.Time `json:"achieved_at,omitempty"`
}

// MilestonesService advances each (child, milestone) pair through the
// EMERGING -> ACHIEVED lifecycle from a session's developmental observations.
type MilestonesService interface {
	RunProfiling(ctx context.Context, sessionID uuid.UUID, observations string) (*ProfilingResult, error)
	ListForChild(ctx context.Context, childID uuid.UUID) ([]ChildMilestoneView, error)
}

type milestonesService struct {
	db         *gorm.DB
	log        *logger.Logger
	classifier Classifier
	sessions   repos.SessionRepo
	children   repos.ChildRepo
	library    repos.MilestoneLibraryRepo
	milestones repos.ChildMilestoneRepo
	now        func() time.Time
}

func NewMilestonesService(db *gorm.DB, baseLog *logger.Logger, classifier Classifier, sessions repos.SessionRepo, children repos.ChildRepo, library repos.MilestoneLibraryRepo, milestones repos.ChildMilestoneRepo) MilestonesService {
	return &milestonesService{
		db:         db,
		log:        baseLog.With("service", "MilestonesService"),
		classifier: classifier,
		sessions:   sessions,
		children:   children,
		library:    library,
		milestones: milestones,
		now:        time.Now,
	}
}

func (s *milestonesService) RunProfiling(ctx context.Context, sessionID uuid.UUID, observations string) (*ProfilingResult, error) {
	log := s.log.With("session_id", sessionID)
	now := s.now().UTC()

	session, err := s.sessions.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	child, err := s.children.GetByID(ctx, nil, session.ChildID)
	if err != nil {
		return nil, fmt.Errorf("load child: %w", err)
	}
	log = log.With("child_id", child.ID)

	library, err := s.library.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load milestone library: %w", err)
	}
	libraryByKey := map[string]*types.MilestoneLibraryEntry{}
	for _, entry := range library {
		libraryByKey[entry.Key] = entry
	}

	existing, err := s.milestones.GetByChildID(ctx, nil, child.ID)
	if err != nil {
		return nil, fmt.Errorf("load child milestones: %w", err)
	}
	existingByKey := map[string]*types.ChildMilestone{}
	for _, row := range existing {
		existingByKey[row.MilestoneKey] = row
	}

	// Candidates exclude achieved milestones; ACHIEVED is terminal.
	candidates := make([]MilestoneCandidate, 0, len(library))
	for _, entry := range library {
		if row, ok := existingByKey[entry.Key]; ok && row.Status == types.MilestoneStatusAchieved {
			continue
		}
		candidates = append(candidates, MilestoneCandidate{
			Key:             entry.Key,
			Category:        entry.Category,
			StageLabel:      entry.StageLabel,
			MedianAgeMonths: entry.MedianAgeMonths,
		})
	}

	var agePtr *int
	if age, ok := child.AgeMonths(now); ok {
		agePtr = &age
	} else {
		log.Debug("No birthday or birth year, omitting age from prompts")
	}

	matched, err := s.classifier.MatchMilestones(ctx, observations, agePtr, candidates)
	if err != nil {
		return nil, fmt.Errorf("milestone matching: %w", err)
	}

	profiledBefore, err := s.sessions.CountProfiledByChild(ctx, nil, child.ID)
	if err != nil {
		return nil, fmt.Errorf("count profiled sessions: %w", err)
	}
	firstProfiling := profiledBefore == 0

	var baseline []string
	if firstProfiling {
		baseline, err = s.classifier.BaselineMilestones(ctx, observations, agePtr, candidates)
		if err != nil {
			return nil, fmt.Errorf("baseline classification: %w", err)
		}
	}

	result := &ProfilingResult{Celebrations: []Celebration{}}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created := map[string]*types.ChildMilestone{}

		for _, key := range matched {
			entry, known := libraryByKey[key]
			if !known {
				log.Warn("Matcher returned unknown milestone key, skipping", "key", key)
				continue
			}
			row, exists := existingByKey[key]
			switch {
			case !exists && created[key] == nil:
				newRow := &types.ChildMilestone{
					ChildID:         child.ID,
					MilestoneKey:    key,
					Status:          types.MilestoneStatusEmerging,
					FirstObservedAt: now,
				}
				rows, err := s.milestones.Create(ctx, tx, []*types.ChildMilestone{newRow})
				if err != nil {
					return fmt.Errorf("create milestone %q: %w", key, err)
				}
				created[key] = rows[0]
				result.NewlyEmerging++
				result.Celebrations = append(result.Celebrations, celebrate(types.MilestoneStatusEmerging, entry))
			case exists && row.Status == types.MilestoneStatusEmerging:
				sessionsSince, err := s.sessions.CountByChildSince(ctx, tx, child.ID, row.FirstObservedAt)
				if err != nil {
					return fmt.Errorf("count sessions since first observation: %w", err)
				}
				if sessionsSince > int64(entry.ThresholdValue) {
					if err := s.milestones.MarkAchieved(ctx, tx, row.ID, now); err != nil {
						return fmt.Errorf("achieve milestone %q: %w", key, err)
					}
					result.NewlyAchieved++
					result.Celebrations = append(result.Celebrations, celebrate(types.MilestoneStatusAchieved, entry))
				}
			}
			// ACHIEVED rows are never revisited, even when re-matched.
		}

		// First profiling: milestones clearly already mastered start at
		// ACHIEVED; a same-session EMERGING match is upgraded and the
		// emerging count corrected.
		for _, key := range baseline {
			entry, known := libraryByKey[key]
			if !known {
				log.Warn("Baseline returned unknown milestone key, skipping", "key", key)
				continue
			}
			if row, exists := existingByKey[key]; exists {
				if row.Status == types.MilestoneStatusEmerging {
					if err := s.milestones.MarkAchieved(ctx, tx, row.ID, now); err != nil {
						return fmt.Errorf("achieve baseline milestone %q: %w", key, err)
					}
					result.NewlyAchieved++
					result.Celebrations = append(result.Celebrations, celebrate(types.MilestoneStatusAchieved, entry))
				}
				continue
			}
			if row := created[key]; row != nil {
				if err := s.milestones.MarkAchieved(ctx, tx, row.ID, now); err != nil {
					return fmt.Errorf("upgrade baseline milestone %q: %w", key, err)
				}
				result.NewlyEmerging--
				result.NewlyAchieved++
				result.Celebrations = replaceCelebration(result.Celebrations, entry)
				continue
			}
			achieved := now
			newRow := &types.ChildMilestone{
				ChildID:         child.ID,
				MilestoneKey:    key,
				Status:          types.MilestoneStatusAchieved,
				FirstObservedAt: now,
				AchievedAt:      &achieved,
			}
			if _, err := s.milestones.Create(ctx, tx, []*types.ChildMilestone{newRow}); err != nil {
				return fmt.Errorf("create baseline milestone %q: %w", key, err)
			}
			result.NewlyAchieved++
			result.Celebrations = append(result.Celebrations, celebrate(types.MilestoneStatusAchieved, entry))
		}

		if err := s.sessions.MarkProfiled(ctx, tx, sessionID, observations, now); err != nil {
			return fmt.Errorf("mark session profiled: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Profiling complete", "newly_emerging", result.NewlyEmerging, "newly_achieved", result.NewlyAchieved, "first_profiling", firstProfiling)
	return result, nil
}

func (s *milestonesService) ListForChild(ctx context.Context, childID uuid.UUID) ([]ChildMilestoneView, error) {
	rows, err := s.milestones.GetByChildID(ctx, nil, childID)
	if err != nil {
		return nil, fmt.Errorf("load child milestones: %w", err)
	}
	if len(rows) == 0 {
		return []ChildMilestoneView{}, nil
	}

	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, row.MilestoneKey)
	}
	entries, err := s.library.GetByKeys(ctx, nil, keys)
	if err != nil {
		return nil, fmt.Errorf("load library entries: %w", err)
	}
	byKey := map[string]*types.MilestoneLibraryEntry{}
	for _, entry := range entries {
		byKey[entry.Key] = entry
	}

	views := make([]ChildMilestoneView, 0, len(rows))
	for _, row := range rows {
		view := ChildMilestoneView{
			Key:             row.MilestoneKey,
			Status:          row.Status,
			FirstObservedAt: row.FirstObservedAt,
			AchievedAt:      row.AchievedAt,
		}
		if entry, ok := byKey[row.MilestoneKey]; ok {
			view.Domain = entry.Category
			view.Title = entry.StageLabel
			view.Tip = entry.Tip
		}
		views = append(views, view)
	}
	return views, nil
}

func celebrate(status string, entry *types.MilestoneLibraryEntry) Celebration {
	return Celebration{
		Key:    entry.Key,
		Status: status,
		Domain: entry.Category,
		Title:  entry.StageLabel,
		Tip:    entry.Tip,
	}
}

// replaceCelebration swaps the EMERGING celebration for a milestone upgraded
// to ACHIEVED in the same run. Matched by key; stage labels are not unique
// across the library.
func replaceCelebration(celebrations []Celebration, entry *types.MilestoneLibraryEntry) []Celebration {
	for i, c := range celebrations {
		if c.Key == entry.Key && c.Status == types.MilestoneStatusEmerging {
			celebrations[i] = celebrate(types.MilestoneStatusAchieved, entry)
			return celebrations
		}
	}
	return append(celebrations, celebrate(types.MilestoneStatusAchieved, entry))
}
