package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	redisclient "github.com/playnest/playnest-backend/internal/clients/redis"
	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/repos"
	"github.com/playnest/playnest-backend/internal/types"
)

// issueLevels maps onboarding issue selections to clinical levels. Unknown
// and "other" selections carry no signal.
var issueLevels = map[string]types.ClinicalLevel{
	"aggression":    types.ClinicalStabilize,
	"hitting":       types.ClinicalStabilize,
	"self-harm":     types.ClinicalStabilize,
	"tantrums":      types.ClinicalDeEscalate,
	"meltdowns":     types.ClinicalDeEscalate,
	"whining":       types.ClinicalDeEscalate,
	"not-listening": types.ClinicalDirect,
	"defiance":      types.ClinicalDirect,
	"routines":      types.ClinicalDirect,
	"anxiety":       types.ClinicalSupport,
	"shyness":       types.ClinicalSupport,
	"separation":    types.ClinicalSupport,
	"enrichment":    types.ClinicalFlourish,
	"connection":    types.ClinicalFlourish,
}

// wacbSignalThreshold: a single mapped question at or above this score marks
// the level as survey-confirmed.
const wacbSignalThreshold = 3

// ParseIssueList decodes the stored onboarding selection at the persistence
// boundary: a JSON array string, or a bare string treated as one issue.
func ParseIssueList(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	var issues []string
	if err := json.Unmarshal([]byte(trimmed), &issues); err == nil {
		out := issues[:0]
		for _, issue := range issues {
			if s := strings.TrimSpace(issue); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{trimmed}
}

// wacbQuestions maps each survey question to its clinical level. FLOURISH has
// no survey questions; its only signal source is onboarding issues.
func wacbLevelScores(survey *types.WacbSurvey) map[types.ClinicalLevel]levelSignal {
	signals := map[types.ClinicalLevel]levelSignal{}
	if survey == nil {
		return signals
	}
	add := func(level types.ClinicalLevel, scores ...int) {
		sig := signals[level]
		for _, score := range scores {
			sig.score += score
			if score >= wacbSignalThreshold {
				sig.hasSignal = true
			}
		}
		signals[level] = sig
	}
	add(types.ClinicalDirect, survey.Q1Dawdle, survey.Q2Refuse, survey.Q3Ignore)
	add(types.ClinicalDeEscalate, survey.Q4Tantrum, survey.Q5Whine, survey.Q6Scream)
	add(types.ClinicalStabilize, survey.Q7Hit, survey.Q8Destroy)
	add(types.ClinicalSupport, survey.Q9Cling, survey.Q10Fear)
	return signals
}

type levelSignal struct {
	score     int
	hasSignal bool
}

// RankedLevel is one active level in the computed priority order.
type RankedLevel struct {
	Level         types.ClinicalLevel `json:"level"`
	Strategy      string              `json:"strategy"`
	Rank          int                 `json:"rank"`
	FromUserIssue bool                `json:"from_user_issue"`
	FromWacb      bool                `json:"from_wacb"`
	WacbScore     int                 `json:"wacb_score"`
}

// PriorityResult is what one engine run computed and appended.
type PriorityResult struct {
	ChildID    uuid.UUID     `json:"child_id"`
	Ranked     []RankedLevel `json:"ranked"`
	ComputedAt time.Time     `json:"computed_at"`
}

func (r *PriorityResult) Primary() *RankedLevel {
	if len(r.Ranked) == 0 {
		return nil
	}
	return &r.Ranked[0]
}

func (r *PriorityResult) Secondary() *RankedLevel {
	if len(r.Ranked) < 2 {
		return nil
	}
	return &r.Ranked[1]
}

// PriorityService combines onboarding issues and the latest WACB survey into
// a ranked clinical priority list, updates the child's denormalized fields
// and appends the immutable history rows.
type PriorityService interface {
	Evaluate(ctx context.Context, childID uuid.UUID, triggeringSurveyID *uuid.UUID) (*PriorityResult, error)
	CurrentPriorities(ctx context.Context, childID uuid.UUID) (*PriorityResult, error)
	SubmitSurvey(ctx context.Context, childID uuid.UUID, scores WacbScores) (*types.WacbSurvey, error)
}

// WacbScores is one weekly behavior survey submission, each question 1..7.
type WacbScores struct {
	Q1Dawdle  int `json:"q1_dawdle"`
	Q2Refuse  int `json:"q2_refuse"`
	Q3Ignore  int `json:"q3_ignore"`
	Q4Tantrum int `json:"q4_tantrum"`
	Q5Whine   int `json:"q5_whine"`
	Q6Scream  int `json:"q6_scream"`
	Q7Hit     int `json:"q7_hit"`
	Q8Destroy int `json:"q8_destroy"`
	Q9Cling   int `json:"q9_cling"`
	Q10Fear   int `json:"q10_fear"`
}

func (w WacbScores) validate() error {
	for _, score := range []int{w.Q1Dawdle, w.Q2Refuse, w.Q3Ignore, w.Q4Tantrum, w.Q5Whine, w.Q6Scream, w.Q7Hit, w.Q8Destroy, w.Q9Cling, w.Q10Fear} {
		if score < 1 || score > 7 {
			return fmt.Errorf("every question must score between 1 and 7, got %d", score)
		}
	}
	return nil
}

// snapshotCache is the slice of the redis client the engine touches. A nil
// *redisclient.Cache satisfies it as a no-op.
type snapshotCache interface {
	SetPrioritySnapshot(ctx context.Context, childID uuid.UUID, snapshot any) error
	GetPrioritySnapshot(ctx context.Context, childID uuid.UUID, dest any) (bool, error)
	DeletePrioritySnapshot(ctx context.Context, childID uuid.UUID) error
}

type priorityService struct {
	db       *gorm.DB
	log      *logger.Logger
	children repos.ChildRepo
	surveys  repos.WacbSurveyRepo
	history  repos.ChildIssuePriorityRepo
	cache    snapshotCache
	now      func() time.Time
}

func NewPriorityService(db *gorm.DB, baseLog *logger.Logger, children repos.ChildRepo, surveys repos.WacbSurveyRepo, history repos.ChildIssuePriorityRepo, cache *redisclient.Cache) PriorityService {
	return &priorityService{
		db:       db,
		log:      baseLog.With("service", "PriorityService"),
		children: children,
		surveys:  surveys,
		history:  history,
		cache:    cache,
		now:      time.Now,
	}
}

func (s *priorityService) Evaluate(ctx context.Context, childID uuid.UUID, triggeringSurveyID *uuid.UUID) (*PriorityResult, error) {
	log := s.log.With("child_id", childID)

	child, err := s.children.GetByID(ctx, nil, childID)
	if err != nil {
		return nil, fmt.Errorf("load child: %w", err)
	}
	survey, err := s.surveys.GetLatestByChildID(ctx, nil, childID)
	if err != nil {
		return nil, fmt.Errorf("load latest survey: %w", err)
	}

	issueSet := map[types.ClinicalLevel]bool{}
	for _, issue := range ParseIssueList(child.RawIssues) {
		level, ok := issueLevels[strings.ToLower(issue)]
		if !ok {
			log.Debug("Onboarding issue carries no signal", "issue", issue)
			continue
		}
		issueSet[level] = true
	}
	surveySignals := wacbLevelScores(survey)

	ranked := rankLevels(issueSet, surveySignals)
	computedAt := s.now().UTC()

	result := &PriorityResult{ChildID: childID, Ranked: ranked, ComputedAt: computedAt}

	var primaryIssue, primaryStrategy, secondaryIssue, secondaryStrategy *string
	if p := result.Primary(); p != nil {
		primaryIssue = strPtr(string(p.Level))
		primaryStrategy = strPtr(p.Strategy)
	}
	if sec := result.Secondary(); sec != nil {
		secondaryIssue = strPtr(string(sec.Level))
		secondaryStrategy = strPtr(sec.Strategy)
	}

	rows := make([]*types.ChildIssuePriority, 0, len(ranked))
	for _, r := range ranked {
		rows = append(rows, &types.ChildIssuePriority{
			ChildID:            childID,
			ClinicalLevel:      r.Level,
			Strategy:           r.Strategy,
			PriorityRank:       r.Rank,
			FromUserIssue:      r.FromUserIssue,
			FromWacb:           r.FromWacb,
			WacbScore:          r.WacbScore,
			ComputedAt:         computedAt,
			TriggeringSurveyID: triggeringSurveyID,
		})
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.children.UpdatePriorityFields(ctx, tx, childID, primaryIssue, primaryStrategy, secondaryIssue, secondaryStrategy); err != nil {
			return fmt.Errorf("update child priorities: %w", err)
		}
		if _, err := s.history.Append(ctx, tx, rows); err != nil {
			return fmt.Errorf("append priority history: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	// A stale snapshot would shadow the rows just appended, so a failed
	// write invalidates the key instead of leaving the old entry behind.
	if err := s.cache.SetPrioritySnapshot(ctx, childID, result); err != nil {
		log.Warn("Priority snapshot cache write failed, invalidating", "error", err)
		if err := s.cache.DeletePrioritySnapshot(ctx, childID); err != nil {
			log.Warn("Priority snapshot invalidation failed", "error", err)
		}
	}

	log.Info("Priorities evaluated", "active_levels", len(ranked))
	return result, nil
}

func (s *priorityService) SubmitSurvey(ctx context.Context, childID uuid.UUID, scores WacbScores) (*types.WacbSurvey, error) {
	if err := scores.validate(); err != nil {
		return nil, err
	}
	if _, err := s.children.GetByID(ctx, nil, childID); err != nil {
		return nil, fmt.Errorf("load child: %w", err)
	}

	raw, err := json.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("encode survey payload: %w", err)
	}
	survey := &types.WacbSurvey{
		ChildID:     childID,
		Q1Dawdle:    scores.Q1Dawdle,
		Q2Refuse:    scores.Q2Refuse,
		Q3Ignore:    scores.Q3Ignore,
		Q4Tantrum:   scores.Q4Tantrum,
		Q5Whine:     scores.Q5Whine,
		Q6Scream:    scores.Q6Scream,
		Q7Hit:       scores.Q7Hit,
		Q8Destroy:   scores.Q8Destroy,
		Q9Cling:     scores.Q9Cling,
		Q10Fear:     scores.Q10Fear,
		Raw:         datatypes.JSON(raw),
		SubmittedAt: s.now().UTC(),
	}
	created, err := s.surveys.Create(ctx, nil, survey)
	if err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}
	s.log.Info("Survey submitted", "child_id", childID, "survey_id", created.ID)
	return created, nil
}

func (s *priorityService) CurrentPriorities(ctx context.Context, childID uuid.UUID) (*PriorityResult, error) {
	var cached PriorityResult
	if hit, err := s.cache.GetPrioritySnapshot(ctx, childID, &cached); err != nil {
		s.log.Warn("Priority snapshot cache read failed", "child_id", childID, "error", err)
	} else if hit {
		return &cached, nil
	}

	rows, err := s.history.GetCurrentByChildID(ctx, nil, childID)
	if err != nil {
		return nil, fmt.Errorf("load current priorities: %w", err)
	}
	result := &PriorityResult{ChildID: childID, Ranked: make([]RankedLevel, 0, len(rows))}
	for _, row := range rows {
		result.ComputedAt = row.ComputedAt
		result.Ranked = append(result.Ranked, RankedLevel{
			Level:         row.ClinicalLevel,
			Strategy:      row.Strategy,
			Rank:          row.PriorityRank,
			FromUserIssue: row.FromUserIssue,
			FromWacb:      row.FromWacb,
			WacbScore:     row.WacbScore,
		})
	}
	return result, nil
}

// rankLevels sorts active levels by clinical priority index, then levels
// confirmed by both sources, then descending survey score.
func rankLevels(issueSet map[types.ClinicalLevel]bool, surveySignals map[types.ClinicalLevel]levelSignal) []RankedLevel {
	ranked := []RankedLevel{}
	for _, level := range types.ClinicalLevels {
		fromIssue := issueSet[level]
		signal := surveySignals[level]
		if !fromIssue && !signal.hasSignal {
			continue
		}
		ranked = append(ranked, RankedLevel{
			Level:         level,
			Strategy:      types.InterventionStrategies[level],
			FromUserIssue: fromIssue,
			FromWacb:      signal.hasSignal,
			WacbScore:     signal.score,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Level.PriorityIndex() != b.Level.PriorityIndex() {
			return a.Level.PriorityIndex() < b.Level.PriorityIndex()
		}
		aBoth := a.FromUserIssue && a.FromWacb
		bBoth := b.FromUserIssue && b.FromWacb
		if aBoth != bBoth {
			return aBoth
		}
		return a.WacbScore > b.WacbScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func strPtr(s string) *string { return &s }
