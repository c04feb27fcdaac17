package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/dpics"
	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/repos"
	"github.com/playnest/playnest-backend/internal/types"
)

// CDI shield scoring constants. Fixed product numbers, kept exactly as
// calibrated; do not re-derive.
const (
	cdiBaseScore      = 60.0
	cdiMaxShield      = 40.0
	cdiSkillCap       = 10
	cdiSkillPoints    = 30.0
	cdiDamagePerHit   = 10.0 / 3.0
	cdiPassSkillFloor = 10
	cdiPassNegCeiling = 3
	cdiFailScoreCap   = 89
)

const pdiPassThreshold = 75

// ScoreCDI computes the child-directed-interaction shield score. Pure and
// deterministic over the tag counts.
func ScoreCDI(tc dpics.TagCounts) (score int, passed bool) {
	effective := func(count int) float64 {
		if count > cdiSkillCap {
			count = cdiSkillCap
		}
		return float64(count)
	}
	skillPoints := effective(tc.Praise) + effective(tc.Echo) + effective(tc.Narration)
	shield := skillPoints * (cdiMaxShield / cdiSkillPoints)

	negatives := float64(tc.TotalNegatives())
	hitsToBreakShield := shield / cdiDamagePerHit

	var raw float64
	if negatives <= hitsToBreakShield {
		raw = cdiBaseScore + shield - negatives*cdiDamagePerHit
	} else {
		raw = cdiBaseScore - (negatives - hitsToBreakShield)
	}

	passed = tc.Praise >= cdiPassSkillFloor &&
		tc.Echo >= cdiPassSkillFloor &&
		tc.Narration >= cdiPassSkillFloor &&
		tc.TotalNegatives() <= cdiPassNegCeiling

	if !passed && raw > cdiFailScoreCap {
		raw = cdiFailScoreCap
	}
	if raw > 100 {
		raw = 100
	}
	if raw < 0 {
		raw = 0
	}
	return int(math.Round(raw)), passed
}

// ScorePDI computes parent-directed-interaction command effectiveness. Zero
// commands scores 0, not an error.
func ScorePDI(tc dpics.TagCounts) (score int, passed bool) {
	total := tc.TotalCommands()
	if total == 0 {
		return 0, false
	}
	score = int(math.Round(float64(tc.DirectCommand) / float64(total) * 100))
	return score, score >= pdiPassThreshold
}

// Score dispatches on session mode.
func Score(mode string, tc dpics.TagCounts) (score int, passed bool, err error) {
	switch mode {
	case types.SessionModeCDI:
		score, passed = ScoreCDI(tc)
		return score, passed, nil
	case types.SessionModePDI:
		score, passed = ScorePDI(tc)
		return score, passed, nil
	default:
		return 0, false, fmt.Errorf("unknown session mode %q", mode)
	}
}

// ScoringService derives TagCounts from a session's tagged utterances and
// upserts the single score row.
type ScoringService interface {
	ScoreSession(ctx context.Context, sessionID uuid.UUID) (*types.SessionScore, error)
}

type scoringService struct {
	db         *gorm.DB
	log        *logger.Logger
	sessions   repos.SessionRepo
	utterances repos.UtteranceRepo
	scores     repos.SessionScoreRepo
}

func NewScoringService(db *gorm.DB, baseLog *logger.Logger, sessions repos.SessionRepo, utterances repos.UtteranceRepo, scores repos.SessionScoreRepo) ScoringService {
	return &scoringService{
		db:         db,
		log:        baseLog.With("service", "ScoringService"),
		sessions:   sessions,
		utterances: utterances,
		scores:     scores,
	}
}

func (s *scoringService) ScoreSession(ctx context.Context, sessionID uuid.UUID) (*types.SessionScore, error) {
	log := s.log.With("session_id", sessionID)

	session, err := s.sessions.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	rows, err := s.utterances.GetBySessionID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load utterances: %w", err)
	}

	// Only caregiver behavior is scored.
	codes := make([]dpics.Code, 0, len(rows))
	for _, row := range rows {
		if row.IsSilent() || row.BehaviorTag == nil {
			continue
		}
		if row.Role == nil || *row.Role != types.RoleCaregiver {
			continue
		}
		codes = append(codes, dpics.Code(*row.BehaviorTag))
	}
	counts := dpics.CountTags(codes)

	score, passed, err := Score(session.Mode, counts)
	if err != nil {
		return nil, err
	}

	record := &types.SessionScore{
		SessionID: sessionID,
		Mode:      session.Mode,
		Score:     score,
		Passed:    passed,
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.scores.Upsert(ctx, tx, record)
	}); err != nil {
		return nil, fmt.Errorf("persist score: %w", err)
	}

	log.Info("Session scored", "mode", session.Mode, "score", score, "passed", passed)
	return record, nil
}
