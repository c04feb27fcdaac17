package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/dpics"
	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/repos"
	"github.com/playnest/playnest-backend/internal/transcript"
	"github.com/playnest/playnest-backend/internal/types"
)

// PipelineService runs the per-session analysis sequence: normalize the
// vendor transcript, fill silences, tag roles and behaviors, score. Each
// stage's writes are atomic; a failed stage leaves the previous stage's
// output in place and marks the session failed for retry.
type PipelineService interface {
	ProcessSession(ctx context.Context, sessionID uuid.UUID, vendorResult transcript.VendorResult) (*types.SessionScore, error)
}

type pipelineService struct {
	db               *gorm.DB
	log              *logger.Logger
	sessions         repos.SessionRepo
	utterances       repos.UtteranceRepo
	tagger           TaggerService
	scoring          ScoringService
	silenceThreshold float64
}

func NewPipelineService(db *gorm.DB, baseLog *logger.Logger, sessions repos.SessionRepo, utterances repos.UtteranceRepo, tagger TaggerService, scoring ScoringService, silenceThreshold float64) PipelineService {
	if silenceThreshold <= 0 {
		silenceThreshold = transcript.DefaultSilenceThreshold
	}
	return &pipelineService{
		db:               db,
		log:              baseLog.With("service", "PipelineService"),
		sessions:         sessions,
		utterances:       utterances,
		tagger:           tagger,
		scoring:          scoring,
		silenceThreshold: silenceThreshold,
	}
}

func (s *pipelineService) ProcessSession(ctx context.Context, sessionID uuid.UUID, vendorResult transcript.VendorResult) (*types.SessionScore, error) {
	log := s.log.With("session_id", sessionID)

	session, err := s.sessions.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if err := s.sessions.UpdateStatus(ctx, nil, sessionID, types.SessionStatusProcessing); err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}

	duration := session.RecordingDurationSeconds
	if duration == 0 {
		duration = vendorResult.DurationSeconds
	}

	segments := transcript.Normalize(vendorResult)
	segments = transcript.InsertSilences(segments, s.silenceThreshold, duration)

	rows := make([]*types.Utterance, 0, len(segments))
	for _, seg := range segments {
		row := &types.Utterance{
			SessionID: sessionID,
			SpeakerID: seg.SpeakerID,
			Text:      seg.Text,
			StartTime: seg.Start,
			EndTime:   seg.End,
			Position:  seg.Order,
		}
		if seg.IsSilent() {
			tag := string(dpics.CodeSilentSlot)
			display, _ := dpics.DisplayLabel(dpics.CodeSilentSlot)
			feedback := seg.Feedback
			row.SpeakerID = types.SilentSpeakerID
			row.BehaviorTag = &tag
			row.DisplayTag = &display
			row.Feedback = &feedback
		}
		rows = append(rows, row)
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.utterances.ReplaceForSession(ctx, tx, sessionID, rows)
		return err
	}); err != nil {
		s.failSession(ctx, sessionID, log, "persist timeline", err)
		return nil, fmt.Errorf("persist timeline: %w", err)
	}
	log.Info("Timeline persisted", "entries", len(rows))

	if err := s.tagger.TagSession(ctx, sessionID); err != nil {
		s.failSession(ctx, sessionID, log, "tagging", err)
		return nil, err
	}

	score, err := s.scoring.ScoreSession(ctx, sessionID)
	if err != nil {
		s.failSession(ctx, sessionID, log, "scoring", err)
		return nil, err
	}

	if err := s.sessions.UpdateStatus(ctx, nil, sessionID, types.SessionStatusProcessed); err != nil {
		return nil, fmt.Errorf("mark processed: %w", err)
	}
	return score, nil
}

func (s *pipelineService) failSession(ctx context.Context, sessionID uuid.UUID, log *logger.Logger, stage string, cause error) {
	log.Error("Pipeline stage failed", "stage", stage, "error", cause)
	if err := s.sessions.UpdateStatus(ctx, nil, sessionID, types.SessionStatusFailed); err != nil {
		log.Error("Failed to mark session failed", "error", err)
	}
}
