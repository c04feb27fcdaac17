package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/repos"
	"github.com/playnest/playnest-backend/internal/types"
)

type SessionsService interface {
	CreateSession(ctx context.Context, childID uuid.UUID, mode string, recordingDurationSeconds float64) (*types.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*types.Session, error)
	GetTranscript(ctx context.Context, sessionID uuid.UUID) ([]*types.Utterance, error)
	GetScore(ctx context.Context, sessionID uuid.UUID) (*types.SessionScore, error)
}

type sessionsService struct {
	log        *logger.Logger
	sessions   repos.SessionRepo
	utterances repos.UtteranceRepo
	scores     repos.SessionScoreRepo
	children   repos.ChildRepo
}

func NewSessionsService(baseLog *logger.Logger, sessions repos.SessionRepo, utterances repos.UtteranceRepo, scores repos.SessionScoreRepo, children repos.ChildRepo) SessionsService {
	return &sessionsService{
		log:        baseLog.With("service", "SessionsService"),
		sessions:   sessions,
		utterances: utterances,
		scores:     scores,
		children:   children,
	}
}

func (s *sessionsService) CreateSession(ctx context.Context, childID uuid.UUID, mode string, recordingDurationSeconds float64) (*types.Session, error) {
	if mode != types.SessionModeCDI && mode != types.SessionModePDI {
		return nil, fmt.Errorf("unknown session mode %q", mode)
	}
	if recordingDurationSeconds < 0 {
		return nil, fmt.Errorf("recording duration cannot be negative")
	}
	if _, err := s.children.GetByID(ctx, nil, childID); err != nil {
		return nil, fmt.Errorf("load child: %w", err)
	}

	session := &types.Session{
		ChildID:                  childID,
		Mode:                     mode,
		Status:                   types.SessionStatusRecorded,
		RecordingDurationSeconds: recordingDurationSeconds,
	}
	created, err := s.sessions.Create(ctx, nil, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.log.Info("Session created", "session_id", created.ID, "child_id", childID, "mode", mode)
	return created, nil
}

func (s *sessionsService) GetSession(ctx context.Context, id uuid.UUID) (*types.Session, error) {
	return s.sessions.GetByID(ctx, nil, id)
}

func (s *sessionsService) GetTranscript(ctx context.Context, sessionID uuid.UUID) ([]*types.Utterance, error) {
	if _, err := s.sessions.GetByID(ctx, nil, sessionID); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s.utterances.GetBySessionID(ctx, nil, sessionID)
}

func (s *sessionsService) GetScore(ctx context.Context, sessionID uuid.UUID) (*types.SessionScore, error) {
	return s.scores.GetBySessionID(ctx, nil, sessionID)
}
