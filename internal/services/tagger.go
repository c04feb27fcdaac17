package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/dpics"
	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/repos"
	"github.com/playnest/playnest-backend/internal/types"
)

// TaggerService owns the role-assignment and behavior-tagging contract around
// the AI classifier: the model decides, this service validates and maps.
type TaggerService interface {
	TagSession(ctx context.Context, sessionID uuid.UUID) error
}

type taggerService struct {
	db         *gorm.DB
	log        *logger.Logger
	classifier Classifier
	utterances repos.UtteranceRepo
	sessions   repos.SessionRepo
}

func NewTaggerService(db *gorm.DB, baseLog *logger.Logger, classifier Classifier, utterances repos.UtteranceRepo, sessions repos.SessionRepo) TaggerService {
	return &taggerService{
		db:         db,
		log:        baseLog.With("service", "TaggerService"),
		classifier: classifier,
		utterances: utterances,
		sessions:   sessions,
	}
}

func (s *taggerService) TagSession(ctx context.Context, sessionID uuid.UUID) error {
	log := s.log.With("session_id", sessionID)

	session, err := s.sessions.GetByID(ctx, nil, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	rows, err := s.utterances.GetBySessionID(ctx, nil, sessionID)
	if err != nil {
		return fmt.Errorf("load utterances: %w", err)
	}

	spoken := make([]*types.Utterance, 0, len(rows))
	bySpeaker := map[string][]string{}
	for _, row := range rows {
		if row.IsSilent() {
			continue
		}
		spoken = append(spoken, row)
		bySpeaker[row.SpeakerID] = append(bySpeaker[row.SpeakerID], row.Text)
	}
	if len(spoken) == 0 {
		log.Info("No spoken utterances to tag")
		return nil
	}

	roles, err := s.classifier.ClassifyRoles(ctx, bySpeaker)
	if err != nil {
		return fmt.Errorf("role assignment: %w", err)
	}

	inputs := make([]TagInput, 0, len(spoken))
	for _, row := range spoken {
		inputs = append(inputs, TagInput{
			Position: row.Position,
			Role:     roles[row.SpeakerID],
			Text:     row.Text,
		})
	}

	tags, err := s.classifier.TagBehaviors(ctx, session.Mode, inputs)
	if err != nil {
		return fmt.Errorf("behavior tagging: %w", err)
	}

	for _, row := range spoken {
		role := roles[row.SpeakerID]
		row.Role = &role

		code, ok := tags[row.Position]
		if !ok {
			log.Warn("Classifier returned no tag for utterance, leaving untagged", "position", row.Position)
			continue
		}
		tag := string(code)
		row.BehaviorTag = &tag
		if label, known := dpics.DisplayLabel(code); known {
			display := label
			row.DisplayTag = &display
		} else {
			log.Warn("Unmapped behavior code, storing null display tag", "code", tag, "position", row.Position)
		}
	}

	// Tag attachment is all-or-nothing per session.
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.utterances.UpdateTags(ctx, tx, spoken)
	}); err != nil {
		return fmt.Errorf("persist tags: %w", err)
	}

	log.Info("Session tagged", "utterances", len(spoken), "speakers", len(bySpeaker))
	return nil
}
