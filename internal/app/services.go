package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/clients/gcp"
	"github.com/playnest/playnest-backend/internal/clients/openai"
	redisclient "github.com/playnest/playnest-backend/internal/clients/redis"
	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/services"
)

type Services struct {
	Children   services.ChildrenService
	Sessions   services.SessionsService
	Tagger     services.TaggerService
	Scoring    services.ScoringService
	Pipeline   services.PipelineService
	Milestones services.MilestonesService
	Priority   services.PriorityService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, cache *redisclient.Cache) (Services, error) {
	log.Info("Wiring services...")

	aiClient, err := openai.NewClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init openai client: %w", err)
	}
	classifier := services.NewOpenAIClassifier(aiClient, log)

	tagger := services.NewTaggerService(db, log, classifier, reposet.Utterance, reposet.Session)
	scoring := services.NewScoringService(db, log, reposet.Session, reposet.Utterance, reposet.SessionScore)
	pipeline := services.NewPipelineService(db, log, reposet.Session, reposet.Utterance, tagger, scoring, cfg.SilenceThresholdSeconds)
	milestones := services.NewMilestonesService(db, log, classifier, reposet.Session, reposet.Child, reposet.MilestoneLibrary, reposet.ChildMilestone)
	priority := services.NewPriorityService(db, log, reposet.Child, reposet.WacbSurvey, reposet.ChildIssuePriority, cache)

	return Services{
		Children:   services.NewChildrenService(log, reposet.Child),
		Sessions:   services.NewSessionsService(log, reposet.Session, reposet.Utterance, reposet.SessionScore, reposet.Child),
		Tagger:     tagger,
		Scoring:    scoring,
		Pipeline:   pipeline,
		Milestones: milestones,
		Priority:   priority,
	}, nil
}

func wireSpeech(log *logger.Logger, cfg Config) (gcp.Speech, error) {
	if !cfg.SpeechEnabled {
		log.Info("Speech transcription disabled, sessions must submit words inline")
		return nil, nil
	}
	return gcp.NewSpeech(log)
}
