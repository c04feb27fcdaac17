package app

import (
	"github.com/playnest/playnest-backend/internal/clients/gcp"
	"github.com/playnest/playnest-backend/internal/handlers"
	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/tasks"
)

type Handlers struct {
	Child   *handlers.ChildHandler
	Session *handlers.SessionHandler
	Survey  *handlers.SurveyHandler
}

func wireHandlers(log *logger.Logger, cfg Config, serviceset Services, speech gcp.Speech, runner *tasks.Runner) Handlers {
	log.Info("Wiring handlers...")
	speechCfg := gcp.SpeechConfig{
		LanguageCode: cfg.SpeechLanguageCode,
		Model:        cfg.SpeechModel,
	}
	return Handlers{
		Child:   handlers.NewChildHandler(log, serviceset.Children, serviceset.Milestones, serviceset.Priority, runner),
		Session: handlers.NewSessionHandler(log, serviceset.Sessions, serviceset.Pipeline, serviceset.Milestones, speech, speechCfg, runner),
		Survey:  handlers.NewSurveyHandler(log, serviceset.Priority, runner),
	}
}
