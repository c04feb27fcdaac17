package app

import (
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/repos"
)

type Repos struct {
	Child              repos.ChildRepo
	Session            repos.SessionRepo
	Utterance          repos.UtteranceRepo
	SessionScore       repos.SessionScoreRepo
	MilestoneLibrary   repos.MilestoneLibraryRepo
	ChildMilestone     repos.ChildMilestoneRepo
	ChildIssuePriority repos.ChildIssuePriorityRepo
	WacbSurvey         repos.WacbSurveyRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Child:              repos.NewChildRepo(db, log),
		Session:            repos.NewSessionRepo(db, log),
		Utterance:          repos.NewUtteranceRepo(db, log),
		SessionScore:       repos.NewSessionScoreRepo(db, log),
		MilestoneLibrary:   repos.NewMilestoneLibraryRepo(db, log),
		ChildMilestone:     repos.NewChildMilestoneRepo(db, log),
		ChildIssuePriority: repos.NewChildIssuePriorityRepo(db, log),
		WacbSurvey:         repos.NewWacbSurveyRepo(db, log),
	}
}
