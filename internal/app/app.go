package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	redisclient "github.com/playnest/playnest-backend/internal/clients/redis"
	"github.com/playnest/playnest-backend/internal/db"
	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/milestonelib"
	"github.com/playnest/playnest-backend/internal/tasks"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Runner   *tasks.Runner
	cache    *redisclient.Cache
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	reposet := wireRepos(theDB, log)

	if err := seedMilestoneLibrary(theDB, reposet); err != nil {
		log.Sync()
		return nil, fmt.Errorf("seed milestone library: %w", err)
	}

	cache, err := redisclient.NewCache(log)
	if err != nil {
		log.Warn("Redis unavailable, priority snapshots fall back to the database", "error", err)
		cache = nil
	}

	serviceset, err := wireServices(theDB, log, cfg, reposet, cache)
	if err != nil {
		log.Sync()
		return nil, err
	}

	speech, err := wireSpeech(log, cfg)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init speech client: %w", err)
	}

	runner := tasks.NewRunner(log, cfg.TaskConcurrency, cfg.TaskQueueSize, cfg.TaskTimeout)

	handlerset := wireHandlers(log, cfg, serviceset, speech, runner)
	router := wireRouter(cfg, handlerset)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Runner:   runner,
		cache:    cache,
	}, nil
}

func seedMilestoneLibrary(db *gorm.DB, reposet Repos) error {
	entries, err := milestonelib.Load()
	if err != nil {
		return err
	}
	return reposet.MilestoneLibrary.Seed(context.Background(), nil, entries)
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Runner != nil {
		a.Runner.Close()
	}
	if err := a.cache.Close(); err != nil {
		a.Log.Warn("Redis close failed", "error", err)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
