package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/playnest/playnest-backend/internal/handlers"
)

type RouterConfig struct {
	AllowOrigins   []string
	ChildHandler   *handlers.ChildHandler
	SessionHandler *handlers.SessionHandler
	SurveyHandler  *handlers.SurveyHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Children
		api.POST("/children", cfg.ChildHandler.Create)
		api.GET("/children/:id", cfg.ChildHandler.Get)
		api.POST("/children/:id/onboarding", cfg.ChildHandler.Onboarding)
		api.GET("/children/:id/milestones", cfg.ChildHandler.GetMilestones)
		api.GET("/children/:id/priorities", cfg.ChildHandler.GetPriorities)
		api.POST("/children/:id/surveys", cfg.SurveyHandler.Submit)

		// Sessions
		api.POST("/sessions", cfg.SessionHandler.Create)
		api.POST("/sessions/:id/process", cfg.SessionHandler.Process)
		api.POST("/sessions/:id/profiling", cfg.SessionHandler.Profiling)
		api.GET("/sessions/:id/transcript", cfg.SessionHandler.GetTranscript)
		api.GET("/sessions/:id/score", cfg.SessionHandler.GetScore)
	}

	return router
}
