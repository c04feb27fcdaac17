package app

import (
	"github.com/gin-gonic/gin"

	"github.com/playnest/playnest-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AllowOrigins:   cfg.AllowOrigins,
		ChildHandler:   handlerset.Child,
		SessionHandler: handlerset.Session,
		SurveyHandler:  handlerset.Survey,
	})
}
