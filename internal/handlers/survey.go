package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/services"
	"github.com/playnest/playnest-backend/internal/tasks"
)

type SurveyHandler struct {
	log      *logger.Logger
	priority services.PriorityService
	runner   *tasks.Runner
}

func NewSurveyHandler(log *logger.Logger, priority services.PriorityService, runner *tasks.Runner) *SurveyHandler {
	return &SurveyHandler{
		log:      log.With("handler", "SurveyHandler"),
		priority: priority,
		runner:   runner,
	}
}

// POST /api/children/:id/surveys
//
// Storing the survey is synchronous; the priority recomputation it triggers
// is not.
func (h *SurveyHandler) Submit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req services.WacbScores
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	survey, err := h.priority.SubmitSurvey(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	surveyID := survey.ID
	if err := h.runner.Submit("priority-evaluate", func(ctx context.Context) error {
		_, err := h.priority.Evaluate(ctx, id, &surveyID)
		return err
	}); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, survey)
}
