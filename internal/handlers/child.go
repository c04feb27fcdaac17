package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/services"
	"github.com/playnest/playnest-backend/internal/tasks"
)

type ChildHandler struct {
	log        *logger.Logger
	children   services.ChildrenService
	milestones services.MilestonesService
	priority   services.PriorityService
	runner     *tasks.Runner
}

func NewChildHandler(log *logger.Logger, children services.ChildrenService, milestones services.MilestonesService, priority services.PriorityService, runner *tasks.Runner) *ChildHandler {
	return &ChildHandler{
		log:        log.With("handler", "ChildHandler"),
		children:   children,
		milestones: milestones,
		priority:   priority,
		runner:     runner,
	}
}

// POST /api/children
func (h *ChildHandler) Create(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		Birthday  string `json:"birthday"`
		BirthYear *int   `json:"birth_year"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	var birthday *time.Time
	if req.Birthday != "" {
		parsed, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "birthday must be YYYY-MM-DD"})
			return
		}
		birthday = &parsed
	}
	child, err := h.children.CreateChild(c.Request.Context(), req.Name, birthday, req.BirthYear)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, child)
}

// GET /api/children/:id
func (h *ChildHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	child, err := h.children.GetChild(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, child)
}

// POST /api/children/:id/onboarding
func (h *ChildHandler) Onboarding(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Issues []string `json:"issues"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.children.SaveOnboarding(c.Request.Context(), id, req.Issues); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.runner.Submit("priority-evaluate", func(ctx context.Context) error {
		_, err := h.priority.Evaluate(ctx, id, nil)
		return err
	}); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "priorities recomputing"})
}

// GET /api/children/:id/milestones
func (h *ChildHandler) GetMilestones(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	views, err := h.milestones.ListForChild(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": views})
}

// GET /api/children/:id/priorities
func (h *ChildHandler) GetPriorities(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.priority.CurrentPriorities(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
