package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/clients/gcp"
	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/services"
	"github.com/playnest/playnest-backend/internal/tasks"
	"github.com/playnest/playnest-backend/internal/transcript"
)

type SessionHandler struct {
	log        *logger.Logger
	sessions   services.SessionsService
	pipeline   services.PipelineService
	milestones services.MilestonesService
	speech     gcp.Speech
	speechCfg  gcp.SpeechConfig
	runner     *tasks.Runner
}

func NewSessionHandler(log *logger.Logger, sessions services.SessionsService, pipeline services.PipelineService, milestones services.MilestonesService, speech gcp.Speech, speechCfg gcp.SpeechConfig, runner *tasks.Runner) *SessionHandler {
	return &SessionHandler{
		log:        log.With("handler", "SessionHandler"),
		sessions:   sessions,
		pipeline:   pipeline,
		milestones: milestones,
		speech:     speech,
		speechCfg:  speechCfg,
		runner:     runner,
	}
}

// POST /api/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req struct {
		ChildID                  string  `json:"child_id"`
		Mode                     string  `json:"mode"`
		RecordingDurationSeconds float64 `json:"recording_duration_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	childID, err := uuid.Parse(req.ChildID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid child_id"})
		return
	}
	session, err := h.sessions.CreateSession(c.Request.Context(), childID, req.Mode, req.RecordingDurationSeconds)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// POST /api/sessions/:id/process
//
// Accepts either the diarized words inline or a GCS audio URI to transcribe
// first. The pipeline itself runs behind the response.
func (h *SessionHandler) Process(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Words           []transcript.Word `json:"words"`
		DurationSeconds float64           `json:"duration_seconds"`
		AudioURI        string            `json:"audio_uri"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Words) == 0 && req.AudioURI == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either words or audio_uri is required"})
		return
	}
	if req.AudioURI != "" && h.speech == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transcription is not configured, submit words inline"})
		return
	}
	if _, err := h.sessions.GetSession(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	audioURI := req.AudioURI
	vendor := transcript.VendorResult{Words: req.Words, DurationSeconds: req.DurationSeconds}
	if err := h.runner.Submit("session-process", func(ctx context.Context) error {
		result := vendor
		if audioURI != "" {
			transcribed, err := h.speech.TranscribeSessionGCS(ctx, audioURI, h.speechCfg)
			if err != nil {
				return err
			}
			result = *transcribed
		}
		_, err := h.pipeline.ProcessSession(ctx, id, result)
		return err
	}); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "processing"})
}

// POST /api/sessions/:id/profiling
func (h *SessionHandler) Profiling(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Observations string `json:"observations"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Observations == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "observations are required"})
		return
	}
	if _, err := h.sessions.GetSession(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	observations := req.Observations
	if err := h.runner.Submit("session-profiling", func(ctx context.Context) error {
		_, err := h.milestones.RunProfiling(ctx, id, observations)
		return err
	}); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "profiling"})
}

// GET /api/sessions/:id/transcript
func (h *SessionHandler) GetTranscript(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rows, err := h.sessions.GetTranscript(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"utterances": rows})
}

// GET /api/sessions/:id/score
func (h *SessionHandler) GetScore(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	score, err := h.sessions.GetScore(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "score not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, score)
}
