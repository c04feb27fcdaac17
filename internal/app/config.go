package app

import (
	"strings"
	"time"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/utils"
)

type Config struct {
	AllowOrigins            []string
	SilenceThresholdSeconds float64
	TaskConcurrency         int
	TaskQueueSize           int
	TaskTimeout             time.Duration
	SpeechEnabled           bool
	SpeechLanguageCode      string
	SpeechModel             string
}

func LoadConfig(log *logger.Logger) Config {
	origins := utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000", log)

	silenceThreshold := utils.GetEnvAsFloat("SILENCE_THRESHOLD_SECONDS", 3.0, log)
	taskConcurrency := utils.GetEnvAsInt("TASK_CONCURRENCY", 4, log)
	taskQueueSize := utils.GetEnvAsInt("TASK_QUEUE_SIZE", 64, log)
	taskTimeoutSeconds := utils.GetEnvAsInt("TASK_TIMEOUT_SECONDS", 600, log)

	speechEnabled := utils.GetEnv("SPEECH_ENABLED", "false", log) == "true"
	speechLanguage := utils.GetEnv("SPEECH_LANGUAGE_CODE", "en-US", log)
	speechModel := utils.GetEnv("SPEECH_MODEL", "latest_long", log)

	return Config{
		AllowOrigins:            splitOrigins(origins),
		SilenceThresholdSeconds: silenceThreshold,
		TaskConcurrency:         taskConcurrency,
		TaskQueueSize:           taskQueueSize,
		TaskTimeout:             time.Duration(taskTimeoutSeconds) * time.Second,
		SpeechEnabled:           speechEnabled,
		SpeechLanguageCode:      speechLanguage,
		SpeechModel:             speechModel,
	}
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
