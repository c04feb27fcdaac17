package gcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/transcript"
)

// Speech is the transcription vendor boundary. The pipeline only ever sees the
// provider-agnostic transcript.VendorResult it returns.
type Speech interface {
	TranscribeSessionGCS(ctx context.Context, gcsURI string, cfg SpeechConfig) (*transcript.VendorResult, error)
	Close() error
}

type SpeechConfig struct {
	LanguageCode    string
	Model           string
	MinSpeakerCount int
	MaxSpeakerCount int
}

type speechService struct {
	log        *logger.Logger
	client     *speech.Client
	maxRetries int
}

func NewSpeech(log *logger.Logger) (Speech, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("client", "gcp.Speech")

	c, err := speech.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}

	return &speechService{
		log:        slog,
		client:     c,
		maxRetries: 4,
	}, nil
}

func (s *speechService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *speechService) TranscribeSessionGCS(ctx context.Context, gcsURI string, cfg SpeechConfig) (*transcript.VendorResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	if !strings.HasPrefix(gcsURI, "gs://") {
		return nil, fmt.Errorf("gcsURI must be gs://... got %q", gcsURI)
	}

	req := &speechpb.LongRunningRecognizeRequest{
		Config: buildRecognitionConfig(gcsURI, cfg),
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Uri{Uri: gcsURI}},
	}

	resp, err := s.retryLR(ctx, func() (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := s.client.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("speech longrunningrecognize(gcs): %w", err)
	}

	return parseRecognizeResponse(resp), nil
}

func buildRecognitionConfig(gcsURI string, cfg SpeechConfig) *speechpb.RecognitionConfig {
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	minSpeakers := cfg.MinSpeakerCount
	if minSpeakers == 0 {
		minSpeakers = 2
	}
	maxSpeakers := cfg.MaxSpeakerCount
	if maxSpeakers == 0 {
		maxSpeakers = 4
	}

	return &speechpb.RecognitionConfig{
		LanguageCode:               cfg.LanguageCode,
		Model:                      cfg.Model,
		EnableAutomaticPunctuation: true,
		EnableWordTimeOffsets:      true,
		Encoding:                   inferEncoding(gcsURI),
		DiarizationConfig: &speechpb.SpeakerDiarizationConfig{
			EnableSpeakerDiarization: true,
			MinSpeakerCount:          int32(minSpeakers),
			MaxSpeakerCount:          int32(maxSpeakers),
		},
	}
}

func inferEncoding(gcsURI string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(filepath.Ext(gcsURI)) {
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".mp3":
		return speechpb.RecognitionConfig_MP3
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

// parseRecognizeResponse flattens the diarized word stream. When diarization
// is on, the last result repeats every word with speaker tags, so words are
// taken from the final result only.
func parseRecognizeResponse(resp *speechpb.LongRunningRecognizeResponse) *transcript.VendorResult {
	out := &transcript.VendorResult{Words: []transcript.Word{}}
	if resp == nil || len(resp.Results) == 0 {
		return out
	}

	last := resp.Results[len(resp.Results)-1]
	if last == nil || len(last.Alternatives) == 0 || last.Alternatives[0] == nil {
		return out
	}
	for _, w := range last.Alternatives[0].Words {
		if w == nil || strings.TrimSpace(w.Word) == "" {
			continue
		}
		end := durToSec(w.EndTime)
		out.Words = append(out.Words, transcript.Word{
			Text:       w.Word,
			SpeakerTag: int(w.SpeakerTag),
			Start:      durToSec(w.StartTime),
			End:        end,
		})
		if end > out.DurationSeconds {
			out.DurationSeconds = end
		}
	}
	return out
}

func durToSec(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return float64(d.Seconds) + float64(d.Nanos)/1e9
}

func (s *speechService) retryLR(ctx context.Context, fn func() (*speechpb.LongRunningRecognizeResponse, error)) (*speechpb.LongRunningRecognizeResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
		s.log.Warn("speech call failed, retrying", "attempt", attempt, "error", err)
	}
	return nil, lastErr
}

func isRetryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Internal:
		return true
	default:
		return false
	}
}
