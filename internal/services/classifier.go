package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/playnest/playnest-backend/internal/clients/openai"
	"github.com/playnest/playnest-backend/internal/dpics"
	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/types"
)

// Classifier is the AI provider contract the pipeline owns. Inputs are
// structured, outputs are schema-constrained JSON; anything malformed comes
// back as an error and the calling stage fails without partial writes.
type Classifier interface {
	// ClassifyRoles maps every speaker id to caregiver or child. The returned
	// map is total over the input speakers; an incomplete answer is an error,
	// never a guess.
	ClassifyRoles(ctx context.Context, utterancesBySpeaker map[string][]string) (map[string]string, error)

	// TagBehaviors assigns one behavior code per input utterance, keyed by
	// timeline position. Codes outside the vocabulary are passed through for
	// the caller to skip-and-warn.
	TagBehaviors(ctx context.Context, mode string, inputs []TagInput) (map[int]dpics.Code, error)

	// MatchMilestones returns library keys the observation text supports.
	MatchMilestones(ctx context.Context, observations string, ageMonths *int, candidates []MilestoneCandidate) ([]string, error)

	// BaselineMilestones returns library keys clearly already mastered given
	// the child's age and session evidence. Requested only on the child's
	// first profiling session.
	BaselineMilestones(ctx context.Context, observations string, ageMonths *int, candidates []MilestoneCandidate) ([]string, error)
}

type TagInput struct {
	Position int    `json:"order"`
	Role     string `json:"role"`
	Text     string `json:"text"`
}

type MilestoneCandidate struct {
	Key             string `json:"key"`
	Category        string `json:"category"`
	StageLabel      string `json:"stage_label"`
	MedianAgeMonths int    `json:"median_age_months"`
}

type openaiClassifier struct {
	client openai.Client
	log    *logger.Logger
}

func NewOpenAIClassifier(client openai.Client, baseLog *logger.Logger) Classifier {
	return &openaiClassifier{
		client: client,
		log:    baseLog.With("service", "Classifier"),
	}
}

func (c *openaiClassifier) ClassifyRoles(ctx context.Context, utterancesBySpeaker map[string][]string) (map[string]string, error) {
	if len(utterancesBySpeaker) == 0 {
		return map[string]string{}, nil
	}

	payload, err := json.Marshal(utterancesBySpeaker)
	if err != nil {
		return nil, fmt.Errorf("marshal speaker utterances: %w", err)
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"roles": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"speaker_id": map[string]any{"type": "string"},
						"role":       map[string]any{"type": "string", "enum": []string{"caregiver", "child"}},
					},
					"required":             []string{"speaker_id", "role"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"roles"},
		"additionalProperties": false,
	}

	system := "You label speakers in a diarized recording of a caregiver playing with a young child. " +
		"Assign every speaker id exactly one role: caregiver or child. Judge by vocabulary, sentence length and conversational stance."
	user := "Utterances grouped by speaker id:\n" + string(payload)

	obj, err := c.client.GenerateJSON(ctx, system, user, "speaker_roles", schema)
	if err != nil {
		return nil, fmt.Errorf("role classification call: %w", err)
	}

	roles := map[string]string{}
	items, ok := obj["roles"].([]any)
	if !ok {
		return nil, fmt.Errorf("role classification: missing roles array")
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		speakerID, _ := m["speaker_id"].(string)
		role, _ := m["role"].(string)
		if speakerID == "" || (role != types.RoleCaregiver && role != types.RoleChild) {
			continue
		}
		roles[speakerID] = role
	}

	for speakerID := range utterancesBySpeaker {
		if _, ok := roles[speakerID]; !ok {
			return nil, fmt.Errorf("role classification incomplete: no role for %q", speakerID)
		}
	}
	return roles, nil
}

func (c *openaiClassifier) TagBehaviors(ctx context.Context, mode string, inputs []TagInput) (map[int]dpics.Code, error) {
	if len(inputs) == 0 {
		return map[int]dpics.Code{}, nil
	}

	payload, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("marshal tag inputs: %w", err)
	}

	vocab := make([]string, 0, len(dpics.AllCodes))
	for _, code := range dpics.AllCodes {
		if code == dpics.CodeSilentSlot {
			continue
		}
		vocab = append(vocab, string(code))
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tags": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"order": map[string]any{"type": "integer"},
						"code":  map[string]any{"type": "string", "enum": vocab},
					},
					"required":             []string{"order", "code"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"tags"},
		"additionalProperties": false,
	}

	system := fmt.Sprintf("You code caregiver and child utterances from a %s play session with a DPICS-style taxonomy. "+
		"Return one code per utterance, keyed by its order index.", mode)
	user := "Utterances:\n" + string(payload)

	obj, err := c.client.GenerateJSON(ctx, system, user, "behavior_tags", schema)
	if err != nil {
		return nil, fmt.Errorf("behavior tagging call: %w", err)
	}

	tags := map[int]dpics.Code{}
	items, ok := obj["tags"].([]any)
	if !ok {
		return nil, fmt.Errorf("behavior tagging: missing tags array")
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		order, ok := asInt(m["order"])
		if !ok {
			continue
		}
		code, _ := m["code"].(string)
		if strings.TrimSpace(code) == "" {
			continue
		}
		tags[order] = dpics.Code(code)
	}
	return tags, nil
}

func (c *openaiClassifier) MatchMilestones(ctx context.Context, observations string, ageMonths *int, candidates []MilestoneCandidate) ([]string, error) {
	system := "You match developmental observations from a recorded play session against a milestone taxonomy. " +
		"Return only keys the observations clearly evidence."
	return c.milestoneCall(ctx, system, "matched_milestones", observations, ageMonths, candidates)
}

func (c *openaiClassifier) BaselineMilestones(ctx context.Context, observations string, ageMonths *int, candidates []MilestoneCandidate) ([]string, error) {
	system := "You review a child's first recorded play session. Given the child's age and the observations, " +
		"return the milestone keys the child has clearly already mastered, not ones merely emerging."
	return c.milestoneCall(ctx, system, "baseline_milestones", observations, ageMonths, candidates)
}

func (c *openaiClassifier) milestoneCall(ctx context.Context, system string, schemaName string, observations string, ageMonths *int, candidates []MilestoneCandidate) ([]string, error) {
	if strings.TrimSpace(observations) == "" || len(candidates) == 0 {
		return []string{}, nil
	}

	candidatePayload, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("marshal candidates: %w", err)
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keys": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []string{"keys"},
		"additionalProperties": false,
	}

	var user strings.Builder
	if ageMonths != nil {
		fmt.Fprintf(&user, "Child age: %d months.\n", *ageMonths)
	}
	user.WriteString("Observations:\n")
	user.WriteString(observations)
	user.WriteString("\n\nCandidate milestones:\n")
	user.Write(candidatePayload)

	obj, err := c.client.GenerateJSON(ctx, system, user.String(), schemaName, schema)
	if err != nil {
		return nil, fmt.Errorf("milestone matching call: %w", err)
	}

	rawKeys, ok := obj["keys"].([]any)
	if !ok {
		return nil, fmt.Errorf("milestone matching: missing keys array")
	}
	keys := make([]string, 0, len(rawKeys))
	for _, raw := range rawKeys {
		if key, ok := raw.(string); ok && strings.TrimSpace(key) != "" {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}
