package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/repos"
	"github.com/playnest/playnest-backend/internal/types"
)

type ChildrenService interface {
	CreateChild(ctx context.Context, name string, birthday *time.Time, birthYear *int) (*types.Child, error)
	GetChild(ctx context.Context, id uuid.UUID) (*types.Child, error)
	// SaveOnboarding stores the caregiver's issue selection verbatim; the
	// priority engine interprets it later.
	SaveOnboarding(ctx context.Context, childID uuid.UUID, issues []string) error
}

type childrenService struct {
	log      *logger.Logger
	children repos.ChildRepo
}

func NewChildrenService(baseLog *logger.Logger, children repos.ChildRepo) ChildrenService {
	return &childrenService{
		log:      baseLog.With("service", "ChildrenService"),
		children: children,
	}
}

func (s *childrenService) CreateChild(ctx context.Context, name string, birthday *time.Time, birthYear *int) (*types.Child, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("child name is required")
	}
	child := &types.Child{
		Name:      name,
		Birthday:  birthday,
		BirthYear: birthYear,
	}
	created, err := s.children.Create(ctx, nil, child)
	if err != nil {
		return nil, fmt.Errorf("create child: %w", err)
	}
	s.log.Info("Child created", "child_id", created.ID)
	return created, nil
}

func (s *childrenService) GetChild(ctx context.Context, id uuid.UUID) (*types.Child, error) {
	return s.children.GetByID(ctx, nil, id)
}

func (s *childrenService) SaveOnboarding(ctx context.Context, childID uuid.UUID, issues []string) error {
	cleaned := make([]string, 0, len(issues))
	for _, issue := range issues {
		if trimmed := strings.TrimSpace(issue); trimmed != "" {
			cleaned = append(cleaned, strings.ToLower(trimmed))
		}
	}
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return fmt.Errorf("encode issue list: %w", err)
	}
	if _, err := s.children.GetByID(ctx, nil, childID); err != nil {
		return fmt.Errorf("load child: %w", err)
	}
	if err := s.children.UpdateRawIssues(ctx, nil, childID, string(raw)); err != nil {
		return fmt.Errorf("store onboarding issues: %w", err)
	}
	s.log.Info("Onboarding issues stored", "child_id", childID, "issues", len(cleaned))
	return nil
}
