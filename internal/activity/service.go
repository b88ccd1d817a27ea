package activity

import (
	"context"

	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service reads the activity trail.
type Service interface {
	List(ctx context.Context, limit int) ([]EntryDTO, error)
	ListForActor(ctx context.Context, actorID uuid.UUID, limit int) ([]EntryDTO, error)
}

type service struct {
	repo Repository
}

// NewService constructs the activity read service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func (s *service) List(ctx context.Context, limit int) ([]EntryDTO, error) {
	entries, err := s.repo.List(ctx, clampLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list activity")
	}
	return toDTOs(entries), nil
}

func (s *service) ListForActor(ctx context.Context, actorID uuid.UUID, limit int) ([]EntryDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	entries, err := s.repo.ListForActor(ctx, actorID, clampLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list actor activity")
	}
	return toDTOs(entries), nil
}

func toDTOs(entries []models.ActivityEntry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for i := range entries {
		out = append(out, fromModel(&entries[i]))
	}
	return out
}
