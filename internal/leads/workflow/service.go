// Package workflow moves leads between operator statuses.
package workflow

import (
	"context"
	"errors"
	"strings"

	"filmdecks_backend/internal/events"
	"filmdecks_backend/internal/leads/domain"
	"filmdecks_backend/internal/leads/repository"
	"filmdecks_backend/platform/apperr"
	"filmdecks_backend/platform/logger"

	"github.com/google/uuid"
)

// Repository is the storage the workflow needs.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Lead, error)
}

type Service struct {
	repo Repository
	bus  events.Bus
	log  *logger.Logger
}

func New(repo Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// SetStatus moves a lead to any recognized status in one write.
// Re-applying the current status is a no-op that still succeeds. Unknown
// statuses are rejected before storage is touched. A status changed by
// someone else since the read is reported as a conflict.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, raw string) (domain.Lead, error) {
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return domain.Lead{}, apperr.Validation("Validation failed", apperr.FieldViolation{
			Field:   "status",
			Message: "must be one of: " + statusList(),
		})
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, mapNotFound(err)
	}

	if current.Status == status {
		return current, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, status)
	if errors.Is(err, repository.ErrStatusChanged) {
		return domain.Lead{}, apperr.Conflict("lead status changed, reload and try again")
	}
	if err != nil {
		return domain.Lead{}, mapNotFound(err)
	}

	s.log.WithContext(ctx).Info("lead status changed",
		"leadId", id.String(),
		"from", string(current.Status),
		"to", string(status),
	)
	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     id,
		FromStatus: string(current.Status),
		ToStatus:   string(status),
	})

	return updated, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

func statusList() string {
	names := make([]string, len(domain.Statuses))
	for i, st := range domain.Statuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}
