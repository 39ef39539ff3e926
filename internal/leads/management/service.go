// Package management serves the admin dashboard reads: the ranked lead
// list, a single lead, and aggregate counts.
package management

import (
	"context"
	"errors"
	"time"

	"filmdecks_backend/internal/leads/domain"
	"filmdecks_backend/internal/leads/repository"
	"filmdecks_backend/internal/leads/transport"
	"filmdecks_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultListLimit caps the admin list.
const DefaultListLimit = 100

const recentWindow = 7 * 24 * time.Hour

// Repository defines the data access interface needed by the management service.
type Repository interface {
	repository.LeadReader
	repository.StatsReader
}

// Service handles admin lead reads.
type Service struct {
	repo Repository
	now  func() time.Time
}

func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns up to DefaultListLimit leads, highest lead score first.
func (s *Service) List(ctx context.Context) (transport.LeadListResponse, error) {
	leads, err := s.repo.ListOrderedByScore(ctx, DefaultListLimit)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = ToLeadResponse(lead)
	}
	return transport.LeadListResponse{Success: true, Items: items, Total: len(items)}, nil
}

// GetByID retrieves a lead by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadDetailResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadDetailResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadDetailResponse{}, err
	}
	return transport.LeadDetailResponse{Success: true, Lead: ToLeadResponse(lead)}, nil
}

// Stats aggregates counts for the dashboard header.
func (s *Service) Stats(ctx context.Context) (transport.LeadStatsResponse, error) {
	var (
		byStatus     map[domain.Status]int
		byEnrichment map[domain.EnrichmentState]int
		recent       int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byStatus, err = s.repo.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		byEnrichment, err = s.repo.CountByEnrichmentState(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.repo.CountSince(gctx, s.now().Add(-recentWindow))
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.LeadStatsResponse{}, err
	}

	resp := transport.LeadStatsResponse{
		Success:       true,
		ByStatus:      make(map[string]int, len(domain.Statuses)),
		LastSevenDays: recent,
		Enriched:      byEnrichment[domain.EnrichmentEnriched],
		Pending:       byEnrichment[domain.EnrichmentPending],
		Failed:        byEnrichment[domain.EnrichmentFailed],
	}
	for _, st := range domain.Statuses {
		count := byStatus[st]
		resp.ByStatus[string(st)] = count
		resp.Total += count
	}
	return resp, nil
}
