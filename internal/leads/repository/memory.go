package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"filmdecks_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// MemoryRepository keeps leads in a map. Every operation holds the lock
// for its full duration so updates are atomic with respect to readers.
type MemoryRepository struct {
	mu    sync.RWMutex
	leads map[uuid.UUID]domain.Lead
	now   func() time.Time
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		leads: make(map[uuid.UUID]domain.Lead),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

var _ LeadRepository = (*MemoryRepository)(nil)

// WithClock overrides the timestamp source. Tests use it to control ordering.
func (m *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

func (m *MemoryRepository) Create(_ context.Context, params CreateLeadParams) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	lead := domain.Lead{
		ID:               uuid.New(),
		Name:             params.Name,
		Email:            params.Email,
		Phone:            params.Phone,
		Timeline:         params.Timeline,
		PersonalMeaning:  cloneStrings(params.PersonalMeaning),
		ProjectFor:       params.ProjectFor,
		Format:           params.Format,
		Materials:        cloneStrings(params.Materials),
		ExcitedParts:     cloneStrings(params.ExcitedParts),
		Involvement:      params.Involvement,
		StartTiming:      params.StartTiming,
		Budget:           params.Budget,
		BudgetCategory:   params.BudgetCategory,
		Logline:          params.Logline,
		Description:      params.Description,
		WantConsult:      params.WantConsult,
		LeadScore:        params.LeadScore,
		Status:           params.Status,
		EnrichmentStatus: domain.EnrichmentPending,
		UTMSource:        params.UTMSource,
		UTMMedium:        params.UTMMedium,
		UTMCampaign:      params.UTMCampaign,
		Referrer:         params.Referrer,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	m.leads[lead.ID] = lead
	return lead, nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lead, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, ErrNotFound
	}
	return lead, nil
}

func (m *MemoryRepository) Update(_ context.Context, id uuid.UUID, params UpdateLeadParams) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, ErrNotFound
	}
	if params.IsEmpty() {
		return lead, nil
	}

	if params.Status != nil {
		lead.Status = *params.Status
	}
	if params.Phone != nil {
		lead.Phone = params.Phone
	}
	if params.Description != nil {
		lead.Description = params.Description
	}
	if params.Enrichment != nil {
		lead.SetEnrichment(*params.Enrichment)
	}
	if params.EnrichmentStatus != nil {
		lead.EnrichmentStatus = *params.EnrichmentStatus
	}
	lead.UpdatedAt = m.now()
	m.leads[id] = lead
	return lead, nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.Status) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, ErrNotFound
	}
	if lead.Status != from {
		return domain.Lead{}, ErrStatusChanged
	}
	lead.Status = to
	lead.UpdatedAt = m.now()
	m.leads[id] = lead
	return lead, nil
}

func (m *MemoryRepository) ApplyEnrichment(ctx context.Context, id uuid.UUID, scores domain.Enrichment) error {
	enriched := domain.EnrichmentEnriched
	_, err := m.Update(ctx, id, UpdateLeadParams{Enrichment: &scores, EnrichmentStatus: &enriched})
	return err
}

func (m *MemoryRepository) MarkEnrichmentFailed(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead, ok := m.leads[id]
	if !ok {
		return ErrNotFound
	}
	if lead.EnrichmentStatus != domain.EnrichmentPending {
		return nil
	}
	lead.EnrichmentStatus = domain.EnrichmentFailed
	lead.UpdatedAt = m.now()
	m.leads[id] = lead
	return nil
}

func (m *MemoryRepository) ListOrderedByScore(_ context.Context, limit int) ([]domain.Lead, error) {
	m.mu.RLock()
	out := make([]domain.Lead, 0, len(m.leads))
	for _, lead := range m.leads {
		out = append(out, lead)
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LeadScore != out[j].LeadScore {
			return out[i].LeadScore > out[j].LeadScore
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return truncate(out, limit), nil
}

func (m *MemoryRepository) ListPendingEnrichment(_ context.Context, createdBefore time.Time, limit int) ([]domain.Lead, error) {
	m.mu.RLock()
	out := make([]domain.Lead, 0)
	for _, lead := range m.leads {
		if lead.EnrichmentStatus == domain.EnrichmentPending && lead.CreatedAt.Before(createdBefore) {
			out = append(out, lead)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return truncate(out, limit), nil
}

func (m *MemoryRepository) CountByStatus(_ context.Context) (map[domain.Status]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[domain.Status]int)
	for _, lead := range m.leads {
		counts[lead.Status]++
	}
	return counts, nil
}

func (m *MemoryRepository) CountByEnrichmentState(_ context.Context) (map[domain.EnrichmentState]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[domain.EnrichmentState]int)
	for _, lead := range m.leads {
		counts[lead.EnrichmentState()]++
	}
	return counts, nil
}

func (m *MemoryRepository) CountSince(_ context.Context, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, lead := range m.leads {
		if !lead.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func truncate(leads []domain.Lead, limit int) []domain.Lead {
	if limit > 0 && len(leads) > limit {
		return leads[:limit]
	}
	return leads
}

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
