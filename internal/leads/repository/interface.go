package repository

import (
	"context"
	"errors"
	"time"

	"filmdecks_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lead id does not exist.
var ErrNotFound = errors.New("lead not found")

// ErrStatusChanged is returned by UpdateStatus when the stored status no
// longer matches the status the caller read.
var ErrStatusChanged = errors.New("lead status changed")

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	// ListOrderedByScore returns leads by lead score, newest first on ties.
	ListOrderedByScore(ctx context.Context, limit int) ([]domain.Lead, error)
}

// LeadWriter provides create and partial-update operations.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error)
	// Update merges the non-nil fields of params into the stored row.
	Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (domain.Lead, error)
	// UpdateStatus moves a lead from one status to another. The write only
	// applies while the stored status still equals from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Lead, error)
}

// EnrichmentWriter records analysis outcomes.
type EnrichmentWriter interface {
	// ApplyEnrichment stores all six scores in one statement.
	ApplyEnrichment(ctx context.Context, id uuid.UUID, scores domain.Enrichment) error
	MarkEnrichmentFailed(ctx context.Context, id uuid.UUID) error
}

// PendingEnrichmentReader finds leads whose analysis never completed.
type PendingEnrichmentReader interface {
	ListPendingEnrichment(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Lead, error)
}

// StatsReader aggregates lead counts for the admin dashboard.
type StatsReader interface {
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
	CountByEnrichmentState(ctx context.Context) (map[domain.EnrichmentState]int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}

// LeadRepository is the full set of lead storage operations.
type LeadRepository interface {
	LeadReader
	LeadWriter
	EnrichmentWriter
	PendingEnrichmentReader
	StatsReader
}

// CreateLeadParams holds the fields set at creation time.
type CreateLeadParams struct {
	Name            string
	Email           string
	Phone           *string
	Timeline        string
	PersonalMeaning []string
	ProjectFor      string
	Format          string
	Materials       []string
	ExcitedParts    []string
	Involvement     string
	StartTiming     string
	Budget          string
	BudgetCategory  string
	Logline         string
	Description     *string
	WantConsult     bool
	LeadScore       int
	Status          domain.Status
	UTMSource       *string
	UTMMedium       *string
	UTMCampaign     *string
	Referrer        *string
}

// UpdateLeadParams lists mutable fields. Nil means "leave unchanged".
// Enrichment is written as a unit so readers never see a partial set.
type UpdateLeadParams struct {
	Status           *domain.Status
	Phone            *string
	Description      *string
	Enrichment       *domain.Enrichment
	EnrichmentStatus *domain.EnrichmentState
}

// IsEmpty reports whether params would change nothing.
func (p UpdateLeadParams) IsEmpty() bool {
	return p.Status == nil && p.Phone == nil && p.Description == nil &&
		p.Enrichment == nil && p.EnrichmentStatus == nil
}
