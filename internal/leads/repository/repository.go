package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"filmdecks_backend/internal/leads/domain"
	"filmdecks_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const leadColumns = `id, name, email, phone,
	timeline, personal_meaning, project_for, format, materials, excited_parts, involvement,
	start_timing, budget, budget_category, logline, description, want_consult,
	lead_score, status,
	overall_score, originality_score, emotional_score, commercial_score, format_score, clarity_score,
	enrichment_status,
	utm_source, utm_medium, utm_campaign, referrer,
	created_at, updated_at`

// Repository is the Postgres implementation of LeadRepository.
type Repository struct {
	pool db.Querier
}

// New creates a repository on top of a pgx pool (or anything shaped like one).
func New(pool db.Querier) *Repository {
	return &Repository{pool: pool}
}

var _ LeadRepository = (*Repository)(nil)

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	var status, enrichmentStatus string
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone,
		&lead.Timeline, &lead.PersonalMeaning, &lead.ProjectFor, &lead.Format, &lead.Materials, &lead.ExcitedParts, &lead.Involvement,
		&lead.StartTiming, &lead.Budget, &lead.BudgetCategory, &lead.Logline, &lead.Description, &lead.WantConsult,
		&lead.LeadScore, &status,
		&lead.OverallScore, &lead.OriginalityScore, &lead.EmotionalScore, &lead.CommercialScore, &lead.FormatScore, &lead.ClarityScore,
		&enrichmentStatus,
		&lead.UTMSource, &lead.UTMMedium, &lead.UTMCampaign, &lead.Referrer,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Status = domain.Status(status)
	lead.EnrichmentStatus = domain.EnrichmentState(enrichmentStatus)
	return lead, nil
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			id, name, email, phone,
			timeline, personal_meaning, project_for, format, materials, excited_parts, involvement,
			start_timing, budget, budget_category, logline, description, want_consult,
			lead_score, status, enrichment_status,
			utm_source, utm_medium, utm_campaign, referrer
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING `+leadColumns,
		uuid.New(), params.Name, params.Email, params.Phone,
		params.Timeline, nonNil(params.PersonalMeaning), params.ProjectFor, params.Format, nonNil(params.Materials), nonNil(params.ExcitedParts), params.Involvement,
		params.StartTiming, params.Budget, params.BudgetCategory, params.Logline, params.Description, params.WantConsult,
		params.LeadScore, string(params.Status), string(domain.EnrichmentPending),
		params.UTMSource, params.UTMMedium, params.UTMCampaign, params.Referrer,
	)
	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (domain.Lead, error) {
	if params.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	setClauses := []string{}
	args := []any{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   any
	}{
		{params.Status != nil, "status", derefStatus(params.Status)},
		{params.Phone != nil, "phone", params.Phone},
		{params.Description != nil, "description", params.Description},
		{params.EnrichmentStatus != nil, "enrichment_status", derefEnrichmentState(params.EnrichmentStatus)},
	}
	if e := params.Enrichment; e != nil {
		fields = append(fields, []struct {
			enabled bool
			column  string
			value   any
		}{
			{true, "overall_score", e.Overall},
			{true, "originality_score", e.Originality},
			{true, "emotional_score", e.Emotional},
			{true, "commercial_score", e.Commercial},
			{true, "format_score", e.Format},
			{true, "clarity_score", e.Clarity},
		}...)
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING `+leadColumns, id, string(to), string(from)))
	if !errors.Is(err, pgx.ErrNoRows) {
		return lead, err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return domain.Lead{}, getErr
	}
	return domain.Lead{}, ErrStatusChanged
}

func (r *Repository) ApplyEnrichment(ctx context.Context, id uuid.UUID, scores domain.Enrichment) error {
	enriched := domain.EnrichmentEnriched
	_, err := r.Update(ctx, id, UpdateLeadParams{Enrichment: &scores, EnrichmentStatus: &enriched})
	return err
}

func (r *Repository) MarkEnrichmentFailed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET enrichment_status = $2, updated_at = now()
		WHERE id = $1 AND enrichment_status = $3
	`, id, string(domain.EnrichmentFailed), string(domain.EnrichmentPending))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the lead is gone or it already reached a terminal state.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
	}
	return nil
}

func (r *Repository) ListOrderedByScore(ctx context.Context, limit int) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		ORDER BY lead_score DESC, created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

func (r *Repository) ListPendingEnrichment(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE enrichment_status = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3
	`, string(domain.EnrichmentPending), createdBefore, limit)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

func (r *Repository) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[domain.Status(status)] = count
	}
	return counts, rows.Err()
}

func (r *Repository) CountByEnrichmentState(ctx context.Context) (map[domain.EnrichmentState]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT enrichment_status, COUNT(*) FROM leads GROUP BY enrichment_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.EnrichmentState]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		counts[domain.EnrichmentState(state)] = count
	}
	return counts, rows.Err()
}

func (r *Repository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads WHERE created_at >= $1`, since).Scan(&count)
	return count, err
}

func collectLeads(rows pgx.Rows) ([]domain.Lead, error) {
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func derefStatus(s *domain.Status) string {
	if s == nil {
		return ""
	}
	return string(*s)
}

func derefEnrichmentState(s *domain.EnrichmentState) string {
	if s == nil {
		return ""
	}
	return string(*s)
}
