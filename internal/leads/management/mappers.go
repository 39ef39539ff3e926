package management

import (
	"filmdecks_backend/internal/leads/domain"
	"filmdecks_backend/internal/leads/transport"
)

func enrichmentFromLead(lead domain.Lead) *transport.EnrichmentResponse {
	e := lead.Enrichment()
	if e == nil {
		return nil
	}
	return &transport.EnrichmentResponse{
		OverallScore:     e.Overall,
		OriginalityScore: e.Originality,
		EmotionalScore:   e.Emotional,
		CommercialScore:  e.Commercial,
		FormatScore:      e.Format,
		ClarityScore:     e.Clarity,
	}
}

// ToLeadResponse maps a stored lead to its admin representation.
func ToLeadResponse(lead domain.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:               lead.ID,
		Name:             lead.Name,
		Email:            lead.Email,
		Phone:            lead.Phone,
		Timeline:         lead.Timeline,
		PersonalMeaning:  nonNil(lead.PersonalMeaning),
		ProjectFor:       lead.ProjectFor,
		Format:           lead.Format,
		Materials:        nonNil(lead.Materials),
		ExcitedParts:     nonNil(lead.ExcitedParts),
		Involvement:      lead.Involvement,
		StartTiming:      lead.StartTiming,
		Budget:           lead.Budget,
		BudgetCategory:   lead.BudgetCategory,
		Logline:          lead.Logline,
		Description:      lead.Description,
		WantConsult:      lead.WantConsult,
		LeadScore:        lead.LeadScore,
		Priority:         domain.Priority(lead.LeadScore),
		Status:           string(lead.Status),
		EnrichmentStatus: string(lead.EnrichmentState()),
		Enrichment:       enrichmentFromLead(lead),
		UTMSource:        lead.UTMSource,
		UTMMedium:        lead.UTMMedium,
		UTMCampaign:      lead.UTMCampaign,
		Referrer:         lead.Referrer,
		CreatedAt:        lead.CreatedAt,
		UpdatedAt:        lead.UpdatedAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
