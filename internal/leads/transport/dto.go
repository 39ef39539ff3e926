package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// SubmitQuestionnaireRequest is the public questionnaire payload.
type SubmitQuestionnaireRequest struct {
	Timeline        string   `json:"timeline" validate:"required,max=200"`
	PersonalMeaning []string `json:"personalMeaning" validate:"min=1,max=20,dive,required,max=200"`
	ProjectFor      string   `json:"projectFor" validate:"required,max=200"`
	Format          string   `json:"format" validate:"required,max=200"`
	Materials       []string `json:"materials" validate:"min=1,max=20,dive,required,max=200"`
	ExcitedParts    []string `json:"excitedParts" validate:"min=1,max=20,dive,required,max=200"`
	Involvement     string   `json:"involvement" validate:"required,max=200"`
	StartTiming     string   `json:"startTiming" validate:"required,max=100"`
	Budget          string   `json:"budget" validate:"required,max=50"`
	Logline         string   `json:"logline" validate:"required,min=10,max=1000"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=10000"`
	Name            string   `json:"name" validate:"required,min=2,max=200"`
	Email           string   `json:"email" validate:"required,email,max=254"`
	Phone           *string  `json:"phone,omitempty" validate:"omitempty,max=40"`
	WantConsult     bool     `json:"wantConsult"`
	UTMSource       *string  `json:"utmSource,omitempty" validate:"omitempty,max=200"`
	UTMMedium       *string  `json:"utmMedium,omitempty" validate:"omitempty,max=200"`
	UTMCampaign     *string  `json:"utmCampaign,omitempty" validate:"omitempty,max=200"`
	Referrer        *string  `json:"referrer,omitempty" validate:"omitempty,max=2000"`
}

// UpdateStatusRequest is the admin status change payload. Status is
// checked against the known set by the workflow service so the message
// can list the allowed values.
type UpdateStatusRequest struct {
	LeadID string `json:"leadId" validate:"required,uuid"`
	Status string `json:"status" validate:"required"`
}

// Response DTOs

type TeaserScore struct {
	Overall    int    `json:"overall"`
	Category   string `json:"category"`
	BudgetTier string `json:"budgetTier"`
}

type SubmitQuestionnaireResponse struct {
	Success     bool        `json:"success"`
	LeadID      uuid.UUID   `json:"leadId"`
	TeaserScore TeaserScore `json:"teaserScore"`
	Message     string      `json:"message"`
}

type EnrichmentResponse struct {
	OverallScore     int `json:"overallScore"`
	OriginalityScore int `json:"originalityScore"`
	EmotionalScore   int `json:"emotionalScore"`
	CommercialScore  int `json:"commercialScore"`
	FormatScore      int `json:"formatScore"`
	ClarityScore     int `json:"clarityScore"`
}

type LeadResponse struct {
	ID               uuid.UUID           `json:"id"`
	Name             string              `json:"name"`
	Email            string              `json:"email"`
	Phone            *string             `json:"phone,omitempty"`
	Timeline         string              `json:"timeline"`
	PersonalMeaning  []string            `json:"personalMeaning"`
	ProjectFor       string              `json:"projectFor"`
	Format           string              `json:"format"`
	Materials        []string            `json:"materials"`
	ExcitedParts     []string            `json:"excitedParts"`
	Involvement      string              `json:"involvement"`
	StartTiming      string              `json:"startTiming"`
	Budget           string              `json:"budget"`
	BudgetCategory   string              `json:"budgetCategory"`
	Logline          string              `json:"logline"`
	Description      *string             `json:"description,omitempty"`
	WantConsult      bool                `json:"wantConsult"`
	LeadScore        int                 `json:"leadScore"`
	Priority         string              `json:"priority"`
	Status           string              `json:"status"`
	EnrichmentStatus string              `json:"enrichmentStatus"`
	Enrichment       *EnrichmentResponse `json:"enrichment,omitempty"`
	UTMSource        *string             `json:"utmSource,omitempty"`
	UTMMedium        *string             `json:"utmMedium,omitempty"`
	UTMCampaign      *string             `json:"utmCampaign,omitempty"`
	Referrer         *string             `json:"referrer,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

type LeadListResponse struct {
	Success bool           `json:"success"`
	Items   []LeadResponse `json:"items"`
	Total   int            `json:"total"`
}

type LeadDetailResponse struct {
	Success bool         `json:"success"`
	Lead    LeadResponse `json:"lead"`
}

// StatusSummary is the trimmed lead returned by a status change.
type StatusSummary struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type UpdateStatusResponse struct {
	Success bool          `json:"success"`
	Lead    StatusSummary `json:"lead"`
}

type LeadStatsResponse struct {
	Success       bool           `json:"success"`
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"byStatus"`
	LastSevenDays int            `json:"lastSevenDays"`
	Enriched      int            `json:"enriched"`
	Pending       int            `json:"pending"`
	Failed        int            `json:"failed"`
}

// QuestionnaireOptionsResponse lists the choices the scoring tables know.
type QuestionnaireOptionsResponse struct {
	Budgets []string `json:"budgets"`
	Timings []string `json:"timings"`
}
