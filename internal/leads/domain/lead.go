// Package domain holds the lead entity and the pure qualification rules
// applied to it: scoring, initial classification, and status transitions.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EnrichmentState is the lifecycle of the external analysis for one lead.
type EnrichmentState string

const (
	EnrichmentPending  EnrichmentState = "pending"
	EnrichmentEnriched EnrichmentState = "enriched"
	EnrichmentFailed   EnrichmentState = "failed"
)

// Enrichment is the six-score breakdown produced by the analysis engine.
// It is stored as a unit and never partially.
type Enrichment struct {
	Overall     int `json:"overallScore"`
	Originality int `json:"originalityScore"`
	Emotional   int `json:"emotionalScore"`
	Commercial  int `json:"commercialScore"`
	Format      int `json:"formatScore"`
	Clarity     int `json:"clarityScore"`
}

// Lead is one questionnaire submission with its qualification and
// enrichment state.
type Lead struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone *string

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

	LeadScore int
	Status    Status

	OverallScore     *int
	OriginalityScore *int
	EmotionalScore   *int
	CommercialScore  *int
	FormatScore      *int
	ClarityScore     *int
	EnrichmentStatus EnrichmentState

	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
	Referrer    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Enrichment returns the stored scores, or nil while any of them is absent.
func (l *Lead) Enrichment() *Enrichment {
	if l.OverallScore == nil || l.OriginalityScore == nil || l.EmotionalScore == nil ||
		l.CommercialScore == nil || l.FormatScore == nil || l.ClarityScore == nil {
		return nil
	}
	return &Enrichment{
		Overall:     *l.OverallScore,
		Originality: *l.OriginalityScore,
		Emotional:   *l.EmotionalScore,
		Commercial:  *l.CommercialScore,
		Format:      *l.FormatScore,
		Clarity:     *l.ClarityScore,
	}
}

// SetEnrichment writes all six scores at once.
func (l *Lead) SetEnrichment(e Enrichment) {
	l.OverallScore = intPtr(e.Overall)
	l.OriginalityScore = intPtr(e.Originality)
	l.EmotionalScore = intPtr(e.Emotional)
	l.CommercialScore = intPtr(e.Commercial)
	l.FormatScore = intPtr(e.Format)
	l.ClarityScore = intPtr(e.Clarity)
	l.EnrichmentStatus = EnrichmentEnriched
}

// EnrichmentState reports the stored state. Rows without an explicit state
// fall back to field presence: scores present means enriched.
func (l *Lead) EnrichmentState() EnrichmentState {
	switch l.EnrichmentStatus {
	case EnrichmentEnriched, EnrichmentFailed:
		return l.EnrichmentStatus
	}
	if l.Enrichment() != nil {
		return EnrichmentEnriched
	}
	return EnrichmentPending
}

// FirstName is the first word of the contact name, used in greetings.
func (l *Lead) FirstName() string {
	for i, r := range l.Name {
		if r == ' ' {
			return l.Name[:i]
		}
	}
	return l.Name
}

func intPtr(v int) *int {
	return &v
}
