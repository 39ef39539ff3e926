// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"filmdecks_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published once a questionnaire submission has been persisted.
type LeadCreated struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	LeadScore int       `json:"leadScore"`
	Status    string    `json:"status"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadEnriched is published after all six analysis scores were stored.
type LeadEnriched struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	OverallScore int       `json:"overallScore"`
}

func (e LeadEnriched) EventName() string { return "leads.lead.enriched" }

// LeadEnrichmentFailed is published when the analysis engine call failed.
type LeadEnrichmentFailed struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Reason string    `json:"reason"`
}

func (e LeadEnrichmentFailed) EventName() string { return "leads.lead.enrichment_failed" }

// LeadStatusChanged is published when an operator moves a lead to a new status.
type LeadStatusChanged struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }
