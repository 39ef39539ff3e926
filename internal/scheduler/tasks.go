package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskLeadEnrich = "leads.enrich"

type LeadEnrichPayload struct {
	LeadID string `json:"leadId"`
}

// NewLeadEnrichTask builds the enrichment task. Analysis failures are
// terminal, so the task is never retried.
func NewLeadEnrichTask(leadID uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(LeadEnrichPayload{LeadID: leadID.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadEnrich, data, asynq.MaxRetry(0)), nil
}

func ParseLeadEnrichPayload(task *asynq.Task) (uuid.UUID, error) {
	var payload LeadEnrichPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return uuid.Nil, err
	}
	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid leadId %q: %w", payload.LeadID, err)
	}
	return leadID, nil
}
