package scheduler

import (
	"context"
	"time"

	"filmdecks_backend/internal/leads/domain"
	"filmdecks_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultPendingSweepInterval = 15 * time.Minute
	defaultPendingSweepAge      = 30 * time.Minute
	pendingSweepBatch           = 100
)

type PendingLister interface {
	ListPendingEnrichment(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Lead, error)
}

type Enqueuer interface {
	EnqueueLeadEnrichment(ctx context.Context, leadID uuid.UUID) error
}

// PendingSweep periodically re-queues leads whose enrichment never started,
// for example because the API process stopped before dispatching.
type PendingSweep struct {
	repo     PendingLister
	queue    Enqueuer
	log      *logger.Logger
	interval time.Duration
	minAge   time.Duration
	now      func() time.Time
}

func NewPendingSweep(repo PendingLister, queue Enqueuer, log *logger.Logger, interval, minAge time.Duration) *PendingSweep {
	if interval <= 0 {
		interval = defaultPendingSweepInterval
	}
	if minAge <= 0 {
		minAge = defaultPendingSweepAge
	}

	return &PendingSweep{
		repo:     repo,
		queue:    queue,
		log:      log,
		interval: interval,
		minAge:   minAge,
		now:      time.Now,
	}
}

func (s *PendingSweep) Run(ctx context.Context) {
	if s == nil || s.repo == nil || s.queue == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep returns the number of leads queued.
func (s *PendingSweep) sweep(ctx context.Context) int {
	leads, err := s.repo.ListPendingEnrichment(ctx, s.now().Add(-s.minAge), pendingSweepBatch)
	if err != nil {
		s.log.Warn("pending enrichment sweep failed", "error", err)
		return 0
	}

	queued := 0
	for _, lead := range leads {
		if err := s.queue.EnqueueLeadEnrichment(ctx, lead.ID); err != nil {
			s.log.Warn("pending enrichment sweep enqueue failed", "leadId", lead.ID.String(), "error", err)
			continue
		}
		queued++
	}

	if queued > 0 {
		s.log.Info("pending enrichment sweep queued leads", "queued", queued)
	}
	return queued
}
