// Package service runs the story analysis for new leads and records the
// outcome. Runs are started without blocking the submitter; every failure
// ends in logs and metrics, never in the intake response.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"filmdecks_backend/internal/events"
	"filmdecks_backend/internal/leadenrichment/client"
	"filmdecks_backend/internal/leads/domain"
	"filmdecks_backend/internal/leads/repository"
	"filmdecks_backend/internal/notification"
	"filmdecks_backend/platform/logger"
	"filmdecks_backend/platform/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	enqueueTimeout = 5 * time.Second
	releaseTimeout = 5 * time.Second
	archiveTimeout = 30 * time.Second
)

var tracer = otel.Tracer("filmdecks.internal.leadenrichment.service")

// ErrLeadNotFound is returned by Run when the lead row no longer exists.
var ErrLeadNotFound = errors.New("lead not found")

// Repository is the storage the dispatcher needs.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	ApplyEnrichment(ctx context.Context, id uuid.UUID, scores domain.Enrichment) error
	MarkEnrichmentFailed(ctx context.Context, id uuid.UUID) error
}

// Analyzer calls the analysis engine.
type Analyzer interface {
	Analyze(ctx context.Context, req client.AnalysisRequest) (*client.AnalysisResult, error)
}

// ReportNotifier emails the finished analysis. It must not return failures.
type ReportNotifier interface {
	NotifyUserReport(ctx context.Context, report notification.Report)
}

// Enqueuer hands a run to the durable task queue.
type Enqueuer interface {
	EnqueueLeadEnrichment(ctx context.Context, leadID uuid.UUID) error
}

// Archiver stores the raw analysis next to the lead.
type Archiver interface {
	PutJSON(ctx context.Context, bucket, key string, v any) error
}

// ArchivedAnalysis is the object written per enriched lead.
type ArchivedAnalysis struct {
	LeadID     uuid.UUID `json:"leadId"`
	AnalyzedAt time.Time `json:"analyzedAt"`
	Analysis   any       `json:"analysis"`
}

// Service dispatches and runs lead enrichment.
type Service struct {
	repo     Repository
	analyzer Analyzer
	notifier ReportNotifier
	bus      events.Bus
	log      *logger.Logger

	guard         Guard
	queue         Enqueuer
	archive       Archiver
	archiveBucket string
	metrics       *metrics.PipelineMetrics
	now           func() time.Time

	inflight sync.WaitGroup
}

// Option customizes a Service.
type Option func(*Service)

// WithGuard replaces the process-local guard, typically with a RedisGuard.
func WithGuard(g Guard) Option {
	return func(s *Service) { s.guard = g }
}

// WithQueue makes Dispatch enqueue instead of starting a goroutine.
func WithQueue(q Enqueuer) Option {
	return func(s *Service) { s.queue = q }
}

// WithArchive stores every successful analysis in bucket.
func WithArchive(a Archiver, bucket string) Option {
	return func(s *Service) {
		s.archive = a
		s.archiveBucket = bucket
	}
}

func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(repo Repository, analyzer Analyzer, notifier ReportNotifier, bus events.Bus, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		analyzer: analyzer,
		notifier: notifier,
		bus:      bus,
		log:      log,
		guard:    NewMemoryGuard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch starts enrichment for leadID and returns without waiting for
// the engine. When the queue rejects the task the run starts in-process.
func (s *Service) Dispatch(ctx context.Context, leadID uuid.UUID) {
	if s.queue != nil {
		enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
		err := s.queue.EnqueueLeadEnrichment(enqueueCtx, leadID)
		cancel()
		if err == nil {
			s.log.WithContext(ctx).Info("enrichment enqueued", "leadId", leadID.String())
			return
		}
		s.log.WithContext(ctx).DownstreamFailure("enrichment_queue", leadID.String(), err)
	}

	runCtx := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.WithContext(runCtx).DownstreamFailure("enrichment", leadID.String(), fmt.Errorf("panic: %v", r))
			}
		}()
		_ = s.Run(runCtx, leadID)
	}()
}

// Wait blocks until all in-process runs started by Dispatch have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// Run performs one enrichment. Leads that are no longer pending, or that
// another run already owns, are skipped. A missing lead yields
// ErrLeadNotFound.
func (s *Service) Run(ctx context.Context, leadID uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "leadenrichment.run")
	defer span.End()
	span.SetAttributes(attribute.String("filmdecks.lead_id", leadID.String()))

	log := s.log.WithContext(ctx)

	acquired, err := s.guard.Acquire(ctx, leadID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "acquire guard")
		log.DownstreamFailure("enrichment_guard", leadID.String(), err)
		return fmt.Errorf("acquire enrichment guard: %w", err)
	}
	if !acquired {
		log.Info("enrichment already running", "leadId", leadID.String())
		s.metrics.ObserveEnrichment(metrics.OutcomeSkipped, 0)
		return nil
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := s.guard.Release(releaseCtx, leadID); err != nil {
			log.Warn("failed to release enrichment guard", "leadId", leadID.String(), "error", err)
		}
	}()

	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.notFound(ctx, leadID)
		}
		log.DatabaseError("load lead for enrichment", err)
		return err
	}
	if state := lead.EnrichmentState(); state != domain.EnrichmentPending {
		log.Info("enrichment skipped", "leadId", leadID.String(), "enrichmentStatus", string(state))
		s.metrics.ObserveEnrichment(metrics.OutcomeSkipped, 0)
		return nil
	}

	started := s.now()
	result, err := s.analyzer.Analyze(ctx, analysisRequest(lead))
	elapsed := s.now().Sub(started).Seconds()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analyze")
		s.fail(ctx, lead.ID, err, elapsed)
		return fmt.Errorf("analyze lead: %w", err)
	}

	scores := enrichmentFromResult(result)
	if err := s.repo.ApplyEnrichment(ctx, lead.ID, scores); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.notFound(ctx, leadID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply enrichment")
		log.DatabaseError("apply enrichment", err)
		s.metrics.ObserveEnrichment(metrics.OutcomeFailure, elapsed)
		return err
	}

	span.SetAttributes(attribute.Int("filmdecks.overall_score", scores.Overall))
	s.metrics.ObserveEnrichment(metrics.OutcomeSuccess, elapsed)
	log.Info("lead enriched", "leadId", leadID.String(), "overallScore", scores.Overall, "seconds", elapsed)

	s.archiveResult(ctx, lead.ID, result)

	s.bus.Publish(ctx, events.LeadEnriched{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		OverallScore: scores.Overall,
	})

	s.notifier.NotifyUserReport(ctx, notification.Report{
		LeadID:       lead.ID,
		Name:         lead.Name,
		Email:        lead.Email,
		Logline:      lead.Logline,
		OverallScore: result.OverallScore,
		Breakdown: notification.Breakdown{
			Originality:         result.Breakdown.Originality,
			EmotionalImpact:     result.Breakdown.EmotionalImpact,
			CommercialPotential: result.Breakdown.CommercialPotential,
			FormatReadiness:     result.Breakdown.FormatReadiness,
			ClarityOfVision:     result.Breakdown.ClarityOfVision,
		},
		DetailedAnalysis: result.DetailedAnalysis,
		Recommendations:  result.Recommendations,
	})

	return nil
}

// IsNotFound reports whether err means the lead no longer exists.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound)
}

func (s *Service) notFound(ctx context.Context, leadID uuid.UUID) error {
	s.log.WithContext(ctx).Warn("enrichment target not found", "leadId", leadID.String())
	s.metrics.ObserveEnrichment(metrics.OutcomeNotFound, 0)
	return ErrLeadNotFound
}

// fail records a terminal analysis failure. The lead keeps no scores.
func (s *Service) fail(ctx context.Context, leadID uuid.UUID, cause error, elapsed float64) {
	log := s.log.WithContext(ctx)
	log.DownstreamFailure("analysis_engine", leadID.String(), cause)
	s.metrics.ObserveEnrichment(metrics.OutcomeFailure, elapsed)

	if err := s.repo.MarkEnrichmentFailed(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("enrichment target not found", "leadId", leadID.String())
		} else {
			log.DatabaseError("mark enrichment failed", err)
		}
	}

	s.bus.Publish(ctx, events.LeadEnrichmentFailed{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		Reason:    cause.Error(),
	})
}

func (s *Service) archiveResult(ctx context.Context, leadID uuid.UUID, result *client.AnalysisResult) {
	if s.archive == nil || s.archiveBucket == "" {
		return
	}

	var analysis any = result
	if len(result.Raw) > 0 {
		analysis = result.Raw
	}

	archiveCtx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()
	key := "analyses/" + leadID.String() + ".json"
	if err := s.archive.PutJSON(archiveCtx, s.archiveBucket, key, ArchivedAnalysis{
		LeadID:     leadID,
		AnalyzedAt: s.now().UTC(),
		Analysis:   analysis,
	}); err != nil {
		s.log.WithContext(ctx).DownstreamFailure("analysis_archive", leadID.String(), err)
	}
}

func analysisRequest(lead domain.Lead) client.AnalysisRequest {
	description := ""
	if lead.Description != nil {
		description = *lead.Description
	}
	return client.AnalysisRequest{
		Logline:     lead.Logline,
		Description: description,
		Format:      lead.Format,
		Budget:      lead.Budget,
		ContactInfo: client.ContactInfo{Name: lead.Name, Email: lead.Email},
		LeadID:      lead.ID.String(),
	}
}

// enrichmentFromResult maps the engine breakdown onto the stored columns.
func enrichmentFromResult(r *client.AnalysisResult) domain.Enrichment {
	return domain.Enrichment{
		Overall:     r.OverallScore,
		Originality: r.Breakdown.Originality,
		Emotional:   r.Breakdown.EmotionalImpact,
		Commercial:  r.Breakdown.CommercialPotential,
		Format:      r.Breakdown.FormatReadiness,
		Clarity:     r.Breakdown.ClarityOfVision,
	}
}
