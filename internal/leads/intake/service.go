// Package intake turns a questionnaire submission into a scored, persisted
// lead. It validates, scores, classifies, stores, announces the new lead,
// and alerts the team. Only validation and storage failures reach the caller.
package intake

import (
	"context"
	"fmt"
	"strings"

	"filmdecks_backend/internal/events"
	"filmdecks_backend/internal/leads/domain"
	"filmdecks_backend/internal/leads/repository"
	"filmdecks_backend/internal/leads/transport"
	"filmdecks_backend/internal/notification"
	"filmdecks_backend/platform/apperr"
	"filmdecks_backend/platform/logger"
	"filmdecks_backend/platform/metrics"
	"filmdecks_backend/platform/phone"
	"filmdecks_backend/platform/sanitize"
	"filmdecks_backend/platform/validator"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SubmittedMessage is returned to the submitter on success.
const SubmittedMessage = "Your story has been submitted successfully!"

var tracer = otel.Tracer("filmdecks.internal.leads.intake")

// Repository is the storage the intake flow needs.
type Repository interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (domain.Lead, error)
}

// AdminNotifier sends the new-lead alert. It must not return failures.
type AdminNotifier interface {
	NotifyAdmin(ctx context.Context, lead notification.LeadSummary)
}

// Service handles questionnaire submissions.
type Service struct {
	repo        Repository
	validator   *validator.Validator
	bus         events.Bus
	notifier    AdminNotifier
	tables      *domain.ScoringTables
	metrics     *metrics.PipelineMetrics
	log         *logger.Logger
	phoneRegion string
}

// Option customizes a Service.
type Option func(*Service)

// WithScoringTables replaces the embedded budget and timing tables.
func WithScoringTables(t *domain.ScoringTables) Option {
	return func(s *Service) { s.tables = t }
}

// WithPhoneRegion sets the region used to parse national phone numbers.
func WithPhoneRegion(region string) Option {
	return func(s *Service) { s.phoneRegion = region }
}

// WithMetrics records lead creation counts.
func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(repo Repository, val *validator.Validator, bus events.Bus, notifier AdminNotifier, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		validator:   val,
		bus:         bus,
		notifier:    notifier,
		tables:      domain.DefaultScoringTables(),
		log:         log,
		phoneRegion: phone.DefaultRegion,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates and stores a questionnaire. The response is ready as
// soon as the row exists and the admin alert has been attempted; analysis
// runs in the background.
func (s *Service) Submit(ctx context.Context, req transport.SubmitQuestionnaireRequest) (transport.SubmitQuestionnaireResponse, error) {
	ctx, span := tracer.Start(ctx, "leads.intake.submit")
	defer span.End()

	req = normalize(req, s.phoneRegion)
	if violations := s.validator.Violations(req); len(violations) > 0 {
		span.SetStatus(codes.Error, "validation failed")
		return transport.SubmitQuestionnaireResponse{}, apperr.Validation("Validation failed", violations...)
	}

	score := s.tables.Score(req.Budget, req.StartTiming)
	budgetCategory := s.tables.BudgetCategory(req.Budget)
	status := domain.ClassifyStatus(score)

	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Timeline:        req.Timeline,
		PersonalMeaning: req.PersonalMeaning,
		ProjectFor:      req.ProjectFor,
		Format:          req.Format,
		Materials:       req.Materials,
		ExcitedParts:    req.ExcitedParts,
		Involvement:     req.Involvement,
		StartTiming:     req.StartTiming,
		Budget:          req.Budget,
		BudgetCategory:  budgetCategory,
		Logline:         req.Logline,
		Description:     req.Description,
		WantConsult:     req.WantConsult,
		LeadScore:       score,
		Status:          status,
		UTMSource:       req.UTMSource,
		UTMMedium:       req.UTMMedium,
		UTMCampaign:     req.UTMCampaign,
		Referrer:        req.Referrer,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist lead")
		s.log.WithContext(ctx).DatabaseError("insert lead", err)
		return transport.SubmitQuestionnaireResponse{}, fmt.Errorf("create lead: %w", err)
	}

	span.SetAttributes(
		attribute.String("filmdecks.lead_id", lead.ID.String()),
		attribute.Int("filmdecks.lead_score", lead.LeadScore),
		attribute.String("filmdecks.status", string(lead.Status)),
	)
	s.metrics.ObserveLeadCreated(string(lead.Status))
	s.log.WithContext(ctx).Info("lead created",
		"leadId", lead.ID.String(),
		"leadScore", lead.LeadScore,
		"status", string(lead.Status),
	)

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		LeadScore: lead.LeadScore,
		Status:    string(lead.Status),
	})

	s.notifier.NotifyAdmin(ctx, notification.SummaryFromLead(lead))

	return transport.SubmitQuestionnaireResponse{
		Success: true,
		LeadID:  lead.ID,
		TeaserScore: transport.TeaserScore{
			Overall:    lead.LeadScore,
			Category:   domain.TeaserCategory(lead.LeadScore),
			BudgetTier: lead.BudgetCategory,
		},
		Message: SubmittedMessage,
	}, nil
}

// Options lists the budget and timing answers the scoring tables know.
func (s *Service) Options() transport.QuestionnaireOptionsResponse {
	return transport.QuestionnaireOptionsResponse{
		Budgets: s.tables.BudgetOptions(),
		Timings: s.tables.TimingOptions(),
	}
}

// normalize strips markup from form answers and formats the phone number.
// The logline and description are story prose and only have whitespace
// tidied. Budget and timing are lookup keys and are only trimmed.
func normalize(req transport.SubmitQuestionnaireRequest, region string) transport.SubmitQuestionnaireRequest {
	req.Timeline = sanitize.Text(req.Timeline)
	req.PersonalMeaning = sanitize.Texts(req.PersonalMeaning)
	req.ProjectFor = sanitize.Text(req.ProjectFor)
	req.Format = sanitize.Text(req.Format)
	req.Materials = sanitize.Texts(req.Materials)
	req.ExcitedParts = sanitize.Texts(req.ExcitedParts)
	req.Involvement = sanitize.Text(req.Involvement)
	req.StartTiming = strings.TrimSpace(req.StartTiming)
	req.Budget = strings.TrimSpace(req.Budget)
	req.Logline = sanitize.Plain(req.Logline)
	req.Description = sanitize.PlainPtr(req.Description)
	req.Name = sanitize.Text(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.UTMSource = sanitize.TextPtr(req.UTMSource)
	req.UTMMedium = sanitize.TextPtr(req.UTMMedium)
	req.UTMCampaign = sanitize.TextPtr(req.UTMCampaign)
	req.Referrer = sanitize.TextPtr(req.Referrer)

	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone, region)
		if normalized == "" {
			req.Phone = nil
		} else {
			req.Phone = &normalized
		}
	}
	return req
}
