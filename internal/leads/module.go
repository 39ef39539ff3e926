// Package leads provides the lead bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"filmdecks_backend/internal/events"
	apphttp "filmdecks_backend/internal/http"
	"filmdecks_backend/internal/leads/handler"
	"filmdecks_backend/internal/leads/intake"
	"filmdecks_backend/internal/leads/management"
	"filmdecks_backend/internal/leads/repository"
	"filmdecks_backend/internal/leads/workflow"
	"filmdecks_backend/platform/config"
	"filmdecks_backend/platform/logger"
	"filmdecks_backend/platform/metrics"
	"filmdecks_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	repo       repository.LeadRepository
	intake     *intake.Service
	management *management.Service
	workflow   *workflow.Service
	handler    *handler.Handler
	public     *handler.PublicHandler
}

// NewModule creates the leads module. Enrichment is not wired here: the
// enrichment module subscribes to LeadCreated on the bus.
func NewModule(
	repo repository.LeadRepository,
	eventBus events.Bus,
	val *validator.Validator,
	notifier intake.AdminNotifier,
	cfg config.PhoneConfig,
	log *logger.Logger,
	m *metrics.PipelineMetrics,
) *Module {
	intakeSvc := intake.New(repo, val, eventBus, notifier, log,
		intake.WithPhoneRegion(cfg.GetPhoneDefaultRegion()),
		intake.WithMetrics(m),
	)
	mgmtSvc := management.New(repo)
	workflowSvc := workflow.New(repo, eventBus, log)

	return &Module{
		repo:       repo,
		intake:     intakeSvc,
		management: mgmtSvc,
		workflow:   workflowSvc,
		handler:    handler.New(mgmtSvc, workflowSvc, val),
		public:     handler.NewPublicHandler(intakeSvc),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository returns the shared lead repository for other modules.
func (m *Module) Repository() repository.LeadRepository {
	return m.repo
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.public.RegisterRoutes(ctx.V1.Group("/questionnaire"), ctx.Public.Group("/questionnaire"))
	m.handler.RegisterRoutes(ctx.Admin.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
