// Package leadenrichment provides the composition root for lead enrichment.
package leadenrichment

import (
	"context"

	"filmdecks_backend/internal/events"
	"filmdecks_backend/internal/leadenrichment/client"
	"filmdecks_backend/internal/leadenrichment/service"
	"filmdecks_backend/platform/config"
	"filmdecks_backend/platform/logger"
)

// Module wires the lead enrichment service.
type Module struct {
	service *service.Service
	client  *client.Client
	log     *logger.Logger
}

// NewModule creates a new lead enrichment module.
func NewModule(repo service.Repository, notifier service.ReportNotifier, bus events.Bus, cfg config.AnalysisConfig, log *logger.Logger, opts ...service.Option) *Module {
	cli := client.New(cfg.GetAnalysisEngineURL(), cfg.GetAnalysisTimeout(), log)
	svc := service.New(repo, cli, notifier, bus, log, opts...)
	return &Module{service: svc, client: cli, log: log}
}

// Service returns the enrichment service.
func (m *Module) Service() *service.Service {
	return m.service
}

// Enabled reports whether an analysis engine is configured.
func (m *Module) Enabled() bool {
	return m.client.Enabled()
}

// RegisterHandlers dispatches enrichment for every new lead. Without an
// engine URL new leads stay pending until a backfill runs.
func (m *Module) RegisterHandlers(bus events.Bus) {
	if !m.Enabled() {
		m.log.Warn("ANALYSIS_ENGINE_URL not configured; lead enrichment disabled")
		return
	}

	bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadCreated)
		if !ok {
			return nil
		}
		m.service.Dispatch(ctx, e.LeadID)
		return nil
	}))
}
