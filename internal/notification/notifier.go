// Package notification sends the best-effort emails of the intake pipeline:
// the internal new-lead alert and the analysis report for the submitter.
// Failures are logged and counted, never returned.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"filmdecks_backend/internal/email"
	"filmdecks_backend/internal/leads/domain"
	"filmdecks_backend/platform/config"
	"filmdecks_backend/platform/logger"
	"filmdecks_backend/platform/metrics"

	"github.com/google/uuid"
)

const (
	kindAdminAlert = "admin_alert"
	kindUserReport = "user_report"

	sendTimeout = 30 * time.Second
)

// LeadSummary is what the admin alert shows about a new lead.
type LeadSummary struct {
	LeadID      uuid.UUID
	Name        string
	Email       string
	Phone       *string
	Format      string
	Logline     string
	Budget      string
	StartTiming string
	LeadScore   int
	WantConsult bool
}

// SummaryFromLead copies the alert fields from a stored lead.
func SummaryFromLead(lead domain.Lead) LeadSummary {
	return LeadSummary{
		LeadID:      lead.ID,
		Name:        lead.Name,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Format:      lead.Format,
		Logline:     lead.Logline,
		Budget:      lead.Budget,
		StartTiming: lead.StartTiming,
		LeadScore:   lead.LeadScore,
		WantConsult: lead.WantConsult,
	}
}

// Breakdown is the per-dimension analysis, each on a 0-10 scale.
type Breakdown struct {
	Originality         int
	EmotionalImpact     int
	CommercialPotential int
	FormatReadiness     int
	ClarityOfVision     int
}

// Report is the finished analysis sent to the submitter.
type Report struct {
	LeadID           uuid.UUID
	Name             string
	Email            string
	Logline          string
	OverallScore     int
	Breakdown        Breakdown
	DetailedAnalysis string
	Recommendations  []string
}

// Notifier sends pipeline emails inside an error boundary.
type Notifier struct {
	sender  email.Sender
	cfg     config.NotificationConfig
	log     *logger.Logger
	metrics *metrics.PipelineMetrics
}

func New(sender email.Sender, cfg config.NotificationConfig, log *logger.Logger, m *metrics.PipelineMetrics) *Notifier {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Notifier{sender: sender, cfg: cfg, log: log, metrics: m}
}

// NotifyAdmin alerts the team about a new lead. It blocks until the send
// finishes but never reports failure to the caller.
func (n *Notifier) NotifyAdmin(ctx context.Context, lead LeadSummary) {
	to := n.cfg.GetLeadNotificationEmail()
	if to == "" {
		n.metrics.ObserveNotification(kindAdminAlert, metrics.OutcomeSkipped)
		return
	}

	n.guard(ctx, kindAdminAlert, lead.LeadID, func(ctx context.Context) error {
		phone := ""
		if lead.Phone != nil {
			phone = *lead.Phone
		}
		return n.sender.SendNewLeadEmail(ctx, to, email.NewLeadEmail{
			Name:         lead.Name,
			Email:        lead.Email,
			Phone:        phone,
			Format:       lead.Format,
			Logline:      lead.Logline,
			Budget:       lead.Budget,
			Timing:       lead.StartTiming,
			LeadScore:    lead.LeadScore,
			Hot:          domain.Priority(lead.LeadScore) == domain.PriorityHot,
			WantConsult:  lead.WantConsult,
			DashboardURL: n.buildURL("/admin/leads"),
		})
	})
}

// NotifyUserReport emails the analysis to the submitter.
func (n *Notifier) NotifyUserReport(ctx context.Context, report Report) {
	if report.Email == "" {
		n.metrics.ObserveNotification(kindUserReport, metrics.OutcomeSkipped)
		return
	}

	n.guard(ctx, kindUserReport, report.LeadID, func(ctx context.Context) error {
		lead := domain.Lead{Name: report.Name}
		return n.sender.SendAnalysisReportEmail(ctx, report.Email, email.AnalysisReportEmail{
			FirstName:    lead.FirstName(),
			Logline:      report.Logline,
			OverallScore: report.OverallScore,
			Tier:         domain.ReportTier(report.OverallScore),
			Breakdown: []email.ScoreLine{
				{Label: "Originality", Score: report.Breakdown.Originality},
				{Label: "Emotional Impact", Score: report.Breakdown.EmotionalImpact},
				{Label: "Commercial Potential", Score: report.Breakdown.CommercialPotential},
				{Label: "Format Readiness", Score: report.Breakdown.FormatReadiness},
				{Label: "Clarity of Vision", Score: report.Breakdown.ClarityOfVision},
			},
			DetailedAnalysis: report.DetailedAnalysis,
			Recommendations:  report.Recommendations,
			GalleryURL:       n.buildURL("/gallery"),
		})
	})
}

// guard runs send with its own deadline and converts errors and panics
// into a log line plus a metric.
func (n *Notifier) guard(ctx context.Context, kind string, leadID uuid.UUID, send func(context.Context) error) {
	log := n.log.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			n.metrics.ObserveNotification(kind, metrics.OutcomeFailure)
			log.DownstreamFailure(kind, leadID.String(), fmt.Errorf("panic: %v", r))
		}
	}()

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	if err := send(sendCtx); err != nil {
		n.metrics.ObserveNotification(kind, metrics.OutcomeFailure)
		log.DownstreamFailure(kind, leadID.String(), err)
		return
	}

	n.metrics.ObserveNotification(kind, metrics.OutcomeSuccess)
	log.Info("notification sent", "kind", kind, "leadId", leadID.String())
}

func (n *Notifier) buildURL(path string) string {
	base := strings.TrimRight(n.cfg.GetAppBaseURL(), "/")
	if base == "" {
		return ""
	}
	return base + path
}
