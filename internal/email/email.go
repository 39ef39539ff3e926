package email

import (
	"context"
	"fmt"

	"filmdecks_backend/platform/config"
)

// NewLeadEmail is the data shown in the internal new-lead alert.
type NewLeadEmail struct {
	Name         string
	Email        string
	Phone        string
	Format       string
	Logline      string
	Budget       string
	Timing       string
	LeadScore    int
	Hot          bool
	WantConsult  bool
	DashboardURL string
}

// ScoreLine is one row of the analysis breakdown table.
type ScoreLine struct {
	Label string
	Score int
}

// AnalysisReportEmail is the data shown in the report sent to the submitter.
type AnalysisReportEmail struct {
	FirstName        string
	Logline          string
	OverallScore     int
	Tier             string
	Breakdown        []ScoreLine
	DetailedAnalysis string
	Recommendations  []string
	GalleryURL       string
}

type Sender interface {
	SendNewLeadEmail(ctx context.Context, toEmail string, data NewLeadEmail) error
	SendAnalysisReportEmail(ctx context.Context, toEmail string, data AnalysisReportEmail) error
}

type NoopSender struct{}

func (NoopSender) SendNewLeadEmail(ctx context.Context, toEmail string, data NewLeadEmail) error {
	return nil
}

func (NoopSender) SendAnalysisReportEmail(ctx context.Context, toEmail string, data AnalysisReportEmail) error {
	return nil
}

// NewSender picks the delivery backend from config. Disabled email yields
// a NoopSender so callers never need to branch on it.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	switch cfg.GetEmailProvider() {
	case config.EmailProviderSendGrid:
		return NewSendGridSender(cfg.GetSendGridAPIKey(), cfg.GetEmailFromAddress(), cfg.GetEmailFromName())
	case config.EmailProviderSMTP, "":
		return NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.GetEmailProvider())
	}
}

func newLeadMessage(data NewLeadEmail) (string, string, error) {
	content, err := renderEmailTemplate("new_lead.html", newLeadEmailData{
		baseEmailData: baseEmailData{
			Title:    "New Lead Submission",
			Heading:  "New Lead Submission",
			CTALabel: "View in Admin Dashboard",
			CTAURL:   data.DashboardURL,
		},
		NewLeadEmail: data,
	})
	if err != nil {
		return "", "", err
	}
	return newLeadSubject(data), content, nil
}

func analysisReportMessage(data AnalysisReportEmail) (string, string, error) {
	content, err := renderEmailTemplate("analysis_report.html", analysisReportEmailData{
		baseEmailData: baseEmailData{
			Title:      "Your Story Analysis",
			Heading:    "Your Story Analysis",
			Subheading: "FilmDecks",
			CTALabel:   "See Projects We've Developed",
			CTAURL:     data.GalleryURL,
		},
		AnalysisReportEmail: data,
		Palette:             paletteForTier(data.Tier),
	})
	if err != nil {
		return "", "", err
	}
	return analysisReportSubject(data), content, nil
}
