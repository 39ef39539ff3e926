package email

import (
	"strings"
	"testing"

	"filmdecks_backend/platform/config"
)

func TestNewLeadSubjectMarksHotLeads(t *testing.T) {
	hot := newLeadSubject(NewLeadEmail{Name: "Jane Doe", Budget: "$50K+", Hot: true})
	if hot != "New HOT Lead: Jane Doe ($50K+)" {
		t.Fatalf("unexpected hot subject %q", hot)
	}
	cold := newLeadSubject(NewLeadEmail{Name: "Jane Doe", Budget: "<$5K"})
	if cold != "New Lead: Jane Doe (<$5K)" {
		t.Fatalf("unexpected subject %q", cold)
	}
}

func TestAnalysisReportMessage(t *testing.T) {
	subject, body, err := analysisReportMessage(AnalysisReportEmail{
		FirstName:        "Jane",
		Logline:          "A lighthouse keeper <b>finds</b> a map",
		OverallScore:     82,
		Tier:             "Exceptional Potential",
		Breakdown:        []ScoreLine{{Label: "Originality", Score: 8}},
		DetailedAnalysis: "Strong hook.",
		Recommendations:  []string{"Tighten act two"},
		GalleryURL:       "https://filmdecks.biz/gallery",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Jane, your story shows Exceptional Potential! (82/100)" {
		t.Fatalf("unexpected subject %q", subject)
	}
	for _, want := range []string{"Originality", "8/10", "Tighten act two", "#059669", "https://filmdecks.biz/gallery"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "<b>finds</b>") {
		t.Errorf("logline must be escaped")
	}
}

func TestNewLeadMessageRendersContact(t *testing.T) {
	_, body, err := newLeadMessage(NewLeadEmail{
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		Budget:       "$15-50K",
		LeadScore:    75,
		Hot:          true,
		DashboardURL: "https://filmdecks.biz/admin/leads",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "mailto:jane@example.com") || !strings.Contains(body, "75/100") {
		t.Fatalf("unexpected body %s", body)
	}
}

type emailConfig struct {
	enabled  bool
	provider string
	apiKey   string
}

func (c emailConfig) GetEmailEnabled() bool       { return c.enabled }
func (c emailConfig) GetEmailProvider() string    { return c.provider }
func (c emailConfig) GetSMTPHost() string         { return "localhost" }
func (c emailConfig) GetSMTPPort() int            { return 1025 }
func (c emailConfig) GetSMTPUsername() string     { return "" }
func (c emailConfig) GetSMTPPassword() string     { return "" }
func (c emailConfig) GetSendGridAPIKey() string   { return c.apiKey }
func (c emailConfig) GetEmailFromName() string    { return "FilmDecks" }
func (c emailConfig) GetEmailFromAddress() string { return "hello@filmdecks.biz" }

func TestNewSenderSelectsProvider(t *testing.T) {
	cases := []struct {
		name    string
		cfg     emailConfig
		check   func(Sender) bool
		wantErr bool
	}{
		{"disabled", emailConfig{}, func(s Sender) bool { _, ok := s.(NoopSender); return ok }, false},
		{"smtp", emailConfig{enabled: true, provider: config.EmailProviderSMTP}, func(s Sender) bool { _, ok := s.(*SMTPSender); return ok }, false},
		{"sendgrid", emailConfig{enabled: true, provider: config.EmailProviderSendGrid, apiKey: "SG.x"}, func(s Sender) bool { _, ok := s.(*SendGridSender); return ok }, false},
		{"sendgrid without key", emailConfig{enabled: true, provider: config.EmailProviderSendGrid}, nil, true},
		{"unknown", emailConfig{enabled: true, provider: "carrier-pigeon"}, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender, err := NewSender(tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.check(sender) {
				t.Fatalf("unexpected sender %T", sender)
			}
		})
	}
}
