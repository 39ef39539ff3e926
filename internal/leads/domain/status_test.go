package domain

import "testing"

func TestClassifyStatusBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  Status
	}{
		{100, StatusQualified},
		{75, StatusQualified},
		{74, StatusContacted},
		{50, StatusContacted},
		{40, StatusContacted},
		{39, StatusNew},
		{10, StatusNew},
		{0, StatusNew},
	}
	for _, tc := range cases {
		if got := ClassifyStatus(tc.score); got != tc.want {
			t.Errorf("ClassifyStatus(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Errorf("expected unknown status to be rejected")
	}
	if _, err := ParseStatus(""); err == nil {
		t.Errorf("expected empty status to be rejected")
	}
}

func TestLeadEnrichmentState(t *testing.T) {
	lead := &Lead{}
	if lead.EnrichmentState() != EnrichmentPending || lead.Enrichment() != nil {
		t.Fatalf("new lead should be pending with no scores")
	}

	lead.SetEnrichment(Enrichment{Overall: 81, Originality: 70, Emotional: 90, Commercial: 60, Format: 75, Clarity: 88})
	if lead.EnrichmentState() != EnrichmentEnriched {
		t.Fatalf("expected enriched state")
	}
	if got := lead.Enrichment(); got == nil || got.Clarity != 88 {
		t.Fatalf("unexpected enrichment %#v", got)
	}

	failed := &Lead{EnrichmentStatus: EnrichmentFailed}
	if failed.EnrichmentState() != EnrichmentFailed {
		t.Fatalf("explicit failed state should win")
	}
}

func TestFirstName(t *testing.T) {
	if got := (&Lead{Name: "Ada Lovelace"}).FirstName(); got != "Ada" {
		t.Fatalf("unexpected first name %q", got)
	}
	if got := (&Lead{Name: "Cher"}).FirstName(); got != "Cher" {
		t.Fatalf("unexpected first name %q", got)
	}
}
