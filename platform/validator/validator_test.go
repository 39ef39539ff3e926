package validator

import "testing"

type sample struct {
	Name    string   `json:"name" validate:"required,min=2"`
	Email   string   `json:"email" validate:"required,email"`
	Tags    []string `json:"tags" validate:"min=1,dive,required"`
	Ignored string   `json:"-"`
}

func TestViolationsReportsEveryField(t *testing.T) {
	v := New()
	got := v.Violations(&sample{Name: "a", Email: "not-an-email"})

	fields := map[string]string{}
	for _, fv := range got {
		fields[fv.Field] = fv.Message
	}

	if len(fields) != 3 {
		t.Fatalf("expected 3 violations, got %#v", got)
	}
	if fields["name"] != "must be at least 2 characters" {
		t.Errorf("unexpected name message %q", fields["name"])
	}
	if fields["email"] != "must be a valid email address" {
		t.Errorf("unexpected email message %q", fields["email"])
	}
	if fields["tags"] != "must include at least 1 selection(s)" {
		t.Errorf("unexpected tags message %q", fields["tags"])
	}
}

func TestViolationsUsesIndexedPathsForElements(t *testing.T) {
	v := New()
	got := v.Violations(&sample{Name: "ok", Email: "a@b.co", Tags: []string{"x", ""}})
	if len(got) != 1 || got[0].Field != "tags[1]" {
		t.Fatalf("expected tags[1] violation, got %#v", got)
	}
}

func TestViolationsNilForValidInput(t *testing.T) {
	v := New()
	if got := v.Violations(&sample{Name: "ok", Email: "a@b.co", Tags: []string{"x"}}); got != nil {
		t.Fatalf("expected no violations, got %#v", got)
	}
}
