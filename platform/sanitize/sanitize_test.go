package sanitize

import "testing"

func TestStripHTMLRemovesEncodedTags(t *testing.T) {
	got := StripHTML("A heist <b>story</b> &lt;script&gt;alert(1)&lt;/script&gt;")
	if got != "A heist story alert(1)" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestTextCollapsesSpaces(t *testing.T) {
	if got := Text("  two   words\there "); got != "two words here" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestTextPtrBlankBecomesNil(t *testing.T) {
	blank := " <i></i> "
	if TextPtr(&blank) != nil {
		t.Fatalf("expected nil for blank input")
	}
	if TextPtr(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
}

func TestTextsDropsEmptyEntries(t *testing.T) {
	got := Texts([]string{"Script", " ", "<br>"})
	if len(got) != 1 || got[0] != "Script" {
		t.Fatalf("unexpected result %#v", got)
	}
}

func TestStripHTMLKeepsComparisons(t *testing.T) {
	cases := map[string]string{
		"A coder with <3 weeks left bets it all > nothing": "A coder with <3 weeks left bets it all > nothing",
		"budget < 5K and ego > talent":                     "budget < 5K and ego > talent",
		"a <em>quiet</em> <!-- x --> war":                  "a quiet  war",
	}
	for in, want := range cases {
		if got := StripHTML(in); got != want {
			t.Errorf("StripHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlainLeavesMarkupAlone(t *testing.T) {
	if got := Plain("  <b>bold</b>\t  move "); got != "<b>bold</b> move" {
		t.Fatalf("unexpected result %q", got)
	}
	blank := "  "
	if PlainPtr(&blank) != nil || PlainPtr(nil) != nil {
		t.Fatalf("expected nil for blank input")
	}
}
