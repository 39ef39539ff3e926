// Package sanitize strips markup from user-provided form values before they
// are stored. Story prose goes through Plain: emails escape on output and
// a literal "<" in a logline is content, not markup.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// Only spans that open like a tag: "<b>", "</p>", "<!-- -->".
	htmlTagRegex    = regexp.MustCompile(`<(?:/?[a-zA-Z]|!)[^<>]*>`)
	whitespaceRegex = regexp.MustCompile(`[ \t]+`)
	entityReplacer  = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
	)
)

// StripHTML removes HTML tags, including tags hidden behind entities.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text strips HTML and collapses runs of spaces and tabs.
func Text(s string) string {
	return whitespaceRegex.ReplaceAllString(StripHTML(s), " ")
}

// Plain trims and collapses spaces and tabs without touching markup.
func Plain(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// PlainPtr is Plain for optional values. Blank results become nil.
func PlainPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Plain(*s)
	if result == "" {
		return nil
	}
	return &result
}

// TextPtr sanitizes an optional value. Blank results become nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	if result == "" {
		return nil
	}
	return &result
}

// Texts sanitizes each element and drops elements that end up empty.
func Texts(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if cleaned := Text(v); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
