package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type newLeadEmailData struct {
	baseEmailData
	NewLeadEmail
}

// tierPalette values are trusted constants placed in inline styles.
type tierPalette struct {
	Color   template.CSS
	BgColor template.CSS
}

type analysisReportEmailData struct {
	baseEmailData
	AnalysisReportEmail
	Palette tierPalette
}

var tierPalettes = map[string]tierPalette{
	"Exceptional Potential": {Color: "#059669", BgColor: "#D1FAE5"},
	"High Potential":        {Color: "#2563EB", BgColor: "#DBEAFE"},
	"Promising":             {Color: "#D97706", BgColor: "#FEF3C7"},
}

func paletteForTier(tier string) tierPalette {
	if p, ok := tierPalettes[tier]; ok {
		return p
	}
	return tierPalette{Color: "#475569", BgColor: "#F1F5F9"}
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
