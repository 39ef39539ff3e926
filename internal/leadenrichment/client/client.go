// Package client calls the external story analysis engine.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"filmdecks_backend/platform/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("filmdecks.internal.leadenrichment.client")

// DefaultTimeout bounds one analysis call. The engine routinely needs
// several minutes.
const DefaultTimeout = 15 * time.Minute

const maxErrorBody = 2048

// ErrEngineRejected is returned when the engine answered but reported
// failure or an incomplete result.
var ErrEngineRejected = errors.New("analysis engine rejected the request")

// ContactInfo identifies the submitter to the engine.
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AnalysisRequest is the body posted to the engine. LeadID is echoed back
// for correlation.
type AnalysisRequest struct {
	Logline     string      `json:"logline"`
	Description string      `json:"description"`
	Format      string      `json:"format"`
	Budget      string      `json:"budget"`
	ContactInfo ContactInfo `json:"contactInfo"`
	LeadID      string      `json:"leadId"`
}

// Breakdown holds the five component scores.
type Breakdown struct {
	Originality         int `json:"originality"`
	EmotionalImpact     int `json:"emotionalImpact"`
	CommercialPotential int `json:"commercialPotential"`
	FormatReadiness     int `json:"formatReadiness"`
	ClarityOfVision     int `json:"clarityOfVision"`
}

// AnalysisResult is the engine's analysis. Raw keeps the full payload for
// archiving.
type AnalysisResult struct {
	OverallScore     int             `json:"overallScore"`
	Breakdown        Breakdown       `json:"breakdown"`
	DetailedAnalysis string          `json:"detailedAnalysis"`
	Recommendations  []string        `json:"recommendations"`
	Confidence       float64         `json:"confidence"`
	Raw              json.RawMessage `json:"-"`
}

type analysisResponse struct {
	Success  bool            `json:"success"`
	Analysis json.RawMessage `json:"analysis"`
	Error    string          `json:"error"`
}

// partialAnalysis detects missing scores, which a zero value would hide.
type partialAnalysis struct {
	OverallScore *int `json:"overallScore"`
	Breakdown    *struct {
		Originality         *int `json:"originality"`
		EmotionalImpact     *int `json:"emotionalImpact"`
		CommercialPotential *int `json:"commercialPotential"`
		FormatReadiness     *int `json:"formatReadiness"`
		ClarityOfVision     *int `json:"clarityOfVision"`
	} `json:"breakdown"`
}

func (p partialAnalysis) complete() bool {
	if p.OverallScore == nil || p.Breakdown == nil {
		return false
	}
	b := p.Breakdown
	return b.Originality != nil && b.EmotionalImpact != nil && b.CommercialPotential != nil &&
		b.FormatReadiness != nil && b.ClarityOfVision != nil
}

// Client posts analysis requests to the engine.
type Client struct {
	httpClient *http.Client
	endpoint   string
	log        *logger.Logger
}

// New creates an engine client. A non-positive timeout uses DefaultTimeout.
func New(endpoint string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		log:        log,
	}
}

// Enabled reports whether an engine URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

// Analyze posts req and waits for the engine's verdict.
func (c *Client) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("analysis engine url not configured")
	}

	ctx, span := tracer.Start(ctx, "analysis_engine.analyze",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("lead.id", req.LeadID)),
	)
	defer span.End()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error("analysis engine request failed", "error", err, "leadId", req.LeadID)
		return nil, err
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Error("analysis engine request error", "status", resp.StatusCode, "leadId", req.LeadID)
		return nil, fmt.Errorf("analysis engine status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var payload analysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("analysis engine decode failed", "error", err, "leadId", req.LeadID)
		return nil, err
	}

	if !payload.Success || len(payload.Analysis) == 0 || string(payload.Analysis) == "null" {
		if payload.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrEngineRejected, payload.Error)
		}
		return nil, ErrEngineRejected
	}

	var check partialAnalysis
	if err := json.Unmarshal(payload.Analysis, &check); err != nil {
		return nil, err
	}
	if !check.complete() {
		return nil, fmt.Errorf("%w: incomplete score breakdown", ErrEngineRejected)
	}

	var result AnalysisResult
	if err := json.Unmarshal(payload.Analysis, &result); err != nil {
		return nil, err
	}
	result.Raw = payload.Analysis
	return &result, nil
}
