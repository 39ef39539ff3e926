package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"filmdecks_backend/internal/leads/transport"
	"filmdecks_backend/platform/apperr"
	"filmdecks_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// IntakeService accepts questionnaire submissions.
type IntakeService interface {
	Submit(ctx context.Context, req transport.SubmitQuestionnaireRequest) (transport.SubmitQuestionnaireResponse, error)
	Options() transport.QuestionnaireOptionsResponse
}

// PublicHandler handles the unauthenticated questionnaire endpoints.
type PublicHandler struct {
	intake IntakeService
}

func NewPublicHandler(intake IntakeService) *PublicHandler {
	return &PublicHandler{intake: intake}
}

// RegisterRoutes registers the questionnaire routes. Submissions go through
// the limited group.
func (h *PublicHandler) RegisterRoutes(open, limited *gin.RouterGroup) {
	open.GET("", h.Options)
	limited.POST("", h.Submit)
}

// Submit creates a lead. Validation happens in the intake service so every
// violation is reported together.
func (h *PublicHandler) Submit(c *gin.Context) {
	var req transport.SubmitQuestionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, []apperr.FieldViolation{bindViolation(err)})
		return
	}

	resp, err := h.intake.Submit(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

// Options doubles as the questionnaire health check.
func (h *PublicHandler) Options(c *gin.Context) {
	opts := h.intake.Options()
	httpkit.OK(c, gin.H{
		"status":  "ok",
		"budgets": opts.Budgets,
		"timings": opts.Timings,
	})
}

func bindViolation(err error) apperr.FieldViolation {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.FieldViolation{Field: typeErr.Field, Message: "has the wrong type"}
	}
	return apperr.FieldViolation{Field: "body", Message: "must be a valid JSON object"}
}
