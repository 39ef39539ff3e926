package handler

import (
	"context"
	"net/http"

	"filmdecks_backend/internal/leads/domain"
	"filmdecks_backend/internal/leads/transport"
	"filmdecks_backend/platform/apperr"
	"filmdecks_backend/platform/httpkit"
	"filmdecks_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ManagementService is the admin read side.
type ManagementService interface {
	List(ctx context.Context) (transport.LeadListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (transport.LeadDetailResponse, error)
	Stats(ctx context.Context) (transport.LeadStatsResponse, error)
}

// WorkflowService changes operator statuses.
type WorkflowService interface {
	SetStatus(ctx context.Context, id uuid.UUID, status string) (domain.Lead, error)
}

// Handler serves the admin lead endpoints.
type Handler struct {
	mgmt     ManagementService
	workflow WorkflowService
	val      *validator.Validator
}

const (
	msgInvalidRequest   = "Invalid request"
	msgValidationFailed = "Validation failed"
)

func New(mgmt ManagementService, workflow WorkflowService, val *validator.Validator) *Handler {
	return &Handler{mgmt: mgmt, workflow: workflow, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/stats", h.Stats)
	rg.POST("/update-status", h.UpdateStatus)
	rg.GET("/:id", h.GetByID)
}

func (h *Handler) List(c *gin.Context) {
	resp, err := h.mgmt.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Stats(c *gin.Context) {
	resp, err := h.mgmt.Stats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}

	resp, err := h.mgmt.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, []apperr.FieldViolation{bindViolation(err)})
		return
	}
	if violations := h.val.Violations(req); len(violations) > 0 {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, violations)
		return
	}

	// Format already checked by the uuid tag.
	leadID := uuid.MustParse(req.LeadID)

	lead, err := h.workflow.SetStatus(c.Request.Context(), leadID, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.UpdateStatusResponse{
		Success: true,
		Lead:    transport.StatusSummary{ID: lead.ID, Status: string(lead.Status)},
	})
}
