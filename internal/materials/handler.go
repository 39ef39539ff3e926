package materials

import (
	"net/http"

	"filmdecks_backend/platform/httpkit"
	"filmdecks_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) PresignUpload(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Invalid request", nil)
		return
	}
	if violations := h.val.Violations(req); len(violations) > 0 {
		httpkit.Error(c, http.StatusBadRequest, "Validation failed", violations)
		return
	}

	resp, err := h.svc.PresignUpload(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
