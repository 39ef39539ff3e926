package materials

import (
	apphttp "filmdecks_backend/internal/http"
	"filmdecks_backend/platform/validator"
)

// Module mounts the materials upload endpoint.
type Module struct {
	handler *Handler
}

// NewModule creates the module. A nil uploader keeps the route mounted but
// answering 503.
func NewModule(uploader Uploader, bucket string, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(New(uploader, bucket), val)}
}

func (m *Module) Name() string {
	return "materials"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.POST("/questionnaire/uploads", m.handler.PresignUpload)
}

var _ apphttp.Module = (*Module)(nil)
