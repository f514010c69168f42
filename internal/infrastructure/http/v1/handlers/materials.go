package handlers

import (
	"github.com/gin-gonic/gin"

	"aquaplant/internal/domain/materials"
	"aquaplant/internal/infrastructure/http/v1/dto"
)

// MaterialsHandler exposes raw material stock.
type MaterialsHandler struct {
	*BaseHandler
	ledger *materials.Ledger
}

// NewMaterialsHandler creates a new materials handler.
func NewMaterialsHandler(base *BaseHandler, ledger *materials.Ledger) *MaterialsHandler {
	return &MaterialsHandler{
		BaseHandler: base,
		ledger:      ledger,
	}
}

// List handles GET /materials
func (h *MaterialsHandler) List(c *gin.Context) {
	rows, err := h.ledger.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	conversions := h.ledger.Conversions()
	items := make([]dto.MaterialResponse, 0, len(rows))
	for _, m := range rows {
		items = append(items, dto.FromRawMaterial(m, conversions))
	}
	h.OK(c, dto.NewListResponse(items))
}
