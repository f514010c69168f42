package handlers

import (
	"github.com/gin-gonic/gin"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/domain/stock"
	"aquaplant/internal/infrastructure/http/v1/dto"
)

// TransferHandler handles the "Send to Godown" form.
type TransferHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(base *BaseHandler, service *stock.Service) *TransferHandler {
	return &TransferHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Submit handles POST /transfers
func (h *TransferHandler) Submit(c *gin.Context) {
	var req dto.BatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.service.TransferBatch(c.Request.Context(), req.ToTransferItems())
	if err != nil {
		h.Error(c, err)
		return
	}

	errs := make([]*apperror.AppError, 0, res.Failed)
	for _, it := range res.Items {
		errs = append(errs, it.Error)
	}
	h.respondBatch(c, res.AllFailed(), errs, res)
}
