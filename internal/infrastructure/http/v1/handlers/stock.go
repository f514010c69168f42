package handlers

import (
	"github.com/gin-gonic/gin"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/domain/stock"
	"aquaplant/internal/infrastructure/http/v1/dto"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// StockHandler handles HTTP requests for the factory and godown ledgers.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
	journal stock.JournalReader
}

// NewStockHandler creates a new stock handler. journal may be nil, in which
// case the movements endpoint reports an empty history.
func NewStockHandler(base *BaseHandler, service *stock.Service, journal stock.JournalReader) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
		journal:     journal,
	}
}

// Factory handles GET /stock/factory
func (h *StockHandler) Factory(c *gin.Context) {
	h.list(c, stock.LocationFactory)
}

// Godown handles GET /stock/godown
func (h *StockHandler) Godown(c *gin.Context) {
	h.list(c, stock.LocationGodown)
}

func (h *StockHandler) list(c *gin.Context, loc stock.Location) {
	rows, err := h.service.Snapshot(c.Request.Context(), loc)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(dto.FromStockRows(rows)))
}

// Valuation handles GET /stock/valuation
func (h *StockHandler) Valuation(c *gin.Context) {
	report, err := h.service.Valuation(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Movements handles GET /stock/movements?productSn=&limit=
func (h *StockHandler) Movements(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", defaultMovementLimit)
	if limit <= 0 || limit > maxMovementLimit {
		h.Error(c, apperror.NewValidation("limit out of range").
			WithDetail("min", 1).
			WithDetail("max", maxMovementLimit))
		return
	}

	if h.journal == nil {
		h.OK(c, dto.NewListResponse[stock.JournalEntry](nil))
		return
	}

	entries, err := h.journal.History(c.Request.Context(), c.Query("productSn"), limit)
	if err != nil {
		h.Error(c, apperror.Store(err))
		return
	}
	h.OK(c, dto.NewListResponse(entries))
}
