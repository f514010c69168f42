package handlers

import (
	"github.com/gin-gonic/gin"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/domain/production"
	"aquaplant/internal/infrastructure/http/v1/dto"
)

// ProductionHandler handles the "Add Production" form and daily reports.
type ProductionHandler struct {
	*BaseHandler
	service *production.Service
}

// NewProductionHandler creates a new production handler.
func NewProductionHandler(base *BaseHandler, service *production.Service) *ProductionHandler {
	return &ProductionHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Submit handles POST /production
func (h *ProductionHandler) Submit(c *gin.Context) {
	var req dto.BatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.service.Submit(c.Request.Context(), req.ToEntries())
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

// Daily handles GET /production/daily?date=YYYY-MM-DD
// Without a date the current business day is reported.
func (h *ProductionHandler) Daily(c *gin.Context) {
	day := h.service.Today()
	if date := c.Query("date"); date != "" {
		parsed, err := h.service.ParseDay(date)
		if err != nil {
			h.Error(c, err)
			return
		}
		day = parsed
	}

	rows, err := h.service.Daily(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewDailyReport(day, rows))
}

// Plan handles POST /production/plan
func (h *ProductionHandler) Plan(c *gin.Context) {
	var req dto.PlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	report, err := h.service.Plan(c.Request.Context(), req.ProductSN, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}
