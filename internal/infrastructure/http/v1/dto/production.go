package dto

import (
	"time"

	"aquaplant/internal/core/types"
	"aquaplant/internal/domain/production"
)

// ToEntries converts the form lines into production entries.
func (r *BatchRequest) ToEntries() []production.Entry {
	entries := make([]production.Entry, 0, len(r.Items))
	for _, it := range r.Items {
		entries = append(entries, production.Entry{ProductSN: it.ProductSN, Quantity: it.Quantity})
	}
	return entries
}

// PlanRequest asks for the raw materials a production run would consume.
type PlanRequest struct {
	ProductSN string `json:"productSn" binding:"required"`
	Quantity  int64  `json:"quantity"`
}

// DailyProductionResponse represents a daily production row in API responses.
type DailyProductionResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId,omitempty"`
	ProductSN   string    `json:"productSn"`
	ProductName string    `json:"productName"`
	Quantity    int64     `json:"quantity"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromDailyProduction converts a production row to its response DTO.
func FromDailyProduction(p production.DailyProduction) DailyProductionResponse {
	return DailyProductionResponse{
		ID:          p.ID.String(),
		ProductID:   optionalID(p.ProductID),
		ProductSN:   p.ProductSN,
		ProductName: p.ProductName,
		Quantity:    p.Quantity,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// DailyReportResponse lists the production of one calendar day.
type DailyReportResponse struct {
	Date  string                    `json:"date"`
	Total int64                     `json:"total"`
	Items []DailyProductionResponse `json:"items"`
}

// NewDailyReport builds the daily report; date is rendered in the business time zone.
func NewDailyReport(day types.DayWindow, rows []production.DailyProduction) DailyReportResponse {
	resp := DailyReportResponse{
		Date:  day.Start.Format(time.DateOnly),
		Items: make([]DailyProductionResponse, 0, len(rows)),
	}
	for _, r := range rows {
		resp.Total += r.Quantity
		resp.Items = append(resp.Items, FromDailyProduction(r))
	}
	return resp
}
