package dto

import (
	"time"

	"aquaplant/internal/core/id"
	"aquaplant/internal/domain/materials"
	"aquaplant/internal/domain/stock"
)

// --- Response DTOs for the stock ledgers ---

// StockRowResponse represents a stock row in API responses.
type StockRowResponse struct {
	ProductID     string     `json:"productId,omitempty"`
	ProductSN     string     `json:"productSn"`
	ProductName   string     `json:"productName"`
	Quantity      int64      `json:"quantity"`
	Version       int        `json:"version"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty"`
}

// FromStockRow converts a stock row to its response DTO.
func FromStockRow(r stock.Row) StockRowResponse {
	// Placeholder rows have never been written.
	var updated *time.Time
	if !r.UpdatedAt.IsZero() {
		val := r.UpdatedAt
		updated = &val
	}
	return StockRowResponse{
		ProductID:     optionalID(r.ProductID),
		ProductSN:     r.ProductSN,
		ProductName:   r.ProductName,
		Quantity:      r.Quantity,
		Version:       r.Version,
		LastUpdatedAt: updated,
	}
}

// FromStockRows converts a slice of stock rows.
func FromStockRows(rows []stock.Row) []StockRowResponse {
	out := make([]StockRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromStockRow(r))
	}
	return out
}

// MaterialResponse represents a raw material row in API responses.
type MaterialResponse struct {
	Material          string `json:"material"`
	Variant           string `json:"variant"`
	AvailableQuantity int64  `json:"availableQuantity"`
	ActualCount       *int64 `json:"actualCount,omitempty"`
	Unit              string `json:"unit,omitempty"`
	PiecesPerUnit     string `json:"piecesPerUnit,omitempty"`
	Version           int    `json:"version"`
}

// FromRawMaterial converts a raw material row, annotating it with its
// storage unit when the conversion table knows the material.
func FromRawMaterial(m materials.RawMaterial, conversions *materials.ConversionTable) MaterialResponse {
	resp := MaterialResponse{
		Material:          m.Material,
		Variant:           m.Variant,
		AvailableQuantity: m.AvailableQuantity,
		ActualCount:       m.ActualCount,
		Version:           m.Version,
	}
	if conversions != nil {
		if conv, ok := conversions.Lookup(m.Key()); ok {
			resp.Unit = string(conv.Unit)
			resp.PiecesPerUnit = conv.PiecesPerUnit.String()
		}
	}
	return resp
}

func optionalID(v id.ID) string {
	if id.IsNil(v) {
		return ""
	}
	return v.String()
}
