// Package production records daily production runs and drives the production
// workflow: record the day's output, deduct raw materials, credit factory stock.
package production

import (
	"context"

	"aquaplant/internal/core/entity"
	"aquaplant/internal/core/id"
	"aquaplant/internal/core/types"
	"aquaplant/internal/domain/stock"
)

// DailyProduction is the output of one product on one calendar day.
// The day is the calendar day of CreatedAt; there is no separate date column.
type DailyProduction struct {
	entity.BaseRow

	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductSN   string `db:"product_sn" json:"productSn"`
	ProductName string `db:"product_name" json:"productName"`
	Quantity    int64  `db:"quantity" json:"quantity"`
}

// Repository persists daily production rows.
type Repository interface {
	// LockProduct serializes production submissions for one product until
	// the surrounding transaction ends.
	LockProduct(ctx context.Context, productSN string) error

	// FindForDay returns the product's row created within day, or nil.
	FindForDay(ctx context.Context, productSN string, day types.DayWindow) (*DailyProduction, error)

	// Insert stores a new row.
	Insert(ctx context.Context, row *DailyProduction) error

	// UpdateQuantity writes quantity, version and updated_at of an existing row.
	UpdateQuantity(ctx context.Context, row *DailyProduction) error

	// ListForDay returns all rows created within day ordered by product SN.
	ListForDay(ctx context.Context, day types.DayWindow) ([]DailyProduction, error)
}

// Entry is one line of an "Add Production" submission.
type Entry struct {
	ProductSN string `json:"productSn"`
	Quantity  int64  `json:"quantity"`
}

// newRow creates an unsaved row for a product.
func newRow(ref stock.ProductRef, qty int64, base entity.BaseRow) *DailyProduction {
	return &DailyProduction{
		BaseRow:     base,
		ProductID:   ref.ID,
		ProductSN:   ref.SN,
		ProductName: ref.Name,
		Quantity:    qty,
	}
}
