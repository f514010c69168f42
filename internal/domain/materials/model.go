package materials

import (
	"context"

	"aquaplant/internal/core/entity"
)

// RawMaterial is the stock row of one material/variant.
type RawMaterial struct {
	entity.BaseRow

	Material string `db:"material" json:"material"`
	Variant  string `db:"variant" json:"variant"`

	// AvailableQuantity is counted in storage units (boxes, bags, rolls).
	AvailableQuantity int64 `db:"available_quantity" json:"availableQuantity"`

	// ActualCount is the optional piece-level count.
	ActualCount *int64 `db:"actual_count" json:"actualCount,omitempty"`
}

// Key returns the material/variant key of the row.
func (m *RawMaterial) Key() Key {
	return Key{Material: m.Material, Variant: m.Variant}
}

// Repository persists raw material rows.
type Repository interface {
	// GetForUpdate returns the row with a lock held until the transaction ends.
	// Returns a MATERIAL_NOT_FOUND error when no row exists.
	GetForUpdate(ctx context.Context, key Key) (*RawMaterial, error)

	// UpdateQuantities writes available_quantity, actual_count, version and updated_at.
	UpdateQuantities(ctx context.Context, m *RawMaterial) error

	// List returns every raw material ordered by material and variant.
	List(ctx context.Context) ([]RawMaterial, error)
}
