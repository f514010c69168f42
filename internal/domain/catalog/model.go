// Package catalog provides the finished-product catalog as seen by the stock ledgers.
// Product management itself (create, rename, reprice) is handled elsewhere;
// this package only reads products.
package catalog

import (
	"context"
	"strings"
	"time"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/core/id"
	"aquaplant/internal/core/types"
)

// Family is the bill-of-materials class a finished product belongs to.
type Family string

const (
	FamilyNone   Family = ""
	Family250ml  Family = "250ml"
	Family500ml  Family = "500ml"
	Family1000ml Family = "1000ml"
)

// Valid reports whether f is a known family tag (FamilyNone included).
func (f Family) Valid() bool {
	switch f {
	case FamilyNone, Family250ml, Family500ml, Family1000ml:
		return true
	}
	return false
}

// familyMarkers are the legacy name markers, matched case-sensitively in order.
var familyMarkers = []struct {
	marker string
	family Family
}{
	{"250ml", Family250ml},
	{"500ml", Family500ml},
	{"1000ml", Family1000ml},
	{"1L", Family1000ml},
}

// FamilyFromName derives the family from a product display name.
// Used for legacy products that carry no explicit family tag.
func FamilyFromName(name string) Family {
	for _, m := range familyMarkers {
		if strings.Contains(name, m.marker) {
			return m.family
		}
	}
	return FamilyNone
}

// Product is a finished good.
type Product struct {
	ID   id.ID  `db:"id" json:"id"`
	SN   string `db:"sn" json:"sn"`
	Name string `db:"name" json:"name"`

	// Family is the explicit BOM tag; empty for legacy rows.
	Family Family `db:"family" json:"family,omitempty"`

	FactoryPrice  types.Money `db:"factory_price" json:"factoryPrice"`
	GodownPrice   types.Money `db:"godown_price" json:"godownPrice"`
	DeliveryPrice types.Money `db:"delivery_price" json:"deliveryPrice"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ResolveFamily returns the explicit family tag, falling back to the name markers.
func (p *Product) ResolveFamily() Family {
	if p.Family != FamilyNone {
		return p.Family
	}
	return FamilyFromName(p.Name)
}

// Validate checks the invariants the ledgers rely on.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.SN) == "" {
		return apperror.NewValidation("product serial number is required").
			WithDetail("field", "sn")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("product name is required").
			WithDetail("field", "name")
	}
	if !p.Family.Valid() {
		return apperror.NewValidation("unknown product family").
			WithDetail("field", "family").
			WithDetail("value", string(p.Family))
	}
	return nil
}

// Repository is the read side of the product catalog.
type Repository interface {
	// GetBySN returns the product with the given serial number or a PRODUCT_NOT_FOUND error.
	GetBySN(ctx context.Context, sn string) (*Product, error)

	// GetByID returns the product with the given ID or a PRODUCT_NOT_FOUND error.
	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	// List returns all products ordered by serial number.
	List(ctx context.Context) ([]Product, error)
}
