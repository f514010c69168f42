// Package stock provides the finished-goods ledgers for the two stock
// locations: crediting factory stock from production, transferring goods from
// the factory to the godown, and valuing what is on hand.
package stock

import (
	"context"
	"time"

	"aquaplant/internal/core/entity"
	"aquaplant/internal/core/id"
	"aquaplant/internal/domain/catalog"
)

// Location is a place where finished goods are held.
type Location string

const (
	LocationFactory Location = "factory"
	LocationGodown  Location = "godown"
)

// Valid reports whether l is a known location.
func (l Location) Valid() bool {
	return l == LocationFactory || l == LocationGodown
}

// ProductRef is the product identity copied onto stock rows.
type ProductRef struct {
	ID   id.ID  `json:"productId"`
	SN   string `json:"productSn"`
	Name string `json:"productName"`
}

// RefOf builds a ProductRef from a catalog product.
func RefOf(p *catalog.Product) ProductRef {
	return ProductRef{ID: p.ID, SN: p.SN, Name: p.Name}
}

// Row is the stock of one product at one location.
// At most one row exists per (product, location).
type Row struct {
	entity.BaseRow

	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductSN   string `db:"product_sn" json:"productSn"`
	ProductName string `db:"product_name" json:"productName"`
	Quantity    int64  `db:"quantity" json:"quantity"`
}

// Ref returns the product identity held by the row.
func (r *Row) Ref() ProductRef {
	return ProductRef{ID: r.ProductID, SN: r.ProductSN, Name: r.ProductName}
}

// Placeholder synthesizes an unsaved zero-quantity row for a product that has
// no stock yet at loc.
func Placeholder(ref ProductRef) *Row {
	return &Row{
		ProductID:   ref.ID,
		ProductSN:   ref.SN,
		ProductName: ref.Name,
	}
}

// Repository persists stock rows of both locations.
type Repository interface {
	// Find returns the row for a product SN or nil when none exists.
	Find(ctx context.Context, loc Location, productSN string) (*Row, error)

	// FindForUpdate is Find with a row lock held until the transaction ends.
	FindForUpdate(ctx context.Context, loc Location, productSN string) (*Row, error)

	// Increment adds qty to the product's row, creating it when absent.
	// Implementations must do this as one upsert keyed on product SN.
	Increment(ctx context.Context, loc Location, ref ProductRef, qty int64, at time.Time) (*Row, error)

	// Decrement subtracts qty from an existing row. It must never drive the
	// quantity negative; an INSUFFICIENT_STOCK error is returned instead.
	Decrement(ctx context.Context, loc Location, productSN string, qty int64, at time.Time) (*Row, error)

	// List returns all rows at loc ordered by product SN.
	List(ctx context.Context, loc Location) ([]Row, error)
}

// JournalEntry is one movement recorded in the audit journal.
// ID and At are assigned when the entry is recorded.
type JournalEntry struct {
	ID        id.ID          `json:"id"`
	Action    string         `json:"action"`
	ProductID id.ID          `json:"productId"`
	ProductSN string         `json:"productSn"`
	Quantity  int64          `json:"quantity"`
	Changes   map[string]any `json:"changes,omitempty"`
	At        time.Time      `json:"at"`
}

// Journal records ledger movements for later reconciliation.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
}

// JournalReader lists recorded movements, newest first. An empty productSN
// matches every product.
type JournalReader interface {
	History(ctx context.Context, productSN string, limit int) ([]JournalEntry, error)
}

// NopJournal discards entries.
type NopJournal struct{}

// Record implements Journal.
func (NopJournal) Record(context.Context, JournalEntry) error { return nil }
