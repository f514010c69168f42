// Package entity provides the base fields shared by persisted ledger rows.
package entity

import (
	"time"

	"aquaplant/internal/core/id"
)

// BaseRow contains common fields for every ledger row (stock, production, materials).
type BaseRow struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Version is incremented on every update
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseRow creates a new BaseRow with generated ID and timestamps set to now.
func NewBaseRow(now time.Time) BaseRow {
	now = now.UTC()
	return BaseRow{
		ID:        id.New(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp and increments version.
func (b *BaseRow) Touch(now time.Time) {
	b.UpdatedAt = now.UTC()
	b.Version++
}

// IsNew reports whether the row has not been persisted yet.
func (b *BaseRow) IsNew() bool {
	return id.IsNil(b.ID)
}
