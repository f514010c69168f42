// Package materials provides raw-material bookkeeping for production runs:
// the unit conversion table, the bill of materials, and the ledger that
// deducts consumption from raw-material stock.
package materials

import (
	"github.com/shopspring/decimal"
)

// StorageUnit is the physical container a raw material is withdrawn in.
type StorageUnit string

const (
	UnitBox  StorageUnit = "box"
	UnitPack StorageUnit = "pack"
	UnitBag  StorageUnit = "bag"
	UnitRoll StorageUnit = "roll"
)

// Key identifies a raw material row (material + packaging variant).
type Key struct {
	Material string
	Variant  string
}

func (k Key) String() string {
	return k.Material + "/" + k.Variant
}

// Conversion is the number of pieces held by one storage unit of a material.
type Conversion struct {
	Key
	PiecesPerUnit decimal.Decimal
	Unit          StorageUnit
}

// StorageUnits converts a piece count into whole storage units, rounding up:
// a started box is a withdrawn box.
func (c Conversion) StorageUnits(pieces int64) int64 {
	if pieces <= 0 || !c.PiecesPerUnit.IsPositive() {
		return 0
	}
	return decimal.NewFromInt(pieces).Div(c.PiecesPerUnit).Ceil().IntPart()
}

// ConversionTable maps material/variant to its pieces-per-storage-unit ratio.
type ConversionTable struct {
	entries map[Key]Conversion
}

// NewConversionTable builds a table from the given conversions.
// Later entries override earlier ones with the same key.
func NewConversionTable(conversions ...Conversion) *ConversionTable {
	t := &ConversionTable{entries: make(map[Key]Conversion, len(conversions))}
	for _, c := range conversions {
		t.entries[c.Key] = c
	}
	return t
}

// Lookup returns the conversion for a material/variant.
func (t *ConversionTable) Lookup(k Key) (Conversion, bool) {
	c, ok := t.entries[k]
	return c, ok
}

func ratio(material, variant, pieces string, unit StorageUnit) Conversion {
	return Conversion{
		Key:           Key{Material: material, Variant: variant},
		PiecesPerUnit: decimal.RequireFromString(pieces),
		Unit:          unit,
	}
}

// DefaultConversionTable returns the plant's packaging ratios.
func DefaultConversionTable() *ConversionTable {
	return NewConversionTable(
		ratio(MaterialCaps, "28mm", "8500", UnitBox),

		ratio(MaterialLabels, "250ml", "250", UnitPack),
		ratio(MaterialLabels, "500ml", "200", UnitPack),
		ratio(MaterialLabels, "1000ml", "150", UnitPack),

		ratio(MaterialPreform, "12.5g", "2000", UnitBag),
		ratio(MaterialPreform, "19.4g", "1288.66", UnitBag),
		ratio(MaterialPreform, "28g", "900", UnitBag),

		ratio(MaterialShrink, "250ml", "700", UnitRoll),
		ratio(MaterialShrink, "500ml", "560", UnitRoll),
		ratio(MaterialShrink, "1000ml", "400", UnitRoll),
	)
}
