package materials

import (
	"aquaplant/internal/core/types"
	"aquaplant/internal/domain/catalog"
)

// Raw material names as stored in raw_materials.material.
const (
	MaterialCaps    = "Caps"
	MaterialLabels  = "Labels"
	MaterialPreform = "Preform"
	MaterialShrink  = "LD Shrink"
)

// Rule is one line of a recipe.
type Rule struct {
	Key

	// PiecesPerUnit is the number of pieces one produced case consumes.
	PiecesPerUnit int64

	// PerCase marks the case wrapping: one piece per case regardless of
	// how many bottles the case holds.
	PerCase bool
}

// Pieces returns the pieces consumed when producing qty cases, or false
// when the count does not fit in int64.
func (r Rule) Pieces(qty int64) (int64, bool) {
	if r.PerCase {
		return qty, true
	}
	return types.MulCount(qty, r.PiecesPerUnit)
}

// Recipe is the bill of materials of one product family.
type Recipe struct {
	Family         catalog.Family
	BottlesPerCase int64
	Rules          []Rule
}

// BillOfMaterials maps a product family to its recipe.
type BillOfMaterials struct {
	recipes map[catalog.Family]Recipe
}

// NewBillOfMaterials builds a BOM from recipes.
func NewBillOfMaterials(recipes ...Recipe) *BillOfMaterials {
	b := &BillOfMaterials{recipes: make(map[catalog.Family]Recipe, len(recipes))}
	for _, r := range recipes {
		b.recipes[r.Family] = r
	}
	return b
}

// Recipe returns the recipe for a family. Unknown families have none.
func (b *BillOfMaterials) Recipe(f catalog.Family) (Recipe, bool) {
	if f == catalog.FamilyNone {
		return Recipe{}, false
	}
	r, ok := b.recipes[f]
	return r, ok
}

func bottleRecipe(f catalog.Family, bottles int64, labelVariant, preformVariant string) Recipe {
	return Recipe{
		Family:         f,
		BottlesPerCase: bottles,
		Rules: []Rule{
			{Key: Key{MaterialCaps, "28mm"}, PiecesPerUnit: bottles},
			{Key: Key{MaterialLabels, labelVariant}, PiecesPerUnit: bottles},
			{Key: Key{MaterialPreform, preformVariant}, PiecesPerUnit: bottles},
			{Key: Key{MaterialShrink, string(f)}, PiecesPerUnit: 1, PerCase: true},
		},
	}
}

// DefaultBillOfMaterials returns the recipes for the plant's bottle sizes.
func DefaultBillOfMaterials() *BillOfMaterials {
	return NewBillOfMaterials(
		bottleRecipe(catalog.Family250ml, 30, "250ml", "12.5g"),
		bottleRecipe(catalog.Family500ml, 24, "500ml", "19.4g"),
		bottleRecipe(catalog.Family1000ml, 12, "1000ml", "28g"),
	)
}
