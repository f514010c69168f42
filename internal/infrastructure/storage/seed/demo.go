// Package seed holds the demo catalog and raw-material stock loaded by the
// seed tool (PostgreSQL) and by the server in memory mode.
package seed

import (
	"aquaplant/internal/core/types"
	"aquaplant/internal/domain/catalog"
	"aquaplant/internal/domain/materials"
	"aquaplant/internal/infrastructure/storage/memory"
)

// Products returns the demo product catalog. "Aqua 250ml Classic" carries no
// family tag and is resolved by its name.
func Products() []catalog.Product {
	return []catalog.Product{
		{
			SN: "AQ-250", Name: "Aqua 250ml Classic",
			FactoryPrice:  types.MustMoney("7.50"),
			GodownPrice:   types.MustMoney("8.00"),
			DeliveryPrice: types.MustMoney("9.00"),
		},
		{
			SN: "AQ-500", Name: "Aqua 500ml", Family: catalog.Family500ml,
			FactoryPrice:  types.MustMoney("10.00"),
			GodownPrice:   types.MustMoney("12.00"),
			DeliveryPrice: types.MustMoney("13.50"),
		},
		{
			SN: "AQ-1000", Name: "Aqua 1L", Family: catalog.Family1000ml,
			FactoryPrice:  types.MustMoney("18.50"),
			GodownPrice:   types.MustMoney("20.00"),
			DeliveryPrice: types.MustMoney("22.00"),
		},
		{
			SN: "AQ-JAR", Name: "Aqua Jar 20L",
			FactoryPrice:  types.MustMoney("60.00"),
			GodownPrice:   types.MustMoney("65.00"),
			DeliveryPrice: types.MustMoney("70.00"),
		},
	}
}

// Materials returns the opening raw-material stock, in storage units.
func Materials() []materials.RawMaterial {
	row := func(material, variant string, qty int64) materials.RawMaterial {
		return materials.RawMaterial{Material: material, Variant: variant, AvailableQuantity: qty}
	}
	return []materials.RawMaterial{
		row(materials.MaterialCaps, "28mm", 40),
		row(materials.MaterialLabels, "250ml", 60),
		row(materials.MaterialLabels, "500ml", 60),
		row(materials.MaterialLabels, "1000ml", 40),
		row(materials.MaterialPreform, "12.5g", 30),
		row(materials.MaterialPreform, "19.4g", 30),
		row(materials.MaterialPreform, "28g", 20),
		row(materials.MaterialShrink, "250ml", 12),
		row(materials.MaterialShrink, "500ml", 12),
		row(materials.MaterialShrink, "1000ml", 8),
	}
}

// Memory loads the demo data into an in-memory store.
func Memory(s *memory.Store) {
	for _, p := range Products() {
		s.Products().Put(p)
	}
	for _, m := range Materials() {
		s.Materials().Put(m)
	}
}
