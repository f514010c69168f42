package stock

import (
	"sort"

	"aquaplant/internal/core/types"
	"aquaplant/internal/domain/catalog"
)

// ValuationRow is the combined stock and value of one product.
type ValuationRow struct {
	ProductSN     string      `json:"productSn"`
	ProductName   string      `json:"productName"`
	FactoryQty    int64       `json:"factoryQuantity"`
	GodownQty     int64       `json:"godownQuantity"`
	TotalQuantity int64       `json:"totalQuantity"`
	FactoryPrice  types.Money `json:"factoryPrice"`
	GodownPrice   types.Money `json:"godownPrice"`
	FactoryValue  types.Money `json:"factoryValue"`
	GodownValue   types.Money `json:"godownValue"`
	Value         types.Money `json:"value"`
}

// ValuationSummary totals a valuation.
type ValuationSummary struct {
	TotalQuantity int64       `json:"totalQuantity"`
	FactoryValue  types.Money `json:"factoryValue"`
	GodownValue   types.Money `json:"godownValue"`
	TotalValue    types.Money `json:"totalValue"`
}

// ValuationReport is what the valuation screen shows.
type ValuationReport struct {
	Rows    []ValuationRow   `json:"rows"`
	Summary ValuationSummary `json:"summary"`
}

// Valuate combines factory and godown rows per product. Each location is
// valued at its own unit price; a missing price counts as zero and a product
// absent from one location has zero quantity there.
func Valuate(products []catalog.Product, factory, godown []Row) []ValuationRow {
	prices := make(map[string]*catalog.Product, len(products))
	for i := range products {
		prices[products[i].SN] = &products[i]
	}

	bySN := make(map[string]*ValuationRow)
	get := func(r Row) *ValuationRow {
		v, ok := bySN[r.ProductSN]
		if !ok {
			v = &ValuationRow{ProductSN: r.ProductSN, ProductName: r.ProductName}
			bySN[r.ProductSN] = v
		}
		return v
	}
	for _, r := range factory {
		get(r).FactoryQty += r.Quantity
	}
	for _, r := range godown {
		get(r).GodownQty += r.Quantity
	}

	rows := make([]ValuationRow, 0, len(bySN))
	for sn, v := range bySN {
		v.FactoryPrice = types.Zero()
		v.GodownPrice = types.Zero()
		if p, ok := prices[sn]; ok {
			v.FactoryPrice = p.FactoryPrice
			v.GodownPrice = p.GodownPrice
			if p.Name != "" {
				v.ProductName = p.Name
			}
		}
		v.TotalQuantity = v.FactoryQty + v.GodownQty
		v.FactoryValue = types.MulQty(v.FactoryPrice, v.FactoryQty)
		v.GodownValue = types.MulQty(v.GodownPrice, v.GodownQty)
		v.Value = v.FactoryValue.Add(v.GodownValue)
		rows = append(rows, *v)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].ProductSN < rows[j].ProductSN })
	return rows
}

// Summarize totals valuation rows.
func Summarize(rows []ValuationRow) ValuationSummary {
	sum := ValuationSummary{
		FactoryValue: types.Zero(),
		GodownValue:  types.Zero(),
		TotalValue:   types.Zero(),
	}
	for _, r := range rows {
		sum.TotalQuantity += r.TotalQuantity
		sum.FactoryValue = sum.FactoryValue.Add(r.FactoryValue)
		sum.GodownValue = sum.GodownValue.Add(r.GodownValue)
		sum.TotalValue = sum.TotalValue.Add(r.Value)
	}
	return sum
}
