package dto

import "aquaplant/internal/domain/stock"

// ToTransferItems converts the form lines into godown transfer items.
func (r *BatchRequest) ToTransferItems() []stock.TransferItem {
	items := make([]stock.TransferItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, stock.TransferItem{ProductSN: it.ProductSN, Quantity: it.Quantity})
	}
	return items
}
