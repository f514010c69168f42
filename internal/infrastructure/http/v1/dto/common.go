// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// ListResponse wraps list results.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewListResponse creates a list response; a nil slice renders as [].
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

// LineItem is one line of a batch form (production or godown transfer).
type LineItem struct {
	ProductSN string `json:"productSn" binding:"required"`
	Quantity  int64  `json:"quantity"`
}

// BatchRequest is the body of the "Add Production" and "Send to Godown" forms.
type BatchRequest struct {
	Items []LineItem `json:"items" binding:"required,dive"`
}
