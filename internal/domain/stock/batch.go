package stock

import (
	"context"

	"aquaplant/internal/core/apperror"
	"aquaplant/pkg/logger"
)

// ItemStatus is the outcome of one item of a batch submission.
type ItemStatus string

const (
	ItemDone    ItemStatus = "done"
	ItemSkipped ItemStatus = "skipped"
	ItemFailed  ItemStatus = "failed"
)

// TransferItem is one line of a "Send to Godown" submission.
type TransferItem struct {
	ProductSN string `json:"productSn"`
	Quantity  int64  `json:"quantity"`
}

// TransferOutcome reports what happened to one TransferItem.
type TransferOutcome struct {
	TransferItem
	Status ItemStatus         `json:"status"`
	Result *TransferResult    `json:"result,omitempty"`
	Error  *apperror.AppError `json:"error,omitempty"`
}

// BatchResult is the per-item report of a batch transfer.
type BatchResult struct {
	Items     []TransferOutcome `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Skipped   int               `json:"skipped"`
}

// AllFailed reports whether every attempted item failed.
func (b *BatchResult) AllFailed() bool {
	return b.Failed > 0 && b.Succeeded == 0
}

// TransferBatch processes items one by one, each in its own transaction.
// Zero quantities are skipped. A failed item never affects items already
// committed; the caller learns which items failed from the result.
func (s *Service) TransferBatch(ctx context.Context, items []TransferItem) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, apperror.NewValidation("no items to transfer")
	}

	res := &BatchResult{Items: make([]TransferOutcome, 0, len(items))}
	for _, item := range items {
		out := TransferOutcome{TransferItem: item}

		if item.Quantity == 0 {
			out.Status = ItemSkipped
			res.Skipped++
			res.Items = append(res.Items, out)
			continue
		}

		result, err := s.Transfer(ctx, item.ProductSN, item.Quantity)
		if err != nil {
			appErr, ok := apperror.AsAppError(err)
			if !ok {
				appErr = apperror.NewInternal(err)
			}
			logger.Warn(ctx, "transfer item failed",
				"product_sn", item.ProductSN,
				"quantity", item.Quantity,
				"code", appErr.Code,
			)
			out.Status = ItemFailed
			out.Error = appErr
			res.Failed++
		} else {
			out.Status = ItemDone
			out.Result = result
			res.Succeeded++
		}
		res.Items = append(res.Items, out)
	}

	return res, nil
}
