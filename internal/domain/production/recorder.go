package production

import (
	"context"
	"time"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/core/entity"
	"aquaplant/internal/core/types"
	"aquaplant/internal/domain/stock"
	"aquaplant/pkg/logger"
)

// Recorder keeps exactly one DailyProduction row per product per day.
type Recorder struct {
	repo Repository
	loc  *time.Location
}

// NewRecorder creates a recorder whose calendar days are evaluated in loc.
func NewRecorder(repo Repository, loc *time.Location) *Recorder {
	if loc == nil {
		loc = time.Local
	}
	return &Recorder{repo: repo, loc: loc}
}

// Day returns the calendar day containing t in the recorder's time zone.
func (r *Recorder) Day(t time.Time) types.DayWindow {
	return types.DayOf(t, r.loc)
}

// Record adds qty to today's row for the product, creating the row on the
// first submission of the day.
func (r *Recorder) Record(ctx context.Context, ref stock.ProductRef, qty int64, now time.Time) (*DailyProduction, error) {
	if !types.QuantityInRange(qty) {
		return nil, apperror.NewQuantityOutOfRange(qty, types.MaxQuantity).
			WithDetail("product_sn", ref.SN)
	}

	day := r.Day(now)
	existing, err := r.repo.FindForDay(ctx, ref.SN, day)
	if err != nil {
		return nil, apperror.Store(err)
	}

	if existing != nil {
		total, ok := types.AddQty(existing.Quantity, qty)
		if !ok {
			return nil, apperror.NewQuantityOverflow(existing.Quantity, qty).
				WithDetail("product_sn", ref.SN)
		}
		existing.Quantity = total
		existing.Touch(now)
		if err := r.repo.UpdateQuantity(ctx, existing); err != nil {
			return nil, apperror.Store(err)
		}
		logger.Info(ctx, "daily production accumulated",
			"product_sn", ref.SN,
			"added", qty,
			"quantity", existing.Quantity,
		)
		return existing, nil
	}

	row := newRow(ref, qty, entity.NewBaseRow(now))
	if err := r.repo.Insert(ctx, row); err != nil {
		return nil, apperror.Store(err)
	}
	logger.Info(ctx, "daily production recorded",
		"product_sn", ref.SN,
		"quantity", qty,
		"day", day.Start.Format(time.DateOnly),
	)
	return row, nil
}
