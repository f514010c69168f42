package materials

import (
	"context"
	"time"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/core/types"
	"aquaplant/internal/domain/catalog"
	"aquaplant/pkg/logger"
)

// Requirement is the raw-material demand of a production run for one rule.
type Requirement struct {
	Key
	Unit           StorageUnit `json:"unit,omitempty"`
	PiecesConsumed int64       `json:"piecesConsumed"`
	StorageUnits   int64       `json:"storageUnits"`
	Convertible    bool        `json:"convertible"`
}

// DeductionStatus is the outcome of one rule.
type DeductionStatus string

const (
	// DeductionApplied means the full requirement was deducted.
	DeductionApplied DeductionStatus = "applied"
	// DeductionClamped means stock ran out and only the available quantity was deducted.
	DeductionClamped DeductionStatus = "clamped"
	// DeductionMissing means no raw material row exists for the rule.
	DeductionMissing DeductionStatus = "missing"
	// DeductionUnconvertible means the conversion table has no ratio for the rule.
	DeductionUnconvertible DeductionStatus = "unconvertible"
)

// Deduction reports what happened to one raw material.
type Deduction struct {
	Requirement
	Status          DeductionStatus `json:"status"`
	Applied         int64           `json:"applied"`
	AvailableBefore int64           `json:"availableBefore"`
	AvailableAfter  int64           `json:"availableAfter"`
	ActualCount     *int64          `json:"actualCount,omitempty"`
	Message         string          `json:"message,omitempty"`
}

// Shortfall is the part of the requirement that could not be deducted.
func (d Deduction) Shortfall() int64 {
	if d.Status != DeductionClamped {
		return 0
	}
	return d.StorageUnits - d.Applied
}

// Ledger deducts raw materials consumed by production.
type Ledger struct {
	repo        Repository
	bom         *BillOfMaterials
	conversions *ConversionTable
	now         func() time.Time
}

// NewLedger creates a raw material ledger.
func NewLedger(repo Repository, bom *BillOfMaterials, conversions *ConversionTable) *Ledger {
	return &Ledger{
		repo:        repo,
		bom:         bom,
		conversions: conversions,
		now:         time.Now,
	}
}

// Plan computes the requirements of producing qty cases of a family without
// touching the store. Families without a recipe have no requirements.
func (l *Ledger) Plan(family catalog.Family, qty int64) ([]Requirement, error) {
	if !types.QuantityInRange(qty) {
		return nil, apperror.NewQuantityOutOfRange(qty, types.MaxQuantity)
	}
	recipe, ok := l.bom.Recipe(family)
	if !ok {
		return nil, nil
	}

	reqs := make([]Requirement, 0, len(recipe.Rules))
	for _, rule := range recipe.Rules {
		pieces, ok := rule.Pieces(qty)
		if !ok {
			return nil, apperror.NewQuantityOverflow(qty, rule.PiecesPerUnit).
				WithDetail("material", rule.Key.String())
		}
		req := Requirement{
			Key:            rule.Key,
			PiecesConsumed: pieces,
		}
		if conv, ok := l.conversions.Lookup(rule.Key); ok {
			req.Convertible = true
			req.Unit = conv.Unit
			req.StorageUnits = conv.StorageUnits(req.PiecesConsumed)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// DeductForProduction deducts the raw materials consumed by qty cases of family.
//
// Business gaps (missing row, missing ratio) are reported in the result and
// logged; they never fail the call. Only store errors abort.
func (l *Ledger) DeductForProduction(ctx context.Context, family catalog.Family, qty int64) ([]Deduction, error) {
	reqs, err := l.Plan(family, qty)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		logger.Debug(ctx, "no bill of materials for family", "family", family)
		return []Deduction{}, nil
	}

	deductions := make([]Deduction, 0, len(reqs))
	for _, req := range reqs {
		d, err := l.deduct(ctx, req)
		if err != nil {
			return nil, err
		}
		deductions = append(deductions, d)
	}

	return deductions, nil
}

func (l *Ledger) deduct(ctx context.Context, req Requirement) (Deduction, error) {
	d := Deduction{Requirement: req}

	if !req.Convertible {
		d.Status = DeductionUnconvertible
		d.Message = "no storage unit conversion for " + req.Key.String()
		logger.Warn(ctx, "raw material skipped: no conversion ratio",
			"material", req.Material,
			"variant", req.Variant,
		)
		return d, nil
	}

	m, err := l.repo.GetForUpdate(ctx, req.Key)
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeMaterialNotFound {
			d.Status = DeductionMissing
			d.Message = appErr.Message
			logger.Warn(ctx, "raw material skipped: row not found",
				"material", req.Material,
				"variant", req.Variant,
				"pieces", req.PiecesConsumed,
			)
			return d, nil
		}
		return d, apperror.Store(err)
	}

	d.AvailableBefore = m.AvailableQuantity
	d.Applied = min(req.StorageUnits, m.AvailableQuantity)
	d.Status = DeductionApplied
	if d.Applied < req.StorageUnits {
		d.Status = DeductionClamped
	}

	m.AvailableQuantity -= d.Applied
	// The piece counter has its own floor and is reduced by the unclamped demand.
	if m.ActualCount != nil {
		count := max(*m.ActualCount-req.PiecesConsumed, 0)
		m.ActualCount = &count
		d.ActualCount = &count
	}
	m.Touch(l.now())

	if err := l.repo.UpdateQuantities(ctx, m); err != nil {
		return d, apperror.Store(err)
	}
	d.AvailableAfter = m.AvailableQuantity

	if d.Status == DeductionClamped {
		logger.Warn(ctx, "raw material deduction clamped at zero",
			"material", req.Material,
			"variant", req.Variant,
			"required", req.StorageUnits,
			"applied", d.Applied,
		)
	}

	return d, nil
}

// List returns all raw material rows.
func (l *Ledger) List(ctx context.Context) ([]RawMaterial, error) {
	rows, err := l.repo.List(ctx)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return rows, nil
}

// Conversions returns the conversion table used for storage units.
func (l *Ledger) Conversions() *ConversionTable {
	return l.conversions
}
