package production

import (
	"context"
	"time"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/core/tx"
	"aquaplant/internal/core/types"
	"aquaplant/internal/domain/catalog"
	"aquaplant/internal/domain/materials"
	"aquaplant/internal/domain/stock"
	"aquaplant/pkg/logger"
)

// Service runs production submissions.
type Service struct {
	recorder  *Recorder
	repo      Repository
	products  catalog.Repository
	stock     *stock.Service
	materials *materials.Ledger
	txm       tx.Manager
	journal   stock.Journal
	now       func() time.Time
}

// Config wires the production service.
type Config struct {
	Repo      Repository
	Products  catalog.Repository
	Stock     *stock.Service
	Materials *materials.Ledger
	TxManager tx.Manager
	Journal   stock.Journal
	Location  *time.Location

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewService creates a production service.
func NewService(cfg Config) *Service {
	journal := cfg.Journal
	if journal == nil {
		journal = stock.NopJournal{}
	}
	txm := cfg.TxManager
	if txm == nil {
		txm = tx.Nop{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		recorder:  NewRecorder(cfg.Repo, cfg.Location),
		repo:      cfg.Repo,
		products:  cfg.Products,
		stock:     cfg.Stock,
		materials: cfg.Materials,
		txm:       txm,
		journal:   journal,
		now:       clock,
	}
}

// ItemReport is the result of one committed production entry.
type ItemReport struct {
	Production *DailyProduction      `json:"production"`
	Factory    *stock.Row            `json:"factory"`
	Family     catalog.Family        `json:"family,omitempty"`
	Deductions []materials.Deduction `json:"deductions"`
}

// Record runs the full workflow for one product: record the day's output,
// deduct raw materials, credit factory stock. The three steps commit together.
func (s *Service) Record(ctx context.Context, productSN string, qty int64) (*ItemReport, error) {
	if !types.QuantityInRange(qty) {
		return nil, apperror.NewQuantityOutOfRange(qty, types.MaxQuantity).
			WithDetail("product_sn", productSN)
	}

	snapshot, err := s.stock.Resolve(ctx, productSN)
	if err != nil {
		return nil, err
	}
	family, err := s.familyOf(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	ref := snapshot.Ref()

	report := &ItemReport{Family: family}
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockProduct(ctx, productSN); err != nil {
			return apperror.Store(err)
		}

		now := s.now()
		report.Production, err = s.recorder.Record(ctx, ref, qty, now)
		if err != nil {
			return err
		}

		report.Deductions, err = s.materials.DeductForProduction(ctx, family, qty)
		if err != nil {
			return err
		}

		report.Factory, err = s.stock.CreditFactory(ctx, ref, qty)
		if err != nil {
			return err
		}

		return apperror.Store(s.journal.Record(ctx, stock.JournalEntry{
			Action:    "production",
			ProductID: ref.ID,
			ProductSN: ref.SN,
			Quantity:  qty,
			Changes: map[string]any{
				"daily_quantity":   report.Production.Quantity,
				"factory_quantity": report.Factory.Quantity,
				"deductions":       report.Deductions,
			},
		}))
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// familyOf prefers the catalog's family tag and falls back to the stock row's
// product name for products the catalog no longer knows.
func (s *Service) familyOf(ctx context.Context, row *stock.Row) (catalog.Family, error) {
	p, err := s.products.GetBySN(ctx, row.ProductSN)
	if err != nil {
		if apperror.HasCode(err, apperror.CodeProductNotFound) {
			return catalog.FamilyFromName(row.ProductName), nil
		}
		return catalog.FamilyNone, apperror.Store(err)
	}
	return p.ResolveFamily(), nil
}

// EntryOutcome reports what happened to one Entry.
type EntryOutcome struct {
	Entry
	Status stock.ItemStatus   `json:"status"`
	Report *ItemReport        `json:"report,omitempty"`
	Error  *apperror.AppError `json:"error,omitempty"`
}

// SubmissionResult is the per-item report of an "Add Production" submission.
type SubmissionResult struct {
	Items     []EntryOutcome `json:"items"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Skipped   int            `json:"skipped"`
}

// AllFailed reports whether every attempted entry failed.
func (r *SubmissionResult) AllFailed() bool {
	return r.Failed > 0 && r.Succeeded == 0
}

// Submit processes entries in order. Zero quantities are skipped; a failing
// entry is reported and does not undo entries already committed.
func (s *Service) Submit(ctx context.Context, entries []Entry) (*SubmissionResult, error) {
	if len(entries) == 0 {
		return nil, apperror.NewValidation("no production entries submitted")
	}

	res := &SubmissionResult{Items: make([]EntryOutcome, 0, len(entries))}
	for _, e := range entries {
		out := EntryOutcome{Entry: e}

		if e.Quantity == 0 {
			out.Status = stock.ItemSkipped
			res.Skipped++
			res.Items = append(res.Items, out)
			continue
		}

		report, err := s.Record(ctx, e.ProductSN, e.Quantity)
		if err != nil {
			appErr, ok := apperror.AsAppError(err)
			if !ok {
				appErr = apperror.NewInternal(err)
			}
			logger.Warn(ctx, "production entry failed",
				"product_sn", e.ProductSN,
				"quantity", e.Quantity,
				"code", appErr.Code,
			)
			out.Status = stock.ItemFailed
			out.Error = appErr
			res.Failed++
		} else {
			out.Status = stock.ItemDone
			out.Report = report
			res.Succeeded++
		}
		res.Items = append(res.Items, out)
	}

	logger.Info(ctx, "production submission processed",
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"skipped", res.Skipped,
	)
	return res, nil
}

// Daily returns the production rows of one calendar day.
func (s *Service) Daily(ctx context.Context, day types.DayWindow) ([]DailyProduction, error) {
	rows, err := s.repo.ListForDay(ctx, day)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return rows, nil
}

// Today returns the day window of the current time in the business time zone.
func (s *Service) Today() types.DayWindow {
	return s.recorder.Day(s.now())
}

// ParseDay parses a YYYY-MM-DD date in the business time zone.
func (s *Service) ParseDay(date string) (types.DayWindow, error) {
	day, err := types.ParseDay(date, s.recorder.loc)
	if err != nil {
		return types.DayWindow{}, apperror.NewValidation("invalid date, expected YYYY-MM-DD").
			WithDetail("date", date)
	}
	return day, nil
}

// PlanReport previews the raw materials a production run would consume.
type PlanReport struct {
	ProductSN    string                  `json:"productSn"`
	ProductName  string                  `json:"productName"`
	Family       catalog.Family          `json:"family,omitempty"`
	Quantity     int64                   `json:"quantity"`
	Requirements []materials.Requirement `json:"requirements"`
}

// Plan computes the requirements of producing qty cases without changing anything.
func (s *Service) Plan(ctx context.Context, productSN string, qty int64) (*PlanReport, error) {
	if !types.QuantityInRange(qty) {
		return nil, apperror.NewQuantityOutOfRange(qty, types.MaxQuantity).
			WithDetail("product_sn", productSN)
	}
	snapshot, err := s.stock.Resolve(ctx, productSN)
	if err != nil {
		return nil, err
	}
	family, err := s.familyOf(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	reqs, err := s.materials.Plan(family, qty)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []materials.Requirement{}
	}
	return &PlanReport{
		ProductSN:    snapshot.ProductSN,
		ProductName:  snapshot.ProductName,
		Family:       family,
		Quantity:     qty,
		Requirements: reqs,
	}, nil
}
