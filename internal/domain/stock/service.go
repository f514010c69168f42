package stock

import (
	"context"
	"fmt"
	"time"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/core/tx"
	"aquaplant/internal/core/types"
	"aquaplant/internal/domain/catalog"
	"aquaplant/pkg/logger"
)

// Service provides the factory and godown ledgers.
type Service struct {
	repo     Repository
	products catalog.Repository
	txm      tx.Manager
	journal  Journal
	now      func() time.Time
}

// NewService creates a new stock service.
func NewService(repo Repository, products catalog.Repository, txm tx.Manager, journal Journal) *Service {
	if journal == nil {
		journal = NopJournal{}
	}
	return &Service{
		repo:     repo,
		products: products,
		txm:      txm,
		journal:  journal,
		now:      time.Now,
	}
}

// Resolve finds the product identity for a serial number: the factory stock
// snapshot first, then the catalog. The returned row is a zero-quantity
// placeholder when the product has no factory stock yet.
func (s *Service) Resolve(ctx context.Context, productSN string) (*Row, error) {
	row, err := s.repo.Find(ctx, LocationFactory, productSN)
	if err != nil {
		return nil, apperror.Store(err)
	}
	if row != nil {
		return row, nil
	}

	p, err := s.products.GetBySN(ctx, productSN)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return Placeholder(RefOf(p)), nil
}

// CreditFactory adds produced goods to factory stock. Factory stock has no upper bound.
func (s *Service) CreditFactory(ctx context.Context, ref ProductRef, qty int64) (*Row, error) {
	if !types.QuantityInRange(qty) {
		return nil, apperror.NewQuantityOutOfRange(qty, types.MaxQuantity).
			WithDetail("product_sn", ref.SN)
	}

	row, err := s.repo.Increment(ctx, LocationFactory, ref, qty, s.now())
	if err != nil {
		return nil, apperror.Store(err)
	}

	logger.Info(ctx, "factory stock credited",
		"product_sn", ref.SN,
		"quantity", qty,
		"balance", row.Quantity,
	)
	return row, nil
}

// TransferResult holds both sides of a godown transfer after it committed.
type TransferResult struct {
	Factory *Row `json:"factory"`
	Godown  *Row `json:"godown"`
}

// Transfer moves qty of a product from factory stock to godown stock.
// Either both sides change or neither does.
func (s *Service) Transfer(ctx context.Context, productSN string, qty int64) (*TransferResult, error) {
	if !types.QuantityInRange(qty) {
		return nil, apperror.NewQuantityOutOfRange(qty, types.MaxQuantity).
			WithDetail("product_sn", productSN)
	}

	var result TransferResult
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		factory, err := s.repo.FindForUpdate(ctx, LocationFactory, productSN)
		if err != nil {
			return apperror.Store(err)
		}
		if factory == nil {
			p, err := s.products.GetBySN(ctx, productSN)
			if err != nil {
				return apperror.Store(err)
			}
			return apperror.NewInsufficientStock(p.Name, qty, 0).
				WithDetail("product_sn", productSN)
		}
		if factory.Quantity < qty {
			return apperror.NewInsufficientStock(factory.ProductName, qty, factory.Quantity).
				WithDetail("product_sn", productSN)
		}

		now := s.now()
		result.Factory, err = s.repo.Decrement(ctx, LocationFactory, productSN, qty, now)
		if err != nil {
			return apperror.Store(err)
		}
		result.Godown, err = s.repo.Increment(ctx, LocationGodown, factory.Ref(), qty, now)
		if err != nil {
			return apperror.Store(err)
		}

		return apperror.Store(s.journal.Record(ctx, JournalEntry{
			Action:    "godown_transfer",
			ProductID: factory.ProductID,
			ProductSN: productSN,
			Quantity:  qty,
			Changes: map[string]any{
				"factory_quantity": result.Factory.Quantity,
				"godown_quantity":  result.Godown.Quantity,
			},
		}))
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "goods transferred to godown",
		"product_sn", productSN,
		"quantity", qty,
		"factory_balance", result.Factory.Quantity,
		"godown_balance", result.Godown.Quantity,
	)
	return &result, nil
}

// Snapshot returns all rows at a location.
func (s *Service) Snapshot(ctx context.Context, loc Location) ([]Row, error) {
	if !loc.Valid() {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown stock location %q", loc))
	}
	rows, err := s.repo.List(ctx, loc)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return rows, nil
}

// Valuation values factory and godown stock at their location prices.
func (s *Service) Valuation(ctx context.Context) (*ValuationReport, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, apperror.Store(err)
	}
	factory, err := s.Snapshot(ctx, LocationFactory)
	if err != nil {
		return nil, err
	}
	godown, err := s.Snapshot(ctx, LocationGodown)
	if err != nil {
		return nil, err
	}

	rows := Valuate(products, factory, godown)
	return &ValuationReport{Rows: rows, Summary: Summarize(rows)}, nil
}
