// Package stock_repo provides the PostgreSQL factory and godown stock tables.
package stock_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/core/entity"
	"aquaplant/internal/domain/stock"
	"aquaplant/internal/infrastructure/storage/postgres"
)

var (
	stockColumns = postgres.ExtractDBColumns[stock.Row]()
	returning    = "RETURNING " + strings.Join(stockColumns, ", ")
)

// tables maps each location onto its table.
var tables = map[stock.Location]string{
	stock.LocationFactory: "factory_stock",
	stock.LocationGodown:  "godown_stock",
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a new stock repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func table(loc stock.Location) (string, error) {
	t, ok := tables[loc]
	if !ok {
		return "", apperror.NewValidation(fmt.Sprintf("unknown stock location %q", loc))
	}
	return t, nil
}

func (r *StockRepo) findQuery(loc stock.Location, sn string, forUpdate bool) (squirrel.SelectBuilder, error) {
	t, err := table(loc)
	if err != nil {
		return squirrel.SelectBuilder{}, err
	}
	q := r.builder.Select(stockColumns...).
		From(t).
		Where(squirrel.Eq{"product_sn": sn}).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	return q, nil
}

// Find returns the row for a product or nil.
func (r *StockRepo) Find(ctx context.Context, loc stock.Location, sn string) (*stock.Row, error) {
	return r.find(ctx, loc, sn, false)
}

// FindForUpdate locks the product's row until the transaction ends.
func (r *StockRepo) FindForUpdate(ctx context.Context, loc stock.Location, sn string) (*stock.Row, error) {
	return r.find(ctx, loc, sn, true)
}

func (r *StockRepo) find(ctx context.Context, loc stock.Location, sn string, forUpdate bool) (*stock.Row, error) {
	q, err := r.findQuery(loc, sn, forUpdate)
	if err != nil {
		return nil, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row stock.Row
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s row: %w", loc, err)
	}
	return &row, nil
}

func (r *StockRepo) incrementQuery(loc stock.Location, ref stock.ProductRef, qty int64, at time.Time) (squirrel.InsertBuilder, error) {
	t, err := table(loc)
	if err != nil {
		return squirrel.InsertBuilder{}, err
	}
	row := stock.Placeholder(ref)
	row.BaseRow = entity.NewBaseRow(at)
	row.Quantity = qty

	return r.builder.Insert(t).
		SetMap(postgres.StructToMap(row)).
		Suffix(fmt.Sprintf(
			"ON CONFLICT (product_sn) DO UPDATE SET quantity = %[1]s.quantity + EXCLUDED.quantity, version = %[1]s.version + 1, updated_at = EXCLUDED.updated_at",
			t)).
		Suffix(returning), nil
}

// Increment adds qty in one upsert, creating the row on first use.
func (r *StockRepo) Increment(ctx context.Context, loc stock.Location, ref stock.ProductRef, qty int64, at time.Time) (*stock.Row, error) {
	q, err := r.incrementQuery(loc, ref, qty, at)
	if err != nil {
		return nil, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert: %w", err)
	}

	var row stock.Row
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, args...); err != nil {
		return nil, fmt.Errorf("increment %s stock: %w", loc, postgres.ClassifyError(err))
	}
	return &row, nil
}

func (r *StockRepo) decrementQuery(loc stock.Location, sn string, qty int64, at time.Time) (squirrel.UpdateBuilder, error) {
	t, err := table(loc)
	if err != nil {
		return squirrel.UpdateBuilder{}, err
	}
	return r.builder.Update(t).
		Set("quantity", squirrel.Expr("quantity - ?", qty)).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", at.UTC()).
		Where(squirrel.Eq{"product_sn": sn}).
		Where(squirrel.GtOrEq{"quantity": qty}).
		Suffix(returning), nil
}

// Decrement subtracts qty only when enough stock is on hand.
func (r *StockRepo) Decrement(ctx context.Context, loc stock.Location, sn string, qty int64, at time.Time) (*stock.Row, error) {
	q, err := r.decrementQuery(loc, sn, qty, at)
	if err != nil {
		return nil, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	var row stock.Row
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, args...); err != nil {
		if !pgxscan.NotFound(err) {
			return nil, fmt.Errorf("decrement %s stock: %w", loc, postgres.ClassifyError(err))
		}
		current, findErr := r.Find(ctx, loc, sn)
		if findErr != nil {
			return nil, findErr
		}
		if current == nil {
			return nil, apperror.NewInsufficientStock(sn, qty, 0)
		}
		return nil, apperror.NewInsufficientStock(current.ProductName, qty, current.Quantity)
	}
	return &row, nil
}

// List returns all rows at loc ordered by product SN.
func (r *StockRepo) List(ctx context.Context, loc stock.Location) ([]stock.Row, error) {
	t, err := table(loc)
	if err != nil {
		return nil, err
	}
	sql, args, err := r.builder.Select(stockColumns...).From(t).OrderBy("product_sn").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows := make([]stock.Row, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s stock: %w", loc, err)
	}
	return rows, nil
}
