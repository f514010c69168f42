// Package production_repo provides the PostgreSQL daily production table.
package production_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/core/types"
	"aquaplant/internal/domain/production"
	"aquaplant/internal/infrastructure/storage/postgres"
)

const dailyTable = "daily_production"

var dailyColumns = postgres.ExtractDBColumns[production.DailyProduction]()

// DailyRepo implements production.Repository.
type DailyRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ production.Repository = (*DailyRepo)(nil)

// NewDailyRepo creates a new daily production repository.
func NewDailyRepo(txManager *postgres.TxManager) *DailyRepo {
	return &DailyRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// LockProduct takes a transaction-scoped advisory lock keyed on the product SN.
func (r *DailyRepo) LockProduct(ctx context.Context, productSN string) error {
	if r.txManager.GetTx(ctx) == nil {
		return fmt.Errorf("lock product %s: no transaction in context", productSN)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", productSN); err != nil {
		return fmt.Errorf("lock product %s: %w", productSN, err)
	}
	return nil
}

func (r *DailyRepo) dayQuery(day types.DayWindow) squirrel.SelectBuilder {
	return r.builder.Select(dailyColumns...).
		From(dailyTable).
		Where(squirrel.GtOrEq{"created_at": day.Start.UTC()}).
		Where(squirrel.Lt{"created_at": day.End.UTC()})
}

// FindForDay returns the product's row created within day, locked, or nil.
func (r *DailyRepo) FindForDay(ctx context.Context, productSN string, day types.DayWindow) (*production.DailyProduction, error) {
	sql, args, err := r.dayQuery(day).
		Where(squirrel.Eq{"product_sn": productSN}).
		OrderBy("created_at").
		Limit(1).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row production.DailyProduction
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get daily production: %w", err)
	}
	return &row, nil
}

// Insert stores a new row.
func (r *DailyRepo) Insert(ctx context.Context, row *production.DailyProduction) error {
	sql, args, err := r.builder.Insert(dailyTable).
		SetMap(postgres.StructToMap(row)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert daily production: %w", postgres.ClassifyError(err))
	}
	return nil
}

func (r *DailyRepo) updateQuery(row *production.DailyProduction) squirrel.UpdateBuilder {
	return r.builder.Update(dailyTable).
		Set("quantity", row.Quantity).
		Set("version", row.Version).
		Set("updated_at", row.UpdatedAt).
		Where(squirrel.Eq{"id": row.ID}).
		Where(squirrel.Eq{"version": row.Version - 1})
}

// UpdateQuantity writes a touched row with an optimistic version check.
func (r *DailyRepo) UpdateQuantity(ctx context.Context, row *production.DailyProduction) error {
	sql, args, err := r.updateQuery(row).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update daily production: %w", postgres.ClassifyError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("daily production was modified concurrently").
			WithDetail("product_sn", row.ProductSN)
	}
	return nil
}

// ListForDay returns all rows created within day ordered by product SN.
func (r *DailyRepo) ListForDay(ctx context.Context, day types.DayWindow) ([]production.DailyProduction, error) {
	sql, args, err := r.dayQuery(day).OrderBy("product_sn", "created_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows := make([]production.DailyProduction, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select daily production: %w", err)
	}
	return rows, nil
}
