// Package materials_repo provides the PostgreSQL raw material table.
package materials_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/domain/materials"
	"aquaplant/internal/infrastructure/storage/postgres"
)

const rawMaterialsTable = "raw_materials"

var rawMaterialColumns = postgres.ExtractDBColumns[materials.RawMaterial]()

// RawMaterialRepo implements materials.Repository.
type RawMaterialRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ materials.Repository = (*RawMaterialRepo)(nil)

// NewRawMaterialRepo creates a new raw material repository.
func NewRawMaterialRepo(txManager *postgres.TxManager) *RawMaterialRepo {
	return &RawMaterialRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *RawMaterialRepo) getForUpdateQuery(key materials.Key) squirrel.SelectBuilder {
	return r.builder.Select(rawMaterialColumns...).
		From(rawMaterialsTable).
		Where(squirrel.Eq{"material": key.Material, "variant": key.Variant}).
		Limit(1).
		Suffix("FOR UPDATE")
}

// GetForUpdate locks and returns the row of a material/variant.
func (r *RawMaterialRepo) GetForUpdate(ctx context.Context, key materials.Key) (*materials.RawMaterial, error) {
	sql, args, err := r.getForUpdateQuery(key).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m materials.RawMaterial
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewMaterialNotFound(key.Material, key.Variant)
		}
		return nil, fmt.Errorf("get raw material %s: %w", key, err)
	}
	return &m, nil
}

// updateQuery expects m to be touched already: the stored version is m.Version-1.
func (r *RawMaterialRepo) updateQuery(m *materials.RawMaterial) squirrel.UpdateBuilder {
	return r.builder.Update(rawMaterialsTable).
		Set("available_quantity", m.AvailableQuantity).
		Set("actual_count", m.ActualCount).
		Set("version", m.Version).
		Set("updated_at", m.UpdatedAt).
		Where(squirrel.Eq{"id": m.ID}).
		Where(squirrel.Eq{"version": m.Version - 1})
}

// UpdateQuantities writes the deducted quantities with an optimistic version check.
func (r *RawMaterialRepo) UpdateQuantities(ctx context.Context, m *materials.RawMaterial) error {
	sql, args, err := r.updateQuery(m).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update raw material %s: %w", m.Key(), postgres.ClassifyError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("raw material was modified concurrently").
			WithDetail("material", m.Material).
			WithDetail("variant", m.Variant)
	}
	return nil
}

// List returns every raw material ordered by material and variant.
func (r *RawMaterialRepo) List(ctx context.Context) ([]materials.RawMaterial, error) {
	sql, args, err := r.builder.Select(rawMaterialColumns...).
		From(rawMaterialsTable).
		OrderBy("material", "variant").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows := make([]materials.RawMaterial, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select raw materials: %w", err)
	}
	return rows, nil
}
