// Package catalog_repo provides the PostgreSQL product catalog.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/core/id"
	"aquaplant/internal/domain/catalog"
	"aquaplant/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

// productColumns maps a NULL family onto the untagged FamilyNone.
var productColumns = []string{
	"id", "sn", "name", "COALESCE(family, '') AS family",
	"factory_price", "godown_price", "delivery_price",
	"created_at", "updated_at",
}

// ProductRepo implements catalog.Repository.
type ProductRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ catalog.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ProductRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(productColumns...).From(productsTable)
}

// GetBySN retrieves a product by serial number.
func (r *ProductRepo) GetBySN(ctx context.Context, sn string) (*catalog.Product, error) {
	p, err := r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"sn": sn}).Limit(1))
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewProductNotFound(sn)
		}
		return nil, fmt.Errorf("get product by sn: %w", err)
	}
	return p, nil
}

// GetByID retrieves a product by ID.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	p, err := r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": productID}).Limit(1))
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewProductNotFound(productID.String())
		}
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return p, nil
}

// List returns every product ordered by serial number.
func (r *ProductRepo) List(ctx context.Context) ([]catalog.Product, error) {
	sql, args, err := r.baseSelect().OrderBy("sn").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []catalog.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return products, nil
}

func (r *ProductRepo) getOne(ctx context.Context, q squirrel.SelectBuilder) (*catalog.Product, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p catalog.Product
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		return nil, err
	}
	return &p, nil
}
