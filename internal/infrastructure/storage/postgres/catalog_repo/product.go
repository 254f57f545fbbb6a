package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"velora/internal/core/apperror"
	"velora/internal/core/id"
	"velora/internal/domain/catalogs/product"
	"velora/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
	txManager *postgres.TxManager
}

// NewProductRepo creates a product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(txManager, productTable, func() *product.Product {
			return &product.Product{}
		}),
		txManager: txManager,
	}
}

var _ product.Repository = (*ProductRepo)(nil)

// FindByBarcode retrieves a product by barcode.
func (r *ProductRepo) FindByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"barcode": barcode}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	p, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", barcode)
		}
		return nil, err
	}
	return p, nil
}

// UpdateStock writes the stock value directly. The ledger service is the
// only caller and already holds the row lock from GetForUpdate.
func (r *ProductRepo) UpdateStock(ctx context.Context, productID id.ID, stock int) error {
	q := r.Builder().
		Update(productTable).
		Set("stock", stock).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update stock: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

// ListTracked retrieves all active stock-tracked products (the stocktaking
// snapshot population), ordered by name for a stable count sheet.
func (r *ProductRepo) ListTracked(ctx context.Context) ([]*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Eq{"track_stock": true}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list tracked: %w", err)
	}
	return items, nil
}
