package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"velora/internal/domain/catalogs/supplier"
	"velora/internal/infrastructure/storage/postgres"
)

const supplierTable = "cat_suppliers"

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
	txManager *postgres.TxManager
}

// NewSupplierRepo creates a supplier repository.
func NewSupplierRepo(txManager *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(txManager, supplierTable, func() *supplier.Supplier {
			return &supplier.Supplier{}
		}),
		txManager: txManager,
	}
}

var _ supplier.Repository = (*SupplierRepo)(nil)

// ListActive retrieves active suppliers ordered by name.
func (r *SupplierRepo) ListActive(ctx context.Context) ([]*supplier.Supplier, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*supplier.Supplier
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list active: %w", err)
	}
	return items, nil
}
