package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"velora/internal/core/id"
	"velora/internal/domain"
	"velora/internal/domain/documents/warehouseorder"
	"velora/internal/infrastructure/storage/postgres"
)

const (
	warehouseOrdersTable     = "doc_warehouse_orders"
	warehouseOrderItemsTable = "doc_warehouse_order_items"
)

// WarehouseOrderRepo implements warehouseorder.Repository.
type WarehouseOrderRepo struct {
	*BaseDocumentRepo[*warehouseorder.WarehouseOrder]
	txManager *postgres.TxManager
}

// NewWarehouseOrderRepo creates a warehouse order repository.
func NewWarehouseOrderRepo(txManager *postgres.TxManager) *WarehouseOrderRepo {
	return &WarehouseOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(txManager, warehouseOrdersTable, func() *warehouseorder.WarehouseOrder {
			return &warehouseorder.WarehouseOrder{}
		}),
		txManager: txManager,
	}
}

var _ warehouseorder.Repository = (*WarehouseOrderRepo)(nil)

// GetItems retrieves order items ordered by line number.
func (r *WarehouseOrderRepo) GetItems(ctx context.Context, docID id.ID) ([]warehouseorder.Item, error) {
	q := r.Builder().
		Select(
			"id", "order_id", "line_no", "product_id", "product_name",
			"quantity", "received_quantity",
		).
		From(warehouseOrderItemsTable).
		Where(squirrel.Eq{"order_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []warehouseorder.Item
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return items, nil
}

// SaveItems replaces the item set (delete existing + insert new).
func (r *WarehouseOrderRepo) SaveItems(ctx context.Context, docID id.ID, items []warehouseorder.Item) error {
	querier := r.txManager.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + warehouseOrderItemsTable + " WHERE order_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(warehouseOrderItemsTable).
		Columns(
			"id", "order_id", "line_no", "product_id", "product_name",
			"quantity", "received_quantity",
		)
	for _, item := range items {
		q = q.Values(
			item.ID, docID, item.LineNo, item.ProductID, item.ProductName,
			item.Quantity, item.ReceivedQuantity,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

// List retrieves warehouse orders with document-specific filtering.
func (r *WarehouseOrderRepo) List(ctx context.Context, filter warehouseorder.ListFilter) (domain.ListResult[*warehouseorder.WarehouseOrder], error) {
	q := r.baseSelect()

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	return r.list(ctx, q, filter.ListFilter)
}
