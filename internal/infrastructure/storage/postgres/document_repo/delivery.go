package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"velora/internal/core/id"
	"velora/internal/domain"
	"velora/internal/domain/documents/delivery"
	"velora/internal/infrastructure/storage/postgres"
)

const (
	deliveriesTable    = "doc_deliveries"
	deliveryItemsTable = "doc_delivery_items"
)

// DeliveryRepo implements delivery.Repository.
type DeliveryRepo struct {
	*BaseDocumentRepo[*delivery.Delivery]
	txManager *postgres.TxManager
}

// NewDeliveryRepo creates a delivery repository.
func NewDeliveryRepo(txManager *postgres.TxManager) *DeliveryRepo {
	return &DeliveryRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(txManager, deliveriesTable, func() *delivery.Delivery {
			return &delivery.Delivery{}
		}),
		txManager: txManager,
	}
}

var _ delivery.Repository = (*DeliveryRepo)(nil)

// GetItems retrieves delivery items ordered by line number.
func (r *DeliveryRepo) GetItems(ctx context.Context, docID id.ID) ([]delivery.Item, error) {
	q := r.Builder().
		Select(
			"id", "delivery_id", "line_no", "product_id",
			"quantity", "unit_cost", "total_cost", "batch_number", "expiry_date",
		).
		From(deliveryItemsTable).
		Where(squirrel.Eq{"delivery_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []delivery.Item
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return items, nil
}

// SaveItems replaces the item set (delete existing + insert new).
func (r *DeliveryRepo) SaveItems(ctx context.Context, docID id.ID, items []delivery.Item) error {
	querier := r.txManager.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + deliveryItemsTable + " WHERE delivery_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(deliveryItemsTable).
		Columns(
			"id", "delivery_id", "line_no", "product_id",
			"quantity", "unit_cost", "total_cost", "batch_number", "expiry_date",
		)
	for _, item := range items {
		q = q.Values(
			item.ID, docID, item.LineNo, item.ProductID,
			item.Quantity, item.UnitCost, item.TotalCost, item.BatchNumber, item.ExpiryDate,
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

// List retrieves deliveries with document-specific filtering.
func (r *DeliveryRepo) List(ctx context.Context, filter delivery.ListFilter) (domain.ListResult[*delivery.Delivery], error) {
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
