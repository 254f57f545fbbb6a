package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"velora/internal/core/id"
	"velora/internal/domain"
	"velora/internal/domain/documents/stocktaking"
	"velora/internal/infrastructure/storage/postgres"
)

const (
	stocktakingsTable     = "doc_stocktakings"
	stocktakingItemsTable = "doc_stocktaking_items"
)

// StocktakingRepo implements stocktaking.Repository.
type StocktakingRepo struct {
	*BaseDocumentRepo[*stocktaking.Stocktaking]
	txManager *postgres.TxManager
	batch     *postgres.BatchInserter
}

// NewStocktakingRepo creates a stocktaking repository.
func NewStocktakingRepo(txManager *postgres.TxManager) *StocktakingRepo {
	return &StocktakingRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(txManager, stocktakingsTable, func() *stocktaking.Stocktaking {
			return &stocktaking.Stocktaking{}
		}),
		txManager: txManager,
		batch:     postgres.NewBatchInserter(txManager),
	}
}

var _ stocktaking.Repository = (*StocktakingRepo)(nil)

var stocktakingItemColumns = []string{
	"id", "stocktaking_id", "product_id",
	"system_quantity", "counted_quantity", "difference",
}

// GetItems retrieves stocktaking items. Ordered by product so the count
// sheet renders stably across reloads.
func (r *StocktakingRepo) GetItems(ctx context.Context, docID id.ID) ([]stocktaking.Item, error) {
	q := r.Builder().
		Select(stocktakingItemColumns...).
		From(stocktakingItemsTable).
		Where(squirrel.Eq{"stocktaking_id": docID}).
		OrderBy("product_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []stocktaking.Item
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return items, nil
}

// SaveItems replaces the item set. The snapshot can hold a row per tracked
// product, so the insert goes over the COPY protocol instead of a VALUES list.
func (r *StocktakingRepo) SaveItems(ctx context.Context, docID id.ID, items []stocktaking.Item) error {
	querier := r.txManager.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + stocktakingItemsTable + " WHERE stocktaking_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{
			item.ID, docID, item.ProductID,
			item.SystemQuantity, item.CountedQuantity, item.Difference,
		})
	}
	if _, err := r.batch.CopyFromSlice(ctx, stocktakingItemsTable, stocktakingItemColumns, rows); err != nil {
		return fmt.Errorf("copy items: %w", err)
	}
	return nil
}

// List retrieves stocktakings with document-specific filtering.
func (r *StocktakingRepo) List(ctx context.Context, filter stocktaking.ListFilter) (domain.ListResult[*stocktaking.Stocktaking], error) {
	q := r.baseSelect()

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
