// Package ledger_repo provides PostgreSQL persistence for the product
// movement ledger. The movements table is append-only: the repository
// exposes no update or delete.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"velora/internal/core/id"
	"velora/internal/domain/ledger"
	"velora/internal/infrastructure/storage/postgres"
)

const movementsTable = "product_movements"

var movementColumns = []string{
	"id", "product_id", "movement_type", "quantity",
	"quantity_before", "quantity_after",
	"source_type", "source_id", "reason",
	"created_by", "created_at",
}

// MovementRepo implements ledger.Repository.
type MovementRepo struct {
	txManager *postgres.TxManager
}

// NewMovementRepo creates a movement repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{txManager: txManager}
}

var _ ledger.Repository = (*MovementRepo)(nil)

func (r *MovementRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Append inserts a single movement.
func (r *MovementRepo) Append(ctx context.Context, m *ledger.Movement) error {
	return r.AppendBatch(ctx, []*ledger.Movement{m})
}

// AppendBatch inserts movements in one round trip.
func (r *MovementRepo) AppendBatch(ctx context.Context, movements []*ledger.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	q := r.builder().
		Insert(movementsTable).
		Columns(movementColumns...)
	for _, m := range movements {
		q = q.Values(
			m.ID, m.ProductID, m.Type, m.Quantity,
			m.QuantityBefore, m.QuantityAfter,
			m.SourceType, m.SourceID, m.Reason,
			m.CreatedBy, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("append movements: %w", err)
	}
	return nil
}

// History retrieves movements for a product, newest first. The query walks
// the (product_id, created_at DESC) index.
func (r *MovementRepo) History(ctx context.Context, productID id.ID, filter ledger.HistoryFilter) ([]*ledger.Movement, error) {
	q := r.builder().
		Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"product_id": productID})

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.Type})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []*ledger.Movement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return movements, nil
}
