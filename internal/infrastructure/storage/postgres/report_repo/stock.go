// Package report_repo provides PostgreSQL read queries behind the stock
// alerts engine. All queries select from the products table; the package
// owns no tables of its own.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"velora/internal/domain/alerts"
	"velora/internal/domain/catalogs/product"
	"velora/internal/infrastructure/storage/postgres"
)

const productsTable = "cat_products"

// StockReportRepo implements alerts.Repository.
type StockReportRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewStockReportRepo creates a stock report repository.
func NewStockReportRepo(txManager *postgres.TxManager) *StockReportRepo {
	return &StockReportRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[*product.Product](),
	}
}

var _ alerts.Repository = (*StockReportRepo)(nil)

func (r *StockReportRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// lowStockSelect is the shared base: active products with a threshold set
// and stock below it.
func (r *StockReportRepo) lowStockSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(productsTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.NotEq{"min_quantity": nil}).
		Where(squirrel.Gt{"min_quantity": 0}).
		Where(squirrel.Expr("stock < min_quantity")).
		OrderBy("(min_quantity - stock) DESC", "name ASC")
}

// LowStock returns products below their threshold, largest deficit first.
func (r *StockReportRepo) LowStock(ctx context.Context, filter alerts.Filter) ([]*product.Product, error) {
	q := r.lowStockSelect()

	if !filter.IncludeUntracked {
		q = q.Where(squirrel.Eq{"track_stock": true})
	}
	if filter.ProductType != nil {
		q = q.Where(squirrel.Eq{"type": *filter.ProductType})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("low stock query: %w", err)
	}
	return items, nil
}

// CriticalStock returns the low-stock subset at critical priority: out of
// stock, or at 25% of the threshold or less.
func (r *StockReportRepo) CriticalStock(ctx context.Context) ([]*product.Product, error) {
	q := r.lowStockSelect().
		Where(squirrel.Eq{"track_stock": true}).
		Where(squirrel.Or{
			squirrel.Eq{"stock": 0},
			squirrel.Expr("stock * 4 <= min_quantity"),
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("critical stock query: %w", err)
	}
	return items, nil
}

// Counts computes the summary aggregates in a single scan over the table.
func (r *StockReportRepo) Counts(ctx context.Context) (alerts.Summary, error) {
	sql := `
		SELECT
			COUNT(*) AS total_products,
			COUNT(*) FILTER (WHERE track_stock) AS tracked_products,
			COUNT(*) FILTER (
				WHERE track_stock AND min_quantity IS NOT NULL
					AND min_quantity > 0 AND stock < min_quantity
			) AS low_stock,
			COUNT(*) FILTER (WHERE track_stock AND stock = 0) AS out_of_stock
		FROM ` + productsTable + `
		WHERE deletion_mark = false AND is_active = true`

	var row struct {
		TotalProducts   int `db:"total_products"`
		TrackedProducts int `db:"tracked_products"`
		LowStock        int `db:"low_stock"`
		OutOfStock      int `db:"out_of_stock"`
	}
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql); err != nil {
		return alerts.Summary{}, fmt.Errorf("summary query: %w", err)
	}

	return alerts.Summary{
		TotalProducts:   row.TotalProducts,
		TrackedProducts: row.TrackedProducts,
		LowStock:        row.LowStock,
		OutOfStock:      row.OutOfStock,
		Healthy:         row.TrackedProducts - row.LowStock,
	}, nil
}
