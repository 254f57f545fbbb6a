package alerts

import (
	"context"

	"velora/internal/domain/catalogs/product"
)

// Repository defines the read queries behind the alerts engine.
// Implementations select directly from the products table; no state of
// their own.
type Repository interface {
	// LowStock returns active products with minQuantity set and
	// stock < minQuantity, ordered by deficit (min - stock) descending.
	LowStock(ctx context.Context, filter Filter) ([]*product.Product, error)

	// CriticalStock returns the low-stock subset where stock = 0 or
	// stock <= minQuantity x 0.25.
	CriticalStock(ctx context.Context) ([]*product.Product, error)

	// Counts returns the summary aggregates in one query.
	Counts(ctx context.Context) (Summary, error)
}
