package product

import (
	"context"

	"velora/internal/core/id"
	"velora/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// FindByBarcode retrieves a product by barcode.
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)

	// GetForUpdate retrieves a product with a row lock.
	// Must be called inside a transaction; the lock serializes all
	// stock writers for the product until commit.
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)

	// UpdateStock writes the new stock value for a product.
	// Callers must hold the row lock obtained via GetForUpdate.
	UpdateStock(ctx context.Context, id id.ID, stock int) error

	// ListTracked retrieves all active, stock-tracked products
	// (the stocktaking snapshot population).
	ListTracked(ctx context.Context) ([]*Product, error)
}
