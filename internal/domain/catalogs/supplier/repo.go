package supplier

import (
	"context"

	"velora/internal/domain"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// ListActive retrieves active suppliers ordered by name.
	ListActive(ctx context.Context) ([]*Supplier, error)
}
