package warehouseorder

import (
	"context"
	"time"

	"velora/internal/core/id"
	"velora/internal/domain"
)

// Repository defines operations for warehouse order documents.
type Repository interface {
	Create(ctx context.Context, doc *WarehouseOrder) error
	GetByID(ctx context.Context, docID id.ID) (*WarehouseOrder, error)
	GetByNumber(ctx context.Context, number string) (*WarehouseOrder, error)
	Update(ctx context.Context, doc *WarehouseOrder) error

	// GetForUpdate locks the header row. Concurrent partial receives of
	// the same order serialize on this lock.
	GetForUpdate(ctx context.Context, docID id.ID) (*WarehouseOrder, error)

	GetItems(ctx context.Context, docID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, docID id.ID, items []Item) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*WarehouseOrder], error)
}

// ListFilter for filtering warehouse orders.
type ListFilter struct {
	domain.ListFilter

	SupplierID *id.ID
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
}
