package delivery

import (
	"context"
	"time"

	"velora/internal/core/id"
	"velora/internal/domain"
)

// Repository defines operations for delivery documents.
type Repository interface {
	Create(ctx context.Context, doc *Delivery) error
	GetByID(ctx context.Context, docID id.ID) (*Delivery, error)
	GetByNumber(ctx context.Context, number string) (*Delivery, error)
	Update(ctx context.Context, doc *Delivery) error

	// GetForUpdate locks the document header row. Status transitions load
	// through this so two concurrent Receive calls serialize.
	GetForUpdate(ctx context.Context, docID id.ID) (*Delivery, error)

	GetItems(ctx context.Context, docID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, docID id.ID, items []Item) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Delivery], error)
}

// ListFilter for filtering deliveries.
type ListFilter struct {
	domain.ListFilter

	SupplierID *id.ID
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
}
