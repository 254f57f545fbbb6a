package stocktaking

import (
	"context"
	"time"

	"velora/internal/core/id"
	"velora/internal/domain"
)

// Repository defines operations for stocktaking documents.
type Repository interface {
	Create(ctx context.Context, doc *Stocktaking) error
	GetByID(ctx context.Context, docID id.ID) (*Stocktaking, error)
	GetByNumber(ctx context.Context, number string) (*Stocktaking, error)
	Update(ctx context.Context, doc *Stocktaking) error

	// GetForUpdate locks the header row for status transitions.
	GetForUpdate(ctx context.Context, docID id.ID) (*Stocktaking, error)

	GetItems(ctx context.Context, docID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, docID id.ID, items []Item) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Stocktaking], error)
}

// ListFilter for filtering stocktakings.
type ListFilter struct {
	domain.ListFilter

	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
}
