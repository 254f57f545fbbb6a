// Package stocktaking provides the Stocktaking document: a physical count
// of the warehouse reconciled against the ledger. Completion with
// applyDifferences writes the counted values back as authoritative stock.
package stocktaking

import (
	"context"
	"time"

	"velora/internal/core/apperror"
	"velora/internal/core/entity"
	"velora/internal/core/id"
)

// Status is the stocktaking lifecycle state.
//
// Draft → (Start) → InProgress → (Complete) → Completed
// Draft/InProgress → (Cancel) → Cancelled
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Stocktaking represents an inventory count session.
type Stocktaking struct {
	entity.Document

	Status Status `db:"status" json:"status"`

	// StocktakingDate is the business date of the count
	StocktakingDate time.Time `db:"stocktaking_date" json:"stocktakingDate"`

	// StartedAt is set by Start together with the snapshot
	StartedAt *time.Time `db:"started_at" json:"startedAt,omitempty"`

	// CompletedAt/CompletedBy are set by Complete
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	CompletedBy *string    `db:"completed_by" json:"completedBy,omitempty"`

	Notes *string `db:"notes" json:"notes,omitempty"`

	// Table part: one row per counted product
	Items []Item `db:"-" json:"items"`
}

// Item is one product's row in the count sheet.
type Item struct {
	ID            id.ID `db:"id" json:"id"`
	StocktakingID id.ID `db:"stocktaking_id" json:"stocktakingId"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// SystemQuantity is the stock at snapshot time, frozen at Start
	SystemQuantity int `db:"system_quantity" json:"systemQuantity"`

	// CountedQuantity stays nil until the shelf is actually counted
	CountedQuantity *int `db:"counted_quantity" json:"countedQuantity"`

	// Difference = counted - system, recomputed on every count write
	Difference int `db:"difference" json:"difference"`
}

// IsCounted reports whether the row has been counted.
func (it *Item) IsCounted() bool {
	return it.CountedQuantity != nil
}

// SetCounted writes the counted value and recomputes the difference.
func (it *Item) SetCounted(counted int) {
	it.CountedQuantity = &counted
	it.Difference = counted - it.SystemQuantity
}

// NewStocktaking creates a stocktaking in draft status, header only.
// Items appear when Start takes the snapshot.
func NewStocktaking() *Stocktaking {
	return &Stocktaking{
		Document:        entity.NewDocument(),
		Status:          StatusDraft,
		StocktakingDate: time.Now().UTC(),
		Items:           make([]Item, 0),
	}
}

// FindItemByProduct returns the row for a product, or nil.
func (s *Stocktaking) FindItemByProduct(productID id.ID) *Item {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return &s.Items[i]
		}
	}
	return nil
}

// FindItem returns the row with the given id, or nil.
func (s *Stocktaking) FindItem(itemID id.ID) *Item {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}

// UncountedItems returns rows still missing a counted quantity.
func (s *Stocktaking) UncountedItems() []Item {
	var out []Item
	for _, it := range s.Items {
		if !it.IsCounted() {
			out = append(out, it)
		}
	}
	return out
}

// IsCountable reports whether count values may still be written.
func (s *Stocktaking) IsCountable() bool {
	return s.Status == StatusDraft || s.Status == StatusInProgress
}

// IsTerminal reports whether the document reached a final status.
func (s *Stocktaking) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusCancelled
}

// Validate implements entity.Validatable.
func (s *Stocktaking) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	switch s.Status {
	case StatusDraft, StatusInProgress, StatusCompleted, StatusCancelled:
	default:
		return apperror.NewValidation("unknown stocktaking status").
			WithDetail("status", string(s.Status))
	}

	seen := make(map[id.ID]bool, len(s.Items))
	for _, it := range s.Items {
		if id.IsNil(it.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "productId")
		}
		if seen[it.ProductID] {
			return apperror.NewValidation("product appears twice in the count sheet").
				WithDetail("productId", it.ProductID)
		}
		seen[it.ProductID] = true
		if it.CountedQuantity != nil {
			if *it.CountedQuantity < 0 {
				return apperror.NewValidation("counted quantity cannot be negative").
					WithDetail("productId", it.ProductID)
			}
			if it.Difference != *it.CountedQuantity-it.SystemQuantity {
				return apperror.NewValidation("difference does not match counted - system").
					WithDetail("productId", it.ProductID)
			}
		}
	}
	return nil
}
