// Package ledger provides the append-only product movement ledger.
//
// Every change to Product.Stock goes through this package: the stock write
// and the movement append happen together under a per-product row lock, so
// the movement history for a product always chains: each movement's
// QuantityAfter equals the next movement's QuantityBefore, and the product's
// current stock equals the last QuantityAfter.
package ledger

import (
	"context"
	"time"

	"velora/internal/core/apperror"
	"velora/internal/core/id"
)

// MovementType classifies the business reason for a stock change.
type MovementType string

const (
	TypeDelivery    MovementType = "delivery"
	TypeSale        MovementType = "sale"
	TypeUsage       MovementType = "usage"
	TypeAdjustment  MovementType = "adjustment"
	TypeStocktaking MovementType = "stocktaking"
	TypeReturn      MovementType = "return"
	TypeLoss        MovementType = "loss"
)

// SourceType identifies the kind of document that produced a movement.
// Each movement has exactly one typed origin.
type SourceType string

const (
	SourceDelivery       SourceType = "delivery"
	SourceStocktaking    SourceType = "stocktaking"
	SourceWarehouseOrder SourceType = "warehouse_order"
	SourceAppointment    SourceType = "appointment"
	SourceManual         SourceType = "manual"
)

// Source is the tagged origin reference of a movement.
type Source struct {
	Type SourceType `db:"source_type" json:"sourceType"`
	ID   *id.ID     `db:"source_id" json:"sourceId,omitempty"`
}

// Manual returns the origin for hand-entered adjustments.
func Manual() Source {
	return Source{Type: SourceManual}
}

// FromDocument returns an origin referencing a document.
func FromDocument(t SourceType, docID id.ID) Source {
	return Source{Type: t, ID: &docID}
}

// Movement is an immutable ledger entry recording one signed change to a
// product's stock. Movements are never updated or deleted.
type Movement struct {
	// ID is the primary key (UUIDv7, time-ordered)
	ID id.ID `db:"id" json:"id"`

	// ProductID is the product whose stock changed
	ProductID id.ID `db:"product_id" json:"productId"`

	// Type is the business reason for the change
	Type MovementType `db:"movement_type" json:"movementType"`

	// Quantity is the signed delta applied to stock
	Quantity int `db:"quantity" json:"quantity"`

	// QuantityBefore/QuantityAfter bracket the change:
	// QuantityAfter = QuantityBefore + Quantity
	QuantityBefore int `db:"quantity_before" json:"quantityBefore"`
	QuantityAfter  int `db:"quantity_after" json:"quantityAfter"`

	// Source is the typed document origin
	SourceType SourceType `db:"source_type" json:"sourceType"`
	SourceID   *id.ID     `db:"source_id" json:"sourceId,omitempty"`

	// Reason is an optional free-form note (manual adjustments)
	Reason *string `db:"reason" json:"reason,omitempty"`

	// CreatedBy is the acting user id for audit attribution
	CreatedBy string `db:"created_by" json:"createdBy"`

	// CreatedAt orders the per-product chain
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovement creates a movement bracketing a stock change.
func NewMovement(productID id.ID, movType MovementType, before, after int, source Source, actor string) *Movement {
	return &Movement{
		ID:             id.New(),
		ProductID:      productID,
		Type:           movType,
		Quantity:       after - before,
		QuantityBefore: before,
		QuantityAfter:  after,
		SourceType:     source.Type,
		SourceID:       source.ID,
		CreatedBy:      actor,
		CreatedAt:      time.Now().UTC(),
	}
}

// Validate checks the bracketing invariant.
func (m *Movement) Validate(ctx context.Context) error {
	if id.IsNil(m.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if m.QuantityAfter != m.QuantityBefore+m.Quantity {
		return apperror.NewValidation("movement quantities do not bracket the delta").
			WithDetail("quantityBefore", m.QuantityBefore).
			WithDetail("quantity", m.Quantity).
			WithDetail("quantityAfter", m.QuantityAfter)
	}
	if m.SourceType == "" {
		return apperror.NewValidation("source type is required").
			WithDetail("field", "sourceType")
	}
	return nil
}

// HistoryFilter for filtering movement history.
type HistoryFilter struct {
	Type     *MovementType
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
