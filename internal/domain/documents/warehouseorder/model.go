// Package warehouseorder provides the WarehouseOrder document: a purchase
// order sent to a supplier, received in full or line by line.
package warehouseorder

import (
	"context"
	"time"

	"velora/internal/core/apperror"
	"velora/internal/core/entity"
	"velora/internal/core/id"
)

// Status is the order lifecycle state.
//
// Draft → (Send) → Sent → (ReceiveItems/Receive) → PartiallyReceived → Received
// Any non-received status → Cancelled
type Status string

const (
	StatusDraft             Status = "draft"
	StatusSent              Status = "sent"
	StatusPartiallyReceived Status = "partially_received"
	StatusReceived          Status = "received"
	StatusCancelled         Status = "cancelled"
)

// WarehouseOrder represents a purchase order to a supplier.
type WarehouseOrder struct {
	entity.Document

	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	Status Status `db:"status" json:"status"`

	// SentAt is set by Send
	SentAt *time.Time `db:"sent_at" json:"sentAt,omitempty"`

	// ReceivedAt is set when the last outstanding quantity arrives
	ReceivedAt *time.Time `db:"received_at" json:"receivedAt,omitempty"`

	Notes *string `db:"notes" json:"notes,omitempty"`

	// Table part: ordered goods
	Items []Item `db:"-" json:"items"`
}

// Item is one ordered line. ProductID is nullable: lines may be free text
// ("green towels, 50x90") with only ProductName filled in. Free-text lines
// never touch stock when received.
type Item struct {
	ID      id.ID `db:"id" json:"id"`
	OrderID id.ID `db:"order_id" json:"orderId"`
	LineNo  int   `db:"line_no" json:"lineNo"`

	ProductID   *id.ID `db:"product_id" json:"productId,omitempty"`
	ProductName string `db:"product_name" json:"productName"`

	Quantity         int `db:"quantity" json:"quantity"`
	ReceivedQuantity int `db:"received_quantity" json:"receivedQuantity"`
}

// Outstanding returns the quantity still expected on this line.
func (it *Item) Outstanding() int {
	return it.Quantity - it.ReceivedQuantity
}

// IsFullyReceived reports whether the line has arrived in full.
func (it *Item) IsFullyReceived() bool {
	return it.ReceivedQuantity >= it.Quantity
}

// NewWarehouseOrder creates an order in draft status.
func NewWarehouseOrder(supplierID *id.ID) *WarehouseOrder {
	return &WarehouseOrder{
		Document:   entity.NewDocument(),
		SupplierID: supplierID,
		Status:     StatusDraft,
		Items:      make([]Item, 0),
	}
}

// AddItem appends a line bound to a product.
func (w *WarehouseOrder) AddItem(productID id.ID, productName string, quantity int) *Item {
	return w.appendItem(&productID, productName, quantity)
}

// AddFreeTextItem appends an unbound line described only by name.
func (w *WarehouseOrder) AddFreeTextItem(productName string, quantity int) *Item {
	return w.appendItem(nil, productName, quantity)
}

func (w *WarehouseOrder) appendItem(productID *id.ID, productName string, quantity int) *Item {
	item := Item{
		ID:          id.New(),
		OrderID:     w.ID,
		LineNo:      len(w.Items) + 1,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
	}
	w.Items = append(w.Items, item)
	return &w.Items[len(w.Items)-1]
}

// FindItem returns the line with the given id, or nil.
func (w *WarehouseOrder) FindItem(itemID id.ID) *Item {
	for i := range w.Items {
		if w.Items[i].ID == itemID {
			return &w.Items[i]
		}
	}
	return nil
}

// AllReceived reports whether every product-bound line is fully received.
// Free-text lines cannot be tracked and do not block completion.
func (w *WarehouseOrder) AllReceived() bool {
	for _, it := range w.Items {
		if it.ProductID != nil && !it.IsFullyReceived() {
			return false
		}
	}
	return true
}

// IsReceivable reports whether goods may arrive against this order.
func (w *WarehouseOrder) IsReceivable() bool {
	return w.Status == StatusSent || w.Status == StatusPartiallyReceived
}

// IsTerminal reports whether the document reached a final status.
func (w *WarehouseOrder) IsTerminal() bool {
	return w.Status == StatusReceived || w.Status == StatusCancelled
}

// Validate implements entity.Validatable.
func (w *WarehouseOrder) Validate(ctx context.Context) error {
	if err := w.Document.Validate(ctx); err != nil {
		return err
	}

	switch w.Status {
	case StatusDraft, StatusSent, StatusPartiallyReceived, StatusReceived, StatusCancelled:
	default:
		return apperror.NewValidation("unknown order status").
			WithDetail("status", string(w.Status))
	}

	if len(w.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	for _, it := range w.Items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks line invariants.
func (it *Item) Validate() error {
	if it.ProductName == "" {
		return apperror.NewValidation("product name is required").
			WithDetail("field", "productName").
			WithDetail("lineNo", it.LineNo)
	}
	if it.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("lineNo", it.LineNo)
	}
	if it.ReceivedQuantity < 0 || it.ReceivedQuantity > it.Quantity {
		return apperror.NewValidation("received quantity must be between 0 and ordered quantity").
			WithDetail("field", "receivedQuantity").
			WithDetail("lineNo", it.LineNo)
	}
	return nil
}
