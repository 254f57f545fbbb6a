// Package delivery provides the Delivery document: goods arriving from a
// supplier. Receiving a delivery is the only place its items touch stock.
package delivery

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"velora/internal/core/apperror"
	"velora/internal/core/entity"
	"velora/internal/core/id"
)

// Status is the delivery lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// Delivery represents an incoming shipment from a supplier.
type Delivery struct {
	entity.Document

	// SupplierID is optional: walk-in cash purchases have no supplier card
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	Status Status `db:"status" json:"status"`

	// InvoiceNumber is the supplier's own document reference
	InvoiceNumber *string `db:"invoice_number" json:"invoiceNumber,omitempty"`

	// DeliveryDate is the expected or actual shipment date
	DeliveryDate time.Time `db:"delivery_date" json:"deliveryDate"`

	// ReceivedDate/ReceivedBy are set by Receive
	ReceivedDate *time.Time `db:"received_date" json:"receivedDate,omitempty"`
	ReceivedBy   *string    `db:"received_by" json:"receivedBy,omitempty"`

	// TotalCost is derived: the sum of item totals
	TotalCost decimal.Decimal `db:"total_cost" json:"totalCost"`

	Notes *string `db:"notes" json:"notes,omitempty"`

	// Table part: delivered goods
	Items []Item `db:"-" json:"items"`
}

// Item represents a line in the delivery.
type Item struct {
	ID         id.ID `db:"id" json:"id"`
	DeliveryID id.ID `db:"delivery_id" json:"deliveryId"`
	LineNo     int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`

	Quantity  int             `db:"quantity" json:"quantity"`
	UnitCost  decimal.Decimal `db:"unit_cost" json:"unitCost"`
	TotalCost decimal.Decimal `db:"total_cost" json:"totalCost"`

	// Batch tracking for perishables (hair dye, peroxide)
	BatchNumber *string    `db:"batch_number" json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`
}

// NewDelivery creates a delivery in draft status.
func NewDelivery(supplierID *id.ID) *Delivery {
	return &Delivery{
		Document:     entity.NewDocument(),
		SupplierID:   supplierID,
		Status:       StatusDraft,
		DeliveryDate: time.Now().UTC(),
		TotalCost:    decimal.Zero,
		Items:        make([]Item, 0),
	}
}

// AddItem appends a line and recalculates the header total.
func (d *Delivery) AddItem(productID id.ID, quantity int, unitCost decimal.Decimal) *Item {
	item := Item{
		ID:         id.New(),
		DeliveryID: d.ID,
		LineNo:     len(d.Items) + 1,
		ProductID:  productID,
		Quantity:   quantity,
		UnitCost:   unitCost,
		TotalCost:  unitCost.Mul(decimal.NewFromInt(int64(quantity))),
	}
	d.Items = append(d.Items, item)
	d.RecalculateTotal()
	return &d.Items[len(d.Items)-1]
}

// RemoveItem deletes a line by id and renumbers the rest.
// Returns false if no line with that id exists.
func (d *Delivery) RemoveItem(itemID id.ID) bool {
	for i, item := range d.Items {
		if item.ID == itemID {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			for j := range d.Items {
				d.Items[j].LineNo = j + 1
			}
			d.RecalculateTotal()
			return true
		}
	}
	return false
}

// FindItem returns the line with the given id, or nil.
func (d *Delivery) FindItem(itemID id.ID) *Item {
	for i := range d.Items {
		if d.Items[i].ID == itemID {
			return &d.Items[i]
		}
	}
	return nil
}

// RecalculateTotal updates the header total from lines.
func (d *Delivery) RecalculateTotal() {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.TotalCost)
	}
	d.TotalCost = total
}

// IsMutable reports whether header and items may still change.
// A received delivery is immutable; so is a cancelled one.
func (d *Delivery) IsMutable() bool {
	return d.Status == StatusDraft || d.Status == StatusPending
}

// IsTerminal reports whether the document reached a final status.
func (d *Delivery) IsTerminal() bool {
	return d.Status == StatusReceived || d.Status == StatusCancelled
}

// Validate implements entity.Validatable.
func (d *Delivery) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}

	switch d.Status {
	case StatusDraft, StatusPending, StatusReceived, StatusCancelled:
	default:
		return apperror.NewValidation("unknown delivery status").
			WithDetail("status", string(d.Status))
	}

	for _, item := range d.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks line invariants.
func (it *Item) Validate() error {
	if id.IsNil(it.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId").
			WithDetail("lineNo", it.LineNo)
	}
	if it.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("lineNo", it.LineNo)
	}
	if it.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost").
			WithDetail("lineNo", it.LineNo)
	}
	if !it.TotalCost.Equal(it.UnitCost.Mul(decimal.NewFromInt(int64(it.Quantity)))) {
		return apperror.NewValidation("line total does not match quantity x unit cost").
			WithDetail("lineNo", it.LineNo)
	}
	return nil
}
