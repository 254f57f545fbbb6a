package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"velora/internal/core/id"
	"velora/internal/domain/documents/delivery"
)

// CreateDeliveryRequest represents a request to create a delivery.
type CreateDeliveryRequest struct {
	SupplierID    *string               `json:"supplierId,omitempty"`
	Date          *time.Time            `json:"date,omitempty"`
	DeliveryDate  *time.Time            `json:"deliveryDate,omitempty"`
	InvoiceNumber *string               `json:"invoiceNumber,omitempty"`
	Comment       string                `json:"comment,omitempty"`
	Notes         *string               `json:"notes,omitempty"`
	Items         []DeliveryItemRequest `json:"items" binding:"omitempty,dive"`
}

// DeliveryItemRequest represents one line in a create request.
type DeliveryItemRequest struct {
	ProductID   string          `json:"productId" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	BatchNumber *string         `json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time      `json:"expiryDate,omitempty"`
}

// ToEntity converts the request to a domain entity.
func (r *CreateDeliveryRequest) ToEntity() (*delivery.Delivery, error) {
	var supplierID *id.ID
	if r.SupplierID != nil && *r.SupplierID != "" {
		parsed, err := id.Parse(*r.SupplierID)
		if err != nil {
			return nil, err
		}
		supplierID = &parsed
	}

	doc := delivery.NewDelivery(supplierID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.DeliveryDate != nil {
		doc.DeliveryDate = *r.DeliveryDate
	}
	doc.InvoiceNumber = r.InvoiceNumber
	doc.Comment = r.Comment
	doc.Notes = r.Notes

	for _, line := range r.Items {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, err
		}
		item := doc.AddItem(productID, line.Quantity, line.UnitCost)
		item.BatchNumber = line.BatchNumber
		item.ExpiryDate = line.ExpiryDate
	}
	return doc, nil
}

// UpdateDeliveryRequest represents a header update for a draft or pending
// delivery. Items change through the item endpoints.
type UpdateDeliveryRequest struct {
	SupplierID    *string    `json:"supplierId,omitempty"`
	Date          *time.Time `json:"date,omitempty"`
	DeliveryDate  *time.Time `json:"deliveryDate,omitempty"`
	InvoiceNumber *string    `json:"invoiceNumber,omitempty"`
	Comment       *string    `json:"comment,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	Status        *string    `json:"status,omitempty" binding:"omitempty,oneof=draft pending"`
	Version       int        `json:"version" binding:"required,min=1"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateDeliveryRequest) ApplyTo(doc *delivery.Delivery) error {
	if r.SupplierID != nil {
		if *r.SupplierID == "" {
			doc.SupplierID = nil
		} else {
			parsed, err := id.Parse(*r.SupplierID)
			if err != nil {
				return err
			}
			doc.SupplierID = &parsed
		}
	}
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.DeliveryDate != nil {
		doc.DeliveryDate = *r.DeliveryDate
	}
	if r.InvoiceNumber != nil {
		doc.InvoiceNumber = r.InvoiceNumber
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}
	if r.Notes != nil {
		doc.Notes = r.Notes
	}
	if r.Status != nil {
		doc.Status = delivery.Status(*r.Status)
	}
	doc.Version = r.Version
	return nil
}

// UpdateDeliveryItemRequest updates one delivery line.
type UpdateDeliveryItemRequest struct {
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	BatchNumber *string         `json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time      `json:"expiryDate,omitempty"`
}

// ReceiveDeliveryRequest finalizes a delivery.
type ReceiveDeliveryRequest struct {
	Notes *string `json:"notes,omitempty"`
}
