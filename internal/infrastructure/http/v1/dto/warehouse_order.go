package dto

import (
	"time"

	"velora/internal/core/id"
	"velora/internal/domain/documents/warehouseorder"
)

// CreateWarehouseOrderRequest represents a request to create a purchase order.
type CreateWarehouseOrderRequest struct {
	SupplierID *string            `json:"supplierId,omitempty"`
	Date       *time.Time         `json:"date,omitempty"`
	Comment    string             `json:"comment,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderItemRequest is one ordered line. ProductID may be empty for free-text
// lines; ProductName is always required.
type OrderItemRequest struct {
	ProductID   *string `json:"productId,omitempty"`
	ProductName string  `json:"productName" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
}

// ToEntity converts the request to a domain entity.
func (r *CreateWarehouseOrderRequest) ToEntity() (*warehouseorder.WarehouseOrder, error) {
	var supplierID *id.ID
	if r.SupplierID != nil && *r.SupplierID != "" {
		parsed, err := id.Parse(*r.SupplierID)
		if err != nil {
			return nil, err
		}
		supplierID = &parsed
	}

	doc := warehouseorder.NewWarehouseOrder(supplierID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment
	doc.Notes = r.Notes

	for _, line := range r.Items {
		if line.ProductID != nil && *line.ProductID != "" {
			productID, err := id.Parse(*line.ProductID)
			if err != nil {
				return nil, err
			}
			doc.AddItem(productID, line.ProductName, line.Quantity)
		} else {
			doc.AddFreeTextItem(line.ProductName, line.Quantity)
		}
	}
	return doc, nil
}

// UpdateWarehouseOrderRequest rewrites a draft order. Lines are replaced
// wholesale when provided.
type UpdateWarehouseOrderRequest struct {
	SupplierID *string            `json:"supplierId,omitempty"`
	Date       *time.Time         `json:"date,omitempty"`
	Comment    *string            `json:"comment,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
	Items      []OrderItemRequest `json:"items,omitempty" binding:"omitempty,dive"`
	Version    int                `json:"version" binding:"required,min=1"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateWarehouseOrderRequest) ApplyTo(doc *warehouseorder.WarehouseOrder) error {
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
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}
	if r.Notes != nil {
		doc.Notes = r.Notes
	}

	if r.Items != nil {
		doc.Items = doc.Items[:0]
		for _, line := range r.Items {
			if line.ProductID != nil && *line.ProductID != "" {
				productID, err := id.Parse(*line.ProductID)
				if err != nil {
					return err
				}
				doc.AddItem(productID, line.ProductName, line.Quantity)
			} else {
				doc.AddFreeTextItem(line.ProductName, line.Quantity)
			}
		}
	}
	doc.Version = r.Version
	return nil
}

// ReceiveOrderItemsRequest receives quantities against individual lines.
type ReceiveOrderItemsRequest struct {
	Items []ReceiptLineRequest `json:"items" binding:"required,min=1,dive"`
}

// ReceiptLineRequest is one received line.
type ReceiptLineRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// ToReceipts converts the request to domain receipt lines.
func (r *ReceiveOrderItemsRequest) ToReceipts() ([]warehouseorder.ReceiptLine, error) {
	receipts := make([]warehouseorder.ReceiptLine, 0, len(r.Items))
	for _, line := range r.Items {
		itemID, err := id.Parse(line.ItemID)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, warehouseorder.ReceiptLine{
			ItemID:   itemID,
			Quantity: line.Quantity,
		})
	}
	return receipts, nil
}

// ReceiveOrderRequest receives every outstanding quantity in full.
type ReceiveOrderRequest struct {
	Notes *string `json:"notes,omitempty"`
}
