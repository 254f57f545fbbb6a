// Package product provides the Product catalog: everything the salon keeps
// on the shelf, from retail goods to professional consumables.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"velora/internal/core/apperror"
	"velora/internal/core/entity"
)

// ProductType defines the product category.
type ProductType string

const (
	// TypeRetail is sold to clients over the counter
	TypeRetail ProductType = "retail"
	// TypeProfessional is used by masters during services
	TypeProfessional ProductType = "professional"
	// TypeConsumable covers disposables (gloves, foil, cotton)
	TypeConsumable ProductType = "consumable"
)

// Product represents a stocked item.
//
// Stock is the single source of truth for the current quantity on hand. It is
// mutated only by the ledger service, which brackets every change with a
// movement record, so Stock always equals the net sum of all movements.
type Product struct {
	entity.Catalog

	// Type defines product category
	Type ProductType `db:"type" json:"type"`

	// Barcode is the item barcode (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// Unit is the unit of measure for display ("pcs", "ml", "g")
	Unit string `db:"unit" json:"unit"`

	// Stock is the current quantity on hand (whole units).
	// Non-negative by convention, not enforced by the database.
	Stock int `db:"stock" json:"stock"`

	// MinQuantity is the reorder threshold; nil disables low-stock alerts
	MinQuantity *int `db:"min_quantity" json:"minQuantity,omitempty"`

	// PurchasePrice is the last known supplier price per unit
	PurchasePrice *decimal.Decimal `db:"purchase_price" json:"purchasePrice,omitempty"`

	// SalePrice is the retail price per unit
	SalePrice *decimal.Decimal `db:"sale_price" json:"salePrice,omitempty"`

	// TrackStock disables inventory tracking when false (e.g. services sold as products)
	TrackStock bool `db:"track_stock" json:"trackStock"`

	// IsActive soft-disables the product without deleting history
	IsActive bool `db:"is_active" json:"isActive"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string, productType ProductType) *Product {
	return &Product{
		Catalog:    entity.NewCatalog(code, name),
		Type:       productType,
		Unit:       "pcs",
		TrackStock: true,
		IsActive:   true,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidProductType(p.Type) {
		return apperror.NewValidation("invalid product type").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}

	if p.MinQuantity != nil && *p.MinQuantity < 0 {
		return apperror.NewValidation("minimum quantity cannot be negative").
			WithDetail("field", "minQuantity")
	}

	if p.PurchasePrice != nil && p.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "purchasePrice")
	}

	if p.SalePrice != nil && p.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").
			WithDetail("field", "salePrice")
	}

	return nil
}

// IsLowStock reports whether stock has fallen below the reorder threshold.
// Products without a threshold or without stock tracking never alert.
func (p *Product) IsLowStock() bool {
	if p.MinQuantity == nil || !p.TrackStock || !p.IsActive {
		return false
	}
	return p.Stock < *p.MinQuantity
}

// Deficit returns the shortfall below the reorder threshold (0 when healthy).
func (p *Product) Deficit() int {
	if p.MinQuantity == nil {
		return 0
	}
	d := *p.MinQuantity - p.Stock
	if d < 0 {
		return 0
	}
	return d
}

func isValidProductType(t ProductType) bool {
	switch t {
	case TypeRetail, TypeProfessional, TypeConsumable:
		return true
	}
	return false
}
