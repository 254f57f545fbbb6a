package dto

import (
	"github.com/shopspring/decimal"

	"velora/internal/domain/catalogs/product"
)

// CreateProductRequest represents a request to create a product.
type CreateProductRequest struct {
	Code          string           `json:"code,omitempty"`
	Name          string           `json:"name" binding:"required"`
	Type          string           `json:"type" binding:"required,oneof=retail professional consumable"`
	Barcode       *string          `json:"barcode,omitempty"`
	Unit          string           `json:"unit,omitempty"`
	MinQuantity   *int             `json:"minQuantity,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice,omitempty"`
	SalePrice     *decimal.Decimal `json:"salePrice,omitempty"`
	TrackStock    *bool            `json:"trackStock,omitempty"`
	Description   *string          `json:"description,omitempty"`
}

// ToEntity converts the request to a domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name, product.ProductType(r.Type))
	p.Barcode = r.Barcode
	p.MinQuantity = r.MinQuantity
	p.PurchasePrice = r.PurchasePrice
	p.SalePrice = r.SalePrice
	p.Description = r.Description
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	if r.TrackStock != nil {
		p.TrackStock = *r.TrackStock
	}
	return p
}

// UpdateProductRequest represents a request to update a product.
// Stock is absent on purpose: it only changes through stock operations.
type UpdateProductRequest struct {
	Code          *string          `json:"code,omitempty"`
	Name          *string          `json:"name,omitempty"`
	Type          *string          `json:"type,omitempty" binding:"omitempty,oneof=retail professional consumable"`
	Barcode       *string          `json:"barcode,omitempty"`
	Unit          *string          `json:"unit,omitempty"`
	MinQuantity   *int             `json:"minQuantity,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice,omitempty"`
	SalePrice     *decimal.Decimal `json:"salePrice,omitempty"`
	TrackStock    *bool            `json:"trackStock,omitempty"`
	IsActive      *bool            `json:"isActive,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Version       int              `json:"version" binding:"required,min=1"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Code != nil {
		p.Code = *r.Code
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Type != nil {
		p.Type = product.ProductType(*r.Type)
	}
	if r.Barcode != nil {
		p.Barcode = r.Barcode
	}
	if r.Unit != nil {
		p.Unit = *r.Unit
	}
	if r.MinQuantity != nil {
		p.MinQuantity = r.MinQuantity
	}
	if r.PurchasePrice != nil {
		p.PurchasePrice = r.PurchasePrice
	}
	if r.SalePrice != nil {
		p.SalePrice = r.SalePrice
	}
	if r.TrackStock != nil {
		p.TrackStock = *r.TrackStock
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	p.Version = r.Version
}

// AdjustStockRequest represents a manual stock correction.
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}
