// Package supplier provides the Supplier catalog: companies the salon orders
// stock from. Referenced by deliveries and warehouse orders; suppliers are
// soft-disabled via IsActive, never hard-deleted while referenced.
package supplier

import (
	"context"

	"velora/internal/core/entity"
)

// Supplier represents a goods supplier.
type Supplier struct {
	entity.Catalog

	ContactName *string `db:"contact_name" json:"contactName,omitempty"`
	Phone       *string `db:"phone" json:"phone,omitempty"`
	Email       *string `db:"email" json:"email,omitempty"`
	Notes       *string `db:"notes" json:"notes,omitempty"`

	// IsActive soft-disables the supplier for new documents
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewSupplier creates a new Supplier with required fields.
func NewSupplier(code, name string) *Supplier {
	return &Supplier{
		Catalog:  entity.NewCatalog(code, name),
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	return s.Catalog.Validate(ctx)
}
