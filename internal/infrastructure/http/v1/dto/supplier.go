package dto

import (
	"velora/internal/domain/catalogs/supplier"
)

// CreateSupplierRequest represents a request to create a supplier.
type CreateSupplierRequest struct {
	Code        string  `json:"code,omitempty"`
	Name        string  `json:"name" binding:"required"`
	ContactName *string `json:"contactName,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	Notes       *string `json:"notes,omitempty"`
}

// ToEntity converts the request to a domain entity.
func (r *CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.NewSupplier(r.Code, r.Name)
	s.ContactName = r.ContactName
	s.Phone = r.Phone
	s.Email = r.Email
	s.Notes = r.Notes
	return s
}

// UpdateSupplierRequest represents a request to update a supplier.
type UpdateSupplierRequest struct {
	Code        *string `json:"code,omitempty"`
	Name        *string `json:"name,omitempty"`
	ContactName *string `json:"contactName,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	Notes       *string `json:"notes,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	if r.Code != nil {
		s.Code = *r.Code
	}
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.ContactName != nil {
		s.ContactName = r.ContactName
	}
	if r.Phone != nil {
		s.Phone = r.Phone
	}
	if r.Email != nil {
		s.Email = r.Email
	}
	if r.Notes != nil {
		s.Notes = r.Notes
	}
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
	s.Version = r.Version
}
