package product

import (
	"context"

	"velora/internal/core/apperror"
	"velora/internal/core/id"
	"velora/internal/core/numerator"
	"velora/internal/core/tx"
	"velora/internal/domain"
)

// Service provides business logic for the Product catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.checkBarcodeUnique)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, item *Product) error {
	if item.Code == "" {
		code, err := s.GenerateCode(ctx, "PR")
		if err != nil {
			return apperror.NewInternal(err).WithDetail("op", "generate code")
		}
		item.Code = code
	}

	return s.checkBarcodeUnique(ctx, item)
}

func (s *Service) checkBarcodeUnique(ctx context.Context, item *Product) error {
	if item.Barcode == nil || *item.Barcode == "" {
		return nil
	}
	existing, err := s.repo.FindByBarcode(ctx, *item.Barcode)
	if err != nil {
		return nil
	}
	if existing.ID != item.ID {
		return apperror.NewDuplicate("product", "barcode", *item.Barcode)
	}
	return nil
}

// FindByBarcode retrieves a product by barcode.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (*Product, error) {
	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", barcode)
		}
		return nil, err
	}
	return p, nil
}

// Deactivate soft-disables a product. Stock history is retained; the product
// simply stops appearing in active lists, snapshots and alerts.
func (s *Service) Deactivate(ctx context.Context, productID id.ID) error {
	p, err := s.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	p.IsActive = false
	return s.Update(ctx, p)
}
