package supplier

import (
	"context"

	"velora/internal/core/apperror"
	"velora/internal/core/id"
	"velora/internal/core/numerator"
	"velora/internal/core/tx"
	"velora/internal/domain"
)

// Service provides business logic for the Supplier catalog.
type Service struct {
	*domain.CatalogService[*Supplier]
	repo Repository
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "supplier",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, item *Supplier) error {
	if item.Code == "" {
		code, err := s.GenerateCode(ctx, "SUP")
		if err != nil {
			return apperror.NewInternal(err).WithDetail("op", "generate code")
		}
		item.Code = code
	}
	return nil
}

// ListActive retrieves active suppliers for document pickers.
func (s *Service) ListActive(ctx context.Context) ([]*Supplier, error) {
	return s.repo.ListActive(ctx)
}

// Deactivate soft-disables a supplier for new documents.
// Existing documents keep their reference.
func (s *Service) Deactivate(ctx context.Context, supplierID id.ID) error {
	sup, err := s.GetByID(ctx, supplierID)
	if err != nil {
		return err
	}
	sup.IsActive = false
	return s.Update(ctx, sup)
}
