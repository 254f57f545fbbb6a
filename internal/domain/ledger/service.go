package ledger

import (
	"context"

	"velora/internal/core/appcontext"
	"velora/internal/core/apperror"
	"velora/internal/core/id"
	"velora/internal/domain/catalogs/product"
	"velora/pkg/logger"
	"velora/pkg/metrics"
)

// ProductStore is the slice of the product repository the ledger needs:
// locked reads and stock writes. Declared here so the ledger can be tested
// without the full catalog repository.
type ProductStore interface {
	GetForUpdate(ctx context.Context, id id.ID) (*product.Product, error)
	UpdateStock(ctx context.Context, id id.ID, stock int) error
}

// Service applies stock changes and records them as movements.
//
// Every mutating method must be called inside an open transaction: the
// product row lock taken by GetForUpdate is what serializes concurrent
// writers, and it only holds until the transaction commits. Document
// services (delivery, stocktaking, warehouse order) call these methods
// from within their own RunInTransaction blocks so the status change and
// the stock change commit atomically.
type Service struct {
	movements Repository
	products  ProductStore
}

// NewService creates a ledger service.
func NewService(movements Repository, products ProductStore) *Service {
	return &Service{
		movements: movements,
		products:  products,
	}
}

// Increase adds qty units of stock and appends a movement.
func (s *Service) Increase(ctx context.Context, productID id.ID, qty int, movType MovementType, source Source) (*Movement, error) {
	if qty <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", qty)
	}
	return s.apply(ctx, productID, movType, source, nil, func(before int) int {
		return before + qty
	})
}

// Decrease removes qty units of stock and appends a movement.
// Stock is allowed to go negative; staying non-negative is a business
// convention enforced by the callers, not by the ledger.
func (s *Service) Decrease(ctx context.Context, productID id.ID, qty int, movType MovementType, source Source) (*Movement, error) {
	if qty <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", qty)
	}
	return s.apply(ctx, productID, movType, source, nil, func(before int) int {
		return before - qty
	})
}

// SetExact replaces stock with the counted value and appends a movement for
// the difference. Used by stocktaking completion. If the counted value equals
// the current stock no movement is written and nil is returned.
func (s *Service) SetExact(ctx context.Context, productID id.ID, counted int, source Source) (*Movement, error) {
	if counted < 0 {
		return nil, apperror.NewValidation("counted quantity cannot be negative").
			WithDetail("counted", counted)
	}
	return s.apply(ctx, productID, TypeStocktaking, source, nil, func(int) int {
		return counted
	})
}

// Adjust applies a signed manual correction with a reason.
func (s *Service) Adjust(ctx context.Context, productID id.ID, delta int, reason string) (*Movement, error) {
	if delta == 0 {
		return nil, apperror.NewValidation("adjustment delta cannot be zero")
	}
	if reason == "" {
		return nil, apperror.NewValidation("adjustment reason is required").
			WithDetail("field", "reason")
	}
	return s.applyTracked(ctx, productID, TypeAdjustment, Manual(), &reason, func(before int) int {
		return before + delta
	})
}

// History returns the movement history for a product, newest first.
func (s *Service) History(ctx context.Context, productID id.ID, filter HistoryFilter) ([]*Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.movements.History(ctx, productID, filter)
}

// applyTracked is apply for operations that explicitly target a single
// product, like manual adjustments: an untracked product is an error there,
// not a no-op.
func (s *Service) applyTracked(ctx context.Context, productID id.ID, movType MovementType, source Source, reason *string, next func(before int) int) (*Movement, error) {
	m, err := s.apply(ctx, productID, movType, source, reason, next)
	if err == nil && m == nil {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"stock tracking is disabled for this product").
			WithDetail("productId", productID)
	}
	return m, err
}

// apply is the single write path: lock the product row, compute the new
// stock from the locked value, persist stock and the bracketing movement.
// Untracked products are skipped without a movement, so a document that
// mixes tracked and untracked lines still posts cleanly.
func (s *Service) apply(ctx context.Context, productID id.ID, movType MovementType, source Source, reason *string, next func(before int) int) (*Movement, error) {
	p, err := s.products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.TrackStock {
		logger.Debug(ctx, "stock movement skipped, tracking disabled",
			"product_id", productID, "type", movType)
		return nil, nil
	}

	before := p.Stock
	after := next(before)
	if after == before {
		// no-op write, nothing to record
		return nil, nil
	}

	if err := s.products.UpdateStock(ctx, productID, after); err != nil {
		return nil, err
	}

	m := NewMovement(productID, movType, before, after, source, appcontext.GetActorID(ctx))
	m.Reason = reason
	if err := m.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.movements.Append(ctx, m); err != nil {
		return nil, err
	}

	metrics.RecordMovement(string(movType))
	logger.Debug(ctx, "stock movement recorded",
		"product_id", productID,
		"type", movType,
		"quantity", m.Quantity,
		"before", before,
		"after", after,
	)
	return m, nil
}
