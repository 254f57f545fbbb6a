package alerts

import (
	"context"

	"velora/internal/domain/catalogs/product"
)

// Service exposes the stock alert queries. All methods are read-only.
type Service struct {
	repo Repository
}

// NewService creates an alerts service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LowStock returns products below their reorder threshold, worst first.
func (s *Service) LowStock(ctx context.Context, filter Filter) ([]*product.Product, error) {
	return s.repo.LowStock(ctx, filter)
}

// CriticalStock returns products that are out of stock or nearly so.
func (s *Service) CriticalStock(ctx context.Context) ([]*product.Product, error) {
	return s.repo.CriticalStock(ctx)
}

// ReorderSuggestions builds purchasing recommendations for every low-stock
// product matching the filter.
func (s *Service) ReorderSuggestions(ctx context.Context, filter Filter) ([]ReorderSuggestion, error) {
	low, err := s.repo.LowStock(ctx, filter)
	if err != nil {
		return nil, err
	}

	suggestions := make([]ReorderSuggestion, 0, len(low))
	for _, p := range low {
		suggestions = append(suggestions, SuggestFor(p))
	}
	return suggestions, nil
}

// StockSummary returns the derived health counts.
func (s *Service) StockSummary(ctx context.Context) (Summary, error) {
	return s.repo.Counts(ctx)
}
