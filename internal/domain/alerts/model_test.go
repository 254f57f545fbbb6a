package alerts

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velora/internal/domain/catalogs/product"
)

func lowStockProduct(stock, minQty int) *product.Product {
	p := product.NewProduct("PR0001", "Shampoo 500ml", product.TypeRetail)
	p.Stock = stock
	p.MinQuantity = &minQty
	return p
}

func TestPriorityFor(t *testing.T) {
	// threshold 20: the boundaries fall at stock 5 (75%), 10 (50%), 15 (25%)
	tests := []struct {
		name     string
		stock    int
		minQty   int
		expected Priority
	}{
		{"out of stock", 0, 20, PriorityCritical},
		{"deficit 80%", 4, 20, PriorityCritical},
		{"deficit exactly 75%", 5, 20, PriorityCritical},
		{"deficit 70%", 6, 20, PriorityHigh},
		{"deficit exactly 50%", 10, 20, PriorityHigh},
		{"deficit 45%", 11, 20, PriorityMedium},
		{"deficit exactly 25%", 15, 20, PriorityMedium},
		{"deficit 20%", 16, 20, PriorityLow},
		{"rounded deficit 71%", 2, 7, PriorityHigh}, // round(5/7x100) = 71
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PriorityFor(tt.stock, tt.minQty))
		})
	}
}

func TestDeficitPercent(t *testing.T) {
	assert.Equal(t, 100, DeficitPercent(0, 20))
	assert.Equal(t, 75, DeficitPercent(5, 20))
	assert.Equal(t, 25, DeficitPercent(15, 20))
	assert.Equal(t, 0, DeficitPercent(20, 20))
	assert.Equal(t, 0, DeficitPercent(5, 0), "no threshold means no deficit")
	assert.Equal(t, 71, DeficitPercent(2, 7))
}

func TestTargetStock(t *testing.T) {
	assert.Equal(t, 30, TargetStock(20))
	assert.Equal(t, 11, TargetStock(7), "7 x 1.5 = 10.5 rounds up")
	assert.Equal(t, 15, TargetStock(10))
	assert.Equal(t, 0, TargetStock(0))
}

func TestSuggestFor(t *testing.T) {
	price := decimal.NewFromFloat(12.50)

	p := lowStockProduct(4, 20)
	p.PurchasePrice = &price

	s := SuggestFor(p)
	assert.Equal(t, 30, s.TargetStock)
	assert.Equal(t, 26, s.SuggestedQuantity, "target 30 - stock 4")
	assert.Equal(t, PriorityCritical, s.Priority)
	require.NotNil(t, s.EstimatedCost)
	assert.True(t, s.EstimatedCost.Equal(decimal.NewFromFloat(325.0)), "26 x 12.50")
}

func TestSuggestFor_FloorsAtMinQuantity(t *testing.T) {
	// stock 16 of 20: target 30 - 16 = 14 < min 20, suggest a full threshold
	s := SuggestFor(lowStockProduct(16, 20))
	assert.Equal(t, 20, s.SuggestedQuantity)
	assert.Equal(t, PriorityLow, s.Priority)
	assert.Nil(t, s.EstimatedCost, "no purchase price on file")
}

type stubRepo struct {
	low []*product.Product
}

func (r *stubRepo) LowStock(_ context.Context, filter Filter) ([]*product.Product, error) {
	if filter.Limit > 0 && len(r.low) > filter.Limit {
		return r.low[:filter.Limit], nil
	}
	return r.low, nil
}

func (r *stubRepo) CriticalStock(_ context.Context) ([]*product.Product, error) {
	var out []*product.Product
	for _, p := range r.low {
		if p.MinQuantity == nil {
			continue
		}
		if p.Stock == 0 || p.Stock*4 <= *p.MinQuantity {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubRepo) Counts(_ context.Context) (Summary, error) {
	return Summary{}, nil
}

func TestReorderSuggestions(t *testing.T) {
	repo := &stubRepo{low: []*product.Product{
		lowStockProduct(0, 20),
		lowStockProduct(16, 20),
	}}
	svc := NewService(repo)

	suggestions, err := svc.ReorderSuggestions(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, PriorityCritical, suggestions[0].Priority)
	assert.Equal(t, PriorityLow, suggestions[1].Priority)
}
