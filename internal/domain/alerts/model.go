// Package alerts provides read-only stock level reporting: low-stock lists,
// reorder suggestions and summary counts. Nothing here writes to the ledger.
package alerts

import (
	"math"

	"github.com/shopspring/decimal"

	"velora/internal/core/id"
	"velora/internal/domain/catalogs/product"
)

// Priority ranks how urgently a product needs reordering.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Filter narrows the low-stock selection.
type Filter struct {
	// ProductType restricts to one product type when set
	ProductType *product.ProductType

	// IncludeUntracked includes products with stock tracking disabled.
	// Off by default: untracked stock values are meaningless.
	IncludeUntracked bool

	// Limit caps the number of rows (0 = no cap)
	Limit int
}

// ReorderSuggestion is a purchasing recommendation for one low-stock product.
type ReorderSuggestion struct {
	ProductID   id.ID               `json:"productId"`
	ProductCode string              `json:"productCode"`
	ProductName string              `json:"productName"`
	ProductType product.ProductType `json:"productType"`

	CurrentStock int `json:"currentStock"`
	MinQuantity  int `json:"minQuantity"`

	// TargetStock = ceil(minQuantity x 1.5)
	TargetStock int `json:"targetStock"`

	// SuggestedQuantity = max(targetStock - currentStock, minQuantity)
	SuggestedQuantity int `json:"suggestedQuantity"`

	// EstimatedCost = purchasePrice x suggestedQuantity, nil when the
	// product has no purchase price on file
	EstimatedCost *decimal.Decimal `json:"estimatedCost,omitempty"`

	Priority Priority `json:"priority"`
}

// Summary holds derived stock health counts.
type Summary struct {
	TotalProducts   int `json:"totalProducts"`
	TrackedProducts int `json:"trackedProducts"`
	LowStock        int `json:"lowStock"`
	OutOfStock      int `json:"outOfStock"`
	Healthy         int `json:"healthy"`
}

// DeficitPercent computes how far below the threshold stock has fallen,
// as a rounded percentage of the threshold.
func DeficitPercent(stock, minQuantity int) int {
	if minQuantity <= 0 {
		return 0
	}
	return int(math.Round(float64(minQuantity-stock) / float64(minQuantity) * 100))
}

// PriorityFor ranks a low-stock product. Evaluated in order, first match wins.
func PriorityFor(stock, minQuantity int) Priority {
	if stock == 0 {
		return PriorityCritical
	}
	switch deficit := DeficitPercent(stock, minQuantity); {
	case deficit >= 75:
		return PriorityCritical
	case deficit >= 50:
		return PriorityHigh
	case deficit >= 25:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// TargetStock is the restock ceiling: one and a half thresholds, rounded up.
func TargetStock(minQuantity int) int {
	return int(math.Ceil(float64(minQuantity) * 1.5))
}

// SuggestFor builds a reorder suggestion for a low-stock product.
// The product must have MinQuantity set.
func SuggestFor(p *product.Product) ReorderSuggestion {
	minQty := 0
	if p.MinQuantity != nil {
		minQty = *p.MinQuantity
	}

	target := TargetStock(minQty)
	suggested := target - p.Stock
	if suggested < minQty {
		suggested = minQty
	}

	s := ReorderSuggestion{
		ProductID:         p.ID,
		ProductCode:       p.Code,
		ProductName:       p.Name,
		ProductType:       p.Type,
		CurrentStock:      p.Stock,
		MinQuantity:       minQty,
		TargetStock:       target,
		SuggestedQuantity: suggested,
		Priority:          PriorityFor(p.Stock, minQty),
	}
	if p.PurchasePrice != nil {
		cost := p.PurchasePrice.Mul(decimal.NewFromInt(int64(suggested)))
		s.EstimatedCost = &cost
	}
	return s
}
