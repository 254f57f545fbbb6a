package dto

import (
	"time"

	"velora/internal/core/id"
	"velora/internal/domain/documents/stocktaking"
)

// CreateStocktakingRequest represents a request to create a count session.
type CreateStocktakingRequest struct {
	Date            *time.Time `json:"date,omitempty"`
	StocktakingDate *time.Time `json:"stocktakingDate,omitempty"`
	Comment         string     `json:"comment,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// ToEntity converts the request to a domain entity.
func (r *CreateStocktakingRequest) ToEntity() *stocktaking.Stocktaking {
	doc := stocktaking.NewStocktaking()
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.StocktakingDate != nil {
		doc.StocktakingDate = *r.StocktakingDate
	}
	doc.Comment = r.Comment
	doc.Notes = r.Notes
	return doc
}

// UpdateStocktakingItemRequest records a counted quantity for one line.
type UpdateStocktakingItemRequest struct {
	Counted *int `json:"counted" binding:"required,min=0"`
}

// AddStocktakingItemsRequest records counted quantities in bulk.
type AddStocktakingItemsRequest struct {
	Items []CountEntryRequest `json:"items" binding:"required,min=1,dive"`
}

// CountEntryRequest is one product count in a bulk request.
type CountEntryRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Counted   *int   `json:"counted" binding:"required,min=0"`
}

// ToCounts converts the bulk request to domain count entries.
func (r *AddStocktakingItemsRequest) ToCounts() ([]stocktaking.CountedProduct, error) {
	counts := make([]stocktaking.CountedProduct, 0, len(r.Items))
	for _, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return nil, err
		}
		counts = append(counts, stocktaking.CountedProduct{
			ProductID: productID,
			Counted:   *item.Counted,
		})
	}
	return counts, nil
}

// CompleteStocktakingRequest finalizes a count session.
type CompleteStocktakingRequest struct {
	// ApplyDifferences writes counted values back to stock; false keeps
	// the session as an audit record only
	ApplyDifferences bool    `json:"applyDifferences"`
	Notes            *string `json:"notes,omitempty"`
}
