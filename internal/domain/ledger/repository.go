package ledger

import (
	"context"

	"velora/internal/core/id"
)

// Repository defines the interface for Movement persistence.
// Movements are append-only; there is no Update or Delete.
type Repository interface {
	// Append inserts a movement. Must be called inside a transaction
	// holding the product row lock, so the before/after bracketing
	// stays consistent with the stock write.
	Append(ctx context.Context, m *Movement) error

	// AppendBatch inserts several movements in one round trip
	// (stocktaking completion writes one per counted difference).
	AppendBatch(ctx context.Context, movements []*Movement) error

	// History retrieves movements for a product, newest first.
	History(ctx context.Context, productID id.ID, filter HistoryFilter) ([]*Movement, error)
}
