package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velora/internal/core/appcontext"
	"velora/internal/core/apperror"
	"velora/internal/core/id"
	"velora/internal/domain/catalogs/product"
)

// fakeProductStore keeps products in memory. GetForUpdate returns a copy so
// tests catch services that mutate the entity instead of calling UpdateStock.
type fakeProductStore struct {
	products map[id.ID]*product.Product
}

func newFakeProductStore(products ...*product.Product) *fakeProductStore {
	s := &fakeProductStore{products: make(map[id.ID]*product.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeProductStore) GetForUpdate(_ context.Context, pid id.ID) (*product.Product, error) {
	p, ok := s.products[pid]
	if !ok {
		return nil, apperror.NewNotFound("product", pid)
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProductStore) UpdateStock(_ context.Context, pid id.ID, stock int) error {
	p, ok := s.products[pid]
	if !ok {
		return apperror.NewNotFound("product", pid)
	}
	p.Stock = stock
	return nil
}

type fakeMovementRepo struct {
	appended []*Movement
}

func (r *fakeMovementRepo) Append(_ context.Context, m *Movement) error {
	r.appended = append(r.appended, m)
	return nil
}

func (r *fakeMovementRepo) AppendBatch(_ context.Context, movements []*Movement) error {
	r.appended = append(r.appended, movements...)
	return nil
}

func (r *fakeMovementRepo) History(_ context.Context, productID id.ID, filter HistoryFilter) ([]*Movement, error) {
	var out []*Movement
	for i := len(r.appended) - 1; i >= 0; i-- {
		m := r.appended[i]
		if m.ProductID != productID {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		out = append(out, m)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func newTestProduct(stock int) *product.Product {
	p := product.NewProduct("PR0001", "Shampoo 500ml", product.TypeRetail)
	p.Stock = stock
	return p
}

func actorCtx() context.Context {
	return appcontext.WithActor(context.Background(), &appcontext.Actor{UserID: "user-1"})
}

func TestIncrease(t *testing.T) {
	p := newTestProduct(10)
	store := newFakeProductStore(p)
	repo := &fakeMovementRepo{}
	svc := NewService(repo, store)

	m, err := svc.Increase(actorCtx(), p.ID, 3, TypeDelivery, FromDocument(SourceDelivery, id.New()))
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, 13, store.products[p.ID].Stock)
	assert.Equal(t, 3, m.Quantity)
	assert.Equal(t, 10, m.QuantityBefore)
	assert.Equal(t, 13, m.QuantityAfter)
	assert.Equal(t, TypeDelivery, m.Type)
	assert.Equal(t, SourceDelivery, m.SourceType)
	assert.Equal(t, "user-1", m.CreatedBy)
}

func TestIncrease_RejectsNonPositive(t *testing.T) {
	p := newTestProduct(10)
	svc := NewService(&fakeMovementRepo{}, newFakeProductStore(p))

	for _, qty := range []int{0, -5} {
		_, err := svc.Increase(actorCtx(), p.ID, qty, TypeDelivery, Manual())
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	}
}

func TestDecrease(t *testing.T) {
	p := newTestProduct(10)
	store := newFakeProductStore(p)
	repo := &fakeMovementRepo{}
	svc := NewService(repo, store)

	m, err := svc.Decrease(actorCtx(), p.ID, 4, TypeSale, FromDocument(SourceAppointment, id.New()))
	require.NoError(t, err)

	assert.Equal(t, 6, store.products[p.ID].Stock)
	assert.Equal(t, -4, m.Quantity)
	assert.Equal(t, 10, m.QuantityBefore)
	assert.Equal(t, 6, m.QuantityAfter)
}

func TestDecrease_AllowsNegativeStock(t *testing.T) {
	// Non-negative stock is a caller-side convention; the ledger records
	// whatever actually happened.
	p := newTestProduct(2)
	store := newFakeProductStore(p)
	svc := NewService(&fakeMovementRepo{}, store)

	m, err := svc.Decrease(actorCtx(), p.ID, 5, TypeUsage, Manual())
	require.NoError(t, err)
	assert.Equal(t, -3, store.products[p.ID].Stock)
	assert.Equal(t, -3, m.QuantityAfter)
}

func TestSetExact(t *testing.T) {
	p := newTestProduct(10)
	store := newFakeProductStore(p)
	repo := &fakeMovementRepo{}
	svc := NewService(repo, store)

	docID := id.New()
	m, err := svc.SetExact(actorCtx(), p.ID, 7, FromDocument(SourceStocktaking, docID))
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, 7, store.products[p.ID].Stock)
	assert.Equal(t, -3, m.Quantity)
	assert.Equal(t, 10, m.QuantityBefore)
	assert.Equal(t, 7, m.QuantityAfter)
	assert.Equal(t, TypeStocktaking, m.Type)
	require.NotNil(t, m.SourceID)
	assert.Equal(t, docID, *m.SourceID)
}

func TestSetExact_NoOpWhenUnchanged(t *testing.T) {
	p := newTestProduct(10)
	store := newFakeProductStore(p)
	repo := &fakeMovementRepo{}
	svc := NewService(repo, store)

	m, err := svc.SetExact(actorCtx(), p.ID, 10, FromDocument(SourceStocktaking, id.New()))
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Empty(t, repo.appended)
	assert.Equal(t, 10, store.products[p.ID].Stock)
}

func TestAdjust(t *testing.T) {
	p := newTestProduct(10)
	store := newFakeProductStore(p)
	repo := &fakeMovementRepo{}
	svc := NewService(repo, store)

	m, err := svc.Adjust(actorCtx(), p.ID, -2, "broken in storage")
	require.NoError(t, err)

	assert.Equal(t, 8, store.products[p.ID].Stock)
	assert.Equal(t, TypeAdjustment, m.Type)
	assert.Equal(t, SourceManual, m.SourceType)
	require.NotNil(t, m.Reason)
	assert.Equal(t, "broken in storage", *m.Reason)
}

func TestAdjust_RequiresReason(t *testing.T) {
	p := newTestProduct(10)
	svc := NewService(&fakeMovementRepo{}, newFakeProductStore(p))

	_, err := svc.Adjust(actorCtx(), p.ID, -2, "")
	require.Error(t, err)

	_, err = svc.Adjust(actorCtx(), p.ID, 0, "nothing happened")
	require.Error(t, err)
}

// Untracked products pass through document postings as no-ops: stock stays
// put, no movement is written, and the caller gets no error. A delivery that
// mixes tracked and untracked lines must still be receivable.
func TestApply_UntrackedProductSkipped(t *testing.T) {
	p := newTestProduct(10)
	p.TrackStock = false
	store := newFakeProductStore(p)
	repo := &fakeMovementRepo{}
	svc := NewService(repo, store)

	m, err := svc.Increase(actorCtx(), p.ID, 5, TypeDelivery, FromDocument(SourceDelivery, id.New()))
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Equal(t, 10, store.products[p.ID].Stock)
	assert.Empty(t, repo.appended)

	m, err = svc.Decrease(actorCtx(), p.ID, 3, TypeSale, Manual())
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Equal(t, 10, store.products[p.ID].Stock)
}

// Manual adjustments name a single product explicitly, so an untracked
// product is rejected rather than silently skipped.
func TestAdjust_RejectsUntrackedProduct(t *testing.T) {
	p := newTestProduct(10)
	p.TrackStock = false
	svc := NewService(&fakeMovementRepo{}, newFakeProductStore(p))

	_, err := svc.Adjust(actorCtx(), p.ID, -2, "broken in storage")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestApply_ProductNotFound(t *testing.T) {
	svc := NewService(&fakeMovementRepo{}, newFakeProductStore())

	_, err := svc.Increase(actorCtx(), id.New(), 1, TypeDelivery, Manual())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

// TestMovementChaining exercises a mixed sequence of operations and verifies
// the per-product chain: each movement's before equals the previous after,
// and final stock equals the net sum of all deltas.
func TestMovementChaining(t *testing.T) {
	p := newTestProduct(0)
	store := newFakeProductStore(p)
	repo := &fakeMovementRepo{}
	svc := NewService(repo, store)
	ctx := actorCtx()

	_, err := svc.Increase(ctx, p.ID, 20, TypeDelivery, FromDocument(SourceDelivery, id.New()))
	require.NoError(t, err)
	_, err = svc.Decrease(ctx, p.ID, 6, TypeSale, FromDocument(SourceAppointment, id.New()))
	require.NoError(t, err)
	_, err = svc.Adjust(ctx, p.ID, -1, "sample given away")
	require.NoError(t, err)
	_, err = svc.SetExact(ctx, p.ID, 12, FromDocument(SourceStocktaking, id.New()))
	require.NoError(t, err)

	require.Len(t, repo.appended, 4)

	net := 0
	for i, m := range repo.appended {
		assert.Equal(t, m.QuantityBefore+m.Quantity, m.QuantityAfter)
		if i > 0 {
			assert.Equal(t, repo.appended[i-1].QuantityAfter, m.QuantityBefore,
				"movement %d must continue the chain", i)
		}
		net += m.Quantity
	}
	assert.Equal(t, net, store.products[p.ID].Stock)
	assert.Equal(t, 12, store.products[p.ID].Stock)
}

func TestHistory_FilterAndOrder(t *testing.T) {
	p := newTestProduct(0)
	store := newFakeProductStore(p)
	repo := &fakeMovementRepo{}
	svc := NewService(repo, store)
	ctx := actorCtx()

	_, err := svc.Increase(ctx, p.ID, 10, TypeDelivery, Manual())
	require.NoError(t, err)
	_, err = svc.Decrease(ctx, p.ID, 2, TypeSale, Manual())
	require.NoError(t, err)
	_, err = svc.Decrease(ctx, p.ID, 1, TypeSale, Manual())
	require.NoError(t, err)

	all, err := svc.History(ctx, p.ID, HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// newest first
	assert.Equal(t, -1, all[0].Quantity)
	assert.Equal(t, 10, all[2].Quantity)

	sale := TypeSale
	sales, err := svc.History(ctx, p.ID, HistoryFilter{Type: &sale})
	require.NoError(t, err)
	assert.Len(t, sales, 2)
}
