package stocktaking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velora/internal/core/appcontext"
	"velora/internal/core/apperror"
	"velora/internal/core/id"
	"velora/internal/core/numerator"
	"velora/internal/domain"
	"velora/internal/domain/catalogs/product"
	"velora/internal/domain/ledger"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProducts struct {
	byID  map[id.ID]*product.Product
	order []id.ID
}

func newFakeProducts(products ...*product.Product) *fakeProducts {
	f := &fakeProducts{byID: make(map[id.ID]*product.Product)}
	for _, p := range products {
		f.byID[p.ID] = p
		f.order = append(f.order, p.ID)
	}
	return f
}

func (f *fakeProducts) add(p *product.Product) {
	f.byID[p.ID] = p
	f.order = append(f.order, p.ID)
}

func (f *fakeProducts) ListTracked(_ context.Context) ([]*product.Product, error) {
	var out []*product.Product
	for _, pid := range f.order {
		p := f.byID[pid]
		if p.TrackStock && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) GetByID(_ context.Context, pid id.ID) (*product.Product, error) {
	p, ok := f.byID[pid]
	if !ok {
		return nil, apperror.NewNotFound("product", pid)
	}
	return p, nil
}

func (f *fakeProducts) GetForUpdate(ctx context.Context, pid id.ID) (*product.Product, error) {
	p, err := f.GetByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) UpdateStock(_ context.Context, pid id.ID, stock int) error {
	f.byID[pid].Stock = stock
	return nil
}

type fakeRepo struct {
	docs  map[id.ID]*Stocktaking
	items map[id.ID][]Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[id.ID]*Stocktaking), items: make(map[id.ID][]Item)}
}

func (r *fakeRepo) Create(_ context.Context, doc *Stocktaking) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, docID id.ID) (*Stocktaking, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("stocktaking", docID)
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetByNumber(_ context.Context, number string) (*Stocktaking, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("stocktaking", number)
}

func (r *fakeRepo) Update(_ context.Context, doc *Stocktaking) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("stocktaking", doc.ID)
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Stocktaking, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) GetItems(_ context.Context, docID id.ID) ([]Item, error) {
	return append([]Item(nil), r.items[docID]...), nil
}

func (r *fakeRepo) SaveItems(_ context.Context, docID id.ID, items []Item) error {
	r.items[docID] = append([]Item(nil), items...)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Stocktaking], error) {
	var result domain.ListResult[*Stocktaking]
	for _, doc := range r.docs {
		result.Items = append(result.Items, doc)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

type recordingLedgerRepo struct {
	movements []*ledger.Movement
}

func (r *recordingLedgerRepo) Append(_ context.Context, m *ledger.Movement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *recordingLedgerRepo) AppendBatch(_ context.Context, ms []*ledger.Movement) error {
	r.movements = append(r.movements, ms...)
	return nil
}

func (r *recordingLedgerRepo) History(_ context.Context, _ id.ID, _ ledger.HistoryFilter) ([]*ledger.Movement, error) {
	return nil, nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	products *fakeProducts
	ledger   *recordingLedgerRepo
}

func newFixture(products ...*product.Product) *fixture {
	repo := newFakeRepo()
	fp := newFakeProducts(products...)
	lr := &recordingLedgerRepo{}
	svc := NewService(repo, ledger.NewService(lr, fp), fp, &numerator.MockGenerator{}, passthroughTx{})
	return &fixture{svc: svc, repo: repo, products: fp, ledger: lr}
}

func testProduct(name string, stock int) *product.Product {
	p := product.NewProduct("PR-"+name, name, product.TypeProfessional)
	p.Stock = stock
	return p
}

func ctx() context.Context {
	return appcontext.WithActor(context.Background(), &appcontext.Actor{UserID: "auditor-1"})
}

func (f *fixture) createStarted(t *testing.T) *Stocktaking {
	t.Helper()
	doc := NewStocktaking()
	require.NoError(t, f.svc.Create(ctx(), doc))
	require.NoError(t, f.svc.Start(ctx(), doc.ID))
	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	return got
}

func TestCreate(t *testing.T) {
	f := newFixture()

	doc := NewStocktaking()
	require.NoError(t, f.svc.Create(ctx(), doc))

	assert.Regexp(t, `^I\d{10}$`, doc.Number)
	assert.Equal(t, StatusDraft, doc.Status)
	assert.Empty(t, doc.Items, "header only until Start")
}

func TestStart_SnapshotsTrackedProducts(t *testing.T) {
	tracked := testProduct("dye", 14)
	untracked := testProduct("service", 0)
	untracked.TrackStock = false
	inactive := testProduct("old-wax", 3)
	inactive.IsActive = false

	f := newFixture(tracked, untracked, inactive)
	doc := f.createStarted(t)

	assert.Equal(t, StatusInProgress, doc.Status)
	require.NotNil(t, doc.StartedAt)
	require.Len(t, doc.Items, 1, "only active tracked products enter the snapshot")
	item := doc.Items[0]
	assert.Equal(t, tracked.ID, item.ProductID)
	assert.Equal(t, 14, item.SystemQuantity)
	assert.Nil(t, item.CountedQuantity)
}

func TestStart_OnlyFromDraft(t *testing.T) {
	f := newFixture(testProduct("dye", 5))
	doc := f.createStarted(t)

	err := f.svc.Start(ctx(), doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestStart_SnapshotIsPointInTime(t *testing.T) {
	p1 := testProduct("dye", 5)
	f := newFixture(p1)
	doc := f.createStarted(t)

	// product created after Start is not part of this stocktaking
	f.products.add(testProduct("shampoo", 9))

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}

func TestUpdateItem_RecomputesDifference(t *testing.T) {
	p := testProduct("dye", 10)
	f := newFixture(p)
	doc := f.createStarted(t)

	require.NoError(t, f.svc.UpdateItem(ctx(), doc.ID, doc.Items[0].ID, 7))

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	item := got.Items[0]
	require.NotNil(t, item.CountedQuantity)
	assert.Equal(t, 7, *item.CountedQuantity)
	assert.Equal(t, -3, item.Difference)
}

func TestAddItems_AppendsUnsnapshottedWithLiveStock(t *testing.T) {
	p1 := testProduct("dye", 10)
	f := newFixture(p1)
	doc := f.createStarted(t)

	late := testProduct("shampoo", 4)
	f.products.add(late)

	require.NoError(t, f.svc.AddItems(ctx(), doc.ID, []CountedProduct{
		{ProductID: p1.ID, Counted: 10},
		{ProductID: late.ID, Counted: 6},
	}))

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)

	appended := got.FindItemByProduct(late.ID)
	require.NotNil(t, appended)
	assert.Equal(t, 4, appended.SystemQuantity, "live stock becomes the system quantity")
	assert.Equal(t, 2, appended.Difference)
}

func TestComplete_FailsWithUncountedItems(t *testing.T) {
	f := newFixture(testProduct("dye", 10), testProduct("shampoo", 4))
	doc := f.createStarted(t)

	require.NoError(t, f.svc.UpdateItem(ctx(), doc.ID, doc.Items[0].ID, 10))

	err := f.svc.Complete(ctx(), doc.ID, true, nil)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUncountedItems, appErr.Code)

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status, "rejected completion leaves the document as it was")
	assert.Empty(t, f.ledger.movements)
}

func TestComplete_AppliesDifferences(t *testing.T) {
	short := testProduct("dye", 10)    // counted 7 → -3
	exact := testProduct("shampoo", 4) // counted 4 → no movement
	over := testProduct("wax", 2)      // counted 5 → +3
	f := newFixture(short, exact, over)
	doc := f.createStarted(t)

	require.NoError(t, f.svc.AddItems(ctx(), doc.ID, []CountedProduct{
		{ProductID: short.ID, Counted: 7},
		{ProductID: exact.ID, Counted: 4},
		{ProductID: over.ID, Counted: 5},
	}))

	require.NoError(t, f.svc.Complete(ctx(), doc.ID, true, nil))

	assert.Equal(t, 7, f.products.byID[short.ID].Stock)
	assert.Equal(t, 4, f.products.byID[exact.ID].Stock)
	assert.Equal(t, 5, f.products.byID[over.ID].Stock)

	require.Len(t, f.ledger.movements, 2, "zero differences produce no movement")
	for _, m := range f.ledger.movements {
		assert.Equal(t, ledger.TypeStocktaking, m.Type)
		assert.Equal(t, ledger.SourceStocktaking, m.SourceType)
		require.NotNil(t, m.SourceID)
		assert.Equal(t, doc.ID, *m.SourceID)
		assert.Equal(t, m.QuantityBefore+m.Quantity, m.QuantityAfter)
	}

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedBy)
	assert.Equal(t, "auditor-1", *got.CompletedBy)
	require.NotNil(t, got.CompletedAt)
}

func TestComplete_AuditOnly(t *testing.T) {
	p := testProduct("dye", 10)
	f := newFixture(p)
	doc := f.createStarted(t)

	require.NoError(t, f.svc.UpdateItem(ctx(), doc.ID, doc.Items[0].ID, 3))
	require.NoError(t, f.svc.Complete(ctx(), doc.ID, false, nil))

	assert.Equal(t, 10, f.products.byID[p.ID].Stock, "audit-only completion never touches stock")
	assert.Empty(t, f.ledger.movements)

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestComplete_AlreadyCompleted(t *testing.T) {
	p := testProduct("dye", 10)
	f := newFixture(p)
	doc := f.createStarted(t)

	require.NoError(t, f.svc.UpdateItem(ctx(), doc.ID, doc.Items[0].ID, 10))
	require.NoError(t, f.svc.Complete(ctx(), doc.ID, true, nil))

	err := f.svc.Complete(ctx(), doc.ID, true, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestCancel(t *testing.T) {
	p := testProduct("dye", 10)
	f := newFixture(p)
	doc := f.createStarted(t)

	require.NoError(t, f.svc.Cancel(ctx(), doc.ID))

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Empty(t, f.ledger.movements)

	err = f.svc.Complete(ctx(), doc.ID, true, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}
