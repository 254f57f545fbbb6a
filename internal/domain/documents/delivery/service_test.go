package delivery

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
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

// passthroughTx runs fn directly; the services under test only care that
// their work happens inside one fn call.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProducts struct {
	byID map[id.ID]*product.Product
}

func newFakeProducts(products ...*product.Product) *fakeProducts {
	f := &fakeProducts{byID: make(map[id.ID]*product.Product)}
	for _, p := range products {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeProducts) Exists(_ context.Context, pid id.ID) (bool, error) {
	_, ok := f.byID[pid]
	return ok, nil
}

func (f *fakeProducts) GetForUpdate(_ context.Context, pid id.ID) (*product.Product, error) {
	p, ok := f.byID[pid]
	if !ok {
		return nil, apperror.NewNotFound("product", pid)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) UpdateStock(_ context.Context, pid id.ID, stock int) error {
	f.byID[pid].Stock = stock
	return nil
}

type fakeRepo struct {
	docs  map[id.ID]*Delivery
	items map[id.ID][]Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[id.ID]*Delivery), items: make(map[id.ID][]Item)}
}

func (r *fakeRepo) Create(_ context.Context, doc *Delivery) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, docID id.ID) (*Delivery, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("delivery", docID)
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetByNumber(_ context.Context, number string) (*Delivery, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("delivery", number)
}

func (r *fakeRepo) Update(_ context.Context, doc *Delivery) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("delivery", doc.ID)
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Delivery, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) GetItems(_ context.Context, docID id.ID) ([]Item, error) {
	return append([]Item(nil), r.items[docID]...), nil
}

func (r *fakeRepo) SaveItems(_ context.Context, docID id.ID, items []Item) error {
	r.items[docID] = append([]Item(nil), items...)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Delivery], error) {
	var result domain.ListResult[*Delivery]
	for _, doc := range r.docs {
		result.Items = append(result.Items, doc)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	products *fakeProducts
	ledger   *recordingLedgerRepo
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

func newFixture(products ...*product.Product) *fixture {
	repo := newFakeRepo()
	fp := newFakeProducts(products...)
	lr := &recordingLedgerRepo{}
	svc := NewService(repo, ledger.NewService(lr, fp), fp, &numerator.MockGenerator{}, passthroughTx{})
	return &fixture{svc: svc, repo: repo, products: fp, ledger: lr}
}

func testProduct(stock int) *product.Product {
	p := product.NewProduct("PR0001", "Hair dye 60ml", product.TypeProfessional)
	p.Stock = stock
	return p
}

func ctx() context.Context {
	return appcontext.WithActor(context.Background(), &appcontext.Actor{UserID: "manager-1"})
}

func TestCreate_GeneratesNumberAndTotal(t *testing.T) {
	p := testProduct(0)
	f := newFixture(p)

	doc := NewDelivery(nil)
	doc.AddItem(p.ID, 5, decimal.NewFromInt(120))
	doc.AddItem(p.ID, 2, decimal.NewFromFloat(49.50))

	require.NoError(t, f.svc.Create(ctx(), doc))

	assert.Regexp(t, `^D\d{6}\d{4}$`, doc.Number)
	assert.Equal(t, StatusDraft, doc.Status)
	assert.True(t, doc.TotalCost.Equal(decimal.NewFromInt(699)),
		"5x120 + 2x49.50 = 699, got %s", doc.TotalCost)
	assert.Equal(t, "manager-1", doc.CreatedBy)
}

func TestCreate_UnknownProduct(t *testing.T) {
	f := newFixture()

	doc := NewDelivery(nil)
	doc.AddItem(id.New(), 1, decimal.NewFromInt(10))

	err := f.svc.Create(ctx(), doc)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReceive_AppliesStockAndMovements(t *testing.T) {
	p := testProduct(3)
	f := newFixture(p)

	doc := NewDelivery(nil)
	doc.AddItem(p.ID, 10, decimal.NewFromInt(80))
	require.NoError(t, f.svc.Create(ctx(), doc))

	require.NoError(t, f.svc.Receive(ctx(), doc.ID, nil))

	assert.Equal(t, 13, f.products.byID[p.ID].Stock)

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, got.Status)
	require.NotNil(t, got.ReceivedDate)
	require.NotNil(t, got.ReceivedBy)
	assert.Equal(t, "manager-1", *got.ReceivedBy)

	require.Len(t, f.ledger.movements, 1)
	m := f.ledger.movements[0]
	assert.Equal(t, ledger.TypeDelivery, m.Type)
	assert.Equal(t, ledger.SourceDelivery, m.SourceType)
	require.NotNil(t, m.SourceID)
	assert.Equal(t, doc.ID, *m.SourceID)
	assert.Equal(t, 10, m.Quantity)
	assert.Equal(t, 3, m.QuantityBefore)
	assert.Equal(t, 13, m.QuantityAfter)
}

// A delivery mixing tracked and untracked products must still be receivable:
// the untracked line is accepted but writes no stock and no movement.
func TestReceive_UntrackedItemSkipped(t *testing.T) {
	tracked := testProduct(3)
	untracked := product.NewProduct("PR0002", "Gift wrap service", product.TypeRetail)
	untracked.TrackStock = false
	f := newFixture(tracked, untracked)

	doc := NewDelivery(nil)
	doc.AddItem(tracked.ID, 4, decimal.NewFromInt(80))
	doc.AddItem(untracked.ID, 2, decimal.NewFromInt(15))
	require.NoError(t, f.svc.Create(ctx(), doc))

	require.NoError(t, f.svc.Receive(ctx(), doc.ID, nil))

	assert.Equal(t, 7, f.products.byID[tracked.ID].Stock)
	assert.Equal(t, 0, f.products.byID[untracked.ID].Stock)

	require.Len(t, f.ledger.movements, 1)
	assert.Equal(t, tracked.ID, f.ledger.movements[0].ProductID)

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, got.Status)
}

func TestReceive_AlreadyReceived(t *testing.T) {
	p := testProduct(3)
	f := newFixture(p)

	doc := NewDelivery(nil)
	doc.AddItem(p.ID, 10, decimal.NewFromInt(80))
	require.NoError(t, f.svc.Create(ctx(), doc))
	require.NoError(t, f.svc.Receive(ctx(), doc.ID, nil))

	err := f.svc.Receive(ctx(), doc.ID, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	// second attempt left stock and the ledger untouched
	assert.Equal(t, 13, f.products.byID[p.ID].Stock)
	assert.Len(t, f.ledger.movements, 1)
}

func TestReceive_EmptyDelivery(t *testing.T) {
	f := newFixture()

	doc := NewDelivery(nil)
	require.NoError(t, f.svc.Create(ctx(), doc))

	err := f.svc.Receive(ctx(), doc.ID, nil)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestCancel(t *testing.T) {
	p := testProduct(3)
	f := newFixture(p)

	doc := NewDelivery(nil)
	doc.AddItem(p.ID, 10, decimal.NewFromInt(80))
	require.NoError(t, f.svc.Create(ctx(), doc))

	require.NoError(t, f.svc.Cancel(ctx(), doc.ID))

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, 3, f.products.byID[p.ID].Stock, "cancel has no stock effect")
	assert.Empty(t, f.ledger.movements)
}

func TestCancel_AfterReceiveRejected(t *testing.T) {
	p := testProduct(0)
	f := newFixture(p)

	doc := NewDelivery(nil)
	doc.AddItem(p.ID, 1, decimal.NewFromInt(5))
	require.NoError(t, f.svc.Create(ctx(), doc))
	require.NoError(t, f.svc.Receive(ctx(), doc.ID, nil))

	err := f.svc.Cancel(ctx(), doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestItemMutations_RecomputeTotal(t *testing.T) {
	p := testProduct(0)
	f := newFixture(p)

	doc := NewDelivery(nil)
	require.NoError(t, f.svc.Create(ctx(), doc))

	item, err := f.svc.AddItem(ctx(), doc.ID, p.ID, 4, decimal.NewFromInt(25))
	require.NoError(t, err)

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalCost.Equal(decimal.NewFromInt(100)))

	require.NoError(t, f.svc.UpdateItem(ctx(), doc.ID, item.ID, 6, decimal.NewFromInt(25), nil, nil))
	got, err = f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalCost.Equal(decimal.NewFromInt(150)))

	require.NoError(t, f.svc.RemoveItem(ctx(), doc.ID, item.ID))
	got, err = f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalCost.IsZero())
	assert.Empty(t, got.Items)
}

func TestItemMutations_BlockedAfterReceive(t *testing.T) {
	p := testProduct(0)
	f := newFixture(p)

	doc := NewDelivery(nil)
	doc.AddItem(p.ID, 1, decimal.NewFromInt(5))
	require.NoError(t, f.svc.Create(ctx(), doc))
	require.NoError(t, f.svc.Receive(ctx(), doc.ID, nil))

	_, err := f.svc.AddItem(ctx(), doc.ID, p.ID, 1, decimal.NewFromInt(5))
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	err = f.svc.RemoveItem(ctx(), doc.ID, doc.Items[0].ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}
