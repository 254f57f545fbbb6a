package warehouseorder

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
	docs  map[id.ID]*WarehouseOrder
	items map[id.ID][]Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[id.ID]*WarehouseOrder), items: make(map[id.ID][]Item)}
}

func (r *fakeRepo) Create(_ context.Context, doc *WarehouseOrder) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, docID id.ID) (*WarehouseOrder, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("warehouse order", docID)
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetByNumber(_ context.Context, number string) (*WarehouseOrder, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("warehouse order", number)
}

func (r *fakeRepo) Update(_ context.Context, doc *WarehouseOrder) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("warehouse order", doc.ID)
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*WarehouseOrder, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) GetItems(_ context.Context, docID id.ID) ([]Item, error) {
	return append([]Item(nil), r.items[docID]...), nil
}

func (r *fakeRepo) SaveItems(_ context.Context, docID id.ID, items []Item) error {
	r.items[docID] = append([]Item(nil), items...)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*WarehouseOrder], error) {
	var result domain.ListResult[*WarehouseOrder]
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
	p := product.NewProduct("PR-"+name, name, product.TypeConsumable)
	p.Stock = stock
	return p
}

func ctx() context.Context {
	return appcontext.WithActor(context.Background(), &appcontext.Actor{UserID: "manager-1"})
}

func TestCreate_RequiresItems(t *testing.T) {
	f := newFixture()

	doc := NewWarehouseOrder(nil)
	err := f.svc.Create(ctx(), doc)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreate_MixedLines(t *testing.T) {
	p := testProduct("gloves", 0)
	f := newFixture(p)

	doc := NewWarehouseOrder(nil)
	doc.AddItem(p.ID, p.Name, 100)
	doc.AddFreeTextItem("green towels 50x90", 20)

	require.NoError(t, f.svc.Create(ctx(), doc))

	assert.Regexp(t, `^O\d{10}$`, doc.Number)
	assert.Equal(t, StatusDraft, doc.Status)
	require.Len(t, doc.Items, 2)
	assert.NotNil(t, doc.Items[0].ProductID)
	assert.Nil(t, doc.Items[1].ProductID)
}

func TestCreate_UnknownProduct(t *testing.T) {
	f := newFixture()

	doc := NewWarehouseOrder(nil)
	doc.AddItem(id.New(), "phantom", 1)

	err := f.svc.Create(ctx(), doc)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSend(t *testing.T) {
	p := testProduct("gloves", 0)
	f := newFixture(p)

	doc := NewWarehouseOrder(nil)
	doc.AddItem(p.ID, p.Name, 10)
	require.NoError(t, f.svc.Create(ctx(), doc))

	require.NoError(t, f.svc.Send(ctx(), doc.ID))

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, got.Status)
	require.NotNil(t, got.SentAt)

	err = f.svc.Send(ctx(), doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestReceive_Full(t *testing.T) {
	gloves := testProduct("gloves", 5)
	foil := testProduct("foil", 0)
	f := newFixture(gloves, foil)

	doc := NewWarehouseOrder(nil)
	doc.AddItem(gloves.ID, gloves.Name, 100)
	doc.AddItem(foil.ID, foil.Name, 10)
	doc.AddFreeTextItem("reception flowers", 1)
	require.NoError(t, f.svc.Create(ctx(), doc))
	require.NoError(t, f.svc.Send(ctx(), doc.ID))

	require.NoError(t, f.svc.Receive(ctx(), doc.ID, nil))

	assert.Equal(t, 105, f.products.byID[gloves.ID].Stock)
	assert.Equal(t, 10, f.products.byID[foil.ID].Stock)

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, got.Status)
	require.NotNil(t, got.ReceivedAt)
	for _, it := range got.Items {
		assert.Equal(t, it.Quantity, it.ReceivedQuantity)
	}

	// free-text line produces no movement
	require.Len(t, f.ledger.movements, 2)
	for _, m := range f.ledger.movements {
		assert.Equal(t, ledger.TypeDelivery, m.Type)
		assert.Equal(t, ledger.SourceWarehouseOrder, m.SourceType)
		require.NotNil(t, m.SourceID)
		assert.Equal(t, doc.ID, *m.SourceID)
	}
}

func TestReceiveItems_Partial(t *testing.T) {
	gloves := testProduct("gloves", 0)
	f := newFixture(gloves)

	doc := NewWarehouseOrder(nil)
	doc.AddItem(gloves.ID, gloves.Name, 100)
	require.NoError(t, f.svc.Create(ctx(), doc))
	require.NoError(t, f.svc.Send(ctx(), doc.ID))

	itemID := doc.Items[0].ID
	require.NoError(t, f.svc.ReceiveItems(ctx(), doc.ID, []ReceiptLine{{ItemID: itemID, Quantity: 40}}))

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallyReceived, got.Status)
	assert.Equal(t, 40, got.Items[0].ReceivedQuantity)
	assert.Equal(t, 40, f.products.byID[gloves.ID].Stock)
	assert.Nil(t, got.ReceivedAt)

	// second partial completes the line and the order
	require.NoError(t, f.svc.ReceiveItems(ctx(), doc.ID, []ReceiptLine{{ItemID: itemID, Quantity: 60}}))

	got, err = f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, got.Status)
	require.NotNil(t, got.ReceivedAt)
	assert.Equal(t, 100, f.products.byID[gloves.ID].Stock)
	require.Len(t, f.ledger.movements, 2)
}

func TestReceiveItems_ExceedsOutstanding(t *testing.T) {
	gloves := testProduct("gloves", 0)
	f := newFixture(gloves)

	doc := NewWarehouseOrder(nil)
	doc.AddItem(gloves.ID, gloves.Name, 10)
	require.NoError(t, f.svc.Create(ctx(), doc))
	require.NoError(t, f.svc.Send(ctx(), doc.ID))

	err := f.svc.ReceiveItems(ctx(), doc.ID, []ReceiptLine{{ItemID: doc.Items[0].ID, Quantity: 11}})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeReceiveExceedsOrdered, appErr.Code)

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, got.Status)
	assert.Equal(t, 0, f.products.byID[gloves.ID].Stock)
}

func TestReceive_RequiresSent(t *testing.T) {
	gloves := testProduct("gloves", 0)
	f := newFixture(gloves)

	doc := NewWarehouseOrder(nil)
	doc.AddItem(gloves.ID, gloves.Name, 10)
	require.NoError(t, f.svc.Create(ctx(), doc))

	err := f.svc.Receive(ctx(), doc.ID, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestUpdate_ReplacesLinesInDraft(t *testing.T) {
	gloves := testProduct("gloves", 0)
	foil := testProduct("foil", 0)
	f := newFixture(gloves, foil)

	doc := NewWarehouseOrder(nil)
	doc.AddItem(gloves.ID, gloves.Name, 10)
	require.NoError(t, f.svc.Create(ctx(), doc))

	doc.Items = nil
	doc.AddItem(foil.ID, foil.Name, 30)
	require.NoError(t, f.svc.Update(ctx(), doc))

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].ProductID)
	assert.Equal(t, foil.ID, *got.Items[0].ProductID)
	assert.Equal(t, 30, got.Items[0].Quantity)
}

func TestUpdate_BlockedAfterSend(t *testing.T) {
	gloves := testProduct("gloves", 0)
	f := newFixture(gloves)

	doc := NewWarehouseOrder(nil)
	doc.AddItem(gloves.ID, gloves.Name, 10)
	require.NoError(t, f.svc.Create(ctx(), doc))
	require.NoError(t, f.svc.Send(ctx(), doc.ID))

	doc.Items[0].Quantity = 99
	err := f.svc.Update(ctx(), doc)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestCancel(t *testing.T) {
	gloves := testProduct("gloves", 0)
	f := newFixture(gloves)

	doc := NewWarehouseOrder(nil)
	doc.AddItem(gloves.ID, gloves.Name, 10)
	require.NoError(t, f.svc.Create(ctx(), doc))
	require.NoError(t, f.svc.Send(ctx(), doc.ID))

	// cancelling a partially received order is allowed
	require.NoError(t, f.svc.ReceiveItems(ctx(), doc.ID, []ReceiptLine{{ItemID: doc.Items[0].ID, Quantity: 3}}))
	require.NoError(t, f.svc.Cancel(ctx(), doc.ID))

	got, err := f.svc.GetByID(ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, 3, f.products.byID[gloves.ID].Stock, "already received stock stays applied")
}

func TestCancel_AfterReceivedRejected(t *testing.T) {
	gloves := testProduct("gloves", 0)
	f := newFixture(gloves)

	doc := NewWarehouseOrder(nil)
	doc.AddItem(gloves.ID, gloves.Name, 10)
	require.NoError(t, f.svc.Create(ctx(), doc))
	require.NoError(t, f.svc.Send(ctx(), doc.ID))
	require.NoError(t, f.svc.Receive(ctx(), doc.ID, nil))

	err := f.svc.Cancel(ctx(), doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}
