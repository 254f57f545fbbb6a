package warehouseorder

import (
	"context"
	"fmt"
	"time"

	"velora/internal/core/appcontext"
	"velora/internal/core/apperror"
	"velora/internal/core/id"
	"velora/internal/core/numerator"
	"velora/internal/core/tx"
	"velora/internal/domain"
	"velora/internal/domain/ledger"
	"velora/pkg/logger"
	"velora/pkg/metrics"
)

// ProductChecker validates product references on bound order lines.
type ProductChecker interface {
	Exists(ctx context.Context, id id.ID) (bool, error)
}

// Service provides business operations for warehouse orders.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	products  ProductChecker
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*WarehouseOrder]
}

// NewService creates a warehouse order service.
func NewService(
	repo Repository,
	ledgerSvc *ledger.Service,
	products ProductChecker,
	gen numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		products:  products,
		numerator: gen,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*WarehouseOrder](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*WarehouseOrder] {
	return s.hooks
}

// Create creates an order in draft status. At least one item is required;
// lines may be bound to products or free text.
func (s *Service) Create(ctx context.Context, doc *WarehouseOrder) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	doc.Status = StatusDraft
	for i := range doc.Items {
		doc.Items[i].ReceivedQuantity = 0
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkProducts(ctx, doc.Items); err != nil {
		return err
	}

	if doc.Number == "" {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}
	doc.CreatedBy = appcontext.GetActorID(ctx)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveItems(ctx, doc.ID, doc.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "warehouse order created",
		"id", doc.ID,
		"number", doc.Number,
		"items", len(doc.Items))
	return nil
}

// GetByID retrieves an order with items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*WarehouseOrder, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	doc.Items = items
	return doc, nil
}

// Update replaces header fields and the whole item list. Draft only.
func (s *Service) Update(ctx context.Context, doc *WarehouseOrder) error {
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	for i := range doc.Items {
		doc.Items[i].ReceivedQuantity = 0
		if id.IsNil(doc.Items[i].ID) {
			doc.Items[i].ID = id.New()
		}
		doc.Items[i].OrderID = doc.ID
		doc.Items[i].LineNo = i + 1
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, doc.ID)
		if err != nil {
			return err
		}
		if current.Status != StatusDraft {
			return apperror.NewInvalidState("warehouse order", string(current.Status), "update")
		}

		doc.Status = current.Status
		if err := doc.Validate(ctx); err != nil {
			return err
		}
		if err := s.checkProducts(ctx, doc.Items); err != nil {
			return err
		}
		doc.UpdatedBy = appcontext.GetActorID(ctx)

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		// items are replaced wholesale in draft
		return s.repo.SaveItems(ctx, doc.ID, doc.Items)
	})
}

// Send marks a draft order as sent to the supplier.
func (s *Service) Send(ctx context.Context, orderID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if doc.Status != StatusDraft {
			return apperror.NewInvalidState("warehouse order", string(doc.Status), "send")
		}

		now := time.Now().UTC()
		doc.Status = StatusSent
		doc.SentAt = &now
		doc.UpdatedBy = appcontext.GetActorID(ctx)
		return s.repo.Update(ctx, doc)
	})
}

// ReceiptLine is one line of a partial receive call.
type ReceiptLine struct {
	ItemID   id.ID
	Quantity int
}

// ReceiveItems receives specific quantities against individual lines.
// Each bound line's product stock grows by the received quantity; the order
// moves to received when every bound line is full, partially_received
// otherwise. Receiving beyond the ordered quantity is rejected.
func (s *Service) ReceiveItems(ctx context.Context, orderID id.ID, receipts []ReceiptLine) error {
	if len(receipts) == 0 {
		return apperror.NewValidation("at least one receipt line is required")
	}
	for _, r := range receipts {
		if r.Quantity <= 0 {
			return apperror.NewValidation("received quantity must be positive").
				WithDetail("itemId", r.ItemID)
		}
	}

	return s.receive(ctx, orderID, "receive items", nil, func(doc *WarehouseOrder) error {
		for _, r := range receipts {
			item := doc.FindItem(r.ItemID)
			if item == nil {
				return apperror.NewNotFound("order item", r.ItemID)
			}
			if r.Quantity > item.Outstanding() {
				return apperror.NewBusinessRule(apperror.CodeReceiveExceedsOrdered,
					"received quantity exceeds outstanding quantity").
					WithDetail("itemId", r.ItemID).
					WithDetail("outstanding", item.Outstanding()).
					WithDetail("received", r.Quantity)
			}
			item.ReceivedQuantity += r.Quantity

			if item.ProductID != nil {
				source := ledger.FromDocument(ledger.SourceWarehouseOrder, doc.ID)
				if _, err := s.ledger.Increase(ctx, *item.ProductID, r.Quantity, ledger.TypeDelivery, source); err != nil {
					return fmt.Errorf("apply item %s: %w", item.ID, err)
				}
			}
		}
		return nil
	})
}

// Receive receives every outstanding quantity in full.
func (s *Service) Receive(ctx context.Context, orderID id.ID, notes *string) error {
	return s.receive(ctx, orderID, "receive", notes, func(doc *WarehouseOrder) error {
		source := ledger.FromDocument(ledger.SourceWarehouseOrder, doc.ID)
		for i := range doc.Items {
			item := &doc.Items[i]
			outstanding := item.Outstanding()
			if outstanding <= 0 {
				continue
			}
			item.ReceivedQuantity = item.Quantity

			if item.ProductID != nil {
				if _, err := s.ledger.Increase(ctx, *item.ProductID, outstanding, ledger.TypeDelivery, source); err != nil {
					return fmt.Errorf("apply item %s: %w", item.ID, err)
				}
			}
		}
		return nil
	})
}

// Cancel closes the order without any stock effect. Disallowed once received.
func (s *Service) Cancel(ctx context.Context, orderID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if doc.IsTerminal() {
			return apperror.NewInvalidState("warehouse order", string(doc.Status), "cancel")
		}
		doc.Status = StatusCancelled
		doc.UpdatedBy = appcontext.GetActorID(ctx)
		return s.repo.Update(ctx, doc)
	})
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*WarehouseOrder], error) {
	return s.repo.List(ctx, filter)
}

// receive is the shared transactional path of Receive and ReceiveItems.
func (s *Service) receive(ctx context.Context, orderID id.ID, operation string, notes *string, fn func(doc *WarehouseOrder) error) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !doc.IsReceivable() {
			return apperror.NewInvalidState("warehouse order", string(doc.Status), operation)
		}

		items, err := s.repo.GetItems(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		doc.Items = items

		if err := fn(doc); err != nil {
			return err
		}

		actor := appcontext.GetActorID(ctx)
		if doc.AllReceived() {
			now := time.Now().UTC()
			doc.Status = StatusReceived
			doc.ReceivedAt = &now
		} else {
			doc.Status = StatusPartiallyReceived
		}
		if notes != nil {
			doc.Notes = notes
		}
		doc.UpdatedBy = actor

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return s.repo.SaveItems(ctx, doc.ID, doc.Items)
	})
	if err != nil {
		return err
	}

	metrics.RecordTransition("warehouse_order", "received")
	logger.Info(ctx, "warehouse order receive applied", "id", orderID)
	return nil
}

func (s *Service) checkProducts(ctx context.Context, items []Item) error {
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		ok, err := s.products.Exists(ctx, *item.ProductID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewNotFound("product", *item.ProductID).
				WithDetail("lineNo", item.LineNo)
		}
	}
	return nil
}
