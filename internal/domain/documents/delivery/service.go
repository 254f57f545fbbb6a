package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

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

// ProductChecker validates that product references on delivery lines exist.
type ProductChecker interface {
	Exists(ctx context.Context, id id.ID) (bool, error)
}

// Service provides business operations for delivery documents.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	products  ProductChecker
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Delivery]
}

// NewService creates a delivery service.
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
		hooks:     domain.NewHookRegistry[*Delivery](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Delivery] {
	return s.hooks
}

// Create creates a delivery in draft status with an auto-generated number.
// Items are optional at creation; each one must reference an existing product.
func (s *Service) Create(ctx context.Context, doc *Delivery) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	doc.Status = StatusDraft
	doc.RecalculateTotal()

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

	logger.Info(ctx, "delivery created",
		"id", doc.ID,
		"number", doc.Number,
		"items", len(doc.Items))
	return nil
}

// GetByID retrieves a delivery with items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Delivery, error) {
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

// GetByNumber retrieves a delivery by document number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Delivery, error) {
	doc, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	doc.Items = items
	return doc, nil
}

// Update updates the delivery header (not items) while mutable.
func (s *Service) Update(ctx context.Context, doc *Delivery) error {
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	current, err := s.GetByID(ctx, doc.ID)
	if err != nil {
		return err
	}
	if !current.IsMutable() {
		return apperror.NewInvalidState("delivery", string(current.Status), "update")
	}

	// items are managed through AddItem/UpdateItem/RemoveItem
	doc.Items = current.Items
	doc.RecalculateTotal()
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	doc.UpdatedBy = appcontext.GetActorID(ctx)

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// AddItem appends a line to a mutable delivery and recomputes the total.
func (s *Service) AddItem(ctx context.Context, docID, productID id.ID, quantity int, unitCost decimal.Decimal) (*Item, error) {
	var added *Item
	err := s.mutateItems(ctx, docID, "add item", func(doc *Delivery) error {
		added = doc.AddItem(productID, quantity, unitCost)
		if err := added.Validate(); err != nil {
			return err
		}
		return s.checkProducts(ctx, []Item{*added})
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateItem changes quantity/cost/batch fields of a line.
func (s *Service) UpdateItem(ctx context.Context, docID, itemID id.ID, quantity int, unitCost decimal.Decimal, batchNumber *string, expiryDate *time.Time) error {
	return s.mutateItems(ctx, docID, "update item", func(doc *Delivery) error {
		item := doc.FindItem(itemID)
		if item == nil {
			return apperror.NewNotFound("delivery item", itemID)
		}
		item.Quantity = quantity
		item.UnitCost = unitCost
		item.TotalCost = unitCost.Mul(decimal.NewFromInt(int64(quantity)))
		item.BatchNumber = batchNumber
		item.ExpiryDate = expiryDate
		doc.RecalculateTotal()
		return item.Validate()
	})
}

// RemoveItem deletes a line and recomputes the total.
func (s *Service) RemoveItem(ctx context.Context, docID, itemID id.ID) error {
	return s.mutateItems(ctx, docID, "remove item", func(doc *Delivery) error {
		if !doc.RemoveItem(itemID) {
			return apperror.NewNotFound("delivery item", itemID)
		}
		return nil
	})
}

// Receive applies the delivery to stock. In one transaction every item
// increases its product's stock and appends a movement referencing this
// delivery, then the document moves to received. Any failure rolls back
// the whole document: partial stock application is never observable.
func (s *Service) Receive(ctx context.Context, docID id.ID, notes *string) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.IsTerminal() {
			return apperror.NewInvalidState("delivery", string(doc.Status), "receive")
		}

		items, err := s.repo.GetItems(ctx, docID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		if len(items) == 0 {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"cannot receive a delivery with no items").
				WithDetail("deliveryId", docID)
		}
		doc.Items = items

		source := ledger.FromDocument(ledger.SourceDelivery, doc.ID)
		for _, item := range items {
			if _, err := s.ledger.Increase(ctx, item.ProductID, item.Quantity, ledger.TypeDelivery, source); err != nil {
				return fmt.Errorf("apply item %s: %w", item.ID, err)
			}
		}

		now := time.Now().UTC()
		actor := appcontext.GetActorID(ctx)
		doc.Status = StatusReceived
		doc.ReceivedDate = &now
		doc.ReceivedBy = &actor
		if notes != nil {
			doc.Notes = notes
		}
		doc.UpdatedBy = actor

		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return err
	}

	metrics.RecordTransition("delivery", "received")
	logger.Info(ctx, "delivery received", "id", docID)
	return nil
}

// Cancel moves the delivery to cancelled with no stock effect.
func (s *Service) Cancel(ctx context.Context, docID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.IsTerminal() {
			return apperror.NewInvalidState("delivery", string(doc.Status), "cancel")
		}
		doc.Status = StatusCancelled
		doc.UpdatedBy = appcontext.GetActorID(ctx)
		return s.repo.Update(ctx, doc)
	})
}

// List retrieves deliveries with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Delivery], error) {
	return s.repo.List(ctx, filter)
}

// mutateItems loads the document under lock, applies fn while the document
// is still mutable, and persists header + items atomically.
func (s *Service) mutateItems(ctx context.Context, docID id.ID, operation string, fn func(doc *Delivery) error) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if !doc.IsMutable() {
			return apperror.NewInvalidState("delivery", string(doc.Status), operation)
		}

		items, err := s.repo.GetItems(ctx, docID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		doc.Items = items

		if err := fn(doc); err != nil {
			return err
		}
		doc.RecalculateTotal()
		doc.UpdatedBy = appcontext.GetActorID(ctx)

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveItems(ctx, doc.ID, doc.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
}

func (s *Service) checkProducts(ctx context.Context, items []Item) error {
	for _, item := range items {
		ok, err := s.products.Exists(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewNotFound("product", item.ProductID).
				WithDetail("lineNo", item.LineNo)
		}
	}
	return nil
}
