package stocktaking

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
	"velora/internal/domain/catalogs/product"
	"velora/internal/domain/ledger"
	"velora/pkg/logger"
	"velora/pkg/metrics"
)

// ProductSource supplies the snapshot population and live stock for rows
// appended after the snapshot.
type ProductSource interface {
	ListTracked(ctx context.Context) ([]*product.Product, error)
	GetByID(ctx context.Context, id id.ID) (*product.Product, error)
}

// Service provides business operations for stocktaking documents.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	products  ProductSource
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Stocktaking]
}

// NewService creates a stocktaking service.
func NewService(
	repo Repository,
	ledgerSvc *ledger.Service,
	products ProductSource,
	gen numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		products:  products,
		numerator: gen,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Stocktaking](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Stocktaking] {
	return s.hooks
}

// Create creates a stocktaking header in draft status.
func (s *Service) Create(ctx context.Context, doc *Stocktaking) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	doc.Status = StatusDraft
	doc.Items = nil
	if err := doc.Validate(ctx); err != nil {
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
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "stocktaking created", "id", doc.ID, "number", doc.Number)
	return nil
}

// GetByID retrieves a stocktaking with its count sheet.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Stocktaking, error) {
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

// Start snapshots every active stock-tracked product into the count sheet
// (systemQuantity = live stock, countedQuantity = null) and moves the
// document to in_progress. Products created afterwards are not part of
// this stocktaking.
func (s *Service) Start(ctx context.Context, docID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.Status != StatusDraft {
			return apperror.NewInvalidState("stocktaking", string(doc.Status), "start")
		}

		tracked, err := s.products.ListTracked(ctx)
		if err != nil {
			return fmt.Errorf("snapshot products: %w", err)
		}

		items := make([]Item, 0, len(tracked))
		for _, p := range tracked {
			items = append(items, Item{
				ID:             id.New(),
				StocktakingID:  doc.ID,
				ProductID:      p.ID,
				SystemQuantity: p.Stock,
			})
		}

		now := time.Now().UTC()
		doc.Status = StatusInProgress
		doc.StartedAt = &now
		doc.UpdatedBy = appcontext.GetActorID(ctx)

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveItems(ctx, doc.ID, items); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}

		logger.Info(ctx, "stocktaking started",
			"id", doc.ID,
			"products", len(items))
		return nil
	})
	return err
}

// UpdateItem writes a counted quantity for one row.
func (s *Service) UpdateItem(ctx context.Context, docID, itemID id.ID, counted int) error {
	if counted < 0 {
		return apperror.NewValidation("counted quantity cannot be negative").
			WithDetail("counted", counted)
	}
	return s.mutateItems(ctx, docID, "update item", func(_ context.Context, doc *Stocktaking) error {
		item := doc.FindItem(itemID)
		if item == nil {
			return apperror.NewNotFound("stocktaking item", itemID)
		}
		item.SetCounted(counted)
		return nil
	})
}

// CountedProduct is one count entry in an AddItems call.
type CountedProduct struct {
	ProductID id.ID
	Counted   int
}

// AddItems writes counted quantities in bulk. Products already in the
// snapshot get their count updated; products missing from the snapshot
// are appended with their live stock as systemQuantity.
func (s *Service) AddItems(ctx context.Context, docID id.ID, counts []CountedProduct) error {
	if len(counts) == 0 {
		return apperror.NewValidation("at least one count entry is required")
	}
	for _, c := range counts {
		if c.Counted < 0 {
			return apperror.NewValidation("counted quantity cannot be negative").
				WithDetail("productId", c.ProductID)
		}
	}

	return s.mutateItems(ctx, docID, "add items", func(ctx context.Context, doc *Stocktaking) error {
		for _, c := range counts {
			if item := doc.FindItemByProduct(c.ProductID); item != nil {
				item.SetCounted(c.Counted)
				continue
			}

			p, err := s.products.GetByID(ctx, c.ProductID)
			if err != nil {
				return err
			}
			item := Item{
				ID:             id.New(),
				StocktakingID:  doc.ID,
				ProductID:      p.ID,
				SystemQuantity: p.Stock,
			}
			item.SetCounted(c.Counted)
			doc.Items = append(doc.Items, item)
		}
		return nil
	})
}

// Complete closes the stocktaking. Every row must be counted. When
// applyDifferences is true each nonzero difference is written back through
// the ledger (stock = countedQuantity, movement type stocktaking); zero
// differences produce no movement. When false the document closes as a
// pure audit record with no stock or ledger writes.
func (s *Service) Complete(ctx context.Context, docID id.ID, applyDifferences bool, notes *string) error {
	var applied int
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.IsTerminal() {
			return apperror.NewInvalidState("stocktaking", string(doc.Status), "complete")
		}

		items, err := s.repo.GetItems(ctx, docID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		doc.Items = items

		if uncounted := doc.UncountedItems(); len(uncounted) > 0 {
			e := apperror.NewBusinessRule(apperror.CodeUncountedItems,
				fmt.Sprintf("%d items are not counted yet", len(uncounted)))
			ids := make([]id.ID, 0, len(uncounted))
			for _, it := range uncounted {
				ids = append(ids, it.ProductID)
			}
			return e.WithDetail("productIds", ids)
		}

		if applyDifferences {
			source := ledger.FromDocument(ledger.SourceStocktaking, doc.ID)
			for _, it := range doc.Items {
				if it.Difference == 0 {
					continue
				}
				if _, err := s.ledger.SetExact(ctx, it.ProductID, *it.CountedQuantity, source); err != nil {
					return fmt.Errorf("apply count for product %s: %w", it.ProductID, err)
				}
				applied++
			}
		}

		now := time.Now().UTC()
		actor := appcontext.GetActorID(ctx)
		doc.Status = StatusCompleted
		doc.CompletedAt = &now
		doc.CompletedBy = &actor
		if notes != nil {
			doc.Notes = notes
		}
		doc.UpdatedBy = actor

		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return err
	}

	metrics.RecordTransition("stocktaking", "completed")
	logger.Info(ctx, "stocktaking completed",
		"id", docID,
		"applied", applied,
		"apply_differences", applyDifferences)
	return nil
}

// Cancel closes the stocktaking without any stock effect.
func (s *Service) Cancel(ctx context.Context, docID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.IsTerminal() {
			return apperror.NewInvalidState("stocktaking", string(doc.Status), "cancel")
		}
		doc.Status = StatusCancelled
		doc.UpdatedBy = appcontext.GetActorID(ctx)
		return s.repo.Update(ctx, doc)
	})
}

// List retrieves stocktakings with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Stocktaking], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) mutateItems(ctx context.Context, docID id.ID, operation string, fn func(ctx context.Context, doc *Stocktaking) error) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if !doc.IsCountable() {
			return apperror.NewInvalidState("stocktaking", string(doc.Status), operation)
		}

		items, err := s.repo.GetItems(ctx, docID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		doc.Items = items

		if err := fn(ctx, doc); err != nil {
			return err
		}
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
