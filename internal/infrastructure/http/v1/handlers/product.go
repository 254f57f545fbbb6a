package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"velora/internal/core/tx"
	"velora/internal/domain"
	"velora/internal/domain/audit"
	"velora/internal/domain/catalogs/product"
	"velora/internal/domain/ledger"
	"velora/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	*BaseHandler
	service   *product.Service
	ledger    *ledger.Service
	txManager tx.Manager
	recorder  audit.Recorder
}

// NewProductHandler creates a product handler.
func NewProductHandler(base *BaseHandler, service *product.Service, ledgerSvc *ledger.Service, txManager tx.Manager, recorder audit.Recorder) *ProductHandler {
	return &ProductHandler{
		BaseHandler: base,
		service:     service,
		ledger:      ledgerSvc,
		txManager:   txManager,
		recorder:    recorder,
	}
}

// Create handles POST /catalog/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Audit(c, h.recorder, "product", p.ID, audit.ActionCreate, p)
	h.Created(c, p)
}

// Get handles GET /catalog/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// GetByBarcode handles GET /catalog/products/barcode/:barcode.
func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	p, err := h.service.FindByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Update handles PUT /catalog/products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(p)
	if err := h.service.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}
	h.Audit(c, h.recorder, "product", p.ID, audit.ActionUpdate, req)
	h.OK(c, p)
}

// Delete handles DELETE /catalog/products/:id (soft delete).
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.Audit(c, h.recorder, "product", productID, audit.ActionDelete, nil)
	h.NoContent(c)
}

// Deactivate handles POST /catalog/products/:id/deactivate.
func (h *ProductHandler) Deactivate(c *gin.Context) {
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "product deactivated")
}

// List handles GET /catalog/products.
func (h *ProductHandler) List(c *gin.Context) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// AdjustStock handles POST /catalog/products/:id/adjust-stock: a manual
// signed correction with a mandatory reason. Runs in its own transaction so
// the row lock and the movement append commit together.
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	ctx := c.Request.Context()
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var movement *ledger.Movement
	err := h.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		m, err := h.ledger.Adjust(txCtx, productID, req.Delta, req.Reason)
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, movement)
}

// Movements handles GET /catalog/products/:id/movements.
func (h *ProductHandler) Movements(c *gin.Context) {
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	filter := ledger.HistoryFilter{
		Limit:    h.ParseIntQuery(c, "limit", 100),
		Offset:   h.ParseIntQuery(c, "offset", 0),
		FromDate: h.ParseTimeQuery(c, "dateFrom"),
		ToDate:   h.ParseTimeQuery(c, "dateTo"),
	}
	if movType := c.Query("type"); movType != "" {
		t := ledger.MovementType(movType)
		filter.Type = &t
	}

	movements, err := h.ledger.History(c.Request.Context(), productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": movements})
}

// RegisterRoutes registers product routes.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.GET("/barcode/:barcode", h.GetByBarcode)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/deactivate", h.Deactivate)
	rg.POST("/:id/adjust-stock", h.AdjustStock)
	rg.GET("/:id/movements", h.Movements)
}
