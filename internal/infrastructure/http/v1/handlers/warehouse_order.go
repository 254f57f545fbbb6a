package handlers

import (
	"github.com/gin-gonic/gin"

	"velora/internal/core/apperror"
	"velora/internal/core/id"
	"velora/internal/domain"
	"velora/internal/domain/audit"
	"velora/internal/domain/documents/warehouseorder"
	"velora/internal/infrastructure/http/v1/dto"
)

// WarehouseOrderHandler handles HTTP requests for warehouse orders.
type WarehouseOrderHandler struct {
	*BaseHandler
	service  *warehouseorder.Service
	recorder audit.Recorder
}

// NewWarehouseOrderHandler creates a warehouse order handler.
func NewWarehouseOrderHandler(base *BaseHandler, service *warehouseorder.Service, recorder audit.Recorder) *WarehouseOrderHandler {
	return &WarehouseOrderHandler{BaseHandler: base, service: service, recorder: recorder}
}

// Create handles POST /documents/warehouse-orders.
func (h *WarehouseOrderHandler) Create(c *gin.Context) {
	var req dto.CreateWarehouseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("error", err.Error()))
		return
	}

	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}
	h.Audit(c, h.recorder, "warehouse_order", doc.ID, audit.ActionCreate, doc)
	h.Created(c, doc)
}

// Get handles GET /documents/warehouse-orders/:id.
func (h *WarehouseOrderHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Update handles PUT /documents/warehouse-orders/:id (draft only).
func (h *WarehouseOrderHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateWarehouseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(doc); err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("error", err.Error()))
		return
	}
	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Send handles POST /documents/warehouse-orders/:id/send.
func (h *WarehouseOrderHandler) Send(c *gin.Context) {
	ctx := c.Request.Context()
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Send(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// ReceiveItems handles POST /documents/warehouse-orders/:id/receive-items:
// partial, line-level receiving.
func (h *WarehouseOrderHandler) ReceiveItems(c *gin.Context) {
	ctx := c.Request.Context()
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.ReceiveOrderItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	receipts, err := req.ToReceipts()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item id format"))
		return
	}

	if err := h.service.ReceiveItems(ctx, docID, receipts); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Receive handles POST /documents/warehouse-orders/:id/receive: every
// outstanding quantity arrives in full.
func (h *WarehouseOrderHandler) Receive(c *gin.Context) {
	ctx := c.Request.Context()
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.ReceiveOrderRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Receive(ctx, docID, req.Notes); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Audit(c, h.recorder, "warehouse_order", docID, audit.ActionReceive, gin.H{"notes": req.Notes})
	h.OK(c, doc)
}

// Cancel handles POST /documents/warehouse-orders/:id/cancel.
func (h *WarehouseOrderHandler) Cancel(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}
	h.Audit(c, h.recorder, "warehouse_order", docID, audit.ActionCancel, nil)
	h.Success(c, "order cancelled")
}

// List handles GET /documents/warehouse-orders.
func (h *WarehouseOrderHandler) List(c *gin.Context) {
	filter := warehouseorder.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date DESC")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"
	filter.DateFrom = h.ParseTimeQuery(c, "dateFrom")
	filter.DateTo = h.ParseTimeQuery(c, "dateTo")

	if supplierID := c.Query("supplierId"); supplierID != "" {
		if parsed, err := id.Parse(supplierID); err == nil {
			filter.SupplierID = &parsed
		}
	}
	if status := c.Query("status"); status != "" {
		s := warehouseorder.Status(status)
		filter.Status = &s
	}

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

// RegisterRoutes registers warehouse order routes.
func (h *WarehouseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/send", h.Send)
	rg.POST("/:id/receive-items", h.ReceiveItems)
	rg.POST("/:id/receive", h.Receive)
	rg.POST("/:id/cancel", h.Cancel)
}
