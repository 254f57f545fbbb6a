package handlers

import (
	"github.com/gin-gonic/gin"

	"velora/internal/core/apperror"
	"velora/internal/core/id"
	"velora/internal/domain"
	"velora/internal/domain/audit"
	"velora/internal/domain/documents/delivery"
	"velora/internal/infrastructure/http/v1/dto"
)

// DeliveryHandler handles HTTP requests for delivery documents.
type DeliveryHandler struct {
	*BaseHandler
	service  *delivery.Service
	recorder audit.Recorder
}

// NewDeliveryHandler creates a delivery handler.
func NewDeliveryHandler(base *BaseHandler, service *delivery.Service, recorder audit.Recorder) *DeliveryHandler {
	return &DeliveryHandler{BaseHandler: base, service: service, recorder: recorder}
}

// Create handles POST /documents/deliveries.
func (h *DeliveryHandler) Create(c *gin.Context) {
	var req dto.CreateDeliveryRequest
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
	h.Audit(c, h.recorder, "delivery", doc.ID, audit.ActionCreate, doc)
	h.Created(c, doc)
}

// Get handles GET /documents/deliveries/:id.
func (h *DeliveryHandler) Get(c *gin.Context) {
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

// Update handles PUT /documents/deliveries/:id (header fields only).
func (h *DeliveryHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateDeliveryRequest
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

// AddItem handles POST /documents/deliveries/:id/items.
func (h *DeliveryHandler) AddItem(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.DeliveryItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id format"))
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), docID, productID, req.Quantity, req.UnitCost)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateItem handles PUT /documents/deliveries/:id/items/:itemId.
func (h *DeliveryHandler) UpdateItem(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}
	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item id format"))
		return
	}

	var req dto.UpdateDeliveryItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.UpdateItem(c.Request.Context(), docID, itemID, req.Quantity, req.UnitCost, req.BatchNumber, req.ExpiryDate); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "item updated")
}

// RemoveItem handles DELETE /documents/deliveries/:id/items/:itemId.
func (h *DeliveryHandler) RemoveItem(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}
	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item id format"))
		return
	}

	if err := h.service.RemoveItem(c.Request.Context(), docID, itemID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Receive handles POST /documents/deliveries/:id/receive.
func (h *DeliveryHandler) Receive(c *gin.Context) {
	ctx := c.Request.Context()
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.ReceiveDeliveryRequest
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
	h.Audit(c, h.recorder, "delivery", docID, audit.ActionReceive, gin.H{"notes": req.Notes})
	h.OK(c, doc)
}

// Cancel handles POST /documents/deliveries/:id/cancel.
func (h *DeliveryHandler) Cancel(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}
	h.Audit(c, h.recorder, "delivery", docID, audit.ActionCancel, nil)
	h.Success(c, "delivery cancelled")
}

// List handles GET /documents/deliveries.
func (h *DeliveryHandler) List(c *gin.Context) {
	filter := delivery.ListFilter{
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
		s := delivery.Status(status)
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

// RegisterRoutes registers delivery routes.
func (h *DeliveryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/items", h.AddItem)
	rg.PUT("/:id/items/:itemId", h.UpdateItem)
	rg.DELETE("/:id/items/:itemId", h.RemoveItem)
	rg.POST("/:id/receive", h.Receive)
	rg.POST("/:id/cancel", h.Cancel)
}
