package handlers

import (
	"github.com/gin-gonic/gin"

	"velora/internal/domain"
	"velora/internal/domain/audit"
	"velora/internal/domain/catalogs/supplier"
	"velora/internal/infrastructure/http/v1/dto"
)

// SupplierHandler handles HTTP requests for the supplier catalog.
type SupplierHandler struct {
	*BaseHandler
	service  *supplier.Service
	recorder audit.Recorder
}

// NewSupplierHandler creates a supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service, recorder audit.Recorder) *SupplierHandler {
	return &SupplierHandler{BaseHandler: base, service: service, recorder: recorder}
}

// Create handles POST /catalog/suppliers.
func (h *SupplierHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), s); err != nil {
		h.Error(c, err)
		return
	}
	h.Audit(c, h.recorder, "supplier", s.ID, audit.ActionCreate, s)
	h.Created(c, s)
}

// Get handles GET /catalog/suppliers/:id.
func (h *SupplierHandler) Get(c *gin.Context) {
	supplierID, ok := h.ParseID(c)
	if !ok {
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// Update handles PUT /catalog/suppliers/:id.
func (h *SupplierHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	supplierID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s, err := h.service.GetByID(ctx, supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(s)
	if err := h.service.Update(ctx, s); err != nil {
		h.Error(c, err)
		return
	}
	h.Audit(c, h.recorder, "supplier", s.ID, audit.ActionUpdate, req)
	h.OK(c, s)
}

// Delete handles DELETE /catalog/suppliers/:id (soft delete).
func (h *SupplierHandler) Delete(c *gin.Context) {
	supplierID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), supplierID); err != nil {
		h.Error(c, err)
		return
	}
	h.Audit(c, h.recorder, "supplier", supplierID, audit.ActionDelete, nil)
	h.NoContent(c)
}

// Deactivate handles POST /catalog/suppliers/:id/deactivate.
func (h *SupplierHandler) Deactivate(c *gin.Context) {
	supplierID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), supplierID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "supplier deactivated")
}

// List handles GET /catalog/suppliers.
func (h *SupplierHandler) List(c *gin.Context) {
	if c.Query("active") == "true" {
		items, err := h.service.ListActive(c.Request.Context())
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.ListResponse{
			Items:      items,
			TotalCount: int64(len(items)),
			Limit:      len(items),
		})
		return
	}

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

// RegisterRoutes registers supplier routes.
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/deactivate", h.Deactivate)
}
