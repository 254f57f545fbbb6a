package handlers

import (
	"github.com/gin-gonic/gin"

	"velora/internal/core/apperror"
	"velora/internal/core/id"
	"velora/internal/domain"
	"velora/internal/domain/audit"
	"velora/internal/domain/documents/stocktaking"
	"velora/internal/infrastructure/http/v1/dto"
)

// StocktakingHandler handles HTTP requests for stocktaking documents.
type StocktakingHandler struct {
	*BaseHandler
	service  *stocktaking.Service
	recorder audit.Recorder
}

// NewStocktakingHandler creates a stocktaking handler.
func NewStocktakingHandler(base *BaseHandler, service *stocktaking.Service, recorder audit.Recorder) *StocktakingHandler {
	return &StocktakingHandler{BaseHandler: base, service: service, recorder: recorder}
}

// Create handles POST /documents/stocktakings.
func (h *StocktakingHandler) Create(c *gin.Context) {
	var req dto.CreateStocktakingRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}
	h.Audit(c, h.recorder, "stocktaking", doc.ID, audit.ActionCreate, doc)
	h.Created(c, doc)
}

// Get handles GET /documents/stocktakings/:id.
func (h *StocktakingHandler) Get(c *gin.Context) {
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

// Start handles POST /documents/stocktakings/:id/start: freezes the
// current stock of every tracked product into the count sheet.
func (h *StocktakingHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Start(ctx, docID); err != nil {
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

// UpdateItem handles PUT /documents/stocktakings/:id/items/:itemId.
func (h *StocktakingHandler) UpdateItem(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}
	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item id format"))
		return
	}

	var req dto.UpdateStocktakingItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.UpdateItem(c.Request.Context(), docID, itemID, *req.Counted); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "count recorded")
}

// AddItems handles POST /documents/stocktakings/:id/items: bulk counts,
// including products missing from the snapshot.
func (h *StocktakingHandler) AddItems(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.AddStocktakingItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	counts, err := req.ToCounts()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id format"))
		return
	}

	if err := h.service.AddItems(c.Request.Context(), docID, counts); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "counts recorded")
}

// Complete handles POST /documents/stocktakings/:id/complete.
func (h *StocktakingHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.CompleteStocktakingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Complete(ctx, docID, req.ApplyDifferences, req.Notes); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Audit(c, h.recorder, "stocktaking", docID, audit.ActionComplete,
		gin.H{"applyDifferences": req.ApplyDifferences, "notes": req.Notes})
	h.OK(c, doc)
}

// Cancel handles POST /documents/stocktakings/:id/cancel.
func (h *StocktakingHandler) Cancel(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}
	h.Audit(c, h.recorder, "stocktaking", docID, audit.ActionCancel, nil)
	h.Success(c, "stocktaking cancelled")
}

// List handles GET /documents/stocktakings.
func (h *StocktakingHandler) List(c *gin.Context) {
	filter := stocktaking.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date DESC")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"
	filter.DateFrom = h.ParseTimeQuery(c, "dateFrom")
	filter.DateTo = h.ParseTimeQuery(c, "dateTo")

	if status := c.Query("status"); status != "" {
		s := stocktaking.Status(status)
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

// RegisterRoutes registers stocktaking routes.
func (h *StocktakingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/start", h.Start)
	rg.PUT("/:id/items/:itemId", h.UpdateItem)
	rg.POST("/:id/items", h.AddItems)
	rg.POST("/:id/complete", h.Complete)
	rg.POST("/:id/cancel", h.Cancel)
}
