package handlers

import (
	"github.com/gin-gonic/gin"

	"velora/internal/domain/alerts"
	"velora/internal/domain/catalogs/product"
)

// AlertsHandler handles HTTP requests for stock alerts and reorder reports.
type AlertsHandler struct {
	*BaseHandler
	service *alerts.Service
}

// NewAlertsHandler creates an alerts handler.
func NewAlertsHandler(base *BaseHandler, service *alerts.Service) *AlertsHandler {
	return &AlertsHandler{BaseHandler: base, service: service}
}

func (h *AlertsHandler) filterFromQuery(c *gin.Context) alerts.Filter {
	filter := alerts.Filter{
		IncludeUntracked: c.Query("includeUntracked") == "true",
		Limit:            h.ParseIntQuery(c, "limit", 0),
	}
	if productType := c.Query("type"); productType != "" {
		t := product.ProductType(productType)
		filter.ProductType = &t
	}
	return filter
}

// LowStock handles GET /alerts/low-stock.
func (h *AlertsHandler) LowStock(c *gin.Context) {
	items, err := h.service.LowStock(c.Request.Context(), h.filterFromQuery(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": items})
}

// CriticalStock handles GET /alerts/critical.
func (h *AlertsHandler) CriticalStock(c *gin.Context) {
	items, err := h.service.CriticalStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": items})
}

// ReorderSuggestions handles GET /alerts/reorder-suggestions.
func (h *AlertsHandler) ReorderSuggestions(c *gin.Context) {
	suggestions, err := h.service.ReorderSuggestions(c.Request.Context(), h.filterFromQuery(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": suggestions})
}

// Summary handles GET /alerts/summary.
func (h *AlertsHandler) Summary(c *gin.Context) {
	summary, err := h.service.StockSummary(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// RegisterRoutes registers alert routes.
func (h *AlertsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/low-stock", h.LowStock)
	rg.GET("/critical", h.CriticalStock)
	rg.GET("/reorder-suggestions", h.ReorderSuggestions)
	rg.GET("/summary", h.Summary)
}
