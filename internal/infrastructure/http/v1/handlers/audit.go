package handlers

import (
	"github.com/gin-gonic/gin"

	"velora/internal/core/apperror"
	"velora/internal/core/id"
	"velora/internal/domain/audit"
)

// AuditHandler serves entity change history.
type AuditHandler struct {
	*BaseHandler
	recorder audit.Recorder
}

// NewAuditHandler creates an audit handler.
func NewAuditHandler(base *BaseHandler, recorder audit.Recorder) *AuditHandler {
	return &AuditHandler{BaseHandler: base, recorder: recorder}
}

// History handles GET /audit/:entityType/:id.
func (h *AuditHandler) History(c *gin.Context) {
	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	entries, err := h.recorder.History(
		c.Request.Context(),
		c.Param("entityType"),
		entityID,
		h.ParseIntQuery(c, "limit", 50),
	)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": entries})
}

// RegisterRoutes registers audit routes.
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:entityType/:id", h.History)
}
