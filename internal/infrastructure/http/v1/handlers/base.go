// Package handlers provides HTTP handlers for the v1 API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"velora/internal/core/apperror"
	"velora/internal/core/id"
	"velora/internal/domain/audit"
	"velora/internal/infrastructure/http/v1/dto"
	"velora/pkg/logger"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates a JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers the error on the gin context and aborts the request.
// The JSON response is rendered by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseID parses the :id path parameter.
func (h *BaseHandler) ParseID(c *gin.Context) (id.ID, bool) {
	parsed, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return id.ID{}, false
	}
	return parsed, true
}

// ParseIntQuery parses an integer query parameter with a default.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseTimeQuery parses an RFC3339 query parameter, nil when absent or bad.
func (h *BaseHandler) ParseTimeQuery(c *gin.Context, key string) *time.Time {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &parsed
}

// Audit records an audit entry after the operation has committed.
// Best-effort: a nil recorder or a failed write never fails the request.
func (h *BaseHandler) Audit(c *gin.Context, rec audit.Recorder, entityType string, entityID id.ID, action audit.Action, changes any) {
	if rec == nil {
		return
	}
	ctx := c.Request.Context()

	var payload json.RawMessage
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Warn(ctx, "audit payload marshal failed", "error", err)
		} else {
			payload = data
		}
	}

	if err := rec.Record(ctx, audit.Entry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Changes:    payload,
	}); err != nil {
		logger.Warn(ctx, "audit record failed",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action,
			"error", err)
	}
}

// Created sends a 201 response with the entity.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OK sends a 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent sends a 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Success sends a 200 response without data.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}
