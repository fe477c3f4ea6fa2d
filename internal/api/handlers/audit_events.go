package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/campushq-io/campushq/internal/api/middleware"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/campushq-io/campushq/internal/scope"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuditEventStore defines the read access the audit endpoints need.
type AuditEventStore interface {
	ListAuditEventsByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.AuditEvent, error)
}

// AuditEventsHandler serves the tenant-scoped audit trail.
type AuditEventsHandler struct {
	store  AuditEventStore
	guard  *scope.Guard
	logger zerolog.Logger
}

// NewAuditEventsHandler creates a new AuditEventsHandler.
func NewAuditEventsHandler(store AuditEventStore, guard *scope.Guard, logger zerolog.Logger) *AuditEventsHandler {
	return &AuditEventsHandler{
		store:  store,
		guard:  guard,
		logger: logger.With().Str("component", "audit_events_handler").Logger(),
	}
}

// RegisterRoutes registers audit routes on the given router group.
func (h *AuditEventsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit-events", h.List)
}

// List returns the caller's audit events, newest first.
func (h *AuditEventsHandler) List(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	tenantID, ok := resolveReadScope(c, h.guard, actor)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, err := h.store.ListAuditEventsByTenant(c.Request.Context(), tenantID, limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list audit events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
