// Package handlers implements the HTTP endpoints of the CampusHQ API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/campushq-io/campushq/internal/backup"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/campushq-io/campushq/internal/scope"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps a taxonomy error to an HTTP status and a stable
// machine-readable code. Unexpected errors never leak their message.
func respondError(c *gin.Context, err error) {
	code := backup.Code(err)

	var status int
	switch code {
	case "VALIDATION":
		status = http.StatusBadRequest
	case "CROSS_TENANT":
		status = http.StatusForbidden
	case "NOT_FOUND":
		status = http.StatusNotFound
	case "INCOMPLETE", "MISSING_HASH", "INCOMPATIBLE":
		status = http.StatusConflict
	case "RETENTION_EXPIRED":
		status = http.StatusGone
	case "INTEGRITY_FAILED", "SIGNATURE_FAILED":
		status = http.StatusUnprocessableEntity
	case "LEGAL_ACK_REQUIRED":
		status = http.StatusForbidden
	case "STORAGE":
		status = http.StatusBadGateway
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": code})
		return
	}

	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

// respondScopeError maps a guard denial to an HTTP status. A missing operator
// justification or forbidden tenant targeting is a caller-input problem; any
// other denial is a forbidden read.
func respondScopeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scope.ErrJustificationRequired), errors.Is(err, scope.ErrOperatorOnly):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	}
}

// resolveReadScope resolves the tenant a read endpoint is scoped to.
// Operators may name a foreign tenant through the tenant_id query parameter,
// justified through the justification query parameter; ordinary callers are
// always scoped to their own tenant.
func resolveReadScope(c *gin.Context, guard *scope.Guard, actor models.Actor) (uuid.UUID, bool) {
	target, ok := parseOptionalTenant(c, c.Query("tenant_id"))
	if !ok {
		return uuid.Nil, false
	}
	tenantID, err := guard.ResolveTarget(c.Request.Context(), actor, target, c.Query("justification"))
	if err != nil {
		respondScopeError(c, err)
		return uuid.Nil, false
	}
	return tenantID, true
}
