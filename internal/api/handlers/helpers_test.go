package handlers

import (
	"context"

	"github.com/campushq-io/campushq/internal/api/middleware"
	"github.com/campushq-io/campushq/internal/audit"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/campushq-io/campushq/internal/scope"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func mustUUID(s string) uuid.UUID { return uuid.MustParse(s) }

// discardEvents satisfies audit.EventStore for handler tests that do not
// assert on the audit trail.
type discardEvents struct{}

func (discardEvents) CreateAuditEvent(_ context.Context, _ *models.AuditEvent) error { return nil }

func testGuard() *scope.Guard {
	sink := audit.NewSink(discardEvents{}, zerolog.Nop())
	return scope.NewGuard(sink, zerolog.Nop())
}

// newTestRouter returns a gin engine with the given actor injected into
// every request context, mimicking the API key middleware.
func newTestRouter(actor *models.Actor) (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actor != nil {
			middleware.SetActor(c, *actor)
		}
		c.Next()
	})
	return r, r.Group("/api/v1")
}

func adminActor(tenantID string) *models.Actor {
	a := models.Actor{
		UserID:   mustUUID("11111111-1111-1111-1111-111111111111"),
		Email:    "admin@school.test",
		TenantID: mustUUID(tenantID),
		Roles:    []models.Role{models.RoleAdmin},
	}
	return &a
}
