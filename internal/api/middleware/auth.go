package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/campushq-io/campushq/internal/crypto"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// actorKey is the gin context key holding the authenticated Actor.
const actorKey = "actor"

// UserStore resolves API keys to user accounts.
type UserStore interface {
	GetUserByAPIKeyHash(ctx context.Context, hash string) (*models.User, error)
}

// APIKeyAuth returns a middleware enforcing bearer API-key authentication.
// The caller's tenant scope comes exclusively from the resolved account;
// request payloads are never trusted for identity.
func APIKeyAuth(store UserStore, logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str("component", "auth").Logger()

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		key := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := store.GetUserByAPIKeyHash(c.Request.Context(), crypto.HashHex([]byte(key)))
		if err != nil {
			log.Warn().Str("client_ip", c.ClientIP()).Msg("rejected unknown api key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}

		c.Set(actorKey, user.Actor())
		c.Next()
	}
}

// RequireActor returns the authenticated Actor, aborting with 401 when absent.
func RequireActor(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return models.Actor{}, false
	}
	return actor, true
}

// RequireOperator aborts with 403 unless the caller holds the operator role.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := RequireActor(c)
		if !ok {
			return
		}
		if !actor.IsOperator() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operator role required"})
			return
		}
		c.Next()
	}
}

// SetActor stores an Actor on the context. Exported for handler tests.
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
}
