// Package api provides the HTTP API for the CampusHQ server.
package api

import (
	"github.com/campushq-io/campushq/internal/api/handlers"
	"github.com/campushq-io/campushq/internal/api/middleware"
	"github.com/campushq-io/campushq/internal/backup"
	"github.com/campushq-io/campushq/internal/db"
	"github.com/campushq-io/campushq/internal/metrics"
	"github.com/campushq-io/campushq/internal/scope"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Router wraps a Gin engine with configured middleware and routes.
type Router struct {
	Engine *gin.Engine
	logger zerolog.Logger
}

// NewRouter creates a new Router with the given dependencies.
func NewRouter(
	database *db.DB,
	service *backup.Service,
	guard *scope.Guard,
	logger zerolog.Logger,
) *Router {
	r := &Router{
		Engine: gin.New(),
		logger: logger.With().Str("component", "router").Logger(),
	}

	r.Engine.Use(gin.Recovery())
	r.Engine.Use(middleware.RequestLogger(logger))

	// Health and metrics endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(database)
	r.Engine.GET("/healthz", healthHandler.Healthz)
	r.Engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes (API key auth required)
	apiV1 := r.Engine.Group("/api/v1")
	apiV1.Use(middleware.APIKeyAuth(database, logger))

	backupsHandler := handlers.NewBackupsHandler(service, database, guard, logger)
	backupsHandler.RegisterRoutes(apiV1)

	restoresHandler := handlers.NewRestoresHandler(service, database, guard, logger)
	restoresHandler.RegisterRoutes(apiV1)

	schedulesHandler := handlers.NewSchedulesHandler(database, guard, logger)
	schedulesHandler.RegisterRoutes(apiV1)

	auditHandler := handlers.NewAuditEventsHandler(database, guard, logger)
	auditHandler.RegisterRoutes(apiV1)

	// Operator-only provisioning surface
	operatorV1 := apiV1.Group("")
	operatorV1.Use(middleware.RequireOperator())

	adminHandler := handlers.NewAdminHandler(database, logger)
	adminHandler.RegisterRoutes(operatorV1)

	r.logger.Info().Msg("API router initialized")
	return r
}
