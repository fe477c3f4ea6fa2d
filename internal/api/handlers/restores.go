package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/campushq-io/campushq/internal/api/middleware"
	"github.com/campushq-io/campushq/internal/backup"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/campushq-io/campushq/internal/scope"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RestoreService is the boundary the restore endpoints consume.
type RestoreService interface {
	RestoreFromUpload(ctx context.Context, actor models.Actor, snapshotBytes []byte, req backup.RestoreRequest) (*models.Restore, error)
}

// RestoreStore defines the read access the restore endpoints need.
type RestoreStore interface {
	GetRestoreByID(ctx context.Context, id uuid.UUID) (*models.Restore, error)
	ListRestoresByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Restore, error)
}

// RestoresHandler handles restore-related HTTP endpoints.
type RestoresHandler struct {
	service RestoreService
	store   RestoreStore
	guard   *scope.Guard
	logger  zerolog.Logger
}

// NewRestoresHandler creates a new RestoresHandler.
func NewRestoresHandler(service RestoreService, store RestoreStore, guard *scope.Guard, logger zerolog.Logger) *RestoresHandler {
	return &RestoresHandler{
		service: service,
		store:   store,
		guard:   guard,
		logger:  logger.With().Str("component", "restores_handler").Logger(),
	}
}

// RegisterRoutes registers restore routes on the given router group.
func (h *RestoresHandler) RegisterRoutes(r *gin.RouterGroup) {
	restores := r.Group("/restores")
	{
		restores.POST("", h.CreateFromUpload)
		restores.GET("", h.List)
		restores.GET("/:id", h.Get)
	}
}

type createRestoreRequest struct {
	// Snapshot is the base64-encoded plaintext snapshot envelope.
	Snapshot      string `json:"snapshot" binding:"required"`
	Overwrite     bool   `json:"overwrite"`
	SkipExisting  bool   `json:"skip_existing"`
	Confirm       bool   `json:"confirm"`
	TenantID      string `json:"tenant_id"`
	Justification string `json:"justification"`
}

// CreateFromUpload validates an uploaded snapshot and queues its replay.
func (h *RestoresHandler) CreateFromUpload(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req createRestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snapshot, err := base64.StdEncoding.DecodeString(req.Snapshot)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot is not valid base64"})
		return
	}

	target, ok := parseOptionalTenant(c, req.TenantID)
	if !ok {
		return
	}

	rec, err := h.service.RestoreFromUpload(c.Request.Context(), actor, snapshot, backup.RestoreRequest{
		Options: models.RestoreOptions{
			Overwrite:    req.Overwrite,
			SkipExisting: req.SkipExisting,
			Confirm:      req.Confirm,
		},
		TenantID:      target,
		Justification: req.Justification,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"restore": rec})
}

// List returns the caller's restores, newest first.
func (h *RestoresHandler) List(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	tenantID, ok := resolveReadScope(c, h.guard, actor)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	restores, err := h.store.ListRestoresByTenant(c.Request.Context(), tenantID, limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list restores")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list restores"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"restores": restores})
}

// Get returns one restore record.
func (h *RestoresHandler) Get(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restore id"})
		return
	}

	rec, err := h.store.GetRestoreByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "restore not found"})
		return
	}

	if err := h.guard.AssertOwnership(c.Request.Context(), rec, actor, c.Query("justification")); err != nil {
		respondScopeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"restore": rec})
}
