package handlers

import (
	"context"
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

// BackupService is the boundary the backup endpoints consume.
type BackupService interface {
	CreateBackup(ctx context.Context, actor models.Actor, req backup.CreateBackupRequest) (*models.Backup, error)
	GetDownloadableArtifact(ctx context.Context, actor models.Actor, backupID uuid.UUID, justification string) (*backup.Artifact, error)
	RestoreFromRecord(ctx context.Context, actor models.Actor, backupID uuid.UUID, req backup.RestoreRequest) (*models.Restore, error)
}

// BackupStore defines the read access the backup endpoints need.
type BackupStore interface {
	GetBackupByID(ctx context.Context, id uuid.UUID) (*models.Backup, error)
	ListBackupsByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Backup, error)
}

// BackupsHandler handles backup-related HTTP endpoints.
type BackupsHandler struct {
	service BackupService
	store   BackupStore
	guard   *scope.Guard
	logger  zerolog.Logger
}

// NewBackupsHandler creates a new BackupsHandler.
func NewBackupsHandler(service BackupService, store BackupStore, guard *scope.Guard, logger zerolog.Logger) *BackupsHandler {
	return &BackupsHandler{
		service: service,
		store:   store,
		guard:   guard,
		logger:  logger.With().Str("component", "backups_handler").Logger(),
	}
}

// RegisterRoutes registers backup routes on the given router group.
func (h *BackupsHandler) RegisterRoutes(r *gin.RouterGroup) {
	backups := r.Group("/backups")
	{
		backups.POST("", h.Create)
		backups.GET("", h.List)
		backups.GET("/:id", h.Get)
		backups.GET("/:id/download", h.Download)
		backups.POST("/:id/restore", h.Restore)
	}
}

type createBackupRequest struct {
	Kind          string `json:"kind" binding:"required"`
	TenantID      string `json:"tenant_id"`
	Justification string `json:"justification"`
}

// Create accepts a backup request and returns the pending record.
func (h *BackupsHandler) Create(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req createBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	target, ok := parseOptionalTenant(c, req.TenantID)
	if !ok {
		return
	}

	rec, err := h.service.CreateBackup(c.Request.Context(), actor, backup.CreateBackupRequest{
		Kind:          models.BackupKind(req.Kind),
		TenantID:      target,
		Justification: req.Justification,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"backup": rec})
}

// List returns the caller's backups, newest first.
func (h *BackupsHandler) List(c *gin.Context) {
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

	backups, err := h.store.ListBackupsByTenant(c.Request.Context(), tenantID, limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list backups")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list backups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"backups": backups})
}

// Get returns one backup record.
func (h *BackupsHandler) Get(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup id"})
		return
	}

	rec, err := h.store.GetBackupByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "backup not found"})
		return
	}

	if err := h.guard.AssertOwnership(c.Request.Context(), rec, actor, c.Query("justification")); err != nil {
		respondScopeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"backup": rec})
}

// Download streams the stored artifact exactly as persisted.
func (h *BackupsHandler) Download(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup id"})
		return
	}

	artifact, err := h.service.GetDownloadableArtifact(c.Request.Context(), actor, id, c.Query("justification"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
	c.Data(http.StatusOK, "application/octet-stream", artifact.Bytes)
}

type restoreFromRecordRequest struct {
	Overwrite     bool   `json:"overwrite"`
	SkipExisting  bool   `json:"skip_existing"`
	Confirm       bool   `json:"confirm"`
	TenantID      string `json:"tenant_id"`
	Justification string `json:"justification"`
}

// Restore queues a restore from a stored backup.
func (h *BackupsHandler) Restore(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup id"})
		return
	}

	var req restoreFromRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	target, ok := parseOptionalTenant(c, req.TenantID)
	if !ok {
		return
	}

	rec, err := h.service.RestoreFromRecord(c.Request.Context(), actor, id, backup.RestoreRequest{
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

// parseOptionalTenant parses an optional tenant id field, responding 400 on
// malformed input.
func parseOptionalTenant(c *gin.Context, raw string) (uuid.UUID, bool) {
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant_id"})
		return uuid.Nil, false
	}
	return id, true
}
