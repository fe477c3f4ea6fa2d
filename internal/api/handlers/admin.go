package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/campushq-io/campushq/internal/api/middleware"
	"github.com/campushq-io/campushq/internal/crypto"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AdminStore defines the persistence the operator admin endpoints need.
type AdminStore interface {
	CreateTenant(ctx context.Context, t *models.Tenant) error
	GetAllTenants(ctx context.Context) ([]*models.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, t *models.Tenant) error
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	RecordLegalAcknowledgment(ctx context.Context, userID, tenantID uuid.UUID, actionKind string) error
}

// AdminHandler serves the operator-only provisioning endpoints.
type AdminHandler struct {
	store  AdminStore
	logger zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(store AdminStore, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		store:  store,
		logger: logger.With().Str("component", "admin_handler").Logger(),
	}
}

// RegisterRoutes registers admin routes on the given router group. The group
// is expected to carry the operator gate.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	{
		admin.POST("/tenants", h.CreateTenant)
		admin.GET("/tenants", h.ListTenants)
		admin.GET("/tenants/:slug", h.GetTenant)
		admin.PUT("/tenants/:slug", h.UpdateTenant)
		admin.POST("/users", h.CreateUser)
		admin.POST("/legal-acknowledgments", h.RecordLegalAcknowledgment)
	}
}

type createTenantRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// CreateTenant provisions a new institution in the unconfigured state.
func (h *AdminHandler) CreateTenant(c *gin.Context) {
	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tenant := models.NewTenant(req.Name, req.Slug)
	if err := h.store.CreateTenant(c.Request.Context(), tenant); err != nil {
		h.logger.Error().Err(err).Str("slug", req.Slug).Msg("failed to create tenant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create tenant"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tenant": tenant})
}

// ListTenants returns every tenant on the platform.
func (h *AdminHandler) ListTenants(c *gin.Context) {
	tenants, err := h.store.GetAllTenants(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list tenants")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tenants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

// GetTenant returns one tenant by slug.
func (h *AdminHandler) GetTenant(c *gin.Context) {
	tenant, err := h.store.GetTenantBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tenant": tenant})
}

type updateTenantRequest struct {
	Name         string `json:"name"`
	AcademicType string `json:"academic_type"`
}

// UpdateTenant renames a tenant or completes its onboarding by assigning an
// academic type. The type drives snapshot compatibility on restore.
func (h *AdminHandler) UpdateTenant(c *gin.Context) {
	tenant, err := h.store.GetTenantBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
		return
	}

	var req updateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Name != "" {
		tenant.Name = req.Name
	}
	if req.AcademicType != "" {
		t := models.AcademicType(req.AcademicType)
		if !models.IsValidAcademicType(t) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid academic_type"})
			return
		}
		tenant.AcademicType = t
	}
	tenant.UpdatedAt = time.Now()

	if err := h.store.UpdateTenant(c.Request.Context(), tenant); err != nil {
		h.logger.Error().Err(err).Str("slug", tenant.Slug).Msg("failed to update tenant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update tenant"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tenant": tenant})
}

type createUserRequest struct {
	TenantID string   `json:"tenant_id" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Name     string   `json:"name" binding:"required"`
	Roles    []string `json:"roles" binding:"required"`
}

// CreateUser provisions a user account and issues its API key. The key is
// returned once and only its hash is stored.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant_id"})
		return
	}

	roles := make([]models.Role, 0, len(req.Roles))
	for _, r := range req.Roles {
		role := models.Role(r)
		switch role {
		case models.RoleAdmin, models.RoleStaff, models.RoleOperator:
			roles = append(roles, role)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role: " + r})
			return
		}
	}

	apiKey, err := crypto.GenerateAPIKey()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to generate api key")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	user := models.NewUser(tenantID, req.Email, req.Name, roles, crypto.HashHex([]byte(apiKey)))
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		h.logger.Error().Err(err).Str("email", req.Email).Msg("failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "api_key": apiKey})
}

type legalAckRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	TenantID   string `json:"tenant_id" binding:"required"`
	ActionKind string `json:"action_kind" binding:"required"`
}

// RecordLegalAcknowledgment stores an operator's acceptance of the legal
// terms for a risky action kind on a tenant, as checked before an operator
// restore is queued.
func (h *AdminHandler) RecordLegalAcknowledgment(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req legalAckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant_id"})
		return
	}

	// An acknowledgment binds a specific account; only that account or
	// another operator may record it, and the account must exist.
	if _, err := h.store.GetUserByID(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if err := h.store.RecordLegalAcknowledgment(c.Request.Context(), userID, tenantID, req.ActionKind); err != nil {
		h.logger.Error().Err(err).Msg("failed to record legal acknowledgment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record acknowledgment"})
		return
	}

	h.logger.Info().
		Str("operator", actor.UserID.String()).
		Str("user_id", userID.String()).
		Str("tenant_id", tenantID.String()).
		Str("action_kind", req.ActionKind).
		Msg("legal acknowledgment recorded")

	c.JSON(http.StatusCreated, gin.H{"acknowledged": true})
}
