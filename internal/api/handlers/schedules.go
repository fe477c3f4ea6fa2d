package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/campushq-io/campushq/internal/api/middleware"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/campushq-io/campushq/internal/scope"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var errInvalidKind = errors.New("kind must be one of data, files, full")

// ScheduleStore defines the persistence the schedule endpoints need.
type ScheduleStore interface {
	CreateSchedule(ctx context.Context, s *models.Schedule) error
	UpdateSchedule(ctx context.Context, s *models.Schedule) error
	DeleteSchedule(ctx context.Context, id uuid.UUID) error
	GetScheduleByID(ctx context.Context, id uuid.UUID) (*models.Schedule, error)
	ListSchedulesByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Schedule, error)
}

// SchedulesHandler handles backup schedule CRUD endpoints.
type SchedulesHandler struct {
	store  ScheduleStore
	guard  *scope.Guard
	logger zerolog.Logger
}

// NewSchedulesHandler creates a new SchedulesHandler.
func NewSchedulesHandler(store ScheduleStore, guard *scope.Guard, logger zerolog.Logger) *SchedulesHandler {
	return &SchedulesHandler{
		store:  store,
		guard:  guard,
		logger: logger.With().Str("component", "schedules_handler").Logger(),
	}
}

// RegisterRoutes registers schedule routes on the given router group.
func (h *SchedulesHandler) RegisterRoutes(r *gin.RouterGroup) {
	schedules := r.Group("/schedules")
	{
		schedules.POST("", h.Create)
		schedules.GET("", h.List)
		schedules.GET("/:id", h.Get)
		schedules.PUT("/:id", h.Update)
		schedules.DELETE("/:id", h.Delete)
	}
}

type scheduleRequest struct {
	Frequency  string `json:"frequency" binding:"required"`
	TimeOfDay  string `json:"time_of_day" binding:"required"`
	DayOfWeek  *int   `json:"day_of_week"`
	DayOfMonth *int   `json:"day_of_month"`
	Kind       string `json:"kind" binding:"required"`
	Active     *bool  `json:"active"`
}

// Create registers a new recurring backup policy for the caller's tenant.
func (h *SchedulesHandler) Create(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	tenantID, err := h.guard.ResolveTenant(actor)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no tenant scope"})
		return
	}

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sched := models.NewSchedule(tenantID, models.ScheduleFrequency(req.Frequency), req.TimeOfDay, models.BackupKind(req.Kind))
	sched.DayOfWeek = req.DayOfWeek
	sched.DayOfMonth = req.DayOfMonth
	if req.Active != nil {
		sched.Active = *req.Active
	}

	if err := h.validate(sched); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	next, err := sched.NextAfter(time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sched.NextRunAt = &next

	if err := h.store.CreateSchedule(c.Request.Context(), sched); err != nil {
		h.logger.Error().Err(err).Msg("failed to create schedule")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create schedule"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"schedule": sched})
}

// List returns all schedules for the caller's tenant.
func (h *SchedulesHandler) List(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	tenantID, ok := resolveReadScope(c, h.guard, actor)
	if !ok {
		return
	}

	schedules, err := h.store.ListSchedulesByTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list schedules")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list schedules"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedules": schedules})
}

// Get returns one schedule.
func (h *SchedulesHandler) Get(c *gin.Context) {
	sched, ok := h.fetch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": sched})
}

// Update replaces a schedule's policy fields and recomputes its next run.
func (h *SchedulesHandler) Update(c *gin.Context) {
	sched, ok := h.fetch(c)
	if !ok {
		return
	}

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sched.Frequency = models.ScheduleFrequency(req.Frequency)
	sched.TimeOfDay = req.TimeOfDay
	sched.DayOfWeek = req.DayOfWeek
	sched.DayOfMonth = req.DayOfMonth
	sched.Kind = models.BackupKind(req.Kind)
	if req.Active != nil {
		sched.Active = *req.Active
	}

	if err := h.validate(sched); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	next, err := sched.NextAfter(time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sched.NextRunAt = &next
	sched.UpdatedAt = time.Now()

	if err := h.store.UpdateSchedule(c.Request.Context(), sched); err != nil {
		h.logger.Error().Err(err).Msg("failed to update schedule")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedule": sched})
}

// Delete removes a schedule.
func (h *SchedulesHandler) Delete(c *gin.Context) {
	sched, ok := h.fetch(c)
	if !ok {
		return
	}

	if err := h.store.DeleteSchedule(c.Request.Context(), sched.ID); err != nil {
		h.logger.Error().Err(err).Msg("failed to delete schedule")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": sched.ID})
}

// fetch loads the schedule named in the path and enforces tenant ownership.
func (h *SchedulesHandler) fetch(c *gin.Context) (*models.Schedule, bool) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule id"})
		return nil, false
	}

	sched, err := h.store.GetScheduleByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
		return nil, false
	}

	if err := h.guard.AssertOwnership(c.Request.Context(), sched, actor, c.Query("justification")); err != nil {
		respondScopeError(c, err)
		return nil, false
	}

	return sched, true
}

func (h *SchedulesHandler) validate(s *models.Schedule) error {
	if s.Kind != models.BackupKindData && s.Kind != models.BackupKindFiles && s.Kind != models.BackupKindFull {
		return errInvalidKind
	}
	return s.Validate()
}
