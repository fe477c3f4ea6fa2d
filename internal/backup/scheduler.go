package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ScheduleStore defines the interface for loading and updating schedules.
type ScheduleStore interface {
	// GetDueSchedules returns all active schedules due at or before t.
	GetDueSchedules(ctx context.Context, t time.Time) ([]*models.Schedule, error)

	// UpdateSchedule persists run bookkeeping for a schedule.
	UpdateSchedule(ctx context.Context, s *models.Schedule) error

	// ExpireDueBackups flags completed backups whose retention window has
	// passed. Returns the number of records flagged.
	ExpireDueBackups(ctx context.Context) (int64, error)
}

// SchedulerConfig holds configuration for the backup scheduler.
type SchedulerConfig struct {
	// TickSpec is the cron expression driving due-schedule evaluation.
	TickSpec string

	// TickTimeout bounds one evaluation pass.
	TickTimeout time.Duration
}

// DefaultSchedulerConfig returns a SchedulerConfig with sensible defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TickSpec:    "* * * * *",
		TickTimeout: 30 * time.Second,
	}
}

// Scheduler fires recurring backups. A cron-driven tick loads due schedules,
// queues one backup per schedule through the service, and advances each
// schedule's next run time so a schedule never fires twice for the same slot.
type Scheduler struct {
	store   ScheduleStore
	service *Service
	config  SchedulerConfig
	cron    *cron.Cron
	logger  zerolog.Logger
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new backup scheduler.
func NewScheduler(store ScheduleStore, service *Service, config SchedulerConfig, logger zerolog.Logger) *Scheduler {
	if config.TickSpec == "" {
		config = DefaultSchedulerConfig()
	}
	return &Scheduler{
		store:   store,
		service: service,
		config:  config,
		cron:    cron.New(),
		logger:  logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins periodic due-schedule evaluation.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.config.TickSpec, s.tick); err != nil {
		return fmt.Errorf("register scheduler tick: %w", err)
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Str("tick", s.config.TickSpec).Msg("backup scheduler started")
	return nil
}

// Stop stops the scheduler and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("backup scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.TickTimeout)
	defer cancel()
	s.RunDue(ctx, time.Now())
	s.expire(ctx)
}

// expire sweeps backups past their retention window.
func (s *Scheduler) expire(ctx context.Context) {
	n, err := s.store.ExpireDueBackups(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to expire backups")
		return
	}
	if n > 0 {
		s.logger.Info().Int64("count", n).Msg("backups expired by retention")
	}
}

// RunDue evaluates all schedules due at time now and queues a backup for
// each. A schedule whose bookkeeping cannot be advanced is skipped without
// queueing, so a persistence failure cannot cause duplicate firings later.
func (s *Scheduler) RunDue(ctx context.Context, now time.Time) {
	due, err := s.store.GetDueSchedules(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load due schedules")
		return
	}

	for _, sched := range due {
		if !sched.IsDue(now) {
			continue
		}

		if err := sched.MarkRun(now); err != nil {
			s.logger.Error().
				Err(err).
				Str("schedule_id", sched.ID.String()).
				Msg("failed to advance schedule")
			continue
		}
		if err := s.store.UpdateSchedule(ctx, sched); err != nil {
			s.logger.Error().
				Err(err).
				Str("schedule_id", sched.ID.String()).
				Msg("failed to persist schedule run")
			continue
		}

		rec, err := s.service.CreateScheduledBackup(ctx, sched)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("schedule_id", sched.ID.String()).
				Msg("failed to queue scheduled backup")
			continue
		}

		s.logger.Info().
			Str("schedule_id", sched.ID.String()).
			Str("backup_id", rec.ID.String()).
			Str("tenant_id", sched.TenantID.String()).
			Msg("scheduled backup queued")
	}
}
