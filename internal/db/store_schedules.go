package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Schedule methods

const scheduleColumns = `
	id, tenant_id, frequency, time_of_day, day_of_week, day_of_month,
	kind, active, last_run_at, next_run_at, created_at, updated_at`

// CreateSchedule inserts a new schedule.
func (db *DB) CreateSchedule(ctx context.Context, s *models.Schedule) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO schedules (
			id, tenant_id, frequency, time_of_day, day_of_week, day_of_month,
			kind, active, last_run_at, next_run_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, s.ID, s.TenantID, s.Frequency, s.TimeOfDay, s.DayOfWeek, s.DayOfMonth,
		s.Kind, s.Active, s.LastRunAt, s.NextRunAt, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// UpdateSchedule persists a schedule's mutable fields.
func (db *DB) UpdateSchedule(ctx context.Context, s *models.Schedule) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE schedules
		SET frequency = $2, time_of_day = $3, day_of_week = $4, day_of_month = $5,
			kind = $6, active = $7, last_run_at = $8, next_run_at = $9, updated_at = NOW()
		WHERE id = $1
	`, s.ID, s.Frequency, s.TimeOfDay, s.DayOfWeek, s.DayOfMonth,
		s.Kind, s.Active, s.LastRunAt, s.NextRunAt)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSchedule removes a schedule.
func (db *DB) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetScheduleByID returns a schedule by id.
func (db *DB) GetScheduleByID(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	row := db.Pool.QueryRow(ctx, `SELECT`+scheduleColumns+` FROM schedules WHERE id = $1`, id)
	s, err := scanSchedule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return s, nil
}

// ListSchedulesByTenant returns a tenant's schedules.
func (db *DB) ListSchedulesByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Schedule, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT`+scheduleColumns+`
		FROM schedules
		WHERE tenant_id = $1
		ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()
	return collectSchedules(rows)
}

// GetDueSchedules returns all active schedules due at or before t.
func (db *DB) GetDueSchedules(ctx context.Context, t time.Time) ([]*models.Schedule, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT`+scheduleColumns+`
		FROM schedules
		WHERE active AND next_run_at IS NOT NULL AND next_run_at <= $1
	`, t)
	if err != nil {
		return nil, fmt.Errorf("get due schedules: %w", err)
	}
	defer rows.Close()
	return collectSchedules(rows)
}

func collectSchedules(rows pgx.Rows) ([]*models.Schedule, error) {
	var schedules []*models.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	var s models.Schedule
	err := row.Scan(
		&s.ID, &s.TenantID, &s.Frequency, &s.TimeOfDay, &s.DayOfWeek, &s.DayOfMonth,
		&s.Kind, &s.Active, &s.LastRunAt, &s.NextRunAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
