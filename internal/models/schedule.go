package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScheduleFrequency represents how often a scheduled backup runs.
type ScheduleFrequency string

const (
	// FrequencyDaily runs once per day at the configured time.
	FrequencyDaily ScheduleFrequency = "daily"
	// FrequencyWeekly runs once per week on the configured weekday.
	FrequencyWeekly ScheduleFrequency = "weekly"
	// FrequencyMonthly runs once per month on the configured day of month.
	FrequencyMonthly ScheduleFrequency = "monthly"
)

// ValidFrequencies returns all valid schedule frequencies.
func ValidFrequencies() []ScheduleFrequency {
	return []ScheduleFrequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly}
}

// IsValidFrequency checks if the frequency is valid.
func IsValidFrequency(f ScheduleFrequency) bool {
	for _, valid := range ValidFrequencies() {
		if f == valid {
			return true
		}
	}
	return false
}

// Schedule represents a recurring backup policy owned by a single tenant.
type Schedule struct {
	ID         uuid.UUID         `json:"id"`
	TenantID   uuid.UUID         `json:"tenant_id"`
	Frequency  ScheduleFrequency `json:"frequency"`
	TimeOfDay  string            `json:"time_of_day"` // HH:MM, 24h
	DayOfWeek  *int              `json:"day_of_week,omitempty"`  // 0=Sunday, weekly only
	DayOfMonth *int              `json:"day_of_month,omitempty"` // 1-28, monthly only
	Kind       BackupKind        `json:"kind"`
	Active     bool              `json:"active"`
	LastRunAt  *time.Time        `json:"last_run_at,omitempty"`
	NextRunAt  *time.Time        `json:"next_run_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewSchedule creates an active Schedule for the given tenant.
func NewSchedule(tenantID uuid.UUID, frequency ScheduleFrequency, timeOfDay string, kind BackupKind) *Schedule {
	now := time.Now()
	return &Schedule{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Frequency: frequency,
		TimeOfDay: timeOfDay,
		Kind:      kind,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks that the schedule's fields are internally consistent.
func (s *Schedule) Validate() error {
	if !IsValidFrequency(s.Frequency) {
		return fmt.Errorf("invalid frequency: %s", s.Frequency)
	}
	if _, _, err := s.clock(); err != nil {
		return err
	}
	switch s.Frequency {
	case FrequencyWeekly:
		if s.DayOfWeek == nil || *s.DayOfWeek < 0 || *s.DayOfWeek > 6 {
			return errors.New("weekly schedule requires day_of_week between 0 and 6")
		}
	case FrequencyMonthly:
		if s.DayOfMonth == nil || *s.DayOfMonth < 1 || *s.DayOfMonth > 28 {
			return errors.New("monthly schedule requires day_of_month between 1 and 28")
		}
	}
	return nil
}

// clock parses TimeOfDay into hour and minute.
func (s *Schedule) clock() (int, int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s.TimeOfDay, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid time_of_day %q: expected HH:MM", s.TimeOfDay)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time_of_day %q: out of range", s.TimeOfDay)
	}
	return hour, minute, nil
}

// NextAfter computes the next due time strictly after t.
func (s *Schedule) NextAfter(t time.Time) (time.Time, error) {
	hour, minute, err := s.clock()
	if err != nil {
		return time.Time{}, err
	}

	next := time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())

	switch s.Frequency {
	case FrequencyDaily:
		if !next.After(t) {
			next = next.AddDate(0, 0, 1)
		}
	case FrequencyWeekly:
		if s.DayOfWeek == nil {
			return time.Time{}, errors.New("weekly schedule missing day_of_week")
		}
		offset := (*s.DayOfWeek - int(next.Weekday()) + 7) % 7
		next = next.AddDate(0, 0, offset)
		if !next.After(t) {
			next = next.AddDate(0, 0, 7)
		}
	case FrequencyMonthly:
		if s.DayOfMonth == nil {
			return time.Time{}, errors.New("monthly schedule missing day_of_month")
		}
		next = time.Date(t.Year(), t.Month(), *s.DayOfMonth, hour, minute, 0, 0, t.Location())
		if !next.After(t) {
			next = next.AddDate(0, 1, 0)
		}
	default:
		return time.Time{}, fmt.Errorf("invalid frequency: %s", s.Frequency)
	}

	return next, nil
}

// IsDue reports whether the schedule should fire at time t.
func (s *Schedule) IsDue(t time.Time) bool {
	return s.Active && s.NextRunAt != nil && !s.NextRunAt.After(t)
}

// MarkRun records a run at time t and advances the next run time.
func (s *Schedule) MarkRun(t time.Time) error {
	next, err := s.NextAfter(t)
	if err != nil {
		return err
	}
	s.LastRunAt = &t
	s.NextRunAt = &next
	s.UpdatedAt = time.Now()
	return nil
}
