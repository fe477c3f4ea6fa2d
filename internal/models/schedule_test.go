package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func intPtr(n int) *int { return &n }

func TestSchedule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Schedule)
		wantErr bool
	}{
		{"valid daily", func(s *Schedule) {}, false},
		{"bad frequency", func(s *Schedule) { s.Frequency = "hourly" }, true},
		{"bad time", func(s *Schedule) { s.TimeOfDay = "25:00" }, true},
		{"weekly missing weekday", func(s *Schedule) { s.Frequency = FrequencyWeekly }, true},
		{"weekly valid", func(s *Schedule) { s.Frequency = FrequencyWeekly; s.DayOfWeek = intPtr(2) }, false},
		{"monthly day out of range", func(s *Schedule) { s.Frequency = FrequencyMonthly; s.DayOfMonth = intPtr(31) }, true},
		{"monthly valid", func(s *Schedule) { s.Frequency = FrequencyMonthly; s.DayOfMonth = intPtr(15) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSchedule(uuid.New(), FrequencyDaily, "02:30", BackupKindFull)
			tt.mutate(s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSchedule_NextAfter_Daily(t *testing.T) {
	s := NewSchedule(uuid.New(), FrequencyDaily, "02:30", BackupKindFull)

	at := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	next, err := s.NextAfter(at)
	if err != nil {
		t.Fatalf("NextAfter() error = %v", err)
	}
	want := time.Date(2026, 3, 10, 2, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}

	// After today's slot the schedule rolls to tomorrow.
	next, err = s.NextAfter(want)
	if err != nil {
		t.Fatalf("NextAfter() error = %v", err)
	}
	if !next.Equal(want.AddDate(0, 0, 1)) {
		t.Errorf("expected next day, got %v", next)
	}
}

func TestSchedule_NextAfter_Weekly(t *testing.T) {
	s := NewSchedule(uuid.New(), FrequencyWeekly, "04:00", BackupKindData)
	s.DayOfWeek = intPtr(1) // Monday

	// Wednesday 2026-03-11.
	at := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	next, err := s.NextAfter(at)
	if err != nil {
		t.Fatalf("NextAfter() error = %v", err)
	}
	want := time.Date(2026, 3, 16, 4, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v (Monday), got %v", want, next)
	}
}

func TestSchedule_NextAfter_Monthly(t *testing.T) {
	s := NewSchedule(uuid.New(), FrequencyMonthly, "00:15", BackupKindFull)
	s.DayOfMonth = intPtr(5)

	at := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	next, err := s.NextAfter(at)
	if err != nil {
		t.Fatalf("NextAfter() error = %v", err)
	}
	want := time.Date(2026, 4, 5, 0, 15, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestSchedule_MarkRun(t *testing.T) {
	s := NewSchedule(uuid.New(), FrequencyDaily, "03:00", BackupKindFull)
	at := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)

	if err := s.MarkRun(at); err != nil {
		t.Fatalf("MarkRun() error = %v", err)
	}
	if s.LastRunAt == nil || !s.LastRunAt.Equal(at) {
		t.Error("expected LastRunAt to record the run time")
	}
	if s.NextRunAt == nil || !s.NextRunAt.After(at) {
		t.Error("expected NextRunAt to advance past the run time")
	}
	if s.IsDue(at) {
		t.Error("schedule must not be due immediately after a run")
	}
}
