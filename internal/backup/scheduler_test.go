package backup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/rs/zerolog"
)

// mockScheduleStore implements ScheduleStore for testing.
type mockScheduleStore struct {
	mu          sync.Mutex
	schedules   []*models.Schedule
	updated     []*models.Schedule
	getErr      error
	updateErr   error
	expireN     int64
	expireCalls int
}

func (m *mockScheduleStore) GetDueSchedules(_ context.Context, t time.Time) ([]*models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var due []*models.Schedule
	for _, s := range m.schedules {
		if s.IsDue(t) {
			due = append(due, s)
		}
	}
	return due, nil
}

func (m *mockScheduleStore) UpdateSchedule(_ context.Context, s *models.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, s)
	return nil
}

func (m *mockScheduleStore) ExpireDueBackups(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expireCalls++
	return m.expireN, nil
}

var _ ScheduleStore = (*mockScheduleStore)(nil)

func dueSchedule(tenant *models.Tenant) *models.Schedule {
	sched := models.NewSchedule(tenant.ID, models.FrequencyDaily, "02:00", models.BackupKindFull)
	past := time.Now().Add(-time.Minute)
	sched.NextRunAt = &past
	return sched
}

func TestSchedulerRunDueQueuesBackups(t *testing.T) {
	f := newServiceFixture(t)
	tenant := f.addTenant("Nightly", "nightly", models.AcademicTypeK12)

	store := &mockScheduleStore{schedules: []*models.Schedule{dueSchedule(tenant)}}
	sched := NewScheduler(store, f.service, DefaultSchedulerConfig(), zerolog.Nop())

	now := time.Now()
	sched.RunDue(context.Background(), now)

	if len(store.updated) != 1 {
		t.Fatalf("updated schedules = %d, want 1", len(store.updated))
	}
	if store.updated[0].NextRunAt == nil || !store.updated[0].NextRunAt.After(now) {
		t.Fatal("schedule must advance past now after firing")
	}

	ok := waitFor(2*time.Second, func() bool {
		f.store.mu.Lock()
		defer f.store.mu.Unlock()
		for _, b := range f.store.backups {
			if b.Origin == models.OriginScheduled && b.Status == models.BackupStatusCompleted {
				return true
			}
		}
		return false
	})
	if !ok {
		t.Fatal("scheduled backup never completed")
	}
}

func TestSchedulerTickSweepsRetention(t *testing.T) {
	f := newServiceFixture(t)
	store := &mockScheduleStore{expireN: 3}
	s := NewScheduler(store, f.service, DefaultSchedulerConfig(), zerolog.Nop())

	s.expire(context.Background())

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.expireCalls != 1 {
		t.Fatalf("expire calls = %d, want 1", store.expireCalls)
	}
}

func TestSchedulerRunDueSkipsNotDue(t *testing.T) {
	f := newServiceFixture(t)
	tenant := f.addTenant("Later", "later", models.AcademicTypeK12)

	future := time.Now().Add(time.Hour)
	sched := models.NewSchedule(tenant.ID, models.FrequencyDaily, "02:00", models.BackupKindData)
	sched.NextRunAt = &future

	store := &mockScheduleStore{schedules: []*models.Schedule{sched}}
	s := NewScheduler(store, f.service, DefaultSchedulerConfig(), zerolog.Nop())
	s.RunDue(context.Background(), time.Now())

	if len(store.updated) != 0 {
		t.Fatal("schedule not due must not be touched")
	}
	if len(f.store.backups) != 0 {
		t.Fatal("no backup may be queued for a schedule not due")
	}
}

func TestSchedulerRunDueSkipsOnPersistFailure(t *testing.T) {
	f := newServiceFixture(t)
	tenant := f.addTenant("Flaky", "flaky", models.AcademicTypeK12)

	store := &mockScheduleStore{
		schedules: []*models.Schedule{dueSchedule(tenant)},
		updateErr: errors.New("connection reset"),
	}
	s := NewScheduler(store, f.service, DefaultSchedulerConfig(), zerolog.Nop())
	s.RunDue(context.Background(), time.Now())

	if len(f.store.backups) != 0 {
		t.Fatal("a schedule whose bookkeeping failed must not fire")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	f := newServiceFixture(t)
	store := &mockScheduleStore{}
	s := NewScheduler(store, f.service, SchedulerConfig{TickSpec: "@every 1h", TickTimeout: time.Second}, zerolog.Nop())

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Fatal("second Start must fail")
	}
	s.Stop()
	// Stop is idempotent.
	s.Stop()
}
