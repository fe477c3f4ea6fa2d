package backup

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/campushq-io/campushq/internal/snapshot"
	"github.com/google/uuid"
)

// mockRecordStore implements RecordStore for testing.
type mockRecordStore struct {
	mu        sync.Mutex
	backups   map[uuid.UUID]*models.Backup
	restores  map[uuid.UUID]*models.Restore
	tenants   map[uuid.UUID]*models.Tenant
	createErr error
	updateErr error
}

func newMockRecordStore() *mockRecordStore {
	return &mockRecordStore{
		backups:  make(map[uuid.UUID]*models.Backup),
		restores: make(map[uuid.UUID]*models.Restore),
		tenants:  make(map[uuid.UUID]*models.Tenant),
	}
}

func (m *mockRecordStore) CreateBackup(_ context.Context, b *models.Backup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *b
	m.backups[b.ID] = &cp
	return nil
}

func (m *mockRecordStore) UpdateBackup(_ context.Context, b *models.Backup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	cp := *b
	m.backups[b.ID] = &cp
	return nil
}

func (m *mockRecordStore) GetBackupByID(_ context.Context, id uuid.UUID) (*models.Backup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.backups[id]
	if !ok {
		return nil, errors.New("backup not found")
	}
	cp := *b
	return &cp, nil
}

func (m *mockRecordStore) CreateRestore(_ context.Context, r *models.Restore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *r
	m.restores[r.ID] = &cp
	return nil
}

func (m *mockRecordStore) UpdateRestore(_ context.Context, r *models.Restore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	cp := *r
	m.restores[r.ID] = &cp
	return nil
}

func (m *mockRecordStore) GetRestoreByID(_ context.Context, id uuid.UUID) (*models.Restore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.restores[id]
	if !ok {
		return nil, errors.New("restore not found")
	}
	cp := *r
	return &cp, nil
}

func (m *mockRecordStore) GetTenantByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return nil, errors.New("tenant not found")
	}
	return t, nil
}

func (m *mockRecordStore) addTenant(t *models.Tenant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[t.ID] = t
}

var _ RecordStore = (*mockRecordStore)(nil)

// mockEventStore records audit events for assertion.
type mockEventStore struct {
	mu     sync.Mutex
	events []*models.AuditEvent
	err    error
}

func (m *mockEventStore) CreateAuditEvent(_ context.Context, event *models.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventStore) byAction(action models.AuditAction) []*models.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.AuditEvent
	for _, e := range m.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// mockBlobStore implements snapshot.Store in memory.
type mockBlobStore struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	writeErr error
	readErr  error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{blobs: make(map[string][]byte)}
}

func (m *mockBlobStore) Write(_ context.Context, tenantID, backupID uuid.UUID, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return "", m.writeErr
	}
	locator := snapshot.Locator(tenantID, backupID)
	if _, exists := m.blobs[locator]; exists {
		return "", snapshot.ErrLocatorExists
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.blobs[locator] = cp
	return locator, nil
}

func (m *mockBlobStore) Read(_ context.Context, locator string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.blobs[locator]
	if !ok {
		return nil, snapshot.ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *mockBlobStore) Delete(_ context.Context, locator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, locator)
	return nil
}

var _ snapshot.Store = (*mockBlobStore)(nil)

// stubExporter returns a fixed payload.
type stubExporter struct {
	payload []byte
	err     error
}

func (s *stubExporter) Export(_ context.Context, _ *models.Tenant, _ models.BackupKind) ([]byte, error) {
	return s.payload, s.err
}

var _ SnapshotExporter = (*stubExporter)(nil)

// stubImporter records applied payloads.
type stubImporter struct {
	mu      sync.Mutex
	applied [][]byte
	tenants []uuid.UUID
	err     error
}

func (s *stubImporter) Apply(_ context.Context, tenantID uuid.UUID, payload []byte, _ models.RestoreOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.applied = append(s.applied, payload)
	s.tenants = append(s.tenants, tenantID)
	return nil
}

var _ SnapshotImporter = (*stubImporter)(nil)

// stubLegal answers acknowledgment lookups with a fixed result.
type stubLegal struct {
	accepted bool
	err      error
}

func (s *stubLegal) HasAccepted(_ context.Context, _, _ uuid.UUID, _ string) (bool, error) {
	return s.accepted, s.err
}

var _ LegalAcknowledgments = (*stubLegal)(nil)

// waitFor polls cond until it holds or the timeout elapses. Used to observe
// terminal record states reached by background tasks.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
