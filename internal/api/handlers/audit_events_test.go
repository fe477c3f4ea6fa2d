package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockAuditEventStore struct {
	byTenant map[uuid.UUID][]*models.AuditEvent
}

func (m *mockAuditEventStore) ListAuditEventsByTenant(_ context.Context, tenantID uuid.UUID, _, _ int) ([]*models.AuditEvent, error) {
	return m.byTenant[tenantID], nil
}

func TestListAuditEventsEndpoint(t *testing.T) {
	actor := adminActor("55555555-5555-5555-5555-555555555555")
	other := uuid.New()

	store := &mockAuditEventStore{byTenant: map[uuid.UUID][]*models.AuditEvent{
		actor.TenantID: {
			models.NewAuditEvent(actor.TenantID, models.AuditActionBackupCreated, "backup"),
			models.NewAuditEvent(actor.TenantID, models.AuditActionBackupDownloaded, "backup"),
		},
		other: {
			models.NewAuditEvent(other, models.AuditActionBackupCreated, "backup"),
		},
	}}

	r, api := newTestRouter(actor)
	NewAuditEventsHandler(store, testGuard(), zerolog.Nop()).RegisterRoutes(api)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/audit-events", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Events []*models.AuditEvent `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Events) != 2 {
		t.Fatalf("expected 2 events for own tenant, got %d", len(resp.Events))
	}
	for _, e := range resp.Events {
		if e.TenantID != actor.TenantID {
			t.Fatalf("event leaked from tenant %s", e.TenantID)
		}
	}
}

func TestListAuditEventsUnauthenticated(t *testing.T) {
	store := &mockAuditEventStore{byTenant: map[uuid.UUID][]*models.AuditEvent{}}

	r, api := newTestRouter(nil)
	NewAuditEventsHandler(store, testGuard(), zerolog.Nop()).RegisterRoutes(api)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/audit-events", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}
