package scope

import (
	"context"
	"errors"
	"testing"

	"github.com/campushq-io/campushq/internal/audit"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// recordingEventStore captures emitted audit events.
type recordingEventStore struct {
	events []*models.AuditEvent
}

func (s *recordingEventStore) CreateAuditEvent(_ context.Context, event *models.AuditEvent) error {
	s.events = append(s.events, event)
	return nil
}

func testGuard() (*Guard, *recordingEventStore) {
	store := &recordingEventStore{}
	sink := audit.NewSink(store, zerolog.Nop())
	return NewGuard(sink, zerolog.Nop()), store
}

func adminActor(tenantID uuid.UUID) models.Actor {
	return models.Actor{
		UserID:   uuid.New(),
		Email:    "admin@school.example",
		TenantID: tenantID,
		Roles:    []models.Role{models.RoleAdmin},
	}
}

func operatorActor() models.Actor {
	return models.Actor{
		UserID: uuid.New(),
		Email:  "ops@campushq.example",
		Roles:  []models.Role{models.RoleOperator},
	}
}

func TestGuard_ResolveTenant(t *testing.T) {
	g, _ := testGuard()
	tenantID := uuid.New()

	got, err := g.ResolveTenant(adminActor(tenantID))
	if err != nil {
		t.Fatalf("ResolveTenant() error = %v", err)
	}
	if got != tenantID {
		t.Errorf("expected %v, got %v", tenantID, got)
	}

	if _, err := g.ResolveTenant(models.Actor{UserID: uuid.New()}); !errors.Is(err, ErrNoTenantContext) {
		t.Errorf("expected ErrNoTenantContext, got %v", err)
	}
}

func TestGuard_AssertOwnership_SameTenant(t *testing.T) {
	g, store := testGuard()
	tenantID := uuid.New()
	backup := models.NewBackup(tenantID, models.BackupKindFull, models.OriginManual, uuid.New(), "")

	if err := g.AssertOwnership(context.Background(), backup, adminActor(tenantID), ""); err != nil {
		t.Fatalf("AssertOwnership() error = %v", err)
	}
	if len(store.events) != 0 {
		t.Errorf("expected no audit events, got %d", len(store.events))
	}
}

func TestGuard_AssertOwnership_CrossTenantBlocked(t *testing.T) {
	g, store := testGuard()
	ownerTenant := uuid.New()
	callerTenant := uuid.New()
	backup := models.NewBackup(ownerTenant, models.BackupKindFull, models.OriginManual, uuid.New(), "")
	caller := adminActor(callerTenant)

	err := g.AssertOwnership(context.Background(), backup, caller, "")
	if !errors.Is(err, ErrCrossTenantAccess) {
		t.Fatalf("expected ErrCrossTenantAccess, got %v", err)
	}

	if len(store.events) != 1 {
		t.Fatalf("expected exactly one audit event, got %d", len(store.events))
	}
	event := store.events[0]
	if event.Action != models.AuditActionBlockedAccess {
		t.Errorf("expected BLOCKED_ACCESS, got %s", event.Action)
	}
	if event.TenantID != ownerTenant {
		t.Errorf("expected event on resource tenant %v, got %v", ownerTenant, event.TenantID)
	}
	if event.ActorTenantID == nil || *event.ActorTenantID != callerTenant {
		t.Error("expected event to carry the caller's tenant id")
	}
}

func TestGuard_AssertOwnership_OperatorRequiresJustification(t *testing.T) {
	g, store := testGuard()
	ownerTenant := uuid.New()
	backup := models.NewBackup(ownerTenant, models.BackupKindFull, models.OriginManual, uuid.New(), "")

	// The operator role alone never opens a foreign tenant's record.
	err := g.AssertOwnership(context.Background(), backup, operatorActor(), "")
	if !errors.Is(err, ErrJustificationRequired) {
		t.Fatalf("expected ErrJustificationRequired, got %v", err)
	}
	if len(store.events) != 0 {
		t.Fatalf("rejected operator access must not be audited, got %d events", len(store.events))
	}
}

func TestGuard_AssertOwnership_OperatorJustifiedAccessIsExceptional(t *testing.T) {
	g, store := testGuard()
	ownerTenant := uuid.New()
	backup := models.NewBackup(ownerTenant, models.BackupKindFull, models.OriginManual, uuid.New(), "")
	op := operatorActor()

	if err := g.AssertOwnership(context.Background(), backup, op, "ticket SUP-9210: artifact inspection"); err != nil {
		t.Fatalf("AssertOwnership() error = %v", err)
	}
	if len(store.events) != 1 {
		t.Fatalf("expected exactly one audit event, got %d", len(store.events))
	}
	event := store.events[0]
	if event.Action != models.AuditActionExceptional {
		t.Errorf("expected EXCEPTIONAL_ACTION, got %s", event.Action)
	}
	if event.TenantID != ownerTenant {
		t.Errorf("expected event on resource tenant %v, got %v", ownerTenant, event.TenantID)
	}
	if event.EntityID == nil || *event.EntityID != backup.ID {
		t.Error("expected event to name the accessed record")
	}
	if event.Note != "ticket SUP-9210: artifact inspection" {
		t.Error("expected the justification to be recorded on the event")
	}
}

func TestGuard_ResolveTarget_OrdinaryCaller(t *testing.T) {
	g, _ := testGuard()
	tenantID := uuid.New()
	actor := adminActor(tenantID)

	// No explicit target resolves to the caller's own tenant.
	got, err := g.ResolveTarget(context.Background(), actor, uuid.Nil, "")
	if err != nil {
		t.Fatalf("ResolveTarget() error = %v", err)
	}
	if got != tenantID {
		t.Errorf("expected %v, got %v", tenantID, got)
	}

	// An explicit foreign tenant is rejected for non-operators.
	if _, err := g.ResolveTarget(context.Background(), actor, uuid.New(), "because"); !errors.Is(err, ErrOperatorOnly) {
		t.Errorf("expected ErrOperatorOnly, got %v", err)
	}

	// Naming any tenant in a payload is a violation for non-operators, even
	// when the id happens to match the caller's own tenant.
	if _, err := g.ResolveTarget(context.Background(), actor, tenantID, ""); !errors.Is(err, ErrOperatorOnly) {
		t.Errorf("expected ErrOperatorOnly for own tenant id, got %v", err)
	}
}

func TestGuard_ResolveTarget_OperatorJustification(t *testing.T) {
	g, store := testGuard()
	target := uuid.New()
	op := operatorActor()

	if _, err := g.ResolveTarget(context.Background(), op, target, "  "); !errors.Is(err, ErrJustificationRequired) {
		t.Fatalf("expected ErrJustificationRequired, got %v", err)
	}
	if len(store.events) != 0 {
		t.Fatal("rejected operator action must not be audited as exceptional")
	}

	got, err := g.ResolveTarget(context.Background(), op, target, "ticket SUP-4411: tenant data recovery")
	if err != nil {
		t.Fatalf("ResolveTarget() error = %v", err)
	}
	if got != target {
		t.Errorf("expected %v, got %v", target, got)
	}
	if len(store.events) != 1 || store.events[0].Action != models.AuditActionExceptional {
		t.Fatal("expected one EXCEPTIONAL_ACTION audit event")
	}
	if store.events[0].Note == "" {
		t.Error("expected the justification to be recorded on the event")
	}

	// An operator naming its own tenant is ordinary and needs no justification.
	own := uuid.New()
	scoped := models.Actor{UserID: uuid.New(), Email: "ops@campushq.example", TenantID: own, Roles: []models.Role{models.RoleOperator}}
	got, err = g.ResolveTarget(context.Background(), scoped, own, "")
	if err != nil || got != own {
		t.Fatalf("ResolveTarget(own tenant) = %v, %v", got, err)
	}
	if len(store.events) != 1 {
		t.Error("operator acting on its own tenant must not be audited as exceptional")
	}
}
