package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action that was audited.
type AuditAction string

const (
	// AuditActionBackupCreated records acceptance of a backup request.
	AuditActionBackupCreated AuditAction = "BACKUP_CREATED"
	// AuditActionBackupCompleted records a successful backup.
	AuditActionBackupCompleted AuditAction = "BACKUP_COMPLETED"
	// AuditActionBackupFailed records a failed backup.
	AuditActionBackupFailed AuditAction = "BACKUP_FAILED"
	// AuditActionBackupDownloaded records an artifact download.
	AuditActionBackupDownloaded AuditAction = "BACKUP_DOWNLOADED"
	// AuditActionRestoreRequested records acceptance of a restore request.
	AuditActionRestoreRequested AuditAction = "RESTORE_REQUESTED"
	// AuditActionRestoreCompleted records a successful restore.
	AuditActionRestoreCompleted AuditAction = "RESTORE_COMPLETED"
	// AuditActionRestoreFailed records a failed restore.
	AuditActionRestoreFailed AuditAction = "RESTORE_FAILED"
	// AuditActionVerifyPassed records a passed integrity verification.
	AuditActionVerifyPassed AuditAction = "VERIFY_PASSED"
	// AuditActionVerifyFailed records a failed integrity verification.
	AuditActionVerifyFailed AuditAction = "VERIFY_FAILED"
	// AuditActionBlockedAccess records a cross-tenant access attempt that was
	// denied. Always emitted exactly once per denied operation.
	AuditActionBlockedAccess AuditAction = "BLOCKED_ACCESS"
	// AuditActionBlockedRestore records a restore rejected at the validation
	// gate for a tenant mismatch.
	AuditActionBlockedRestore AuditAction = "BLOCKED_RESTORE"
	// AuditActionExceptional marks an operator action on a specific tenant,
	// carrying its justification in the note.
	AuditActionExceptional AuditAction = "EXCEPTIONAL_ACTION"
)

// AuditEvent is a single append-only audit record. Events reference records
// by id without owning them.
type AuditEvent struct {
	ID            uuid.UUID   `json:"id"`
	TenantID      uuid.UUID   `json:"tenant_id"`
	ActorUserID   *uuid.UUID  `json:"actor_user_id,omitempty"`
	ActorTenantID *uuid.UUID  `json:"actor_tenant_id,omitempty"`
	Action        AuditAction `json:"action"`
	EntityType    string      `json:"entity_type"`
	EntityID      *uuid.UUID  `json:"entity_id,omitempty"`
	Note          string      `json:"note,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// NewAuditEvent creates a new AuditEvent for a tenant-owned entity.
func NewAuditEvent(tenantID uuid.UUID, action AuditAction, entityType string) *AuditEvent {
	return &AuditEvent{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Action:     action,
		EntityType: entityType,
		CreatedAt:  time.Now(),
	}
}

// WithActor attaches the acting user and their own tenant scope. For blocked
// cross-tenant attempts the actor tenant differs from the resource tenant.
func (e *AuditEvent) WithActor(userID, actorTenantID uuid.UUID) *AuditEvent {
	e.ActorUserID = &userID
	e.ActorTenantID = &actorTenantID
	return e
}

// WithEntity attaches the entity being acted upon.
func (e *AuditEvent) WithEntity(entityID uuid.UUID) *AuditEvent {
	e.EntityID = &entityID
	return e
}

// WithNote attaches free-text detail to the event.
func (e *AuditEvent) WithNote(note string) *AuditEvent {
	e.Note = note
	return e
}
