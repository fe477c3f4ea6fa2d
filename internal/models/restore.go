package models

import (
	"time"

	"github.com/google/uuid"
)

// RestoreStatus represents the current status of a restore operation.
type RestoreStatus string

const (
	// RestoreStatusPending indicates the restore is queued.
	RestoreStatusPending RestoreStatus = "pending"
	// RestoreStatusRunning indicates the restore is in progress.
	RestoreStatusRunning RestoreStatus = "running"
	// RestoreStatusCompleted indicates the restore completed successfully.
	RestoreStatusCompleted RestoreStatus = "completed"
	// RestoreStatusFailed indicates the restore failed.
	RestoreStatusFailed RestoreStatus = "failed"
)

// RestoreOptions controls how snapshot entities are replayed into the store.
type RestoreOptions struct {
	// Overwrite replaces entities that already exist in the target tenant.
	Overwrite bool `json:"overwrite"`
	// SkipExisting leaves entities that already exist untouched.
	SkipExisting bool `json:"skip_existing"`
	// Confirm must be explicitly set; a restore never runs as a side effect
	// of a read.
	Confirm bool `json:"confirm"`
}

// Restore represents one restore operation for a tenant. It describes an
// operation, not a stored artifact: it never carries a storage locator or a
// content hash of its own.
type Restore struct {
	ID              uuid.UUID      `json:"id"`
	TenantID        uuid.UUID      `json:"tenant_id"`
	SourceBackupID  *uuid.UUID     `json:"source_backup_id,omitempty"`
	Status          RestoreStatus  `json:"status"`
	Options         RestoreOptions `json:"options"`
	Justification   string         `json:"justification,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	CreatedByUserID uuid.UUID      `json:"created_by_user_id"`
	CreatedByEmail  string         `json:"created_by_email,omitempty"`
}

// NewRestore creates a pending Restore record from an uploaded snapshot.
func NewRestore(tenantID uuid.UUID, opts RestoreOptions, createdBy uuid.UUID, createdByEmail string) *Restore {
	return &Restore{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Status:          RestoreStatusPending,
		Options:         opts,
		CreatedAt:       time.Now(),
		CreatedByUserID: createdBy,
		CreatedByEmail:  createdByEmail,
	}
}

// NewRestoreFromBackup creates a pending Restore record sourced from a stored backup.
func NewRestoreFromBackup(tenantID, backupID uuid.UUID, opts RestoreOptions, createdBy uuid.UUID, createdByEmail string) *Restore {
	r := NewRestore(tenantID, opts, createdBy, createdByEmail)
	r.SourceBackupID = &backupID
	return r
}

// Start marks the restore as running.
func (r *Restore) Start() {
	now := time.Now()
	r.StartedAt = &now
	r.Status = RestoreStatusRunning
}

// Complete marks the restore as completed successfully.
func (r *Restore) Complete() {
	now := time.Now()
	r.CompletedAt = &now
	r.Status = RestoreStatusCompleted
}

// Fail marks the restore as failed with the given error message.
func (r *Restore) Fail(errMsg string) {
	now := time.Now()
	r.CompletedAt = &now
	r.Status = RestoreStatusFailed
	r.ErrorMessage = errMsg
}

// IsComplete returns true if the restore has finished.
func (r *Restore) IsComplete() bool {
	return r.Status == RestoreStatusCompleted || r.Status == RestoreStatusFailed
}

// Duration returns the duration of the restore, or zero if not started/completed.
func (r *Restore) Duration() time.Duration {
	if r.StartedAt == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(*r.StartedAt)
}
