// Package models defines the core data records for the CampusHQ backup subsystem.
package models

import (
	"time"

	"github.com/google/uuid"
)

// BackupStatus represents the current status of a backup record.
type BackupStatus string

const (
	// BackupStatusPending indicates the backup has been accepted but not started.
	BackupStatusPending BackupStatus = "pending"
	// BackupStatusRunning indicates the backup is in progress.
	BackupStatusRunning BackupStatus = "running"
	// BackupStatusCompleted indicates the backup completed successfully.
	BackupStatusCompleted BackupStatus = "completed"
	// BackupStatusFailed indicates the backup failed.
	BackupStatusFailed BackupStatus = "failed"
)

// BackupKind represents what a backup contains.
type BackupKind string

const (
	// BackupKindData covers table contents only.
	BackupKindData BackupKind = "data"
	// BackupKindFiles covers a manifest of stored file references only.
	BackupKindFiles BackupKind = "files"
	// BackupKindFull covers both table contents and file references.
	BackupKindFull BackupKind = "full"
)

// BackupOrigin records how a backup was triggered.
type BackupOrigin string

const (
	// OriginManual is a backup requested by a tenant administrator.
	OriginManual BackupOrigin = "manual"
	// OriginScheduled is a backup triggered by a recurring schedule.
	OriginScheduled BackupOrigin = "scheduled"
	// OriginOperator is a backup forced by a platform operator on a tenant.
	OriginOperator BackupOrigin = "operator"
)

// RetentionStatus marks whether a backup is still within its retention window.
type RetentionStatus string

const (
	// RetentionActive means the backup is retained and downloadable.
	RetentionActive RetentionStatus = "active"
	// RetentionExpired means the backup passed its expiry and may be pruned.
	RetentionExpired RetentionStatus = "expired"
)

// EncryptionMeta describes how a stored blob was encrypted.
type EncryptionMeta struct {
	Algorithm string `json:"algorithm"`
	IV        string `json:"iv"`
	AuthTag   string `json:"auth_tag"`
}

// SignatureMeta describes the platform signature over the content hash.
type SignatureMeta struct {
	Algorithm string `json:"algorithm"`
	Value     string `json:"value"`
	Verified  bool   `json:"verified"`
}

// Backup represents a single backup attempt for a tenant.
//
// TenantID is immutable after creation and is always derived from the
// authenticated caller's scope, never from request payloads.
type Backup struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	Kind            BackupKind      `json:"kind"`
	Origin          BackupOrigin    `json:"origin"`
	Status          BackupStatus    `json:"status"`
	StorageLocator  string          `json:"storage_locator,omitempty"`
	SizeBytes       *int64          `json:"size_bytes,omitempty"`
	ContentHash     string          `json:"content_hash,omitempty"`
	Encryption      *EncryptionMeta `json:"encryption,omitempty"`
	Signature       *SignatureMeta  `json:"signature,omitempty"`
	RetentionStatus RetentionStatus `json:"retention_status"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedByUserID uuid.UUID       `json:"created_by_user_id"`
	CreatedByEmail  string          `json:"created_by_email,omitempty"`
}

// NewBackup creates a pending Backup record for the given tenant.
func NewBackup(tenantID uuid.UUID, kind BackupKind, origin BackupOrigin, createdBy uuid.UUID, createdByEmail string) *Backup {
	return &Backup{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Kind:            kind,
		Origin:          origin,
		Status:          BackupStatusPending,
		RetentionStatus: RetentionActive,
		CreatedAt:       time.Now(),
		CreatedByUserID: createdBy,
		CreatedByEmail:  createdByEmail,
	}
}

// Start marks the backup as running.
func (b *Backup) Start() {
	now := time.Now()
	b.StartedAt = &now
	b.Status = BackupStatusRunning
}

// Complete marks the backup as completed. Locator, hash and size are set
// together so no reader ever observes a completed record missing one of them.
func (b *Backup) Complete(locator, contentHash string, sizeBytes int64, enc *EncryptionMeta, sig *SignatureMeta) {
	now := time.Now()
	b.CompletedAt = &now
	b.Status = BackupStatusCompleted
	b.StorageLocator = locator
	b.ContentHash = contentHash
	b.SizeBytes = &sizeBytes
	b.Encryption = enc
	b.Signature = sig
}

// ScheduleExpiry stamps the retention deadline, counted from the completion
// time. A non-positive retention leaves the record without a deadline, so it
// is retained indefinitely.
func (b *Backup) ScheduleExpiry(retention time.Duration) {
	if retention <= 0 || b.CompletedAt == nil {
		return
	}
	deadline := b.CompletedAt.Add(retention)
	b.ExpiresAt = &deadline
}

// Fail marks the backup as failed with the given error message.
func (b *Backup) Fail(errMsg string) {
	now := time.Now()
	b.CompletedAt = &now
	b.Status = BackupStatusFailed
	b.ErrorMessage = errMsg
}

// Expire marks the backup as past its retention window.
func (b *Backup) Expire() {
	b.RetentionStatus = RetentionExpired
}

// IsComplete returns true if the backup has a terminal status.
func (b *Backup) IsComplete() bool {
	return b.Status == BackupStatusCompleted || b.Status == BackupStatusFailed
}

// Downloadable reports whether the stored artifact may ever be handed out.
// A completed record without a content hash is unsafe regardless of status.
func (b *Backup) Downloadable() bool {
	return b.Status == BackupStatusCompleted &&
		b.StorageLocator != "" &&
		b.ContentHash != "" &&
		b.RetentionStatus == RetentionActive
}

// Duration returns the duration of the backup, or 0 if not completed.
func (b *Backup) Duration() time.Duration {
	if b.StartedAt == nil || b.CompletedAt == nil {
		return 0
	}
	return b.CompletedAt.Sub(*b.StartedAt)
}

// ArtifactFilename returns the download filename for the stored blob.
func (b *Backup) ArtifactFilename() string {
	return "campushq-" + string(b.Kind) + "-" + b.ID.String() + ".snap"
}
