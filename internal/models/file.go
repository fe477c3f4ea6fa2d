package models

import (
	"time"

	"github.com/google/uuid"
)

// FileReference points at one stored document owned by a tenant (report
// cards, enrollment forms, attachments). Backups of kind "files" carry these
// references, never the document bytes themselves.
type FileReference struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `json:"checksum,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFileReference creates a FileReference for the given tenant.
func NewFileReference(tenantID uuid.UUID, path string, sizeBytes int64, checksum string) *FileReference {
	return &FileReference{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Path:      path,
		SizeBytes: sizeBytes,
		Checksum:  checksum,
		CreatedAt: time.Now(),
	}
}
