// Package export produces and replays tenant snapshot payloads. The payload
// is a versioned JSON bundle; callers treat it as opaque bytes.
package export

import (
	"time"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
)

// BundleVersion is the current payload bundle version.
const BundleVersion = 1

// Bundle is the exported snapshot payload for one tenant.
type Bundle struct {
	Version    int                     `json:"version"`
	TenantID   uuid.UUID               `json:"tenant_id"`
	Kind       models.BackupKind       `json:"kind"`
	ExportedAt time.Time               `json:"exported_at"`
	Schedules  []*models.Schedule      `json:"schedules,omitempty"`
	Files      []*models.FileReference `json:"files,omitempty"`
}

// includesData reports whether the kind covers table contents.
func includesData(kind models.BackupKind) bool {
	return kind == models.BackupKindData || kind == models.BackupKindFull
}

// includesFiles reports whether the kind covers the file catalog.
func includesFiles(kind models.BackupKind) bool {
	return kind == models.BackupKindFiles || kind == models.BackupKindFull
}
