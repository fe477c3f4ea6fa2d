package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ManifestVersion is the current snapshot envelope version.
const ManifestVersion = 1

// ErrInvalidManifest indicates the snapshot envelope could not be parsed.
var ErrInvalidManifest = errors.New("invalid snapshot manifest")

// SnapshotManifest is the parseable envelope at the head of every raw
// snapshot. It embeds the origin tenant and its academic type so a restore
// can validate ownership and compatibility before any payload is touched.
// The payload itself stays opaque to the backup core.
type SnapshotManifest struct {
	Version      int          `json:"version"`
	TenantID     uuid.UUID    `json:"tenant_id"`
	AcademicType AcademicType `json:"academic_type"`
	Kind         BackupKind   `json:"kind"`
	CreatedAt    time.Time    `json:"created_at"`
	// Payload is the opaque export produced by the data export routine,
	// base64 inside the JSON envelope.
	Payload []byte `json:"payload"`
}

// NewSnapshotManifest wraps an opaque payload in the current envelope version.
func NewSnapshotManifest(tenantID uuid.UUID, academicType AcademicType, kind BackupKind, payload []byte) *SnapshotManifest {
	return &SnapshotManifest{
		Version:      ManifestVersion,
		TenantID:     tenantID,
		AcademicType: academicType,
		Kind:         kind,
		CreatedAt:    time.Now(),
		Payload:      payload,
	}
}

// Encode serializes the manifest to its wire form.
func (m *SnapshotManifest) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot manifest: %w", err)
	}
	return data, nil
}

// ParseSnapshotManifest decodes and validates a snapshot envelope.
func ParseSnapshotManifest(data []byte) (*SnapshotManifest, error) {
	var m SnapshotManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidManifest, m.Version)
	}
	if m.TenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing tenant id", ErrInvalidManifest)
	}
	if m.AcademicType == "" {
		// Older exports omitted the type; treat it as the wildcard state.
		m.AcademicType = AcademicTypeUnconfigured
	}
	return &m, nil
}
