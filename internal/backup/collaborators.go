// Package backup implements snapshot generation, integrity verification and
// the restore pipeline for tenant data.
package backup

import (
	"context"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
)

// SnapshotExporter produces the raw snapshot payload for a tenant. The
// payload format (table contents, file manifests) is opaque to this package.
type SnapshotExporter interface {
	// Export returns the raw payload for the given tenant and backup kind.
	// An empty payload is a valid snapshot.
	Export(ctx context.Context, tenant *models.Tenant, kind models.BackupKind) ([]byte, error)
}

// SnapshotImporter replays a validated snapshot payload into the live store.
type SnapshotImporter interface {
	// Apply replays payload into the target tenant according to opts. A
	// failed Apply must leave the tenant safe to retry from the same payload.
	Apply(ctx context.Context, tenantID uuid.UUID, payload []byte, opts models.RestoreOptions) error
}

// LegalAcknowledgments reports whether an operator has the acknowledgment on
// file that an exceptional action requires.
type LegalAcknowledgments interface {
	HasAccepted(ctx context.Context, userID, tenantID uuid.UUID, actionKind string) (bool, error)
}

// RecordStore persists backup and restore records and resolves tenants.
type RecordStore interface {
	CreateBackup(ctx context.Context, b *models.Backup) error
	UpdateBackup(ctx context.Context, b *models.Backup) error
	GetBackupByID(ctx context.Context, id uuid.UUID) (*models.Backup, error)

	CreateRestore(ctx context.Context, r *models.Restore) error
	UpdateRestore(ctx context.Context, r *models.Restore) error
	GetRestoreByID(ctx context.Context, id uuid.UUID) (*models.Restore, error)

	GetTenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

// LegalActionRestore is the action kind an operator restore must have
// acknowledged before it is queued.
const LegalActionRestore = "tenant_restore"
