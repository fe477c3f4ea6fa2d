package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExporterStore defines the data access needed to export a tenant.
type ExporterStore interface {
	ListSchedulesByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Schedule, error)
	ListFileReferencesByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.FileReference, error)
}

// Exporter builds snapshot payload bundles.
type Exporter struct {
	store  ExporterStore
	logger zerolog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(store ExporterStore, logger zerolog.Logger) *Exporter {
	return &Exporter{
		store:  store,
		logger: logger.With().Str("component", "snapshot_exporter").Logger(),
	}
}

// Export returns the tenant's snapshot payload for the given kind. A tenant
// with nothing to export yields a valid, empty bundle.
func (e *Exporter) Export(ctx context.Context, tenant *models.Tenant, kind models.BackupKind) ([]byte, error) {
	bundle := Bundle{
		Version:    BundleVersion,
		TenantID:   tenant.ID,
		Kind:       kind,
		ExportedAt: time.Now(),
	}

	if includesData(kind) {
		schedules, err := e.store.ListSchedulesByTenant(ctx, tenant.ID)
		if err != nil {
			return nil, fmt.Errorf("export schedules: %w", err)
		}
		bundle.Schedules = schedules
	}

	if includesFiles(kind) {
		files, err := e.store.ListFileReferencesByTenant(ctx, tenant.ID)
		if err != nil {
			return nil, fmt.Errorf("export file references: %w", err)
		}
		bundle.Files = files
	}

	payload, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}

	e.logger.Debug().
		Str("tenant_id", tenant.ID.String()).
		Str("kind", string(kind)).
		Int("schedules", len(bundle.Schedules)).
		Int("files", len(bundle.Files)).
		Msg("snapshot payload exported")
	return payload, nil
}
