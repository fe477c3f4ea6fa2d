package backup

import (
	"context"
	"fmt"

	"github.com/campushq-io/campushq/internal/audit"
	"github.com/campushq-io/campushq/internal/metrics"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Compatible reports whether a snapshot declaring the given academic type may
// be restored into a tenant of the target type. An unconfigured target
// accepts any declared type; a specialized target accepts only a matching or
// unconfigured snapshot.
func Compatible(target, declared models.AcademicType) bool {
	if target == models.AcademicTypeUnconfigured {
		return true
	}
	return declared == target || declared == models.AcademicTypeUnconfigured
}

// Restorer validates snapshots and replays them through the importer.
type Restorer struct {
	store    RecordStore
	importer SnapshotImporter
	sink     *audit.Sink
	logger   zerolog.Logger
}

// NewRestorer creates a Restorer.
func NewRestorer(store RecordStore, importer SnapshotImporter, sink *audit.Sink, logger zerolog.Logger) *Restorer {
	return &Restorer{
		store:    store,
		importer: importer,
		sink:     sink,
		logger:   logger.With().Str("component", "restore_orchestrator").Logger(),
	}
}

// ValidateManifest runs the restore validation gate for a parsed snapshot
// against the target tenant. Nothing is mutated before it passes.
func (r *Restorer) ValidateManifest(ctx context.Context, m *models.SnapshotManifest, target *models.Tenant, actor models.Actor, opts models.RestoreOptions) error {
	if !opts.Confirm {
		return fmt.Errorf("%w: restore requires explicit confirmation", ErrValidation)
	}

	if m.TenantID != target.ID {
		r.sink.Emit(ctx, models.NewAuditEvent(target.ID, models.AuditActionBlockedRestore, "restore").
			WithActor(actor.UserID, actor.TenantID).
			WithNote(fmt.Sprintf("snapshot tenant %s, target tenant %s", m.TenantID, target.ID)))
		return fmt.Errorf("%w: snapshot belongs to another tenant", ErrCrossTenant)
	}

	if !Compatible(target.AcademicType, m.AcademicType) {
		return fmt.Errorf("%w: snapshot type %q, tenant type %q", ErrIncompatible, m.AcademicType, target.AcademicType)
	}

	return nil
}

// Execute replays a validated snapshot for an already-created pending restore
// record. It runs as a background task and is the record's only writer; any
// replay failure is captured into the record and never propagates.
func (r *Restorer) Execute(ctx context.Context, restoreID uuid.UUID, payload []byte) error {
	rec, err := r.store.GetRestoreByID(ctx, restoreID)
	if err != nil {
		return fmt.Errorf("load restore %s: %w", restoreID, err)
	}

	rec.Start()
	if err := r.store.UpdateRestore(ctx, rec); err != nil {
		return fmt.Errorf("mark restore running: %w", err)
	}

	logger := r.logger.With().
		Str("restore_id", rec.ID.String()).
		Str("tenant_id", rec.TenantID.String()).
		Logger()

	if err := r.importer.Apply(ctx, rec.TenantID, payload, rec.Options); err != nil {
		logger.Error().Err(err).Msg("restore replay failed")
		rec.Fail(err.Error())
		if uerr := r.store.UpdateRestore(ctx, rec); uerr != nil {
			logger.Error().Err(uerr).Msg("failed to persist failed restore state")
		}
		metrics.RestoreCompleted("failed")
		r.sink.Emit(ctx, models.NewAuditEvent(rec.TenantID, models.AuditActionRestoreFailed, rec.EntityType()).
			WithActor(rec.CreatedByUserID, rec.TenantID).
			WithEntity(rec.ID).
			WithNote(err.Error()))
		return err
	}

	rec.Complete()
	if err := r.store.UpdateRestore(ctx, rec); err != nil {
		logger.Error().Err(err).Msg("failed to persist completed restore")
		return err
	}

	metrics.RestoreCompleted("completed")
	metrics.ObserveRestoreDuration(rec.Duration())
	r.sink.Emit(ctx, models.NewAuditEvent(rec.TenantID, models.AuditActionRestoreCompleted, rec.EntityType()).
		WithActor(rec.CreatedByUserID, rec.TenantID).
		WithEntity(rec.ID))

	logger.Info().Dur("duration", rec.Duration()).Msg("restore completed")
	return nil
}
