package backup

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/campushq-io/campushq/internal/audit"
	"github.com/campushq-io/campushq/internal/crypto"
	"github.com/campushq-io/campushq/internal/metrics"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/campushq-io/campushq/internal/snapshot"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Generator produces encrypted, hashed and signed backup artifacts.
type Generator struct {
	store     RecordStore
	exporter  SnapshotExporter
	blobs     snapshot.Store
	cipher    *crypto.Cipher
	signer    *crypto.Signer
	retention time.Duration
	sink      *audit.Sink
	logger    zerolog.Logger
}

// NewGenerator creates a Generator. Key material is injected once at
// construction; there are no lazily initialized singletons. Every completed
// artifact gets an expiry of retention past its completion time; a
// non-positive retention disables expiry.
func NewGenerator(store RecordStore, exporter SnapshotExporter, blobs snapshot.Store, cipher *crypto.Cipher, signer *crypto.Signer, retention time.Duration, sink *audit.Sink, logger zerolog.Logger) *Generator {
	return &Generator{
		store:     store,
		exporter:  exporter,
		blobs:     blobs,
		cipher:    cipher,
		signer:    signer,
		retention: retention,
		sink:      sink,
		logger:    logger.With().Str("component", "backup_generator").Logger(),
	}
}

// Execute runs the generation pipeline for an already-created pending record.
// It is the record's only writer and is called from a background task; every
// failure lands in the record's failed state instead of propagating.
func (g *Generator) Execute(ctx context.Context, backupID uuid.UUID) error {
	rec, err := g.store.GetBackupByID(ctx, backupID)
	if err != nil {
		return fmt.Errorf("load backup %s: %w", backupID, err)
	}

	rec.Start()
	if err := g.store.UpdateBackup(ctx, rec); err != nil {
		return fmt.Errorf("mark backup running: %w", err)
	}

	logger := g.logger.With().
		Str("backup_id", rec.ID.String()).
		Str("tenant_id", rec.TenantID.String()).
		Str("kind", string(rec.Kind)).
		Logger()

	locator, err := g.produce(ctx, rec)
	if err != nil {
		logger.Error().Err(err).Msg("backup generation failed")
		rec.Fail(err.Error())
		if uerr := g.store.UpdateBackup(ctx, rec); uerr != nil {
			logger.Error().Err(uerr).Msg("failed to persist failed backup state")
		}
		// A failed record must not reference a partial blob.
		if locator != "" {
			if derr := g.blobs.Delete(ctx, locator); derr != nil {
				logger.Error().Err(derr).Str("locator", locator).Msg("failed to remove partial blob")
			}
		}
		metrics.BackupCompleted("failed")
		g.sink.Emit(ctx, models.NewAuditEvent(rec.TenantID, models.AuditActionBackupFailed, rec.EntityType()).
			WithActor(rec.CreatedByUserID, rec.TenantID).
			WithEntity(rec.ID).
			WithNote(err.Error()))
		return err
	}

	if err := g.store.UpdateBackup(ctx, rec); err != nil {
		logger.Error().Err(err).Msg("failed to persist completed backup")
		if derr := g.blobs.Delete(ctx, locator); derr != nil {
			logger.Error().Err(derr).Str("locator", locator).Msg("failed to remove orphaned blob")
		}
		return err
	}

	metrics.BackupCompleted("completed")
	metrics.ObserveBackupDuration(rec.Duration())
	g.sink.Emit(ctx, models.NewAuditEvent(rec.TenantID, models.AuditActionBackupCompleted, rec.EntityType()).
		WithActor(rec.CreatedByUserID, rec.TenantID).
		WithEntity(rec.ID).
		WithNote("hash "+hashPrefix(rec.ContentHash)))

	logger.Info().
		Int64("size_bytes", *rec.SizeBytes).
		Dur("duration", rec.Duration()).
		Msg("backup completed")
	return nil
}

// produce runs steps export → encrypt → hash → sign → persist and completes
// the record in memory. It returns the written locator (empty until the blob
// write succeeds) so the caller can clean up on failure.
func (g *Generator) produce(ctx context.Context, rec *models.Backup) (string, error) {
	tenant, err := g.store.GetTenantByID(ctx, rec.TenantID)
	if err != nil {
		return "", fmt.Errorf("load tenant: %w", err)
	}

	payload, err := g.exporter.Export(ctx, tenant, rec.Kind)
	if err != nil {
		return "", fmt.Errorf("export snapshot: %w", err)
	}

	manifest := models.NewSnapshotManifest(tenant.ID, tenant.AcademicType, rec.Kind, payload)
	plaintext, err := manifest.Encode()
	if err != nil {
		return "", err
	}

	sealed, err := g.cipher.Encrypt(plaintext)
	if err != nil {
		return "", fmt.Errorf("encrypt snapshot: %w", err)
	}

	// The hash always describes exactly the final persisted bytes.
	final := sealed.Ciphertext
	contentHash := crypto.HashHex(final)

	// A verify-only deployment carries no signing seed; such artifacts are
	// stored unsigned and the verifier treats the signature as absent.
	var sigMeta *models.SignatureMeta
	if g.signer != nil {
		sigMeta = &models.SignatureMeta{
			Algorithm: crypto.AlgorithmEd25519,
			Value:     g.signer.Sign(contentHash),
			Verified:  true,
		}
	}

	locator, err := g.blobs.Write(ctx, rec.TenantID, rec.ID, final)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	rec.Complete(locator, contentHash, int64(len(final)),
		&models.EncryptionMeta{
			Algorithm: crypto.AlgorithmAESGCM,
			IV:        hex.EncodeToString(sealed.IV),
			AuthTag:   hex.EncodeToString(sealed.AuthTag),
		},
		sigMeta)
	rec.ScheduleExpiry(g.retention)
	return locator, nil
}

// hashPrefix truncates a content hash for audit notes so integrity material
// never leaks into logs whole.
func hashPrefix(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
