package backup

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/campushq-io/campushq/internal/audit"
	"github.com/campushq-io/campushq/internal/crypto"
	"github.com/campushq-io/campushq/internal/jobs"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/campushq-io/campushq/internal/scope"
	"github.com/campushq-io/campushq/internal/snapshot"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Artifact is a downloadable backup blob, returned exactly as stored. The
// caller is responsible for any decryption.
type Artifact struct {
	Bytes    []byte
	Filename string
}

// CreateBackupRequest describes a backup creation call.
type CreateBackupRequest struct {
	Kind models.BackupKind
	// TenantID is an explicit target, allowed only for operators.
	TenantID uuid.UUID
	// Justification is mandatory for operator actions on explicit tenants.
	Justification string
}

// RestoreRequest describes a restore call.
type RestoreRequest struct {
	Options models.RestoreOptions
	// TenantID is an explicit target, allowed only for operators.
	TenantID uuid.UUID
	// Justification is mandatory for operator actions on explicit tenants.
	Justification string
}

// Service is the boundary the outer HTTP layer consumes. Synchronous calls
// either return a pending record immediately or fail fast with a taxonomy
// error; outcomes of the background work are observable only by re-reading
// the record.
type Service struct {
	store     RecordStore
	blobs     snapshot.Store
	guard     *scope.Guard
	runner    *jobs.Runner
	generator *Generator
	restorer  *Restorer
	verifier  *Verifier
	cipher    *crypto.Cipher
	legal     LegalAcknowledgments
	sink      *audit.Sink
	logger    zerolog.Logger
}

// NewService creates the backup service boundary.
func NewService(store RecordStore, blobs snapshot.Store, guard *scope.Guard, runner *jobs.Runner, generator *Generator, restorer *Restorer, verifier *Verifier, cipher *crypto.Cipher, legal LegalAcknowledgments, sink *audit.Sink, logger zerolog.Logger) *Service {
	return &Service{
		store:     store,
		blobs:     blobs,
		guard:     guard,
		runner:    runner,
		generator: generator,
		restorer:  restorer,
		verifier:  verifier,
		cipher:    cipher,
		legal:     legal,
		sink:      sink,
		logger:    logger.With().Str("component", "backup_service").Logger(),
	}
}

// CreateBackup creates a pending backup record and hands generation to the
// background runner. The record id is returned before any work happens.
func (s *Service) CreateBackup(ctx context.Context, actor models.Actor, req CreateBackupRequest) (*models.Backup, error) {
	if req.Kind != models.BackupKindData && req.Kind != models.BackupKindFiles && req.Kind != models.BackupKindFull {
		return nil, fmt.Errorf("%w: invalid backup kind %q", ErrValidation, req.Kind)
	}

	tenantID, err := s.guard.ResolveTarget(ctx, actor, req.TenantID, req.Justification)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := s.store.GetTenantByID(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("%w: tenant %s", ErrNotFound, tenantID)
	}

	origin := models.OriginManual
	if tenantID != actor.TenantID {
		origin = models.OriginOperator
	}

	rec := models.NewBackup(tenantID, req.Kind, origin, actor.UserID, actor.Email)
	if err := s.store.CreateBackup(ctx, rec); err != nil {
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	s.sink.Emit(ctx, models.NewAuditEvent(tenantID, models.AuditActionBackupCreated, rec.EntityType()).
		WithActor(actor.UserID, actor.TenantID).
		WithEntity(rec.ID).
		WithNote(string(req.Kind)))

	s.submitGeneration(rec.ID)
	return rec, nil
}

// CreateScheduledBackup creates and queues a backup on behalf of a due
// schedule. There is no interactive actor; the schedule's tenant owns it.
func (s *Service) CreateScheduledBackup(ctx context.Context, sched *models.Schedule) (*models.Backup, error) {
	rec := models.NewBackup(sched.TenantID, sched.Kind, models.OriginScheduled, uuid.Nil, "")
	if err := s.store.CreateBackup(ctx, rec); err != nil {
		return nil, fmt.Errorf("create scheduled backup record: %w", err)
	}

	s.sink.Emit(ctx, models.NewAuditEvent(sched.TenantID, models.AuditActionBackupCreated, rec.EntityType()).
		WithEntity(rec.ID).
		WithNote("schedule "+sched.ID.String()))

	s.submitGeneration(rec.ID)
	return rec, nil
}

func (s *Service) submitGeneration(backupID uuid.UUID) {
	s.runner.Submit(jobs.Task{
		Name: "backup-generate " + backupID.String(),
		Run: func(ctx context.Context) error {
			return s.generator.Execute(ctx, backupID)
		},
	})
}

// GetDownloadableArtifact returns the stored blob for a backup, exactly as
// persisted. It refuses incomplete records, records without a content hash,
// records past their retention window, and artifacts that fail integrity or
// signature verification. Operators reading a foreign tenant's artifact must
// supply a justification; the access is audited as exceptional.
func (s *Service) GetDownloadableArtifact(ctx context.Context, actor models.Actor, backupID uuid.UUID, justification string) (*Artifact, error) {
	rec, err := s.store.GetBackupByID(ctx, backupID)
	if err != nil {
		return nil, fmt.Errorf("%w: backup %s", ErrNotFound, backupID)
	}

	if err := s.guard.AssertOwnership(ctx, rec, actor, justification); err != nil {
		return nil, scopeError(err)
	}

	if rec.Status != models.BackupStatusCompleted {
		return nil, fmt.Errorf("%w: status %s", ErrIncompleteArtifact, rec.Status)
	}
	// Hard refusal: a completed record without a hash is unsafe regardless
	// of status.
	if rec.ContentHash == "" || rec.StorageLocator == "" {
		return nil, ErrMissingHash
	}
	if !rec.Downloadable() {
		return nil, ErrRetentionExpired
	}

	blob, err := s.blobs.Read(ctx, rec.StorageLocator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	result := s.verifier.Verify(ctx, rec.TenantID, rec.ID, blob, rec.ContentHash, rec.Signature)
	if !result.IntegrityOK {
		return nil, ErrIntegrity
	}
	if !result.SignatureOK {
		return nil, ErrSignature
	}

	s.sink.Emit(ctx, models.NewAuditEvent(rec.TenantID, models.AuditActionBackupDownloaded, rec.EntityType()).
		WithActor(actor.UserID, actor.TenantID).
		WithEntity(rec.ID))

	return &Artifact{Bytes: blob, Filename: rec.ArtifactFilename()}, nil
}

// RestoreFromUpload validates an uploaded snapshot and queues its replay.
// The uploaded bytes are a plaintext snapshot envelope; callers decrypt
// downloaded artifacts before re-uploading them.
func (s *Service) RestoreFromUpload(ctx context.Context, actor models.Actor, snapshotBytes []byte, req RestoreRequest) (*models.Restore, error) {
	manifest, err := models.ParseSnapshotManifest(snapshotBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.queueRestore(ctx, actor, manifest, nil, req)
}

// RestoreFromRecord validates a previously stored backup and queues its
// replay. The stored artifact must carry a content hash and pass integrity
// and signature verification before anything else happens.
func (s *Service) RestoreFromRecord(ctx context.Context, actor models.Actor, backupID uuid.UUID, req RestoreRequest) (*models.Restore, error) {
	rec, err := s.store.GetBackupByID(ctx, backupID)
	if err != nil {
		return nil, fmt.Errorf("%w: backup %s", ErrNotFound, backupID)
	}
	if err := s.guard.AssertOwnership(ctx, rec, actor, req.Justification); err != nil {
		return nil, scopeError(err)
	}
	if rec.Status != models.BackupStatusCompleted {
		return nil, fmt.Errorf("%w: status %s", ErrIncompleteArtifact, rec.Status)
	}
	if rec.ContentHash == "" || rec.StorageLocator == "" {
		return nil, ErrMissingHash
	}

	blob, err := s.blobs.Read(ctx, rec.StorageLocator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	result := s.verifier.Verify(ctx, rec.TenantID, rec.ID, blob, rec.ContentHash, rec.Signature)
	if !result.IntegrityOK {
		return nil, ErrIntegrity
	}
	if !result.SignatureOK {
		return nil, ErrSignature
	}

	plaintext, err := s.decrypt(blob, rec.Encryption)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	manifest, err := models.ParseSnapshotManifest(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return s.queueRestore(ctx, actor, manifest, &rec.ID, req)
}

// queueRestore runs the synchronous part of the restore pipeline: resolve the
// target tenant, run the validation gate, check the operator preconditions,
// then create the pending record and hand replay to the background runner.
func (s *Service) queueRestore(ctx context.Context, actor models.Actor, manifest *models.SnapshotManifest, sourceBackupID *uuid.UUID, req RestoreRequest) (*models.Restore, error) {
	explicit := req.TenantID
	if explicit == uuid.Nil && sourceBackupID != nil && actor.IsOperator() && manifest.TenantID != actor.TenantID {
		// Operator restoring a stored backup targets its owning tenant.
		explicit = manifest.TenantID
	}

	tenantID, err := s.guard.ResolveTarget(ctx, actor, explicit, req.Justification)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	tenant, err := s.store.GetTenantByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: tenant %s", ErrNotFound, tenantID)
	}

	if err := s.restorer.ValidateManifest(ctx, manifest, tenant, actor, req.Options); err != nil {
		return nil, err
	}

	// Exceptional restores need the legal acknowledgment on file before the
	// operation is even queued. Checked synchronously, never in the task.
	if tenantID != actor.TenantID && actor.IsOperator() {
		accepted, err := s.legal.HasAccepted(ctx, actor.UserID, tenantID, LegalActionRestore)
		if err != nil {
			return nil, fmt.Errorf("check legal acknowledgment: %w", err)
		}
		if !accepted {
			return nil, ErrLegalAckRequired
		}
	}

	var rec *models.Restore
	if sourceBackupID != nil {
		rec = models.NewRestoreFromBackup(tenantID, *sourceBackupID, req.Options, actor.UserID, actor.Email)
	} else {
		rec = models.NewRestore(tenantID, req.Options, actor.UserID, actor.Email)
	}
	rec.Justification = req.Justification

	if err := s.store.CreateRestore(ctx, rec); err != nil {
		return nil, fmt.Errorf("create restore record: %w", err)
	}

	s.sink.Emit(ctx, models.NewAuditEvent(tenantID, models.AuditActionRestoreRequested, rec.EntityType()).
		WithActor(actor.UserID, actor.TenantID).
		WithEntity(rec.ID))

	payload := manifest.Payload
	s.runner.Submit(jobs.Task{
		Name: "restore-replay " + rec.ID.String(),
		Run: func(ctx context.Context) error {
			return s.restorer.Execute(ctx, rec.ID, payload)
		},
	})

	return rec, nil
}

// scopeError maps a guard denial onto the taxonomy: a missing operator
// justification is a caller-input problem, any other denial is cross-tenant.
func scopeError(err error) error {
	if errors.Is(err, scope.ErrJustificationRequired) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return fmt.Errorf("%w: %v", ErrCrossTenant, err)
}

func (s *Service) decrypt(blob []byte, meta *models.EncryptionMeta) ([]byte, error) {
	if meta == nil {
		return blob, nil
	}
	iv, err := hex.DecodeString(meta.IV)
	if err != nil {
		return nil, fmt.Errorf("decode iv: %w", err)
	}
	return s.cipher.Decrypt(blob, iv)
}
