package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Backup methods

const backupColumns = `
	id, tenant_id, kind, origin, status, storage_locator, size_bytes,
	content_hash, encryption_algorithm, encryption_iv, encryption_auth_tag,
	signature_algorithm, signature_value, signature_verified,
	retention_status, expires_at, error_message,
	created_by_user_id, created_by_email, created_at, started_at, completed_at`

// CreateBackup inserts a new backup record.
func (db *DB) CreateBackup(ctx context.Context, b *models.Backup) error {
	encAlg, encIV, encTag := encryptionColumns(b.Encryption)
	sigAlg, sigVal, sigVerified := signatureColumns(b.Signature)

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO backups (
			id, tenant_id, kind, origin, status, storage_locator, size_bytes,
			content_hash, encryption_algorithm, encryption_iv, encryption_auth_tag,
			signature_algorithm, signature_value, signature_verified,
			retention_status, expires_at, error_message,
			created_by_user_id, created_by_email, created_at, started_at, completed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
	`, b.ID, b.TenantID, b.Kind, b.Origin, b.Status, b.StorageLocator, b.SizeBytes,
		b.ContentHash, encAlg, encIV, encTag,
		sigAlg, sigVal, sigVerified,
		b.RetentionStatus, b.ExpiresAt, b.ErrorMessage,
		nilIfZero(b.CreatedByUserID), b.CreatedByEmail, b.CreatedAt, b.StartedAt, b.CompletedAt)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	return nil
}

// UpdateBackup persists a backup's mutable state.
func (db *DB) UpdateBackup(ctx context.Context, b *models.Backup) error {
	encAlg, encIV, encTag := encryptionColumns(b.Encryption)
	sigAlg, sigVal, sigVerified := signatureColumns(b.Signature)

	tag, err := db.Pool.Exec(ctx, `
		UPDATE backups
		SET status = $2, storage_locator = $3, size_bytes = $4, content_hash = $5,
			encryption_algorithm = $6, encryption_iv = $7, encryption_auth_tag = $8,
			signature_algorithm = $9, signature_value = $10, signature_verified = $11,
			retention_status = $12, expires_at = $13, error_message = $14,
			started_at = $15, completed_at = $16
		WHERE id = $1
	`, b.ID, b.Status, b.StorageLocator, b.SizeBytes, b.ContentHash,
		encAlg, encIV, encTag,
		sigAlg, sigVal, sigVerified,
		b.RetentionStatus, b.ExpiresAt, b.ErrorMessage,
		b.StartedAt, b.CompletedAt)
	if err != nil {
		return fmt.Errorf("update backup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBackupByID returns a backup by id.
func (db *DB) GetBackupByID(ctx context.Context, id uuid.UUID) (*models.Backup, error) {
	row := db.Pool.QueryRow(ctx, `SELECT`+backupColumns+` FROM backups WHERE id = $1`, id)
	b, err := scanBackup(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get backup: %w", err)
	}
	return b, nil
}

// ListBackupsByTenant returns a tenant's backups, newest first.
func (db *DB) ListBackupsByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Backup, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT`+backupColumns+`
		FROM backups
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var backups []*models.Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, b)
	}
	return backups, rows.Err()
}

// ExpireDueBackups flags active backups whose expiry time has passed.
func (db *DB) ExpireDueBackups(ctx context.Context) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE backups
		SET retention_status = 'expired'
		WHERE retention_status = 'active' AND expires_at IS NOT NULL AND expires_at < NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("expire backups: %w", err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBackup(row rowScanner) (*models.Backup, error) {
	var b models.Backup
	var encAlg, encIV, encTag *string
	var sigAlg, sigVal *string
	var sigVerified bool
	var createdBy *uuid.UUID

	err := row.Scan(
		&b.ID, &b.TenantID, &b.Kind, &b.Origin, &b.Status, &b.StorageLocator, &b.SizeBytes,
		&b.ContentHash, &encAlg, &encIV, &encTag,
		&sigAlg, &sigVal, &sigVerified,
		&b.RetentionStatus, &b.ExpiresAt, &b.ErrorMessage,
		&createdBy, &b.CreatedByEmail, &b.CreatedAt, &b.StartedAt, &b.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if encAlg != nil {
		b.Encryption = &models.EncryptionMeta{Algorithm: *encAlg}
		if encIV != nil {
			b.Encryption.IV = *encIV
		}
		if encTag != nil {
			b.Encryption.AuthTag = *encTag
		}
	}
	if sigAlg != nil && sigVal != nil {
		b.Signature = &models.SignatureMeta{Algorithm: *sigAlg, Value: *sigVal, Verified: sigVerified}
	}
	if createdBy != nil {
		b.CreatedByUserID = *createdBy
	}
	return &b, nil
}

func encryptionColumns(m *models.EncryptionMeta) (alg, iv, tag *string) {
	if m == nil {
		return nil, nil, nil
	}
	return &m.Algorithm, &m.IV, &m.AuthTag
}

func signatureColumns(m *models.SignatureMeta) (alg, val *string, verified bool) {
	if m == nil {
		return nil, nil, false
	}
	return &m.Algorithm, &m.Value, m.Verified
}

func nilIfZero(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
