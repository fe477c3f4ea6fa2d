package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Restore methods

const restoreColumns = `
	id, tenant_id, backup_id, status, overwrite, skip_existing,
	justification, error_message, created_by_user_id, created_by_email,
	created_at, started_at, completed_at`

// CreateRestore inserts a new restore record.
func (db *DB) CreateRestore(ctx context.Context, r *models.Restore) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO restores (
			id, tenant_id, backup_id, status, overwrite, skip_existing,
			justification, error_message, created_by_user_id, created_by_email,
			created_at, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, r.ID, r.TenantID, r.SourceBackupID, r.Status, r.Options.Overwrite, r.Options.SkipExisting,
		r.Justification, r.ErrorMessage, nilIfZero(r.CreatedByUserID), r.CreatedByEmail,
		r.CreatedAt, r.StartedAt, r.CompletedAt)
	if err != nil {
		return fmt.Errorf("create restore: %w", err)
	}
	return nil
}

// UpdateRestore persists a restore's mutable state.
func (db *DB) UpdateRestore(ctx context.Context, r *models.Restore) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE restores
		SET status = $2, error_message = $3, started_at = $4, completed_at = $5
		WHERE id = $1
	`, r.ID, r.Status, r.ErrorMessage, r.StartedAt, r.CompletedAt)
	if err != nil {
		return fmt.Errorf("update restore: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRestoreByID returns a restore by id.
func (db *DB) GetRestoreByID(ctx context.Context, id uuid.UUID) (*models.Restore, error) {
	row := db.Pool.QueryRow(ctx, `SELECT`+restoreColumns+` FROM restores WHERE id = $1`, id)
	r, err := scanRestore(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get restore: %w", err)
	}
	return r, nil
}

// ListRestoresByTenant returns a tenant's restores, newest first.
func (db *DB) ListRestoresByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Restore, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT`+restoreColumns+`
		FROM restores
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list restores: %w", err)
	}
	defer rows.Close()

	var restores []*models.Restore
	for rows.Next() {
		r, err := scanRestore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan restore: %w", err)
		}
		restores = append(restores, r)
	}
	return restores, rows.Err()
}

func scanRestore(row rowScanner) (*models.Restore, error) {
	var r models.Restore
	var createdBy *uuid.UUID

	err := row.Scan(
		&r.ID, &r.TenantID, &r.SourceBackupID, &r.Status,
		&r.Options.Overwrite, &r.Options.SkipExisting,
		&r.Justification, &r.ErrorMessage, &createdBy, &r.CreatedByEmail,
		&r.CreatedAt, &r.StartedAt, &r.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	// Confirmation is a request-time gate; a persisted record was confirmed.
	r.Options.Confirm = true
	if createdBy != nil {
		r.CreatedByUserID = *createdBy
	}
	return &r, nil
}
