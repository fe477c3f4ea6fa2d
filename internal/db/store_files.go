package db

import (
	"context"
	"fmt"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// File reference methods

// CreateFileReference inserts a file reference.
func (db *DB) CreateFileReference(ctx context.Context, f *models.FileReference) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO tenant_files (id, tenant_id, path, size_bytes, checksum, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, f.ID, f.TenantID, f.Path, f.SizeBytes, f.Checksum, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("create file reference: %w", err)
	}
	return nil
}

// ListFileReferencesByTenant returns all of a tenant's file references.
func (db *DB) ListFileReferencesByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.FileReference, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, tenant_id, path, size_bytes, checksum, created_at
		FROM tenant_files
		WHERE tenant_id = $1
		ORDER BY path
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list file references: %w", err)
	}
	defer rows.Close()

	var files []*models.FileReference
	for rows.Next() {
		var f models.FileReference
		if err := rows.Scan(&f.ID, &f.TenantID, &f.Path, &f.SizeBytes, &f.Checksum, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan file reference: %w", err)
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}

// ReplaceFileReferences replaces a tenant's file catalog in one transaction.
func (db *DB) ReplaceFileReferences(ctx context.Context, tenantID uuid.UUID, files []*models.FileReference) error {
	return db.ExecTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM tenant_files WHERE tenant_id = $1`, tenantID); err != nil {
			return fmt.Errorf("clear file references: %w", err)
		}
		for _, f := range files {
			_, err := tx.Exec(ctx, `
				INSERT INTO tenant_files (id, tenant_id, path, size_bytes, checksum, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, f.ID, tenantID, f.Path, f.SizeBytes, f.Checksum, f.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert file reference: %w", err)
			}
		}
		return nil
	})
}

// ReplaceSchedules replaces a tenant's schedules in one transaction.
func (db *DB) ReplaceSchedules(ctx context.Context, tenantID uuid.UUID, schedules []*models.Schedule) error {
	return db.ExecTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM schedules WHERE tenant_id = $1`, tenantID); err != nil {
			return fmt.Errorf("clear schedules: %w", err)
		}
		for _, s := range schedules {
			_, err := tx.Exec(ctx, `
				INSERT INTO schedules (
					id, tenant_id, frequency, time_of_day, day_of_week, day_of_month,
					kind, active, last_run_at, next_run_at, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			`, s.ID, tenantID, s.Frequency, s.TimeOfDay, s.DayOfWeek, s.DayOfMonth,
				s.Kind, s.Active, s.LastRunAt, s.NextRunAt, s.CreatedAt, s.UpdatedAt)
			if err != nil {
				return fmt.Errorf("insert schedule: %w", err)
			}
		}
		return nil
	})
}
