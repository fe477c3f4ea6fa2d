package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Tenant methods

// CreateTenant inserts a new tenant.
func (db *DB) CreateTenant(ctx context.Context, t *models.Tenant) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO tenants (id, name, slug, academic_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, t.Name, t.Slug, t.AcademicType, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

// GetTenantByID returns a tenant by id.
func (db *DB) GetTenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var t models.Tenant
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, slug, academic_type, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Slug, &t.AcademicType, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}

// GetTenantBySlug returns a tenant by slug.
func (db *DB) GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	var t models.Tenant
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, slug, academic_type, created_at, updated_at
		FROM tenants
		WHERE slug = $1
	`, slug).Scan(&t.ID, &t.Name, &t.Slug, &t.AcademicType, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant by slug: %w", err)
	}
	return &t, nil
}

// UpdateTenant updates a tenant's mutable fields.
func (db *DB) UpdateTenant(ctx context.Context, t *models.Tenant) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE tenants
		SET name = $2, academic_type = $3, updated_at = NOW()
		WHERE id = $1
	`, t.ID, t.Name, t.AcademicType)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAllTenants returns all tenants ordered by name.
func (db *DB) GetAllTenants(ctx context.Context) ([]*models.Tenant, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, slug, academic_type, created_at, updated_at
		FROM tenants
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.AcademicType, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, &t)
	}
	return tenants, rows.Err()
}
