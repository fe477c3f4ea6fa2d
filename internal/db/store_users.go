package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// User methods

// CreateUser inserts a new user account.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = string(r)
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO users (id, tenant_id, email, name, roles, api_key_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, u.ID, u.TenantID, u.Email, u.Name, roles, u.APIKeyHash, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByAPIKeyHash returns the user whose API key hashes to the given value.
func (db *DB) GetUserByAPIKeyHash(ctx context.Context, hash string) (*models.User, error) {
	var u models.User
	var roles []string
	err := db.Pool.QueryRow(ctx, `
		SELECT id, tenant_id, email, name, roles, api_key_hash, created_at
		FROM users
		WHERE api_key_hash = $1
	`, hash).Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &roles, &u.APIKeyHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by api key: %w", err)
	}
	u.Roles = parseRoles(roles)
	return &u, nil
}

// GetUserByID returns a user by id.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	var roles []string
	err := db.Pool.QueryRow(ctx, `
		SELECT id, tenant_id, email, name, roles, api_key_hash, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &roles, &u.APIKeyHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Roles = parseRoles(roles)
	return &u, nil
}

func parseRoles(raw []string) []models.Role {
	roles := make([]models.Role, len(raw))
	for i, r := range raw {
		roles[i] = models.Role(r)
	}
	return roles
}

// Legal acknowledgment methods

// RecordLegalAcknowledgment stores an operator's acknowledgment for an
// exceptional action kind against a tenant. Recording twice is a no-op.
func (db *DB) RecordLegalAcknowledgment(ctx context.Context, userID, tenantID uuid.UUID, actionKind string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO legal_acknowledgments (id, user_id, tenant_id, action_kind, accepted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, tenant_id, action_kind) DO NOTHING
	`, uuid.New(), userID, tenantID, actionKind, time.Now())
	if err != nil {
		return fmt.Errorf("record legal acknowledgment: %w", err)
	}
	return nil
}

// HasAccepted reports whether the user has the acknowledgment on file.
func (db *DB) HasAccepted(ctx context.Context, userID, tenantID uuid.UUID, actionKind string) (bool, error) {
	var accepted bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM legal_acknowledgments
			WHERE user_id = $1 AND tenant_id = $2 AND action_kind = $3
		)
	`, userID, tenantID, actionKind).Scan(&accepted)
	if err != nil {
		return false, fmt.Errorf("check legal acknowledgment: %w", err)
	}
	return accepted, nil
}
