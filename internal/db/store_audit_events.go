package db

import (
	"context"
	"fmt"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
)

// Audit event methods. Events are append-only; there is no update or delete.

// CreateAuditEvent inserts an audit event.
func (db *DB) CreateAuditEvent(ctx context.Context, e *models.AuditEvent) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO audit_events (
			id, tenant_id, action, entity_type, entity_id,
			actor_user_id, actor_tenant_id, note, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.TenantID, e.Action, e.EntityType, e.EntityID,
		e.ActorUserID, e.ActorTenantID, e.Note, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create audit event: %w", err)
	}
	return nil
}

// ListAuditEventsByTenant returns a tenant's audit events, newest first.
func (db *DB) ListAuditEventsByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id, tenant_id, action, entity_type, entity_id,
			actor_user_id, actor_tenant_id, note, created_at
		FROM audit_events
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []*models.AuditEvent
	for rows.Next() {
		var e models.AuditEvent
		err := rows.Scan(&e.ID, &e.TenantID, &e.Action, &e.EntityType, &e.EntityID,
			&e.ActorUserID, &e.ActorTenantID, &e.Note, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
