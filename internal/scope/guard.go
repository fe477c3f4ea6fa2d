// Package scope enforces tenant ownership for every backup and restore
// operation. Tenant scope comes exclusively from the verified caller
// identity; request payloads are never a source of tenant ids.
package scope

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campushq-io/campushq/internal/audit"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNoTenantContext indicates the caller has no tenant scope.
	ErrNoTenantContext = errors.New("no tenant context")
	// ErrCrossTenantAccess indicates the resource belongs to another tenant.
	ErrCrossTenantAccess = errors.New("cross-tenant access")
	// ErrJustificationRequired indicates an operator action without the
	// mandatory justification string.
	ErrJustificationRequired = errors.New("operator action requires justification")
	// ErrOperatorOnly indicates a non-operator attempted to target an
	// explicit tenant.
	ErrOperatorOnly = errors.New("explicit tenant targeting requires operator role")
)

// Owned is any record that belongs to exactly one tenant.
type Owned interface {
	OwnerTenant() uuid.UUID
	EntityID() uuid.UUID
	EntityType() string
}

// Guard resolves and enforces tenant scope, emitting a BLOCKED_ACCESS audit
// event on every denial (fail-closed).
type Guard struct {
	sink   *audit.Sink
	logger zerolog.Logger
}

// NewGuard creates a Guard.
func NewGuard(sink *audit.Sink, logger zerolog.Logger) *Guard {
	return &Guard{
		sink:   sink,
		logger: logger.With().Str("component", "scope_guard").Logger(),
	}
}

// ResolveTenant returns the tenant id an ordinary caller is scoped to.
func (g *Guard) ResolveTenant(actor models.Actor) (uuid.UUID, error) {
	if actor.TenantID == uuid.Nil {
		return uuid.Nil, ErrNoTenantContext
	}
	return actor.TenantID, nil
}

// ResolveTarget returns the tenant id an operation should act on. Ordinary
// callers always act on their own tenant and must not supply an explicit one,
// not even their own id; the field's presence alone is a violation.
// Operators may target an explicit tenant, but only with a non-empty
// justification; the exceptional action is audited with a distinct marker.
func (g *Guard) ResolveTarget(ctx context.Context, actor models.Actor, explicitTenant uuid.UUID, justification string) (uuid.UUID, error) {
	if explicitTenant == uuid.Nil {
		return g.ResolveTenant(actor)
	}

	if !actor.IsOperator() {
		g.logger.Warn().
			Str("user_id", actor.UserID.String()).
			Str("target_tenant", explicitTenant.String()).
			Msg("non-operator attempted explicit tenant targeting")
		return uuid.Nil, ErrOperatorOnly
	}

	// An operator naming its own tenant is ordinary, not exceptional.
	if explicitTenant == actor.TenantID {
		return explicitTenant, nil
	}

	if strings.TrimSpace(justification) == "" {
		return uuid.Nil, ErrJustificationRequired
	}

	g.sink.Emit(ctx, models.NewAuditEvent(explicitTenant, models.AuditActionExceptional, "tenant").
		WithActor(actor.UserID, actor.TenantID).
		WithNote(justification))

	return explicitTenant, nil
}

// AssertOwnership verifies that rec belongs to the actor's tenant. An
// operator may reach a foreign tenant's record, but only with a non-empty
// justification; such access emits an EXCEPTIONAL_ACTION event naming the
// record. For anyone else a mismatch emits exactly one BLOCKED_ACCESS event
// carrying both tenant ids, then fails the operation.
func (g *Guard) AssertOwnership(ctx context.Context, rec Owned, actor models.Actor, justification string) error {
	if actor.TenantID != uuid.Nil && rec.OwnerTenant() == actor.TenantID {
		return nil
	}
	if actor.IsOperator() {
		if strings.TrimSpace(justification) == "" {
			return ErrJustificationRequired
		}
		g.sink.Emit(ctx, models.NewAuditEvent(rec.OwnerTenant(), models.AuditActionExceptional, rec.EntityType()).
			WithActor(actor.UserID, actor.TenantID).
			WithEntity(rec.EntityID()).
			WithNote(justification))
		return nil
	}
	if actor.TenantID == uuid.Nil {
		return ErrNoTenantContext
	}

	g.logger.Warn().
		Str("entity_type", rec.EntityType()).
		Str("entity_id", rec.EntityID().String()).
		Str("resource_tenant", rec.OwnerTenant().String()).
		Str("caller_tenant", actor.TenantID.String()).
		Msg("cross-tenant access blocked")

	g.sink.Emit(ctx, models.NewAuditEvent(rec.OwnerTenant(), models.AuditActionBlockedAccess, rec.EntityType()).
		WithActor(actor.UserID, actor.TenantID).
		WithEntity(rec.EntityID()).
		WithNote(fmt.Sprintf("resource tenant %s, caller tenant %s", rec.OwnerTenant(), actor.TenantID)))

	return ErrCrossTenantAccess
}
