// Package audit provides a best-effort, write-only audit event sink. A sink
// failure never fails the operation that emitted the event.
package audit

import (
	"context"

	"github.com/campushq-io/campushq/internal/models"
	"github.com/rs/zerolog"
)

// EventStore persists audit events.
type EventStore interface {
	CreateAuditEvent(ctx context.Context, event *models.AuditEvent) error
}

// Sink writes audit events without ever propagating a failure to the caller.
type Sink struct {
	store  EventStore
	logger zerolog.Logger
}

// NewSink creates a Sink over the given store.
func NewSink(store EventStore, logger zerolog.Logger) *Sink {
	return &Sink{
		store:  store,
		logger: logger.With().Str("component", "audit_sink").Logger(),
	}
}

// Emit records an audit event. Persistence failures are logged and swallowed;
// audit is a side channel, never a gate.
func (s *Sink) Emit(ctx context.Context, event *models.AuditEvent) {
	if event == nil {
		return
	}
	if err := s.store.CreateAuditEvent(ctx, event); err != nil {
		s.logger.Error().
			Err(err).
			Str("action", string(event.Action)).
			Str("tenant_id", event.TenantID.String()).
			Msg("failed to persist audit event")
	}
}
