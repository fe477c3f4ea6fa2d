package models

import "github.com/google/uuid"

// Ownership accessors used by the tenant scope guard.

// OwnerTenant returns the tenant that owns this backup.
func (b *Backup) OwnerTenant() uuid.UUID { return b.TenantID }

// EntityID returns the backup's id.
func (b *Backup) EntityID() uuid.UUID { return b.ID }

// EntityType returns the audit entity type for backups.
func (b *Backup) EntityType() string { return "backup" }

// OwnerTenant returns the tenant that owns this restore.
func (r *Restore) OwnerTenant() uuid.UUID { return r.TenantID }

// EntityID returns the restore's id.
func (r *Restore) EntityID() uuid.UUID { return r.ID }

// EntityType returns the audit entity type for restores.
func (r *Restore) EntityType() string { return "restore" }

// OwnerTenant returns the tenant that owns this schedule.
func (s *Schedule) OwnerTenant() uuid.UUID { return s.TenantID }

// EntityID returns the schedule's id.
func (s *Schedule) EntityID() uuid.UUID { return s.ID }

// EntityType returns the audit entity type for schedules.
func (s *Schedule) EntityType() string { return "schedule" }
