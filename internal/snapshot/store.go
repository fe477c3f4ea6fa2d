// Package snapshot provides blob storage for backup artifacts. A locator is
// written exactly once; persisted blobs are never mutated in place.
package snapshot

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates no blob exists at the given locator.
	ErrNotFound = errors.New("snapshot not found")
	// ErrLocatorExists indicates a write would overwrite an existing blob.
	ErrLocatorExists = errors.New("snapshot locator already written")
)

// Store persists one opaque blob per backup, addressed by a tenant-scoped
// locator.
type Store interface {
	// Write persists data under a new tenant-scoped locator and returns it.
	// Writing to an existing locator fails with ErrLocatorExists.
	Write(ctx context.Context, tenantID, backupID uuid.UUID, data []byte) (string, error)

	// Read returns the blob at the given locator exactly as stored.
	Read(ctx context.Context, locator string) ([]byte, error)

	// Delete removes the blob at the given locator. Used only to clean up
	// after a failed generation; completed artifacts are never deleted here.
	Delete(ctx context.Context, locator string) error
}

// Locator builds the canonical tenant-scoped key for a backup blob.
func Locator(tenantID, backupID uuid.UUID) string {
	return "tenants/" + tenantID.String() + "/backups/" + backupID.String() + ".snap"
}
