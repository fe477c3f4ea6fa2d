package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FSStore is a local filesystem snapshot store. Blobs are written atomically
// via a temp file and rename, with owner-only permissions.
type FSStore struct {
	basePath string
	logger   zerolog.Logger
}

// NewFSStore creates an FSStore rooted at basePath. The path must be absolute.
func NewFSStore(basePath string, logger zerolog.Logger) (*FSStore, error) {
	if basePath == "" {
		return nil, errors.New("fs store: path is required")
	}
	if !filepath.IsAbs(basePath) {
		return nil, errors.New("fs store: path must be absolute")
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("fs store: create base directory: %w", err)
	}
	return &FSStore{
		basePath: basePath,
		logger:   logger.With().Str("component", "snapshot_fs_store").Logger(),
	}, nil
}

// Write persists data under a new tenant-scoped locator.
func (s *FSStore) Write(ctx context.Context, tenantID, backupID uuid.UUID, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	locator := Locator(tenantID, backupID)
	path, err := s.resolve(locator)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		return "", ErrLocatorExists
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("fs store: stat %s: %w", locator, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("fs store: create tenant directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snap-*")
	if err != nil {
		return "", fmt.Errorf("fs store: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("fs store: write blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("fs store: sync blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("fs store: close blob: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return "", fmt.Errorf("fs store: chmod blob: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("fs store: finalize blob: %w", err)
	}

	s.logger.Debug().Str("locator", locator).Int("size", len(data)).Msg("snapshot written")
	return locator, nil
}

// Read returns the blob at the given locator exactly as stored.
func (s *FSStore) Read(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(locator)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fs store: read %s: %w", locator, err)
	}
	return data, nil
}

// Delete removes the blob at the given locator.
func (s *FSStore) Delete(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("fs store: delete %s: %w", locator, err)
	}
	s.logger.Debug().Str("locator", locator).Msg("snapshot deleted")
	return nil
}

// resolve maps a locator to an on-disk path, rejecting traversal outside the
// base directory.
func (s *FSStore) resolve(locator string) (string, error) {
	if locator == "" || strings.Contains(locator, "..") {
		return "", fmt.Errorf("fs store: invalid locator %q", locator)
	}
	path := filepath.Join(s.basePath, filepath.FromSlash(locator))
	if !strings.HasPrefix(path, s.basePath+string(os.PathSeparator)) {
		return "", fmt.Errorf("fs store: locator %q escapes base path", locator)
	}
	return path, nil
}
