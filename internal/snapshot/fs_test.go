package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func testFSStore(t *testing.T) *FSStore {
	t.Helper()
	store, err := NewFSStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}
	return store
}

func TestNewFSStore_RequiresAbsolutePath(t *testing.T) {
	if _, err := NewFSStore("relative/path", zerolog.Nop()); err == nil {
		t.Error("expected error for relative path")
	}
	if _, err := NewFSStore("", zerolog.Nop()); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestFSStore_WriteReadDelete(t *testing.T) {
	store := testFSStore(t)
	ctx := context.Background()
	tenantID, backupID := uuid.New(), uuid.New()
	data := []byte("encrypted snapshot bytes")

	locator, err := store.Write(ctx, tenantID, backupID, data)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if locator != Locator(tenantID, backupID) {
		t.Errorf("unexpected locator %q", locator)
	}

	got, err := store.Read(ctx, locator)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != string(data) {
		t.Error("expected read bytes to equal written bytes")
	}

	if err := store.Delete(ctx, locator); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Read(ctx, locator); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFSStore_WriteOnce(t *testing.T) {
	store := testFSStore(t)
	ctx := context.Background()
	tenantID, backupID := uuid.New(), uuid.New()

	if _, err := store.Write(ctx, tenantID, backupID, []byte("first")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := store.Write(ctx, tenantID, backupID, []byte("second")); !errors.Is(err, ErrLocatorExists) {
		t.Errorf("expected ErrLocatorExists on rewrite, got %v", err)
	}
}

func TestFSStore_EmptyBlob(t *testing.T) {
	store := testFSStore(t)
	ctx := context.Background()

	locator, err := store.Write(ctx, uuid.New(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := store.Read(ctx, locator)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty blob, got %d bytes", len(got))
	}
}

func TestFSStore_RejectsTraversal(t *testing.T) {
	store := testFSStore(t)
	ctx := context.Background()

	if _, err := store.Read(ctx, "../outside"); err == nil {
		t.Error("expected error for traversal locator")
	}
	if err := store.Delete(ctx, ""); err == nil {
		t.Error("expected error for empty locator")
	}
}

func TestFSStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFSStore(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}
	locator, err := store.Write(context.Background(), uuid.New(), uuid.New(), []byte("x"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(locator)))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}
