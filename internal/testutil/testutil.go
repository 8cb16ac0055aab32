// Package testutil provides shared test helpers for setting up stores and
// repositories.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/mcasas/reviewdeck/internal/repository"
	"github.com/mcasas/reviewdeck/internal/store"
)

// TestFileStore creates a file-backed store in a temp directory.
func TestFileStore(t *testing.T) *store.File {
	t.Helper()
	s, err := store.NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// TestSQLiteStore creates a temporary SQLite-backed store that is
// automatically cleaned up.
func TestSQLiteStore(t *testing.T) *store.SQLite {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "reviewdeck-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestRepository creates a repository over a fresh file store.
func TestRepository(t *testing.T) *repository.Repository {
	t.Helper()
	repo, err := repository.New(TestFileStore(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	return repo
}
