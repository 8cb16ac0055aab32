package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcasas/reviewdeck/internal/apperr"
	"github.com/mcasas/reviewdeck/internal/models"
)

// File implements Provider backed by a single JSON file on the local file
// system. The file lives at <root>/<StorageKey>.json.
type File struct {
	path string // absolute path to the blob file
}

// NewFile creates a File provider rooted at the given directory.
// The directory must already exist.
func NewFile(root string) (*File, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("store: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("store: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store: root is not a directory: %s", abs)
	}
	return &File{path: filepath.Join(abs, StorageKey+".json")}, nil
}

// Load reads and deserializes the collection blob.
func (f *File) Load() ([]models.Review, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Review{}, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", f.path, err)
	}
	var reviews []models.Review
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrCorruptStore, f.path, err)
	}
	return reviews, nil
}

// Save atomically replaces the blob via a temp file, fsync, and rename.
func (f *File) Save(reviews []models.Review) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", apperr.ErrStorage, err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".reviewdeck-tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", apperr.ErrStorage, err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("%w: write temp: %v", apperr.ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: fsync: %v", apperr.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp: %v", apperr.ErrStorage, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("%w: rename: %v", apperr.ErrStorage, err)
	}
	success = true
	return nil
}
