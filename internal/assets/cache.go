// Package assets implements the static-asset cache boundary: a versioned
// in-memory cache over a directory of UI assets, served cache-first with
// disk fallback. It touches only static files, never the review store.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// Cache holds versioned asset bytes keyed by their path relative to root.
type Cache struct {
	root    string
	version string
	logger  *slog.Logger

	mu      sync.RWMutex
	entries map[string][]byte
}

// New creates a Cache over the given asset directory. The directory must
// already exist. version tags the cache generation; Activate drops entries
// installed under a different version.
func New(root, version string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("assets: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("assets: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assets: root is not a directory: %s", abs)
	}
	return &Cache{
		root:    abs,
		version: version,
		logger:  logger,
		entries: make(map[string][]byte),
	}, nil
}

// Install precaches the listed assets (paths relative to root). Missing
// files are logged and skipped; install never fails the application.
func (c *Cache) Install(paths []string) {
	for _, p := range paths {
		if _, err := c.load(p); err != nil {
			c.logger.Warn("asset precache skipped",
				slog.String("path", p), slog.String("error", err.Error()))
		}
	}
	c.logger.Info("asset cache installed",
		slog.String("version", c.version), slog.Int("entries", c.Len()))
}

// Activate drops every cached entry, forcing re-reads from disk. It stands
// in for the old-generation cleanup step of a versioned cache lifecycle.
func (c *Cache) Activate(version string) {
	c.mu.Lock()
	c.version = version
	c.entries = make(map[string][]byte)
	c.mu.Unlock()
	c.logger.Info("asset cache activated", slog.String("version", version))
}

// Invalidate removes one entry so the next request re-reads from disk.
func (c *Cache) Invalidate(rel string) {
	c.mu.Lock()
	delete(c.entries, rel)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Get returns the cached bytes for rel, falling back to disk and caching
// the result on a miss.
func (c *Cache) Get(rel string) ([]byte, error) {
	c.mu.RLock()
	data, ok := c.entries[rel]
	c.mu.RUnlock()
	if ok {
		return data, nil
	}
	return c.load(rel)
}

func (c *Cache) load(rel string) ([]byte, error) {
	abs, err := c.safePath(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("assets: read %s: %w", rel, err)
	}
	c.mu.Lock()
	c.entries[rel] = data
	c.mu.Unlock()
	return data, nil
}

// safePath resolves a relative path against the asset root and rejects any
// result that escapes it (directory traversal).
func (c *Cache) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("assets: invalid path: %s", rel)
	}
	abs := filepath.Join(c.root, cleaned)
	if !strings.HasPrefix(abs, c.root+string(os.PathSeparator)) && abs != c.root {
		return "", fmt.Errorf("assets: path escapes asset root: %s", rel)
	}
	return abs, nil
}

// ServeHTTP serves assets cache-first. "/" maps to index.html.
func (c *Cache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if rel == "" || rel == "." {
		rel = "index.html"
	}

	data, err := c.Get(rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if ct := mime.TypeByExtension(path.Ext(rel)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	sum := sha256.Sum256(data)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	_, _ = w.Write(data)
}
