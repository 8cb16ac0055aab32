package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempAssets(t *testing.T) (string, *Cache) {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("index.html", "<html>home</html>")
	write("app.css", "body{}")

	c, err := New(dir, "v1", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return dir, c
}

func TestInstallPrecaches(t *testing.T) {
	_, c := tempAssets(t)
	c.Install([]string{"index.html", "app.css", "missing.js"})
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2 (missing asset skipped)", c.Len())
	}
}

func TestServeCacheFirst(t *testing.T) {
	dir, c := tempAssets(t)
	c.Install([]string{"index.html"})

	// Change the file on disk; without invalidation the cached copy wins.
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	w := httptest.NewRecorder()
	c.ServeHTTP(w, req)
	if w.Body.String() != "<html>home</html>" {
		t.Errorf("body = %q, want cached copy", w.Body.String())
	}

	c.Invalidate("index.html")
	w = httptest.NewRecorder()
	c.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	if w.Body.String() != "changed" {
		t.Errorf("body = %q after invalidation, want fresh copy", w.Body.String())
	}
}

func TestServeRootIsIndex(t *testing.T) {
	_, c := tempAssets(t)
	w := httptest.NewRecorder()
	c.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || w.Body.String() != "<html>home</html>" {
		t.Errorf("status = %d, body = %q", w.Code, w.Body.String())
	}
}

func TestServeMissing(t *testing.T) {
	_, c := tempAssets(t)
	w := httptest.NewRecorder()
	c.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope.js", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestServeETag(t *testing.T) {
	_, c := tempAssets(t)
	w := httptest.NewRecorder()
	c.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app.css", nil))
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("no ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/app.css", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	c.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", w.Code)
	}
}

func TestTraversalBlocked(t *testing.T) {
	_, c := tempAssets(t)
	for _, p := range []string{"../outside.txt", "/etc/passwd", "a/../../b"} {
		if _, err := c.Get(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
	}
}

func TestActivateDropsEntries(t *testing.T) {
	_, c := tempAssets(t)
	c.Install([]string{"index.html", "app.css"})
	c.Activate("v2")
	if c.Len() != 0 {
		t.Errorf("Len = %d after activate, want 0", c.Len())
	}
}

func TestWatcherInvalidates(t *testing.T) {
	dir, c := tempAssets(t)
	c.Install([]string{"index.html"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = Watch(ctx, c, nil)
		close(done)
	}()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("fresh"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		data, err := c.Get("index.html")
		if err == nil && string(data) == "fresh" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("cache entry was not invalidated after file change")
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
