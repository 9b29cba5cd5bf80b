package cache

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/nao1215/sitediff/internal/model"
)

// setupTestCache opens a cache in a temporary directory.
func setupTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c
}

// TestOpen tests cache file creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates file in new directory", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")
		c, err := Open(path, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open cache: %v", err)
		}
		defer c.Close()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("cache file was not created: %v", err)
		}
		if c.Path() != path {
			t.Errorf("unexpected path %q", c.Path())
		}
	})

	t.Run("missing file without create is unavailable", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing.db")
		_, err := Open(path, Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrCacheUnavailable) {
			t.Fatalf("expected ErrCacheUnavailable, got %v", err)
		}
	})

	t.Run("unwritable directory is unavailable", func(t *testing.T) {
		t.Parallel()

		// A regular file cannot be used as a parent directory.
		parent := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(parent, []byte("x"), 0o600); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
		_, err := Open(filepath.Join(parent, "cache.db"), DefaultOptions())
		if !errors.Is(err, ErrCacheUnavailable) {
			t.Fatalf("expected ErrCacheUnavailable, got %v", err)
		}
	})
}

// TestCacheGating tests that reads and writes honor the enabled tag sets.
func TestCacheGating(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	value := model.Success("<p>Hash</p>")

	tests := []struct {
		name     string
		write    bool
		read     bool
		wantSeen bool
	}{
		{name: "read and write enabled", write: true, read: true, wantSeen: true},
		{name: "write only", write: true, read: false, wantSeen: false},
		{name: "read only", write: false, read: true, wantSeen: false},
		{name: "neither", write: false, read: false, wantSeen: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := setupTestCache(t)
			if tt.write {
				c.EnableWrite(model.TagBefore)
			}
			if tt.read {
				c.EnableRead(model.TagBefore)
			}

			if err := c.Set(ctx, model.TagBefore, "Hash.html", value); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, ok, err := c.Get(ctx, model.TagBefore, "Hash.html")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if ok != tt.wantSeen {
				t.Fatalf("Get ok = %v, want %v", ok, tt.wantSeen)
			}
			if ok && got != value {
				t.Errorf("Get = %+v, want %+v", got, value)
			}
		})
	}

	t.Run("data written earlier is visible once read is enabled", func(t *testing.T) {
		t.Parallel()

		c := setupTestCache(t)
		c.EnableWrite(model.TagAfter)
		if err := c.Set(ctx, model.TagAfter, "IO.html", value); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if _, ok, _ := c.Get(ctx, model.TagAfter, "IO.html"); ok {
			t.Fatal("expected miss before EnableRead")
		}
		c.EnableRead(model.TagAfter)
		if _, ok, _ := c.Get(ctx, model.TagAfter, "IO.html"); !ok {
			t.Fatal("expected hit after EnableRead")
		}
	})
}

// TestCacheKeys tests that keys do not collide across tags or path shapes.
func TestCacheKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := setupTestCache(t)
	tags := []string{"a", "a:b", "a%3Ab"}
	for _, tag := range tags {
		c.EnableRead(tag)
		c.EnableWrite(tag)
	}

	entries := map[string]map[string]string{
		"a":     {"b:c": "one", "x/y.html#frag": "two"},
		"a:b":   {"c": "three"},
		"a%3Ab": {"c": "four"},
	}
	for tag, paths := range entries {
		for path, content := range paths {
			if err := c.Set(ctx, tag, path, model.Success(content)); err != nil {
				t.Fatalf("Set(%q, %q) failed: %v", tag, path, err)
			}
		}
	}
	for tag, paths := range entries {
		for path, content := range paths {
			got, ok, err := c.Get(ctx, tag, path)
			if err != nil || !ok {
				t.Fatalf("Get(%q, %q) = %v, %v", tag, path, ok, err)
			}
			if got.Content != content {
				t.Errorf("Get(%q, %q) = %q, want %q", tag, path, got.Content, content)
			}
		}
	}

	paths, err := c.Paths(ctx, "a")
	if err != nil {
		t.Fatalf("Paths failed: %v", err)
	}
	if want := []string{"b:c", "x/y.html#frag"}; !reflect.DeepEqual(paths, want) {
		t.Errorf("Paths(a) = %v, want %v", paths, want)
	}
}

// TestCacheHasTag tests the per-tag sentinel.
func TestCacheHasTag(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := setupTestCache(t)
	c.EnableRead(model.TagBefore)
	c.EnableWrite(model.TagBefore)

	has, err := c.HasTag(ctx, model.TagBefore)
	if err != nil || has {
		t.Fatalf("expected no sentinel before first write, got %v, %v", has, err)
	}
	if err := c.Set(ctx, model.TagBefore, "index.html", model.Success("x")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	has, err = c.HasTag(ctx, model.TagBefore)
	if err != nil || !has {
		t.Fatalf("expected sentinel after write, got %v, %v", has, err)
	}

	// The sentinel is not a page entry.
	paths, err := c.Paths(ctx, model.TagBefore)
	if err != nil {
		t.Fatalf("Paths failed: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("expected exactly one path, got %v", paths)
	}
}

// TestCacheConcurrentSet tests concurrent writes to distinct keys.
func TestCacheConcurrentSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := setupTestCache(t)
	for _, tag := range model.Tags() {
		c.EnableRead(tag)
		c.EnableWrite(tag)
	}

	var wg sync.WaitGroup
	for i := range 20 {
		for _, tag := range model.Tags() {
			wg.Add(1)
			go func() {
				defer wg.Done()
				path := string(rune('a'+i)) + ".html"
				if err := c.Set(ctx, tag, path, model.Success(tag+path)); err != nil {
					t.Errorf("Set failed: %v", err)
				}
			}()
		}
	}
	wg.Wait()

	for _, tag := range model.Tags() {
		paths, err := c.Paths(ctx, tag)
		if err != nil {
			t.Fatalf("Paths failed: %v", err)
		}
		if len(paths) != 20 {
			t.Errorf("tag %s: expected 20 paths, got %d", tag, len(paths))
		}
	}
}

// TestCacheLookup tests the read-only webserver lookup.
func TestCacheLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := setupTestCache(t)
	c.EnableRead(model.TagAfter)
	c.EnableWrite(model.TagAfter)

	if err := c.Set(ctx, model.TagAfter, "ok.html", model.Success("<p>ok</p>")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set(ctx, model.TagAfter, "bad.html", model.Failure("HTTP 500 Internal Server Error")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	t.Run("cached page", func(t *testing.T) {
		t.Parallel()
		got, err := c.Lookup(ctx, model.TagAfter, "ok.html")
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if got.Status != http.StatusOK || got.Content != "<p>ok</p>" || got.ETag == "" {
			t.Errorf("unexpected lookup %+v", got)
		}
		again, _ := c.Lookup(ctx, model.TagAfter, "ok.html")
		if again.ETag != got.ETag {
			t.Error("expected stable ETag")
		}
	})

	t.Run("cached fetch error", func(t *testing.T) {
		t.Parallel()
		got, err := c.Lookup(ctx, model.TagAfter, "bad.html")
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if got.Status != http.StatusBadGateway || got.Error == "" {
			t.Errorf("unexpected lookup %+v", got)
		}
	})

	t.Run("absent page and unreadable tag", func(t *testing.T) {
		t.Parallel()
		for _, tag := range []string{model.TagAfter, model.TagBefore} {
			got, err := c.Lookup(ctx, tag, "nope.html")
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}
			if got.Status != http.StatusNotFound {
				t.Errorf("tag %s: expected 404, got %d", tag, got.Status)
			}
		}
	})
}
