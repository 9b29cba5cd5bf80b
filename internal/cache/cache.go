package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitediff/internal/model"
)

// Cache is a persistent key/value store of ReadResults keyed by (tag, path).
// It is safe for concurrent use by multiple goroutines.
type Cache struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// path is the location of the SQLite file.
	path string

	// mu protects readTags and writeTags.
	mu        sync.RWMutex
	readTags  map[string]bool
	writeTags map[string]bool
}

// Options configures Cache behavior.
type Options struct {
	// CreateIfNotExists creates the file and its directory if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default cache options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the cache file at path. Every failure is wrapped in
// ErrCacheUnavailable.
func Open(path string, opts Options) (*Cache, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCacheUnavailable, path, err)
		}
	} else if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("%w: failed to create cache directory: %w", ErrCacheUnavailable, err)
		}
	}

	dsn := path + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = path + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}

	// One connection serializes writers; concurrent callers queue on the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	c := &Cache{
		db:        db,
		path:      path,
		readTags:  make(map[string]bool),
		writeTags: make(map[string]bool),
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: failed to enable WAL mode: %w", ErrCacheUnavailable, err)
		}
	}

	if err := c.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: failed to create tables: %w", ErrCacheUnavailable, err)
	}

	return c, nil
}

// Close closes the cache file.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Path returns the location of the cache file.
func (c *Cache) Path() string {
	return c.path
}

// createTables creates the schema if it doesn't exist.
func (c *Cache) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := c.db.ExecContext(context.Background(), schema)
	return err
}

// EnableRead allows Get to return entries stored under tag.
func (c *Cache) EnableRead(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readTags[tag] = true
}

// EnableWrite allows Set to persist entries under tag.
func (c *Cache) EnableWrite(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeTags[tag] = true
}

// CanRead reports whether tag is enabled for reading.
func (c *Cache) CanRead(tag string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readTags[tag]
}

// CanWrite reports whether tag is enabled for writing.
func (c *Cache) CanWrite(tag string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.writeTags[tag]
}

// Get returns the entry stored under (tag, path). The second return value is
// false when tag is not readable or no entry exists.
func (c *Cache) Get(ctx context.Context, tag, path string) (model.ReadResult, bool, error) {
	if !c.CanRead(tag) {
		return model.ReadResult{}, false, nil
	}

	var raw []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM entries WHERE key = ?`, pageKey(tag, path)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReadResult{}, false, nil
	}
	if err != nil {
		return model.ReadResult{}, false, fmt.Errorf("failed to get cache entry %s %s: %w", tag, path, err)
	}

	var result model.ReadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return model.ReadResult{}, false, fmt.Errorf("failed to decode cache entry %s %s: %w", tag, path, err)
	}
	return result, true, nil
}

// Set stores result under (tag, path) and marks the tag's sentinel.
// It is a no-op when tag is not writable.
func (c *Cache) Set(ctx context.Context, tag, path string, result model.ReadResult) error {
	if !c.CanWrite(tag) {
		return nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	query := `
	INSERT INTO entries (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = CURRENT_TIMESTAMP
	`
	if _, err := c.db.ExecContext(ctx, query, pageKey(tag, path), raw); err != nil {
		return fmt.Errorf("failed to set cache entry %s %s: %w", tag, path, err)
	}
	if _, err := c.db.ExecContext(ctx, query, sentinelKey(tag), []byte("1")); err != nil {
		return fmt.Errorf("failed to mark tag %s: %w", tag, err)
	}
	return nil
}

// HasTag reports whether tag has ever been written. Like Get, it only answers
// for readable tags.
func (c *Cache) HasTag(ctx context.Context, tag string) (bool, error) {
	if !c.CanRead(tag) {
		return false, nil
	}

	var count int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE key = ?`, sentinelKey(tag)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check tag %s: %w", tag, err)
	}
	return count > 0, nil
}

// Paths returns the paths stored under a readable tag, sorted.
func (c *Cache) Paths(ctx context.Context, tag string) ([]string, error) {
	if !c.CanRead(tag) {
		return nil, nil
	}

	prefix := pageKey(tag, "")
	rows, err := c.db.QueryContext(ctx,
		`SELECT key FROM entries WHERE substr(key, 1, ?) = ? ORDER BY key`, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list paths for %s: %w", tag, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		paths = append(paths, strings.TrimPrefix(key, prefix))
	}
	sort.Strings(paths)
	return paths, rows.Err()
}
