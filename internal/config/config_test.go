package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/sitediff/internal/model"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 3 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 3*time.Second {
			t.Errorf("expected Timeout to be 3s, got %v", cfg.Timeout)
		}
	})

	t.Run("default CrawlDepth is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.CrawlDepth != 3 {
			t.Errorf("expected CrawlDepth to be 3, got %d", cfg.CrawlDepth)
		}
	})

	t.Run("default Concurrency is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 3 {
			t.Errorf("expected Concurrency to be 3, got %d", cfg.Concurrency)
		}
	})

	t.Run("cache writes every tag and reads none", func(t *testing.T) {
		t.Parallel()
		if len(cfg.ReadTags) != 0 {
			t.Errorf("expected no read tags, got %v", cfg.ReadTags)
		}
		if !slices.Equal(cfg.WriteTags, []string{model.TagBefore, model.TagAfter}) {
			t.Errorf("expected write tags [before after], got %v", cfg.WriteTags)
		}
	})

	t.Run("cache file lives in the XDG cache dir", func(t *testing.T) {
		t.Parallel()
		if filepath.Dir(cfg.CacheFile) != XDGCacheDir() {
			t.Errorf("expected cache file under %q, got %q", XDGCacheDir(), cfg.CacheFile)
		}
		if filepath.Base(cfg.CacheFile) != CacheFileName {
			t.Errorf("expected cache file name %q, got %q", CacheFileName, cfg.CacheFile)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Before = "https://old.example.com/docs/"
		cfg.After = "https://new.example.com/docs/"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config returns nil",
			modify: func(*Config) {},
		},
		{
			name:   "local directories are valid origins",
			modify: func(c *Config) { c.Before = "./old/"; c.After = "file:///srv/new/" },
		},
		{
			name:    "missing before",
			modify:  func(c *Config) { c.Before = "" },
			wantErr: ErrNoBefore,
		},
		{
			name:    "missing after",
			modify:  func(c *Config) { c.After = "" },
			wantErr: ErrNoAfter,
		},
		{
			name:    "unsupported scheme",
			modify:  func(c *Config) { c.After = "ftp://new.example.com/" },
			wantErr: ErrInvalidBase,
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero concurrency",
			modify:  func(c *Config) { c.Concurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "negative crawl depth",
			modify:  func(c *Config) { c.CrawlDepth = -1 },
			wantErr: ErrInvalidCrawlDepth,
		},
		{
			name:   "zero crawl depth is valid",
			modify: func(c *Config) { c.CrawlDepth = 0 },
		},
		{
			name:    "negative max body size",
			modify:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
		{
			name:    "json and markdown together",
			modify:  func(c *Config) { c.JSONReport = true; c.MarkdownReport = true },
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "unknown read tag",
			modify:  func(c *Config) { c.ReadTags = []string{"staging"} },
			wantErr: ErrInvalidTag,
		},
		{
			name:    "unknown write tag",
			modify:  func(c *Config) { c.WriteTags = []string{"before", "prod"} },
			wantErr: ErrInvalidTag,
		},
		{
			name:    "unknown preset",
			modify:  func(c *Config) { c.Preset = "no-such-preset" },
			wantErr: ErrUnknownPreset,
		},
		{
			name:   "known preset",
			modify: func(c *Config) { c.Preset = "rdoc" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigValidatePaths(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if err := cfg.ValidatePaths(); !errors.Is(err, ErrNoPaths) {
		t.Errorf("expected ErrNoPaths, got %v", err)
	}

	cfg.Paths = []string{""}
	if err := cfg.ValidatePaths(); err != nil {
		t.Errorf("expected root path to be accepted, got %v", err)
	}
}

func TestConfigBases(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Before = "https://old.example.com/"
	cfg.After = "https://new.example.com/"

	bases := cfg.Bases()
	if len(bases) != 2 {
		t.Fatalf("expected 2 bases, got %d", len(bases))
	}
	if bases[model.TagBefore] != cfg.Before || bases[model.TagAfter] != cfg.After {
		t.Errorf("unexpected bases: %v", bases)
	}

	cfg.Before = "http://127.0.0.1:8080"
	cfg.After = "./new"
	bases = cfg.Bases()
	if got := bases[model.TagBefore]; got != "http://127.0.0.1:8080/" {
		t.Errorf("before base = %q, want a trailing slash", got)
	}
	if got := bases[model.TagAfter]; got != "./new/" {
		t.Errorf("after base = %q, want a trailing slash", got)
	}
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if XDGCacheDir() == "" {
		t.Error("expected non-empty XDG cache dir")
	}
	if XDGConfigDir() == "" {
		t.Error("expected non-empty XDG config dir")
	}
	if DefaultCacheFile() == "" {
		t.Error("expected non-empty default cache file")
	}
}
