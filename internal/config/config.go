package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/sitediff/internal/fetch"
	"github.com/nao1215/sitediff/internal/model"
	"github.com/nao1215/sitediff/internal/rules"
)

// Default configuration values.
const (
	// DefaultTimeout is the connect timeout for each remote read.
	DefaultTimeout = fetch.DefaultTimeout

	// DefaultCrawlDepth follows links three levels below the root page.
	DefaultCrawlDepth = 3

	// DefaultConcurrency is the number of reads in flight at once.
	// Kept low so a comparison run does not hammer the origins.
	DefaultConcurrency = 3

	// AppName is the application name used for XDG directory paths.
	AppName = "sitediff"

	// CacheFileName is the name of the cache file inside the XDG cache dir.
	CacheFileName = "cache.db"

	// DefaultUserAgent identifies sitediff in HTTP requests.
	DefaultUserAgent = fetch.DefaultUserAgent

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = fetch.DefaultMaxBodySize

	// DefaultListenAddress is where the serve command listens.
	DefaultListenAddress = "127.0.0.1:13080"
)

// Config holds all configuration options for sitediff.
// It is populated from the config file first and CLI flags second, then
// passed down to the commands.
type Config struct {
	// Before is the base URI (or local directory) of the origin being
	// migrated away from.
	Before string

	// After is the base URI (or local directory) of the origin being
	// migrated to.
	After string

	// Paths are the relative paths compared between the two origins.
	Paths []string

	// PathsFile is a file listing one relative path per line.
	// Its entries are appended to Paths.
	PathsFile string

	// Preset names the rule library preset used by the crawl command
	// in addition to the default preset.
	Preset string

	// Concurrency bounds the number of reads in flight.
	Concurrency int

	// CrawlDepth is the maximum link depth followed by the crawl command.
	// Depth 0 means only the root page.
	CrawlDepth int

	// Timeout is the connect timeout for each remote read.
	Timeout time.Duration

	// UserAgent is sent with every remote request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64

	// CacheFile is the SQLite cache location.
	CacheFile string

	// ReadTags are the tags whose reads may be served from the cache.
	ReadTags []string

	// WriteTags are the tags whose successful reads are stored in the cache.
	WriteTags []string

	// Sanitization is the rule tree applied before diffing.
	Sanitization rules.Tree

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is written instead of stdout when set.
	ReportFile string

	// Quiet only prints the summary line and failing paths.
	Quiet bool

	// ListenAddress is the address the serve command binds to.
	ListenAddress string
}

// NewConfig creates a new Config with default values.
// By default every tag is written to the cache and none is read back, so a
// run always sees live content unless the user opts in.
func NewConfig() *Config {
	return &Config{
		Concurrency:   DefaultConcurrency,
		CrawlDepth:    DefaultCrawlDepth,
		Timeout:       DefaultTimeout,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
		CacheFile:     DefaultCacheFile(),
		ReadTags:      []string{},
		WriteTags:     model.Tags(),
		ListenAddress: DefaultListenAddress,
	}
}

// XDGCacheDir returns the XDG cache directory for sitediff.
// On Linux: ~/.cache/sitediff
// On macOS: ~/Library/Caches/sitediff
// On Windows: %LOCALAPPDATA%\sitediff\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitediff.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultCacheFile returns the default cache file path.
func DefaultCacheFile() string {
	return filepath.Join(XDGCacheDir(), CacheFileName)
}

// Bases returns the tag to base URI mapping used by the orchestrator.
func (c *Config) Bases() map[string]string {
	return map[string]string{
		model.TagBefore: fetch.DirURI(c.Before),
		model.TagAfter:  fetch.DirURI(c.After),
	}
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Before == "" {
		return ErrNoBefore
	}
	if c.After == "" {
		return ErrNoAfter
	}
	for _, base := range []string{c.Before, c.After} {
		if err := validateBase(base); err != nil {
			return err
		}
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.CrawlDepth < 0 {
		return ErrInvalidCrawlDepth
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	for _, tag := range append(append([]string{}, c.ReadTags...), c.WriteTags...) {
		if !model.IsValidTag(tag) {
			return fmt.Errorf("%w: %q", ErrInvalidTag, tag)
		}
	}

	if c.Preset != "" {
		if _, err := rules.LoadPreset(c.Preset); err != nil {
			return fmt.Errorf("%w: %q", ErrUnknownPreset, c.Preset)
		}
	}
	return nil
}

// ValidatePaths reports ErrNoPaths when there is nothing to compare.
// Only the diff command requires paths; crawl discovers them.
func (c *Config) ValidatePaths() error {
	if len(c.Paths) == 0 {
		return ErrNoPaths
	}
	return nil
}

// validateBase accepts local paths and absolute http(s) URIs.
func validateBase(base string) error {
	if fetch.IsLocal(base) {
		return nil
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %s", ErrInvalidBase, fetch.Redact(base))
	}
	return nil
}
