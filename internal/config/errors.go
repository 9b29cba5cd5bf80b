package config

import "errors"

// Configuration validation errors.
// Config.Validate returns these so callers can use errors.Is while the
// message stays readable on the command line.
var (
	// ErrNoBefore is returned when no before origin is configured.
	ErrNoBefore = errors.New("no before origin specified: set 'before' in the config file or use --before")

	// ErrNoAfter is returned when no after origin is configured.
	ErrNoAfter = errors.New("no after origin specified: set 'after' in the config file or use --after")

	// ErrInvalidBase is returned when an origin is neither a local path nor
	// an absolute http(s) URI.
	ErrInvalidBase = errors.New("invalid origin: must be a local path or an http(s) URI")

	// ErrNoPaths is returned when the diff command has nothing to compare.
	ErrNoPaths = errors.New("no paths specified: set 'paths' or 'pathsFile', or run 'sitediff crawl' first")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidCrawlDepth is returned when the crawl depth is negative.
	ErrInvalidCrawlDepth = errors.New("invalid crawl depth: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to keep the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidTag is returned when a cache read or write tag is not
	// "before" or "after".
	ErrInvalidTag = errors.New("invalid cache tag: must be 'before' or 'after'")

	// ErrUnknownPreset is returned when the rule library has no such preset.
	ErrUnknownPreset = errors.New("unknown rule preset")
)
