package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/sitediff/internal/rules"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".sitediff.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// CacheSection is the cache block of the configuration file.
type CacheSection struct {
	// File overrides the default cache location.
	File string `yaml:"file,omitempty"`

	// Read lists the tags served from the cache. Nil keeps the default.
	Read []string `yaml:"read,omitempty"`

	// Write lists the tags stored in the cache. Nil keeps the default,
	// an explicit empty list disables writes.
	Write []string `yaml:"write,omitempty"`
}

// File represents the structure of the .sitediff.yaml configuration file.
type File struct {
	Before       string        `yaml:"before,omitempty"`
	After        string        `yaml:"after,omitempty"`
	Paths        []string      `yaml:"paths,omitempty"`
	PathsFile    string        `yaml:"pathsFile,omitempty"`
	Preset       string        `yaml:"preset,omitempty"`
	Concurrency  int           `yaml:"concurrency,omitempty"`
	Depth        *int          `yaml:"depth,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	UserAgent    string        `yaml:"userAgent,omitempty"`
	Cache        CacheSection  `yaml:"cache,omitempty"`
	Sanitization rules.Tree    `yaml:"sanitization,omitempty"`

	// dir is the directory the file was loaded from. Relative file
	// references inside the config resolve against it.
	dir string
}

// LoadConfigFile loads the configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers decide whether that matters based on whether the path was
// explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cf.dir = filepath.Dir(path)

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .sitediff.yaml in the current directory
// 3. Look for .sitediff.yaml in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply copies every value set in f onto c. Values left empty in the file
// keep what c already holds, so defaults survive and CLI flags applied
// afterwards still win.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.Before != "" {
		c.Before = f.Before
	}
	if f.After != "" {
		c.After = f.After
	}
	for _, p := range f.Paths {
		c.Paths = append(c.Paths, NormalizePath(p))
	}
	if f.PathsFile != "" {
		c.PathsFile = f.resolve(f.PathsFile)
	}
	if f.Preset != "" {
		c.Preset = f.Preset
	}
	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if f.Depth != nil {
		c.CrawlDepth = *f.Depth
	}
	if f.Timeout != 0 {
		c.Timeout = f.Timeout
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.Cache.File != "" {
		c.CacheFile = f.resolve(f.Cache.File)
	}
	if f.Cache.Read != nil {
		c.ReadTags = f.Cache.Read
	}
	if f.Cache.Write != nil {
		c.WriteTags = f.Cache.Write
	}
	c.Sanitization = f.Sanitization
}

// resolve makes path relative to the directory of the config file.
func (f *File) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || f.dir == "" {
		return path
	}
	return filepath.Join(f.dir, path)
}

// LoadPaths appends the entries of PathsFile to Paths.
func (c *Config) LoadPaths() error {
	if c.PathsFile == "" {
		return nil
	}
	paths, err := ReadPathsFile(c.PathsFile)
	if err != nil {
		return err
	}
	c.Paths = append(c.Paths, paths...)
	return nil
}

// NormalizePath turns a user-supplied path into one relative to the origin
// base. A lone "/" denotes the root page.
func NormalizePath(path string) string {
	return strings.TrimLeft(strings.TrimSpace(path), "/")
}

// ReadPathsFile reads one relative path per line. Blank lines and lines
// starting with '#' are skipped.
func ReadPathsFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path list is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open paths file: %w", err)
	}
	defer f.Close()

	paths := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, NormalizePath(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read paths file: %w", err)
	}
	return paths, nil
}

// WritePathsFile writes paths one per line, creating parent directories.
// The root page is written as "/".
func WritePathsFile(path string, paths []string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	var b strings.Builder
	for _, p := range paths {
		if p == "" {
			p = "/"
		}
		b.WriteString(p)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write paths file: %w", err)
	}
	return nil
}
