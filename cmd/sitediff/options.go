package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/sitediff/internal/cache"
	"github.com/nao1215/sitediff/internal/config"
	"github.com/nao1215/sitediff/internal/fetch"
	"github.com/nao1215/sitediff/internal/log"
	"github.com/spf13/cobra"
)

// addOriginFlags registers the flags shared by every command that reads
// from the origins.
func addOriginFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("before", "b", "",
		"Base URI or directory of the site before the migration")
	cmd.Flags().StringP("after", "a", "",
		"Base URI or directory of the site after the migration")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of pages fetched at once")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent to the origins")
	addCacheFlags(cmd)
	cmd.Flags().StringSlice("cached", nil,
		"Serve these tags from the cache when possible (before, after)")
	cmd.Flags().Bool("no-cache-write", false,
		"Do not store fetched pages in the cache")
}

// addCacheFlags registers the cache location flag.
func addCacheFlags(cmd *cobra.Command) {
	cmd.Flags().String("cache", "",
		"Cache file path (default: $XDG_CACHE_HOME/sitediff/cache.db)")
}

// buildConfig creates a Config from the config file and the command flags.
// Flags the user did not set leave the file values alone.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.ConfigFilePath = flagString(cmd, "config")
	cfg.Verbose = getVerboseFlag(cmd)

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, run on flags alone.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(file)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	flags := cmd.Flags()
	var err error
	if flags.Changed("before") {
		cfg.Before, err = flags.GetString("before")
		if err != nil {
			return nil, err
		}
	}
	if flags.Changed("after") {
		cfg.After, err = flags.GetString("after")
		if err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, err = flags.GetInt("concurrency")
		if err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		cfg.Timeout, err = flags.GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent, err = flags.GetString("user-agent")
		if err != nil {
			return nil, err
		}
	}
	if flags.Changed("cache") {
		cfg.CacheFile, err = flags.GetString("cache")
		if err != nil {
			return nil, err
		}
	}
	if flags.Changed("cached") {
		cfg.ReadTags, err = flags.GetStringSlice("cached")
		if err != nil {
			return nil, err
		}
	}
	if flags.Changed("no-cache-write") {
		noWrite, err := flags.GetBool("no-cache-write")
		if err != nil {
			return nil, err
		}
		if noWrite {
			cfg.WriteTags = []string{}
		}
	}
	return cfg, nil
}

// flagString returns the value of a string flag, or "" when the command
// does not define it.
func flagString(cmd *cobra.Command, name string) string {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String()
	}
	if f := cmd.Root().PersistentFlags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the process logger and makes it the slog default.
func setupLogger(verbose bool) *slog.Logger {
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// newFetcher creates the Fetcher described by cfg.
func newFetcher(cfg *config.Config, logger *slog.Logger) *fetch.Fetcher {
	return fetch.NewFetcher(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(logger),
	)
}

// openCache opens the cache with the read and write tags of cfg. With no
// read and no write tags caching is off and the returned cache is nil;
// otherwise a cache that cannot be opened is fatal.
func openCache(cfg *config.Config, logger *slog.Logger) (*cache.Cache, error) {
	if len(cfg.ReadTags) == 0 && len(cfg.WriteTags) == 0 {
		logger.Debug("caching disabled")
		return nil, nil
	}
	store, err := cache.Open(cfg.CacheFile, cache.DefaultOptions())
	if err != nil {
		return nil, err
	}
	for _, tag := range cfg.ReadTags {
		store.EnableRead(tag)
	}
	for _, tag := range cfg.WriteTags {
		store.EnableWrite(tag)
	}
	logger.Debug("cache opened", "file", store.Path(), "read", cfg.ReadTags, "write", cfg.WriteTags)
	return store, nil
}
