package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/sitediff/internal/cache"
	"github.com/nao1215/sitediff/internal/config"
	"github.com/nao1215/sitediff/internal/log"
	"github.com/nao1215/sitediff/internal/model"
	"github.com/nao1215/sitediff/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve cached pages over HTTP",
		Long: `Serve exposes the pages stored in the cache read-only, so both versions of
a page can be opened side by side in a browser:

  http://127.0.0.1:13080/before/index.html
  http://127.0.0.1:13080/after/index.html

Nothing is fetched from the origins. Pages that failed to fetch answer
502 with the stored error, pages never fetched answer 404.

Examples:
  sitediff serve
  sitediff serve --addr :8080 --cache ./site.db`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addCacheFlags(cmd)
	cmd.Flags().String("addr", config.DefaultListenAddress,
		"Address to listen on")
	cmd.Flags().Bool("log-json", false,
		"Write request logs as JSON")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.ListenAddress, err = cmd.Flags().GetString("addr"); err != nil {
		return err
	}
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return err
	}

	var logger *slog.Logger
	if logJSON {
		logger = log.NewSecureJSONLogger(os.Stderr, cfg.Verbose)
		slog.SetDefault(logger)
	} else {
		logger = setupLogger(cfg.Verbose)
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	opts := cache.DefaultOptions()
	opts.CreateIfNotExists = false
	store, err := cache.Open(cfg.CacheFile, opts)
	if err != nil {
		return fmt.Errorf("nothing to serve, run 'sitediff crawl' or 'sitediff diff' first: %w", err)
	}
	defer store.Close()
	for _, tag := range model.Tags() {
		store.EnableRead(tag)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s/\n", store.Path(), cfg.ListenAddress)
	return server.ListenAndServe(ctx, cfg.ListenAddress, server.NewHandler(store, logger), logger)
}
