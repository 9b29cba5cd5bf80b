package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/nao1215/sitediff/internal/cache"
	"github.com/nao1215/sitediff/internal/config"
	"github.com/nao1215/sitediff/internal/crawler"
	"github.com/nao1215/sitediff/internal/fetch"
	"github.com/nao1215/sitediff/internal/model"
	"github.com/nao1215/sitediff/internal/rules"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	// defaultPathsOutput is where the crawl command writes the page list.
	defaultPathsOutput = "paths.txt"

	// defaultRulesOutput is where the crawl command writes discovered rules.
	defaultRulesOutput = "sanitization.yaml"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl both sites to collect pages and discover sanitization rules",
		Long: `Crawl follows links from the root of both origins up to the configured
depth. Links leaving the origin's host or base path are not followed.

Every page found is stored in the cache and tested against the rule library:
the default preset plus the one named by --preset. Rules that change pages
of both sites are emitted in the shared scope, the rest under the site they
matched. The page list and the discovered rules are written to files that
can be referenced from .sitediff.yaml.

Examples:
  # Crawl with the settings of .sitediff.yaml
  sitediff crawl

  # Crawl two levels deep using the rdoc preset
  sitediff crawl -b https://old.example.com/doc/ -a https://new.example.com/doc/ -d 2 --preset rdoc

  # Emit discovered rules disabled, for review
  sitediff crawl --disabled`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	addOriginFlags(cmd)
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum crawl recursion depth (0 fetches only the root page)")
	cmd.Flags().String("preset", "",
		fmt.Sprintf("Rule library preset to test in addition to %q", rules.DefaultPreset))
	cmd.Flags().Bool("disabled", false,
		"Mark discovered rules as disabled")
	cmd.Flags().String("paths-output", defaultPathsOutput,
		"Output file for the crawled page list")
	cmd.Flags().String("rules-output", defaultRulesOutput,
		"Output file for the discovered sanitization rules")

	return cmd
}

// crawlOptions are the crawl command settings not held by Config.
type crawlOptions struct {
	disabled    bool
	pathsOutput string
	rulesOutput string
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, opts, err := buildCrawlConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	store, err := openCache(cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	startTime := time.Now()
	result, err := crawlSites(ctx, cfg, store, newFetcher(cfg, logger), opts.disabled, logger)
	if err != nil {
		return err
	}
	logger.Info("crawl completed",
		"pages", len(result.paths),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	if err := config.WritePathsFile(opts.pathsOutput, result.paths); err != nil {
		return err
	}
	if err := writeRules(opts.rulesOutput, result.tree); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Crawled %d pages\n", len(result.paths))
	fmt.Fprintf(out, "  before: %d pages\n", result.visited[model.TagBefore])
	fmt.Fprintf(out, "  after:  %d pages\n", result.visited[model.TagAfter])
	fmt.Fprintf(out, "Discovered %d rules (%d shared, %d before, %d after)\n",
		len(result.tree.Shared.RegexRules)+len(result.tree.Before.RegexRules)+len(result.tree.After.RegexRules),
		len(result.tree.Shared.RegexRules), len(result.tree.Before.RegexRules), len(result.tree.After.RegexRules))
	fmt.Fprintf(out, "\nWrote %s and %s\n", opts.pathsOutput, opts.rulesOutput)
	fmt.Fprintln(out, "Reference them from .sitediff.yaml with 'pathsFile' and 'sanitization'.")

	return nil
}

// buildCrawlConfig adds the crawl specific flags to the shared configuration.
func buildCrawlConfig(cmd *cobra.Command) (*config.Config, crawlOptions, error) {
	var opts crawlOptions

	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, opts, err
	}

	flags := cmd.Flags()
	if flags.Changed("depth") {
		if cfg.CrawlDepth, err = flags.GetInt("depth"); err != nil {
			return nil, opts, err
		}
	}
	if flags.Changed("preset") {
		if cfg.Preset, err = flags.GetString("preset"); err != nil {
			return nil, opts, err
		}
	}
	if opts.disabled, err = flags.GetBool("disabled"); err != nil {
		return nil, opts, err
	}
	if opts.pathsOutput, err = flags.GetString("paths-output"); err != nil {
		return nil, opts, err
	}
	if opts.rulesOutput, err = flags.GetString("rules-output"); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

// crawlResult is what a crawl of both origins produced.
type crawlResult struct {
	// paths are the relative paths fetched successfully on either side.
	paths []string

	// visited counts the successfully fetched pages per tag.
	visited map[string]int

	// tree holds the discovered rules.
	tree rules.Tree
}

// crawlSites crawls both origins on one shared Multiplexer, feeding every
// page to rule discovery, and waits until both crawls are exhausted.
func crawlSites(ctx context.Context, cfg *config.Config, store *cache.Cache, fetcher *fetch.Fetcher, disabled bool, logger *slog.Logger) (*crawlResult, error) {
	candidates, err := rules.LoadLibrary(cfg.Preset)
	if err != nil {
		return nil, err
	}
	discovery, err := rules.NewDiscovery(candidates,
		rules.WithDisabledOnDiscovery(disabled),
		rules.WithDiscoveryLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	found := make(map[string]bool)
	visited := make(map[string]int)

	mux := fetch.NewMultiplexer(ctx, cfg.Concurrency)
	bases := cfg.Bases()
	for _, tag := range model.Tags() {
		c, err := crawler.New(tag, bases[tag], fetcher, mux,
			crawler.WithCache(store),
			crawler.WithLogger(logger),
			crawler.WithOnPage(func(info crawler.CrawlInfo) {
				discovery.HandlePage(tag, info.Result.Content, info.Document)

				mu.Lock()
				defer mu.Unlock()
				found[info.RelativePath] = true
				visited[tag]++
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("invalid %s origin: %w", tag, err)
		}
		logger.Info("crawling", "tag", tag, "root", fetch.Redact(bases[tag]), "depth", cfg.CrawlDepth)
		c.Add(ctx, "", cfg.CrawlDepth)
	}
	mux.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(found))
	for p := range found {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	return &crawlResult{
		paths:   paths,
		visited: visited,
		tree:    discovery.Finalize(),
	}, nil
}

// writeRules writes tree under a "sanitization" key so the file can be
// pasted into .sitediff.yaml as is.
func writeRules(path string, tree rules.Tree) error {
	data, err := yaml.Marshal(struct {
		Sanitization rules.Tree `yaml:"sanitization"`
	}{Sanitization: tree})
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}
	return nil
}
