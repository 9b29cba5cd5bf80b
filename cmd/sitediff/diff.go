package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/nao1215/sitediff/internal/config"
	"github.com/nao1215/sitediff/internal/fetch"
	"github.com/nao1215/sitediff/internal/model"
	"github.com/nao1215/sitediff/internal/pipeline"
	"github.com/nao1215/sitediff/internal/report"
	"github.com/spf13/cobra"
)

// errPagesDiffer is returned by the diff command when at least one page
// failed or differs. The report already names them.
var errPagesDiffer = errors.New("pages differ")

// NewDiffCmd creates the diff command.
func NewDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [path...]",
		Short: "Compare pages between the before and after sites",
		Long: `Diff fetches every path from both origins, sanitizes the HTML with the
configured rules, and reports each page as PASS (identical after
sanitization), FAIL (different) or ERROR (could not be fetched).

Paths come from the arguments, the 'paths' list and the 'pathsFile' of the
configuration file. The root page is written as "/".

The exit status is 1 when any page fails or errors.

Examples:
  # Diff the pages listed in .sitediff.yaml
  sitediff diff

  # Diff two local builds
  sitediff diff -b ./old/ -a ./new/ index.html about.html

  # Reuse the pages cached for the before site
  sitediff diff --cached before

  # Write a Markdown report for a pull request comment
  sitediff diff --markdown -o report.md`,
		Args: cobra.ArbitraryArgs,
		RunE: runDiffCmd,
	}

	addOriginFlags(cmd)
	cmd.Flags().StringP("paths-file", "p", "",
		"File listing one path per line")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("quiet", "q", false,
		"Only print failing pages and the summary")
	cmd.Flags().Bool("no-color", false,
		"Disable colored diffs")

	return cmd
}

// runDiffCmd executes the diff command.
func runDiffCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildDiffConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.LoadPaths(); err != nil {
		return err
	}
	if err := cfg.ValidatePaths(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return err
	}

	store, err := openCache(cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	sanitize, err := pipeline.NewSanitizeStep(cfg.Sanitization)
	if err != nil {
		return err
	}
	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(sanitize, pipeline.NewDiffStep())

	mux := fetch.NewMultiplexer(ctx, cfg.Concurrency)
	orchestrator := pipeline.NewOrchestrator(store, newFetcher(cfg, logger), mux, logger)
	runner := pipeline.NewRunner(orchestrator, p,
		pipeline.WithRunnerLogger(logger),
		pipeline.WithOnResult(func(r model.Result) {
			logger.Debug("compared", "path", r.Path, "status", r.Status())
		}),
	)

	startTime := time.Now()
	summary, err := runner.Run(ctx, cfg.Paths, cfg.Bases())
	if err != nil {
		return err
	}
	logger.Info("comparison completed",
		"paths", len(summary.Results),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	if err := outputReport(cmd.OutOrStdout(), cfg, summary, !noColor); err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	if !summary.Passed() {
		return errPagesDiffer
	}
	return nil
}

// buildDiffConfig adds the diff specific flags and arguments to the
// shared configuration.
func buildDiffConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("paths-file") {
		cfg.PathsFile, err = flags.GetString("paths-file")
		if err != nil {
			return nil, err
		}
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.Quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}

	for _, arg := range args {
		cfg.Paths = append(cfg.Paths, config.NormalizePath(arg))
	}
	return cfg, nil
}

// outputReport writes the summary in the requested format to the report
// file, or to stdout.
func outputReport(stdout io.Writer, cfg *config.Config, summary *model.Summary, colorize bool) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports contain page content, keep them private to the owner.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
		colorize = false
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTextWriter(output,
			report.WithQuiet(cfg.Quiet),
			report.WithColor(colorize && !color.NoColor),
		)
	}

	// A machine readable report written to a file still gets the
	// human summary on the terminal.
	if cfg.ReportFile != "" && (cfg.JSONReport || cfg.MarkdownReport) {
		writer = report.NewMultiWriter(writer, report.NewTextWriter(stdout,
			report.WithQuiet(true),
			report.WithShowDiff(false),
		))
	}

	_, err := writer.Write(summary)
	return err
}
