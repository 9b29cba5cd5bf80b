package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitediff.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitediff",
		Short: "Compare a site before and after a migration",
		Long: `sitediff fetches the same pages from two origins, "before" and "after",
strips noise that changes on every request, and reports the pages whose
content differs.

A typical session crawls both origins once to collect the page list and
discover sanitization rules, then diffs them as often as needed:

  sitediff init
  sitediff crawl
  sitediff diff`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .sitediff.yaml in current or home directory)")

	cmd.AddCommand(NewDiffCmd())
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. Differences are already reported by the
// diff command, so they only set the exit status.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errPagesDiffer) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
