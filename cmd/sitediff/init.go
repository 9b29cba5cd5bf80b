package main

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/sitediff/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

//go:embed templates/sitediff.yaml
var configTemplate embed.FS

// configTemplatePath is the template location inside configTemplate.
const configTemplatePath = "templates/sitediff.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new sitediff configuration file",
		Long: `Initialize creates a new .sitediff.yaml configuration file in the current directory.

The generated file includes:
- Placeholders for the before and after origins
- Default settings for concurrency, crawl depth and timeouts
- Cache read and write settings
- Commented examples of sanitization rules and DOM transforms

Examples:
  # Create .sitediff.yaml in current directory
  sitediff init

  # Fill in the origins right away
  sitediff init --before https://old.example.com/ --after https://new.example.com/

  # Force overwrite existing file
  sitediff init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().StringP("before", "b", "",
		"Base URI or directory of the site before the migration")
	cmd.Flags().StringP("after", "a", "",
		"Base URI or directory of the site after the migration")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	before, err := cmd.Flags().GetString("before")
	if err != nil {
		return err
	}
	after, err := cmd.Flags().GetString("after")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := renderTemplate(before, after)
	if err != nil {
		return err
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Set 'before' and 'after' to the two origins")
	fmt.Fprintln(out, "  2. Run 'sitediff crawl' to collect pages and discover rules")
	fmt.Fprintln(out, "  3. Run 'sitediff diff' to compare them")

	return nil
}

// renderTemplate returns the embedded template with the origin
// placeholders replaced when values are given.
func renderTemplate(before, after string) ([]byte, error) {
	content, err := configTemplate.ReadFile(configTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config template: %w", err)
	}
	for key, value := range map[string]string{"before": before, "after": after} {
		if value == "" {
			continue
		}
		if content, err = setTopLevelKey(content, key, value); err != nil {
			return nil, err
		}
	}
	return content, nil
}

// setTopLevelKey replaces the value of the first unindented "key:" line.
func setTopLevelKey(content []byte, key, value string) ([]byte, error) {
	encoded, err := yaml.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	prefix := []byte(key + ":")

	lines := bytes.SplitAfter(content, []byte("\n"))
	for i, line := range lines {
		if bytes.HasPrefix(line, prefix) {
			lines[i] = append(append(append([]byte{}, prefix...), ' '), encoded...)
			break
		}
	}
	return bytes.Join(lines, nil), nil
}
