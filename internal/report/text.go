package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sitediff/internal/diff"
	"github.com/nao1215/sitediff/internal/model"
)

// TextWriter outputs a human-readable summary for the terminal.
type TextWriter struct {
	baseWriter

	// showDiff prints the diff of each failing path.
	showDiff bool

	// quiet omits passing paths.
	quiet bool

	colorizer *diff.Colorizer
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithShowDiff prints the unified diff under each failing path.
func WithShowDiff(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showDiff = show
	}
}

// WithQuiet omits passing paths from the listing.
func WithQuiet(quiet bool) TextWriterOption {
	return func(w *TextWriter) {
		w.quiet = quiet
	}
}

// WithColor enables or disables ANSI colors in diffs.
func WithColor(enabled bool) TextWriterOption {
	return func(w *TextWriter) {
		w.colorizer = diff.NewColorizer(enabled)
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
// Colors are off unless WithColor enables them.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		showDiff:   true,
		colorizer:  diff.NewColorizer(false),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *TextWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	for _, r := range summary.Results {
		status := r.Status()
		if w.quiet && status == model.StatusSuccess {
			continue
		}
		fmt.Fprintf(&sb, "[%-5s] %s\n", statusLabel(status), r.Path)
		switch status {
		case model.StatusError:
			fmt.Fprintf(&sb, "        %s\n", r.Error)
		case model.StatusFailure:
			if w.showDiff {
				sb.WriteString(w.colorizer.Colorize(r.Diff))
				if !strings.HasSuffix(r.Diff, "\n") {
					sb.WriteString("\n")
				}
			}
		}
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%d paths: %d passed, %d failed, %d errors\n",
		len(summary.Results),
		summary.Count(model.StatusSuccess),
		summary.Count(model.StatusFailure),
		summary.Count(model.StatusError),
	)

	if failing := summary.FailingPaths(); len(failing) > 0 {
		sb.WriteString("Failing paths:\n")
		for _, p := range failing {
			fmt.Fprintf(&sb, "  %s\n", p)
		}
	}

	return w.output.Write([]byte(sb.String()))
}
