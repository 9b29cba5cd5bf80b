package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sitediff/internal/model"
)

// syntaxDiff highlights unified diffs in fenced code blocks.
const syntaxDiff markdown.SyntaxHighlight = "diff"

// MarkdownWriter outputs the Summary as a Markdown document.
type MarkdownWriter struct {
	baseWriter

	// title is the document heading.
	title string
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithTitle sets the document heading.
func WithTitle(title string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.title = title
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		title:      "sitediff report",
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(w.title)
	md.PlainText("")
	w.writeCounts(md, summary)
	w.writeResults(md, summary)
	w.writeDiffs(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeCounts writes the status table, chart and verdict.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, summary *model.Summary) {
	success := summary.Count(model.StatusSuccess)
	failure := summary.Count(model.StatusFailure)
	errored := summary.Count(model.StatusError)

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Paths"},
		Rows: [][]string{
			{"✅ Success", strconv.Itoa(success)},
			{"❌ Failure", strconv.Itoa(failure)},
			{"⚠️ Error", strconv.Itoa(errored)},
			{"**Total**", "**" + strconv.Itoa(len(summary.Results)) + "**"},
		},
	})
	md.PlainText("")

	if len(summary.Results) > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Results"),
			piechart.WithShowData(true),
		)
		for _, s := range []struct {
			label string
			count int
		}{{"Success", success}, {"Failure", failure}, {"Error", errored}} {
			if s.count > 0 {
				chart.LabelAndIntValue(s.label, uint64(s.count))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case errored > 0:
		md.Cautionf("%d path(s) could not be fetched on one side.", errored)
	case failure > 0:
		md.Warningf("%d path(s) differ after sanitization.", failure)
	default:
		md.Tip("Every path matches after sanitization.")
	}
	md.PlainText("")
}

// writeResults writes one table row per path, in run order.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Results")
	md.PlainText("")
	if len(summary.Results) == 0 {
		md.PlainText("No paths were compared.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Results))
	for i, r := range summary.Results {
		detail := "-"
		switch r.Status() {
		case model.StatusError:
			detail = truncateString(r.Error, 80)
		case model.StatusFailure:
			detail = strconv.Itoa(changedLines(r)) + " changed line(s)"
		}
		rows[i] = []string{"`" + r.Path + "`", statusLabel(r.Status()), detail}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Path", "Status", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDiffs writes the diff of every failing path.
func (w *MarkdownWriter) writeDiffs(md *markdown.Markdown, summary *model.Summary) {
	if summary.Count(model.StatusFailure) == 0 {
		return
	}
	md.H2("Differences")
	md.PlainText("")
	for _, r := range summary.Results {
		if r.Status() != model.StatusFailure {
			continue
		}
		md.H3(r.Path)
		md.PlainText("")
		md.CodeBlocks(syntaxDiff, r.Diff)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitediff](https://github.com/nao1215/sitediff)*")
}

// changedLines counts inserted and deleted lines.
func changedLines(r model.Result) int {
	n := 0
	for _, l := range r.Lines {
		if l.Op == model.DiffInsert || l.Op == model.DiffDelete {
			n++
		}
	}
	return n
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
