// Package report writes the Summary of a comparison run.
//
//   - TextWriter: terminal output with per-path status and colored diffs
//   - JSONWriter: the Results and aggregate counts as JSON
//   - MarkdownWriter: a Markdown document for sharing
//
// Writers implement the Writer interface and can be combined with
// MultiWriter.
package report
