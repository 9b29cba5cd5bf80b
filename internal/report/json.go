package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sitediff/internal/model"
)

// JSONWriter outputs the Summary as JSON for tool integration.
type JSONWriter struct {
	baseWriter

	// version is written into the document when set.
	version string

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the producing version in the document.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the document written by JSONWriter.
type JSONReport struct {
	Version      string       `json:"version,omitempty"`
	Passed       bool         `json:"passed"`
	Counts       JSONCounts   `json:"counts"`
	FailingPaths []string     `json:"failingPaths"`
	Results      []JSONResult `json:"results"`
}

// JSONCounts holds the number of results per status.
type JSONCounts struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Error   int `json:"error"`
}

// JSONResult is a Result with its derived status spelled out.
type JSONResult struct {
	model.Result

	Status model.Status `json:"status"`
}

// NewJSONReport builds the document for summary.
func NewJSONReport(summary *model.Summary, version string) *JSONReport {
	results := make([]JSONResult, len(summary.Results))
	for i, r := range summary.Results {
		results[i] = JSONResult{Result: r, Status: r.Status()}
	}
	return &JSONReport{
		Version: version,
		Passed:  summary.Passed(),
		Counts: JSONCounts{
			Success: summary.Count(model.StatusSuccess),
			Failure: summary.Count(model.StatusFailure),
			Error:   summary.Count(model.StatusError),
		},
		FailingPaths: summary.FailingPaths(),
		Results:      results,
	}
}

// Write implements Writer.
func (w *JSONWriter) Write(summary *model.Summary) (int, error) {
	return w.writeJSON(NewJSONReport(summary, w.version))
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
