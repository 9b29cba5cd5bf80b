package report

import (
	"io"

	"github.com/nao1215/sitediff/internal/model"
)

// Writer writes a Summary to its destination.
type Writer interface {
	// Write outputs summary and returns the number of bytes written.
	Write(summary *model.Summary) (int, error)
}

// MultiWriter writes to several Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs summary to every Writer and stops at the first error.
func (m *MultiWriter) Write(summary *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusLabel returns the short label of a status.
func statusLabel(s model.Status) string {
	switch s {
	case model.StatusSuccess:
		return "PASS"
	case model.StatusFailure:
		return "FAIL"
	case model.StatusError:
		return "ERROR"
	default:
		return "?"
	}
}
