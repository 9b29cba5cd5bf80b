package pipeline

import "github.com/nao1215/sitediff/internal/model"

// Comparison is the state of one path as it moves through a Pipeline.
type Comparison struct {
	// Path is the relative path.
	Path string

	// Reads holds the fetch result per tag.
	Reads map[string]model.ReadResult

	// Sanitized holds the sanitized content per tag. It is only filled when
	// every read succeeded.
	Sanitized map[string]string

	// Result is set by the diff step.
	Result model.Result
}

// NewComparison creates a Comparison for path.
func NewComparison(path string, reads map[string]model.ReadResult) *Comparison {
	return &Comparison{
		Path:      path,
		Reads:     reads,
		Sanitized: make(map[string]string),
	}
}

// fetchOK reports whether every read succeeded.
func (c *Comparison) fetchOK() bool {
	for _, r := range c.Reads {
		if !r.OK() {
			return false
		}
	}
	return true
}

// sanitized returns the sanitized content of tag, or content itself when no
// sanitize step ran.
func (c *Comparison) sanitized(tag, content string) (string, error) {
	if out, ok := c.Sanitized[tag]; ok {
		return out, nil
	}
	return content, nil
}
