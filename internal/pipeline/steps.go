package pipeline

import (
	"context"
	"fmt"

	"github.com/nao1215/sitediff/internal/diff"
	"github.com/nao1215/sitediff/internal/model"
	"github.com/nao1215/sitediff/internal/rules"
	"github.com/nao1215/sitediff/internal/sanitize"
)

// SanitizeStep normalizes the content of each tag with that tag's profile.
type SanitizeStep struct {
	sanitizers map[string]*sanitize.Sanitizer
}

// NewSanitizeStep compiles the effective profile of every tag in tree.
func NewSanitizeStep(tree rules.Tree) (*SanitizeStep, error) {
	s := &SanitizeStep{sanitizers: make(map[string]*sanitize.Sanitizer)}
	for _, tag := range model.Tags() {
		sz, err := sanitize.New(tree.For(tag))
		if err != nil {
			return nil, fmt.Errorf("%s sanitization: %w", tag, err)
		}
		s.sanitizers[tag] = sz
	}
	return s, nil
}

// Name implements Step.
func (s *SanitizeStep) Name() string {
	return "sanitize"
}

// Do implements Step. Nothing is sanitized when a fetch failed.
func (s *SanitizeStep) Do(_ context.Context, c *Comparison) error {
	if !c.fetchOK() {
		return nil
	}
	for tag, read := range c.Reads {
		sz, ok := s.sanitizers[tag]
		if !ok {
			c.Sanitized[tag] = read.Content
			continue
		}
		out, err := sz.Sanitize(read.Content)
		if err != nil {
			return fmt.Errorf("%s (%s): %w", c.Path, tag, err)
		}
		c.Sanitized[tag] = out
	}
	return nil
}

// DiffStep compares the before and after sides.
type DiffStep struct{}

// NewDiffStep creates a DiffStep.
func NewDiffStep() *DiffStep {
	return &DiffStep{}
}

// Name implements Step.
func (s *DiffStep) Name() string {
	return "diff"
}

// Do implements Step. The sanitize step's output is handed to the diff
// engine as its sanitize function.
func (s *DiffStep) Do(_ context.Context, c *Comparison) error {
	result, err := diff.Compare(c.Path, c.Reads[model.TagBefore], c.Reads[model.TagAfter], c.sanitized)
	if err != nil {
		return err
	}
	c.Result = result
	return nil
}
