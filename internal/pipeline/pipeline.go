package pipeline

import (
	"context"
	"log/slog"
)

// Step is one stage applied to a Comparison.
type Step interface {
	// Do runs the step. An error stops the pipeline.
	Do(ctx context.Context, c *Comparison) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline runs Steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps. They run in the order added.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step on c and returns the first error.
func (p *Pipeline) Execute(ctx context.Context, c *Comparison) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Debug("pipeline cancelled", "step", step.Name(), "path", c.Path)
			return err
		}
		if err := step.Do(ctx, c); err != nil {
			p.logger.Error("step failed", "step", step.Name(), "path", c.Path, "error", err)
			return err
		}
		p.logger.Debug("step completed", "step", step.Name(), "path", c.Path)
	}
	return nil
}

// StepNames returns the names of the steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
