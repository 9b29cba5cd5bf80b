package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitediff/internal/model"
)

// Runner fetches, sanitizes and diffs a path list.
type Runner struct {
	orchestrator *Orchestrator
	pipeline     *Pipeline
	concurrency  int
	logger       *slog.Logger

	// onResult, if set, is called for each finished path.
	onResult func(model.Result)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithConcurrency sets how many paths are processed at once after fetching.
// It defaults to GOMAXPROCS.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithOnResult sets a callback receiving each Result as soon as it is
// ready. It may be called concurrently.
func WithOnResult(fn func(model.Result)) RunnerOption {
	return func(r *Runner) {
		r.onResult = fn
	}
}

// NewRunner creates a Runner.
func NewRunner(orchestrator *Orchestrator, pipeline *Pipeline, opts ...RunnerOption) *Runner {
	r := &Runner{
		orchestrator: orchestrator,
		pipeline:     pipeline,
		concurrency:  runtime.GOMAXPROCS(0),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run compares every path and returns the Results in input order, without
// duplicates. The first pipeline error, such as an ErrInvalidSanitization,
// cancels the remaining work and is returned.
func (r *Runner) Run(ctx context.Context, paths []string, bases map[string]string) (*model.Summary, error) {
	startTime := time.Now()

	order := make(map[string]int, len(paths))
	for _, p := range paths {
		if _, ok := order[p]; !ok {
			order[p] = len(order)
		}
	}
	results := make([]model.Result, len(order))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	r.logger.Info("starting comparison", "paths", len(order))
	err := r.orchestrator.Run(gctx, paths, bases, func(path string, reads map[string]model.ReadResult) {
		g.Go(func() error {
			c := NewComparison(path, reads)
			if err := r.pipeline.Execute(gctx, c); err != nil {
				return err
			}
			results[order[path]] = c.Result
			if r.onResult != nil {
				r.onResult(c.Result)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := model.NewSummary(results)
	r.logger.Info("comparison complete",
		"paths", len(results),
		"failing", len(summary.FailingPaths()),
		"elapsed", time.Since(startTime),
	)
	return summary, nil
}
