package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/nao1215/sitediff/internal/cache"
	"github.com/nao1215/sitediff/internal/fetch"
	"github.com/nao1215/sitediff/internal/model"
)

// CompleteFunc receives the reads of one path, keyed by tag. It is called
// exactly once per path, possibly concurrently for different paths.
type CompleteFunc func(path string, reads map[string]model.ReadResult)

// Orchestrator fetches a path list under every tag, cache first.
type Orchestrator struct {
	cache   *cache.Cache
	fetcher *fetch.Fetcher
	mux     *fetch.Multiplexer
	logger  *slog.Logger

	// pending holds the reads of paths that are not complete yet.
	pending map[string]map[string]model.ReadResult
	mu      sync.Mutex
}

// NewOrchestrator creates an Orchestrator. store may be nil to disable
// caching; logger may be nil for slog.Default.
func NewOrchestrator(store *cache.Cache, fetcher *fetch.Fetcher, mux *fetch.Multiplexer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cache:   store,
		fetcher: fetcher,
		mux:     mux,
		logger:  logger,
		pending: make(map[string]map[string]model.ReadResult),
	}
}

// Fetch queues every path under every tag of bases and returns without
// waiting for remote reads. Duplicate paths are queued once. Cache hits and
// local reads complete before Fetch returns; drain the Multiplexer to wait
// for the rest.
func (o *Orchestrator) Fetch(ctx context.Context, paths []string, bases map[string]string, onComplete CompleteFunc) error {
	if err := validateBases(bases); err != nil {
		return err
	}
	tags := make([]string, 0, len(bases))
	for tag := range bases {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	queued := make(map[string]bool, len(paths))
	for _, path := range paths {
		if queued[path] {
			o.logger.Debug("skipping duplicate path", "path", path)
			continue
		}
		queued[path] = true

		for _, tag := range tags {
			o.fetchOne(ctx, path, tag, bases[tag], len(tags), onComplete)
		}
	}
	return nil
}

// Run calls Fetch and waits for the Multiplexer to drain.
func (o *Orchestrator) Run(ctx context.Context, paths []string, bases map[string]string, onComplete CompleteFunc) error {
	if err := o.Fetch(ctx, paths, bases, onComplete); err != nil {
		return err
	}
	o.mux.Wait()
	return nil
}

func (o *Orchestrator) fetchOne(ctx context.Context, path, tag, base string, want int, onComplete CompleteFunc) {
	if o.cache != nil {
		cached, ok, err := o.cache.Get(ctx, tag, path)
		if err != nil {
			o.logger.Warn("cache read failed", "tag", tag, "path", path, "error", err)
		}
		if ok {
			o.logger.Debug("cache hit", "tag", tag, "path", path)
			o.record(path, tag, cached, want, onComplete)
			return
		}
	}

	uri := fetch.JoinURI(base, path)
	o.fetcher.ReadAsync(ctx, uri, o.mux, func(result model.ReadResult) {
		if !result.OK() {
			o.logger.Info("fetch failed", "tag", tag, "uri", fetch.Redact(uri), "error", result.Error)
		} else if o.cache != nil {
			if err := o.cache.Set(ctx, tag, path, result); err != nil {
				o.logger.Warn("cache write failed", "tag", tag, "path", path, "error", err)
			}
		}
		o.record(path, tag, result, want, onComplete)
	})
}

// record stores one read and fires onComplete when the path has all of
// them.
func (o *Orchestrator) record(path, tag string, result model.ReadResult, want int, onComplete CompleteFunc) {
	o.mu.Lock()
	reads, ok := o.pending[path]
	if !ok {
		reads = make(map[string]model.ReadResult, want)
		o.pending[path] = reads
	}
	reads[tag] = result
	complete := len(reads) == want
	if complete {
		delete(o.pending, path)
	}
	o.mu.Unlock()

	if complete && onComplete != nil {
		onComplete(path, reads)
	}
}

func validateBases(bases map[string]string) error {
	if len(bases) != len(model.Tags()) {
		return ErrInvalidBases
	}
	for _, tag := range model.Tags() {
		if _, ok := bases[tag]; !ok {
			return ErrInvalidBases
		}
	}
	return nil
}
