package fetch

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/nao1215/sitediff/internal/model"
)

// DefaultConcurrency is the number of requests in flight at once.
const DefaultConcurrency = 3

// Work is one unit of remote I/O driven by a Multiplexer.
type Work func(ctx context.Context) model.ReadResult

// Multiplexer runs submitted Work with at most concurrency items in flight.
//
// Completion callbacks run after the worker slot has been released, so a
// callback may Submit more work without starving the pool. Wait returns only
// when the pending count reaches zero, which includes work submitted by
// callbacks during the drain.
type Multiplexer struct {
	ctx         context.Context
	sem         *semaphore.Weighted
	wg          sync.WaitGroup
	pending     atomic.Int64
	concurrency int
}

// NewMultiplexer creates a Multiplexer. A non-positive concurrency falls back
// to DefaultConcurrency. Cancelling ctx makes work that has not started yet
// complete with an error result.
func NewMultiplexer(ctx context.Context, concurrency int) *Multiplexer {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Multiplexer{
		ctx:         ctx,
		sem:         semaphore.NewWeighted(int64(concurrency)),
		concurrency: concurrency,
	}
}

// Submit schedules work and returns immediately. done, if non-nil, receives
// the result on a worker goroutine. work runs under a context cancelled
// when either ctx or the Multiplexer's context is; work that has not
// started by then completes with an error result instead of running.
func (m *Multiplexer) Submit(ctx context.Context, work Work, done func(model.ReadResult)) {
	m.pending.Add(1)
	m.wg.Add(1)

	go func() {
		defer func() {
			m.pending.Add(-1)
			m.wg.Done()
		}()

		result := m.run(ctx, work)
		if done != nil {
			done(result)
		}
	}()
}

// run executes work while holding one slot.
func (m *Multiplexer) run(ctx context.Context, work Work) model.ReadResult {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(m.ctx, cancel)
	defer stop()

	if err := m.sem.Acquire(ctx, 1); err != nil {
		return model.Failure(err.Error())
	}
	defer m.sem.Release(1)

	// Acquire may win the race against a cancellation.
	if err := ctx.Err(); err != nil {
		return model.Failure(err.Error())
	}
	return work(ctx)
}

// Pending returns the number of submitted items whose callback has not yet
// returned.
func (m *Multiplexer) Pending() int64 {
	return m.pending.Load()
}

// Concurrency returns the configured worker concurrency.
func (m *Multiplexer) Concurrency() int {
	return m.concurrency
}

// Wait blocks until no work is pending.
func (m *Multiplexer) Wait() {
	m.wg.Wait()
}
