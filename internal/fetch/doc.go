// Package fetch reads pages for sitediff from the local filesystem or over
// HTTP(S).
//
// # Components
//
//   - Fetcher: one read operation for local paths and remote URIs. Failures
//     of any kind are captured in model.ReadResult.Error and never returned
//     as Go errors.
//   - Multiplexer: drives many remote reads concurrently under a bounded
//     worker concurrency. Submit registers a completion callback and returns
//     immediately; Wait drains until no work is pending, including work that
//     callbacks enqueue while the drain is running.
//
// Local reads bypass the Multiplexer and run synchronously on the caller's
// goroutine.
//
// # Usage
//
//	f := fetch.NewFetcher(fetch.WithTimeout(3 * time.Second))
//	mux := fetch.NewMultiplexer(ctx, 3)
//	f.ReadAsync(ctx, "https://user:pw@example.com/Hash.html", mux, func(r model.ReadResult) {
//	    // runs on a worker goroutine
//	})
//	mux.Wait()
package fetch
