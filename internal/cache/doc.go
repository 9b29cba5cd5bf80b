// Package cache provides the persistent, tag-gated page cache for sitediff.
//
// Entries are keyed by (tag, path) and hold a JSON-encoded model.ReadResult.
// Every tag also has a sentinel entry written on its first successful Set,
// so "has this tag ever been written" is a single key lookup.
//
// Reads and writes are gated per run: Get only returns data for tags enabled
// with EnableRead, and Set only persists for tags enabled with EnableWrite.
// A run can therefore ignore stale content without deleting it.
//
// The store is a single SQLite file (via modernc.org/sqlite, no CGO). It is
// opened once per process and is not meant to be shared between processes.
package cache
