// Package pipeline turns a path list and two base URIs into a Summary.
//
// The Orchestrator fetches every path under both tags, consulting the cache
// first, and reports each path once both of its reads have completed. Every
// completed path is then run through a Pipeline of Steps (sanitize, then
// diff) on its own goroutine. The Runner ties the two together and keeps
// the results in input order.
//
// An ErrInvalidSanitization from any path aborts the run. Fetch failures
// never do; they become error Results.
package pipeline
