// Package model defines the core data structures shared by sitediff packages.
//
// This package contains the following main types:
//   - ReadResult: the outcome of reading one URI (content or error)
//   - Result: the per-path comparison outcome with a derived Status
//   - Summary: the ordered list of Results handed to report writers
//
// Models live in their own package so that fetch, cache, pipeline and report
// can share them without import cycles. All types are JSON-serializable; the
// cache stores ReadResult as JSON.
package model
