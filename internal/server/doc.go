// Package server serves cached pages over HTTP, read-only.
//
// GET /{tag}/{path...} answers from the cache: 200 with the stored body,
// 404 when the tag is unreadable or nothing is stored, and 502 when the
// stored entry records a fetch error. Responses carry an ETag and honor
// If-None-Match.
package server
