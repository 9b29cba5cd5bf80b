package cache

import (
	"context"
	"encoding/hex"
	"net/http"

	"golang.org/x/crypto/sha3"
)

// LookupResult is what the result webserver needs to serve one cached page.
type LookupResult struct {
	// Content is the cached body. Empty unless Status is 200.
	Content string

	// Status is an HTTP status equivalent: 200 for a cached page, 404 when
	// nothing is cached, 502 when the cached entry records a fetch error.
	Status int

	// Error is the stored fetch error message, if any.
	Error string

	// ETag is a strong validator derived from Content.
	ETag string
}

// Lookup resolves (tag, path) for read-only serving.
func (c *Cache) Lookup(ctx context.Context, tag, path string) (LookupResult, error) {
	result, ok, err := c.Get(ctx, tag, path)
	if err != nil {
		return LookupResult{}, err
	}
	if !ok {
		return LookupResult{Status: http.StatusNotFound}, nil
	}
	if !result.OK() {
		return LookupResult{Status: http.StatusBadGateway, Error: result.Error}, nil
	}
	return LookupResult{
		Content: result.Content,
		Status:  http.StatusOK,
		ETag:    etag(result.Content),
	}, nil
}

// etag returns a quoted SHA3-256 digest of content.
func etag(content string) string {
	sum := sha3.Sum256([]byte(content))
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
