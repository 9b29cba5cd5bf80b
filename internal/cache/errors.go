package cache

import "errors"

// ErrCacheUnavailable is returned when the cache file cannot be opened or
// initialized. It is fatal at startup.
var ErrCacheUnavailable = errors.New("cache unavailable")
