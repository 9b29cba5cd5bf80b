package crawler

import "errors"

// ErrLinkResolution is logged when an href cannot be resolved against its
// page. The link is skipped and the crawl continues.
var ErrLinkResolution = errors.New("link resolution failed")
