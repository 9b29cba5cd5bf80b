package fetch

import "errors"

// ErrTooManyRedirects is reported when a remote read exceeds maxRedirects.
var ErrTooManyRedirects = errors.New("stopped after too many redirects")
