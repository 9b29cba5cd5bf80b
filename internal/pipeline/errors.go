package pipeline

import "errors"

// ErrInvalidBases is returned when the base URIs do not name exactly the
// before and after tags.
var ErrInvalidBases = errors.New("base URIs must name exactly the before and after tags")
