package rules

import (
	"errors"
	"fmt"
)

// ErrInvalidSanitization marks a malformed rule definition or a violated
// structural precondition. It signals a configuration defect and aborts the
// current sanitization.
var ErrInvalidSanitization = errors.New("invalid sanitization")

// invalidf returns an error wrapping ErrInvalidSanitization that names rule.
func invalidf(rule, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidSanitization, rule, fmt.Sprintf(format, args...))
}
