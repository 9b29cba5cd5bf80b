package model

// ReadResult is the outcome of reading a single URI.
// Exactly one of Content and Error is meaningful: when Error is non-empty the
// read failed and Content must be ignored.
//
// ReadResult is a value type and is never mutated after construction.
type ReadResult struct {
	// Content is the decoded body text.
	Content string `json:"content,omitempty"`

	// Error is a human-readable failure message.
	Error string `json:"error,omitempty"`
}

// Success returns a successful ReadResult holding content.
func Success(content string) ReadResult {
	return ReadResult{Content: content}
}

// Failure returns a failed ReadResult holding msg.
// An empty msg is replaced with "unknown error" so the result is never
// mistaken for a success.
func Failure(msg string) ReadResult {
	if msg == "" {
		msg = "unknown error"
	}
	return ReadResult{Error: msg}
}

// OK reports whether the read succeeded.
func (r ReadResult) OK() bool {
	return r.Error == ""
}
