package model

import "sort"

// Status classifies a Result.
type Status string

const (
	// StatusSuccess means both sides were fetched and the sanitized content is identical.
	StatusSuccess Status = "success"

	// StatusFailure means both sides were fetched and the sanitized content differs.
	StatusFailure Status = "failure"

	// StatusError means at least one side could not be fetched.
	StatusError Status = "error"
)

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// DiffOp is the kind of a structured diff line.
type DiffOp string

const (
	// DiffEqual is a context line present on both sides.
	DiffEqual DiffOp = "equal"

	// DiffInsert is a line only present on the after side.
	DiffInsert DiffOp = "insert"

	// DiffDelete is a line only present on the before side.
	DiffDelete DiffOp = "delete"

	// DiffHunk separates groups of changes.
	DiffHunk DiffOp = "hunk"
)

// DiffLine is one line of the structured diff rendering consumed by the
// report layer.
type DiffLine struct {
	Op   DiffOp `json:"op"`
	Text string `json:"text"`
}

// Result is the comparison outcome for one path.
//
// Status is never stored; it is derived from Error and Diff so that a Result
// cannot carry an inconsistent classification.
type Result struct {
	// Path is the relative path shared by both origins.
	Path string `json:"path"`

	// Before is the sanitized content of the before side.
	Before string `json:"before,omitempty"`

	// After is the sanitized content of the after side.
	After string `json:"after,omitempty"`

	// Error is set when either side failed to fetch.
	Error string `json:"error,omitempty"`

	// Diff is the unified diff text; empty when both sides are identical.
	Diff string `json:"diff,omitempty"`

	// Lines is the structured diff for the report layer.
	Lines []DiffLine `json:"lines,omitempty"`
}

// Status derives the classification of r.
func (r Result) Status() Status {
	switch {
	case r.Error != "":
		return StatusError
	case r.Diff == "":
		return StatusSuccess
	default:
		return StatusFailure
	}
}

// Summary is the ordered list of Results produced by one run.
type Summary struct {
	Results []Result `json:"results"`
}

// NewSummary creates a Summary over results.
func NewSummary(results []Result) *Summary {
	return &Summary{Results: results}
}

// FailingPaths returns the paths whose status is not success, sorted.
func (s *Summary) FailingPaths() []string {
	paths := make([]string, 0)
	for _, r := range s.Results {
		if r.Status() != StatusSuccess {
			paths = append(paths, r.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Count returns the number of results with the given status.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status() == status {
			n++
		}
	}
	return n
}

// Passed reports whether every result succeeded.
func (s *Summary) Passed() bool {
	return len(s.FailingPaths()) == 0
}
