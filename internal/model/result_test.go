package model

import (
	"reflect"
	"testing"
)

// TestResultStatus tests that Status is derived from Error and Diff.
func TestResultStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result Result
		want   Status
	}{
		{
			name:   "error wins over diff",
			result: Result{Path: "a.html", Error: "HTTP 500 Internal Server Error", Diff: "+x"},
			want:   StatusError,
		},
		{
			name:   "empty diff is success",
			result: Result{Path: "a.html", Before: "x", After: "x"},
			want:   StatusSuccess,
		},
		{
			name:   "non-empty diff is failure",
			result: Result{Path: "a.html", Diff: "@@ -1 +1 @@\n-a\n+b\n"},
			want:   StatusFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.result.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestSummary tests the aggregate helpers on Summary.
func TestSummary(t *testing.T) {
	t.Parallel()

	summary := NewSummary([]Result{
		{Path: "z.html", Diff: "+a"},
		{Path: "ok.html"},
		{Path: "b.html", Error: "timeout"},
	})

	t.Run("failing paths are sorted", func(t *testing.T) {
		t.Parallel()
		want := []string{"b.html", "z.html"}
		if got := summary.FailingPaths(); !reflect.DeepEqual(got, want) {
			t.Errorf("FailingPaths() = %v, want %v", got, want)
		}
	})

	t.Run("counts by status", func(t *testing.T) {
		t.Parallel()
		if got := summary.Count(StatusSuccess); got != 1 {
			t.Errorf("success count = %d, want 1", got)
		}
		if got := summary.Count(StatusFailure); got != 1 {
			t.Errorf("failure count = %d, want 1", got)
		}
		if got := summary.Count(StatusError); got != 1 {
			t.Errorf("error count = %d, want 1", got)
		}
	})

	t.Run("passed only when nothing fails", func(t *testing.T) {
		t.Parallel()
		if summary.Passed() {
			t.Error("expected summary with failures to not pass")
		}
		if !NewSummary([]Result{{Path: "ok.html"}}).Passed() {
			t.Error("expected all-success summary to pass")
		}
	})
}

// TestReadResult tests ReadResult constructors.
func TestReadResult(t *testing.T) {
	t.Parallel()

	if r := Success("<p>hi</p>"); !r.OK() || r.Content != "<p>hi</p>" {
		t.Errorf("Success() = %+v", r)
	}
	if r := Failure("boom"); r.OK() || r.Error != "boom" {
		t.Errorf("Failure() = %+v", r)
	}
	if r := Failure(""); r.OK() {
		t.Error("Failure with empty message must not be OK")
	}
}

// TestTags tests tag helpers.
func TestTags(t *testing.T) {
	t.Parallel()

	if !reflect.DeepEqual(Tags(), []string{TagBefore, TagAfter}) {
		t.Errorf("unexpected Tags(): %v", Tags())
	}
	if IsValidTag("sideways") {
		t.Error("unexpected valid tag")
	}
}
