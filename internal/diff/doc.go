// Package diff compares sanitized before and after pages.
//
// Compare classifies one path: a fetch error on either side yields an error
// Result without diffing, otherwise the unified diff (three lines of context,
// github.com/pmezard/go-difflib) decides between success and failure. The
// same comparison is also rendered as structured lines for reports and as
// ANSI-colored text for terminals.
package diff
