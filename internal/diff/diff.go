package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"github.com/nao1215/sitediff/internal/model"
)

// DefaultContext is the number of context lines around each change.
const DefaultContext = 3

// SanitizeFunc normalizes the content fetched under tag.
type SanitizeFunc func(tag, content string) (string, error)

// Compare builds the Result for path. When either side failed to fetch the
// Result carries the error and no diff. An error from sanitize aborts the
// comparison and is returned wrapped with the path.
func Compare(path string, before, after model.ReadResult, sanitize SanitizeFunc) (model.Result, error) {
	if msg := fetchError(before, after); msg != "" {
		return model.Result{Path: path, Error: msg}, nil
	}

	if sanitize == nil {
		sanitize = func(_, content string) (string, error) { return content, nil }
	}
	b, err := sanitize(model.TagBefore, before.Content)
	if err != nil {
		return model.Result{}, fmt.Errorf("%s (%s): %w", path, model.TagBefore, err)
	}
	a, err := sanitize(model.TagAfter, after.Content)
	if err != nil {
		return model.Result{}, fmt.Errorf("%s (%s): %w", path, model.TagAfter, err)
	}

	return model.Result{
		Path:   path,
		Before: b,
		After:  a,
		Diff:   Unified(path, b, a),
		Lines:  Structured(b, a),
	}, nil
}

// fetchError returns the combined fetch error of both sides, or "".
func fetchError(before, after model.ReadResult) string {
	var msgs []string
	if !before.OK() {
		msgs = append(msgs, model.TagBefore+": "+before.Error)
	}
	if !after.OK() {
		msgs = append(msgs, model.TagAfter+": "+after.Error)
	}
	return strings.Join(msgs, "; ")
}

// Unified returns the unified diff of before and after, or "" when they are
// equal.
func Unified(path, before, after string) string {
	if before == after {
		return ""
	}
	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(before),
		B:        splitLinesKeepNL(after),
		FromFile: model.TagBefore + "/" + path,
		ToFile:   model.TagAfter + "/" + path,
		Context:  DefaultContext,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return fmt.Sprintf("--- %s\n+++ %s\n# diff failed: %v\n", u.FromFile, u.ToFile, err)
	}
	return s
}

// Structured returns the changed regions of before and after as lines,
// each region introduced by a hunk line.
func Structured(before, after string) []model.DiffLine {
	if before == after {
		return nil
	}
	a := splitLines(before)
	b := splitLines(after)

	var out []model.DiffLine
	m := difflib.NewMatcher(a, b)
	for _, group := range m.GetGroupedOpCodes(DefaultContext) {
		first, last := group[0], group[len(group)-1]
		out = append(out, model.DiffLine{
			Op:   model.DiffHunk,
			Text: fmt.Sprintf("@@ -%d,%d +%d,%d @@", first.I1+1, last.I2-first.I1, first.J1+1, last.J2-first.J1),
		})
		for _, c := range group {
			if c.Tag == 'e' {
				out = appendLines(out, model.DiffEqual, a[c.I1:c.I2])
				continue
			}
			if c.Tag == 'r' || c.Tag == 'd' {
				out = appendLines(out, model.DiffDelete, a[c.I1:c.I2])
			}
			if c.Tag == 'r' || c.Tag == 'i' {
				out = appendLines(out, model.DiffInsert, b[c.J1:c.J2])
			}
		}
	}
	return out
}

func appendLines(out []model.DiffLine, op model.DiffOp, lines []string) []model.DiffLine {
	for _, l := range lines {
		out = append(out, model.DiffLine{Op: op, Text: l})
	}
	return out
}

// splitLinesKeepNL splits s after each newline.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}

// splitLines splits s into lines without their newlines.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
