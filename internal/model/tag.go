package model

// Tag names the logical side of a comparison.
const (
	// TagBefore is the origin being migrated away from.
	TagBefore = "before"

	// TagAfter is the origin being migrated to.
	TagAfter = "after"
)

// Tags returns both tags in their canonical order.
func Tags() []string {
	return []string{TagBefore, TagAfter}
}

// IsValidTag reports whether tag is one of the known tags.
func IsValidTag(tag string) bool {
	return tag == TagBefore || tag == TagAfter
}
