// Package rules defines sanitization rules and discovers which of them apply
// to a given site.
//
// # Rule kinds
//
// A RegexRule is a pattern, a substitution and an optional CSS selector.
// Without a selector it rewrites the fully serialized document; with one it
// rewrites the serialized form of each matched element.
//
// A DomTransform is one of a closed set of structural edits: remove, unwrap,
// remove_class and unwrap_root. TransformSpec is the declarative form read
// from configuration; Compile turns it into a DomTransform or fails with
// ErrInvalidSanitization, so an unknown kind is a load-time error.
//
// # Discovery
//
// The rule library is pure data (embedded YAML, one file per preset). A
// Discovery observes crawled pages per tag, records which candidate rules
// actually change something, and Finalize partitions the matches into a Tree:
// rules matched on both sides are hoisted to Shared, the rest stay under
// their tag. Each scope is sorted by title.
package rules
