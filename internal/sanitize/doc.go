// Package sanitize normalizes HTML so that two renderings of the same page
// can be compared line by line.
//
// Sanitize runs a fixed sequence of steps:
//
//  1. Empty input yields empty output.
//  2. The input is parsed as a document when it starts with a doctype and
//     as a body fragment otherwise.
//  3. With RemoveSpacing, runs of spaces in text nodes collapse to one.
//  4. With a Selector, the working tree is replaced by copies of the
//     matched elements.
//  5. DOM transforms run in declared order.
//  6. Selector-scoped regex rules rewrite matched elements in place.
//  7. The tree is pretty-printed with two-space indentation and no blank
//     lines, then global regex rules run over the text in declared order.
package sanitize
