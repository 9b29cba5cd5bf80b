package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// TransformKind enumerates the DOM transforms.
type TransformKind string

const (
	// KindRemove deletes matched elements.
	KindRemove TransformKind = "remove"

	// KindUnwrap replaces matched elements with their children.
	KindUnwrap TransformKind = "unwrap"

	// KindRemoveClass strips classes from matched elements.
	KindRemoveClass TransformKind = "remove_class"

	// KindUnwrapRoot collapses one nesting level under the working root.
	KindUnwrapRoot TransformKind = "unwrap_root"
)

// kindAliases maps accepted spellings to kinds.
var kindAliases = map[string]TransformKind{
	"remove":       KindRemove,
	"unwrap":       KindUnwrap,
	"remove_class": KindRemoveClass,
	"removeClass":  KindRemoveClass,
	"unwrap_root":  KindUnwrapRoot,
	"unwrapRoot":   KindUnwrapRoot,
}

// TransformSpec is the declarative form of a DOM transform.
type TransformSpec struct {
	// Type is the transform kind.
	Type string `yaml:"type"`

	// Selector lists CSS selectors; each is evaluated independently.
	Selector StringList `yaml:"selector,omitempty"`

	// Classes lists class names for remove_class.
	Classes StringList `yaml:"class,omitempty"`

	// Disabled transforms are never applied.
	Disabled bool `yaml:"disabled,omitempty"`
}

// DomTransform is a structural edit applied to the working root.
// Implementations are Remove, Unwrap, RemoveClass and UnwrapRoot.
type DomTransform interface {
	// Kind returns the transform kind.
	Kind() TransformKind

	// Apply edits the tree under root in place.
	Apply(root *html.Node) error
}

// Compile validates spec and returns the DomTransform it describes. name is
// used in diagnostics.
func (spec TransformSpec) Compile(name string) (DomTransform, error) {
	if spec.Type == "" {
		return nil, invalidf(name, "missing type")
	}
	kind, ok := kindAliases[spec.Type]
	if !ok {
		return nil, invalidf(name, "unknown transform type %q", spec.Type)
	}
	label := fmt.Sprintf("%s (%s)", name, kind)

	selectors := make([]string, 0, len(spec.Selector))
	for _, s := range spec.Selector {
		if s = strings.TrimSpace(s); s != "" {
			if _, err := cascadia.Compile(s); err != nil {
				return nil, invalidf(label, "bad selector %q: %v", s, err)
			}
			selectors = append(selectors, s)
		}
	}

	switch kind {
	case KindRemove:
		if len(selectors) == 0 {
			return nil, invalidf(label, "missing selector")
		}
		return &Remove{name: label, Selectors: selectors}, nil
	case KindUnwrap:
		if len(selectors) == 0 {
			return nil, invalidf(label, "missing selector")
		}
		return &Unwrap{name: label, Selectors: selectors}, nil
	case KindRemoveClass:
		if len(selectors) == 0 {
			return nil, invalidf(label, "missing selector")
		}
		if len(spec.Classes) == 0 {
			return nil, invalidf(label, "missing class")
		}
		return &RemoveClass{name: label, Selectors: selectors, Classes: slices.Clone(spec.Classes)}, nil
	case KindUnwrapRoot:
		if len(selectors) > 1 {
			return nil, invalidf(label, "at most one selector allowed")
		}
		t := &UnwrapRoot{name: label}
		if len(selectors) == 1 {
			t.Selector = selectors[0]
		}
		return t, nil
	}
	return nil, invalidf(label, "unsupported transform")
}

// selectAll resolves every selector against root, in selector order, and
// returns the matches with duplicates removed. The list is fully resolved
// before any caller mutates the tree.
func selectAll(root *html.Node, selectors []string) []*html.Node {
	sel := goquery.NewDocumentFromNode(root).Selection
	seen := make(map[*html.Node]bool)
	var nodes []*html.Node
	for _, s := range selectors {
		for _, n := range sel.Find(s).Nodes {
			if !seen[n] {
				seen[n] = true
				nodes = append(nodes, n)
			}
		}
	}
	return nodes
}

// Remove deletes every element matched by any of Selectors.
type Remove struct {
	name      string
	Selectors []string
}

// Kind implements DomTransform.
func (t *Remove) Kind() TransformKind { return KindRemove }

// Apply implements DomTransform.
func (t *Remove) Apply(root *html.Node) error {
	for _, n := range selectAll(root, t.Selectors) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	return nil
}

// Unwrap splices the children of each matched element into its parent in
// its place and deletes the element.
type Unwrap struct {
	name      string
	Selectors []string
}

// Kind implements DomTransform.
func (t *Unwrap) Kind() TransformKind { return KindUnwrap }

// Apply implements DomTransform.
func (t *Unwrap) Apply(root *html.Node) error {
	for _, n := range selectAll(root, t.Selectors) {
		parent := n.Parent
		if parent == nil {
			continue
		}
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			n.RemoveChild(c)
			parent.InsertBefore(c, n)
			c = next
		}
		parent.RemoveChild(n)
	}
	return nil
}

// RemoveClass strips Classes from the class attribute of matched elements.
// Other classes keep their order; the attribute is dropped when it ends up
// empty.
type RemoveClass struct {
	name      string
	Selectors []string
	Classes   []string
}

// Kind implements DomTransform.
func (t *RemoveClass) Kind() TransformKind { return KindRemoveClass }

// Apply implements DomTransform.
func (t *RemoveClass) Apply(root *html.Node) error {
	for _, n := range selectAll(root, t.Selectors) {
		for i := 0; i < len(n.Attr); i++ {
			if n.Attr[i].Namespace != "" || n.Attr[i].Key != "class" {
				continue
			}
			kept := slices.DeleteFunc(strings.Fields(n.Attr[i].Val), func(c string) bool {
				return slices.Contains(t.Classes, c)
			})
			if len(kept) == 0 {
				n.Attr = slices.Delete(n.Attr, i, i+1)
				i--
				continue
			}
			n.Attr[i].Val = strings.Join(kept, " ")
		}
	}
	return nil
}

// UnwrapRoot replaces the children of the target node with the children of
// its only element child. The target is the working root, or the single
// element matched by Selector when set. Any other cardinality is an error.
type UnwrapRoot struct {
	name     string
	Selector string
}

// Kind implements DomTransform.
func (t *UnwrapRoot) Kind() TransformKind { return KindUnwrapRoot }

// Apply implements DomTransform.
func (t *UnwrapRoot) Apply(root *html.Node) error {
	target := root
	if t.Selector != "" {
		matches := selectAll(root, []string{t.Selector})
		if len(matches) != 1 {
			return invalidf(t.name, "selector %q matched %d elements, want exactly 1", t.Selector, len(matches))
		}
		target = matches[0]
	}

	var only *html.Node
	count := 0
	for c := target.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		only = c
		count++
	}
	if count != 1 || only.Type != html.ElementNode {
		return invalidf(t.name, "target has %d non-blank children, want exactly 1 element", count)
	}

	for c := target.FirstChild; c != nil; {
		next := c.NextSibling
		target.RemoveChild(c)
		c = next
	}
	for c := only.FirstChild; c != nil; {
		next := c.NextSibling
		only.RemoveChild(c)
		target.AppendChild(c)
		c = next
	}
	return nil
}
