package sanitize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/sitediff/internal/rules"
)

// Sanitizer applies one compiled Profile. It is safe for concurrent use.
type Sanitizer struct {
	selector      string
	removeSpacing bool
	transforms    []rules.DomTransform
	scoped        []*rules.CompiledRegex
	global        []*rules.CompiledRegex
}

// New compiles profile. Disabled transforms and rules are skipped. Any
// malformed definition fails with rules.ErrInvalidSanitization.
func New(profile rules.Profile) (*Sanitizer, error) {
	s := &Sanitizer{
		selector:      strings.TrimSpace(profile.Selector),
		removeSpacing: profile.RemoveSpacing,
	}
	if s.selector != "" {
		if _, err := cascadia.Compile(s.selector); err != nil {
			return nil, fmt.Errorf("%w: selector %q: %v", rules.ErrInvalidSanitization, s.selector, err)
		}
	}

	for i, spec := range profile.DomTransforms {
		if spec.Disabled {
			continue
		}
		t, err := spec.Compile(fmt.Sprintf("domTransforms[%d]", i))
		if err != nil {
			return nil, err
		}
		s.transforms = append(s.transforms, t)
	}

	for _, r := range profile.RegexRules {
		if r.Disabled {
			continue
		}
		c, err := r.Compile()
		if err != nil {
			return nil, err
		}
		if c.IsScoped() {
			s.scoped = append(s.scoped, c)
		} else {
			s.global = append(s.global, c)
		}
	}
	return s, nil
}

// Sanitize returns the normalized form of input.
func (s *Sanitizer) Sanitize(input string) (string, error) {
	if input == "" {
		return "", nil
	}

	root, err := parse(input)
	if err != nil {
		return "", err
	}

	if s.removeSpacing {
		collapseSpacing(root)
	}

	if s.selector != "" {
		root = selectRoot(root, s.selector)
	}

	for _, t := range s.transforms {
		if err := t.Apply(root); err != nil {
			return "", err
		}
	}

	for _, r := range s.scoped {
		if err := substituteElements(root, r); err != nil {
			return "", err
		}
	}

	out := prettyPrint(root)
	for _, r := range s.global {
		out = r.Substitute(out)
	}
	return out, nil
}

var doctypePrefix = regexp.MustCompile(`(?i)^\s*<!doctype`)

// bodyContext is the parent used when parsing fragments.
func bodyContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

// parse returns the working root: the document node for full documents, or
// a synthetic document node holding the fragment.
func parse(input string) (*html.Node, error) {
	if doctypePrefix.MatchString(input) {
		doc, err := html.Parse(strings.NewReader(input))
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		return doc, nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(input), bodyContext())
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

var spaceRun = regexp.MustCompile(` {2,}`)

// collapseSpacing rewrites text nodes only, so attribute values keep their
// spacing.
func collapseSpacing(n *html.Node) {
	if n.Type == html.TextNode {
		n.Data = spaceRun.ReplaceAllString(n.Data, " ")
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collapseSpacing(c)
	}
}

// selectRoot returns a new root holding copies of the elements under root
// that match selector.
func selectRoot(root *html.Node, selector string) *html.Node {
	matched := goquery.NewDocumentFromNode(root).Find(selector).Clone()
	out := &html.Node{Type: html.DocumentNode}
	for _, n := range matched.Nodes {
		out.AppendChild(n)
	}
	return out
}

// substituteElements applies r to the serialized form of each element
// matching its selector and splices the reparsed result back in place.
func substituteElements(root *html.Node, r *rules.CompiledRegex) error {
	matches := goquery.NewDocumentFromNode(root).Find(r.Selector).Nodes
	for _, n := range matches {
		if !attached(n, root) {
			continue
		}
		var sb strings.Builder
		if err := html.Render(&sb, n); err != nil {
			return fmt.Errorf("failed to render %s: %w", n.Data, err)
		}
		outer := sb.String()
		replaced := r.Substitute(outer)
		if replaced == outer {
			continue
		}

		parent := n.Parent
		context := parent
		if context.Type != html.ElementNode {
			context = bodyContext()
		}
		nodes, err := html.ParseFragment(strings.NewReader(replaced), context)
		if err != nil {
			return fmt.Errorf("failed to reparse %s: %w", n.Data, err)
		}
		for _, c := range nodes {
			parent.InsertBefore(c, n)
		}
		parent.RemoveChild(n)
	}
	return nil
}

// attached reports whether n is still part of the tree under root. Nested
// matches are detached once an ancestor has been replaced.
func attached(n, root *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}
