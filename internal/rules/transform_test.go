package rules

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// parseBody parses a document and returns its body element.
func parseBody(t *testing.T, body string) *html.Node {
	t.Helper()

	doc, err := html.Parse(strings.NewReader("<html><head></head><body>" + body + "</body></html>"))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.Data == "body" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if b := find(c); b != nil {
				return b
			}
		}
		return nil
	}
	b := find(doc)
	if b == nil {
		t.Fatal("body not found")
	}
	return b
}

// renderChildren serializes the children of n.
func renderChildren(t *testing.T, n *html.Node) string {
	t.Helper()

	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			t.Fatalf("failed to render: %v", err)
		}
	}
	return sb.String()
}

// TestTransformSpecCompile tests transform validation.
func TestTransformSpecCompile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		spec     TransformSpec
		wantKind TransformKind
		wantErr  bool
	}{
		{name: "remove", spec: TransformSpec{Type: "remove", Selector: StringList{"script"}}, wantKind: KindRemove},
		{name: "unwrap", spec: TransformSpec{Type: "unwrap", Selector: StringList{"span"}}, wantKind: KindUnwrap},
		{name: "remove_class", spec: TransformSpec{Type: "remove_class", Selector: StringList{"p"}, Classes: StringList{"x"}}, wantKind: KindRemoveClass},
		{name: "removeClass alias", spec: TransformSpec{Type: "removeClass", Selector: StringList{"p"}, Classes: StringList{"x"}}, wantKind: KindRemoveClass},
		{name: "unwrap_root", spec: TransformSpec{Type: "unwrap_root"}, wantKind: KindUnwrapRoot},
		{name: "unwrapRoot with selector", spec: TransformSpec{Type: "unwrapRoot", Selector: StringList{"main"}}, wantKind: KindUnwrapRoot},
		{name: "missing type", spec: TransformSpec{Selector: StringList{"p"}}, wantErr: true},
		{name: "unknown type", spec: TransformSpec{Type: "explode", Selector: StringList{"p"}}, wantErr: true},
		{name: "remove without selector", spec: TransformSpec{Type: "remove"}, wantErr: true},
		{name: "remove_class without class", spec: TransformSpec{Type: "remove_class", Selector: StringList{"p"}}, wantErr: true},
		{name: "bad selector", spec: TransformSpec{Type: "remove", Selector: StringList{"p[["}}, wantErr: true},
		{name: "unwrap_root with two selectors", spec: TransformSpec{Type: "unwrap_root", Selector: StringList{"a", "b"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr, err := tt.spec.Compile("transform 1")
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSanitization) {
					t.Errorf("expected ErrInvalidSanitization, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tr.Kind() != tt.wantKind {
				t.Errorf("expected kind %s, got %s", tt.wantKind, tr.Kind())
			}
		})
	}
}

// TestTransforms tests applying each transform kind.
func TestTransforms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec TransformSpec
		body string
		want string
	}{
		{
			name: "remove with selector list",
			spec: TransformSpec{Type: "remove", Selector: StringList{"script", ".ad"}},
			body: `<p>a</p><script>x()</script><div class="ad">buy</div>`,
			want: `<p>a</p>`,
		},
		{
			name: "remove nested matches",
			spec: TransformSpec{Type: "remove", Selector: StringList{"div"}},
			body: `<div><div>inner</div></div><p>keep</p>`,
			want: `<p>keep</p>`,
		},
		{
			name: "unwrap splices children in place",
			spec: TransformSpec{Type: "unwrap", Selector: StringList{"span"}},
			body: `<p>a<span>b<em>c</em></span>d</p>`,
			want: `<p>ab<em>c</em>d</p>`,
		},
		{
			name: "unwrap nested matches",
			spec: TransformSpec{Type: "unwrap", Selector: StringList{"span"}},
			body: `<p><span><span>x</span></span></p>`,
			want: `<p>x</p>`,
		},
		{
			name: "remove_class keeps other classes",
			spec: TransformSpec{Type: "remove_class", Selector: StringList{"p"}, Classes: StringList{"foo"}},
			body: `<p class="foo bar" id="x">t</p>`,
			want: `<p class="bar" id="x">t</p>`,
		},
		{
			name: "remove_class drops empty attribute",
			spec: TransformSpec{Type: "remove_class", Selector: StringList{"p"}, Classes: StringList{"foo", "bar"}},
			body: `<p class="foo bar">t</p>`,
			want: `<p>t</p>`,
		},
		{
			name: "unwrap_root collapses one level",
			spec: TransformSpec{Type: "unwrap_root"},
			body: `<div><p>a</p><span>b</span></div>`,
			want: `<p>a</p><span>b</span>`,
		},
		{
			name: "unwrap_root with selector",
			spec: TransformSpec{Type: "unwrap_root", Selector: StringList{"main"}},
			body: `<main><section><p>a</p></section></main>`,
			want: `<main><p>a</p></main>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr, err := tt.spec.Compile("transform")
			if err != nil {
				t.Fatalf("failed to compile: %v", err)
			}
			body := parseBody(t, tt.body)
			if err := tr.Apply(body); err != nil {
				t.Fatalf("failed to apply: %v", err)
			}
			if got := renderChildren(t, body); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestUnwrapRootCardinality tests that unwrap_root fails unless the target
// has exactly one element child, ignoring blank text only.
func TestUnwrapRootCardinality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		selector StringList
		body     string
	}{
		{name: "no children", body: ``},
		{name: "text only", body: `just text`},
		{name: "two children", body: `<div></div><p></p>`},
		{name: "element with trailing text and comment", body: `<div><p>a</p></div>important tail text<!--c-->`},
		{name: "element with comment", body: `<!--generated--><div><p>a</p></div>`},
		{name: "selector matches nothing", selector: StringList{"main"}, body: `<div><p>a</p></div>`},
		{name: "selector matches twice", selector: StringList{"div"}, body: `<div><p>a</p></div><div><p>b</p></div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr, err := TransformSpec{Type: "unwrap_root", Selector: tt.selector}.Compile("transform")
			if err != nil {
				t.Fatalf("failed to compile: %v", err)
			}
			body := parseBody(t, tt.body)
			if err := tr.Apply(body); !errors.Is(err, ErrInvalidSanitization) {
				t.Errorf("expected ErrInvalidSanitization, got %v", err)
			}
		})
	}
}
