package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

const indentUnit = "  "

// voidElements never have content or an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// verbatimElements are written as-is, content included.
var verbatimElements = map[string]bool{
	"script": true, "style": true, "pre": true, "textarea": true,
	"xmp": true, "iframe": true, "noembed": true, "noframes": true,
	"plaintext": true,
}

// prettyPrint serializes root one node per line with two-space
// indentation. Elements holding only text stay on one line. The root itself
// is not written, and blank lines are dropped.
func prettyPrint(root *html.Node) string {
	p := &printer{}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		p.node(c, 0)
	}

	lines := strings.Split(p.sb.String(), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, strings.TrimRight(l, " \t\r"))
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n") + "\n"
}

type printer struct {
	sb strings.Builder
}

func (p *printer) line(depth int, s string) {
	p.sb.WriteString(strings.Repeat(indentUnit, depth))
	p.sb.WriteString(s)
	p.sb.WriteByte('\n')
}

func (p *printer) node(n *html.Node, depth int) {
	switch n.Type {
	case html.DoctypeNode:
		p.line(depth, "<!DOCTYPE "+n.Data+">")
	case html.CommentNode:
		p.line(depth, "<!--"+n.Data+"-->")
	case html.TextNode:
		for _, l := range strings.Split(n.Data, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				p.line(depth, html.EscapeString(l))
			}
		}
	case html.ElementNode:
		p.element(n, depth)
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.node(c, depth)
		}
	}
}

func (p *printer) element(n *html.Node, depth int) {
	if verbatimElements[n.Data] {
		var sb strings.Builder
		if err := html.Render(&sb, n); err == nil {
			p.line(depth, sb.String())
			return
		}
	}

	open := startTag(n)
	if voidElements[n.Data] {
		p.line(depth, open)
		return
	}
	end := "</" + n.Data + ">"

	if text, ok := inlineText(n); ok {
		p.line(depth, open+html.EscapeString(text)+end)
		return
	}

	p.line(depth, open)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.node(c, depth+1)
	}
	p.line(depth, end)
}

// inlineText returns the trimmed text of n when its children are text
// nodes that fit on one line.
func inlineText(n *html.Node) (string, bool) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			return "", false
		}
		sb.WriteString(c.Data)
	}
	text := strings.TrimSpace(sb.String())
	if strings.Contains(text, "\n") {
		return "", false
	}
	return text, true
}

func startTag(n *html.Node) string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(n.Data)
	for _, a := range n.Attr {
		sb.WriteByte(' ')
		if a.Namespace != "" {
			sb.WriteString(a.Namespace)
			sb.WriteByte(':')
		}
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.Val))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	return sb.String()
}
