package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// skippedSchemes are href schemes that never point at a crawlable page.
var skippedSchemes = []string{"mailto:", "javascript:", "tel:", "data:"}

// Parser resolves the anchors of one page.
type Parser struct {
	// baseURL is the URI of the page being parsed.
	baseURL *url.URL
}

// NewParser creates a Parser for the page at pageURI.
func NewParser(pageURI string) (*Parser, error) {
	base, err := url.Parse(pageURI)
	if err != nil {
		return nil, fmt.Errorf("invalid page URI: %w", err)
	}
	return &Parser{baseURL: base}, nil
}

// Links returns the absolute form of every anchor href in doc, without
// fragments, in document order. Hrefs that fail to resolve are returned as
// errors wrapping ErrLinkResolution.
func (p *Parser) Links(doc *goquery.Document) ([]*url.URL, []error) {
	var (
		links []*url.URL
		errs  []error
	)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link, err := p.resolveURL(href)
		if err != nil {
			errs = append(errs, err)
			return
		}
		if link != nil {
			links = append(links, link)
		}
	})
	return links, errs
}

// resolveURL resolves href against the page. It returns nil for hrefs that
// do not name another page.
func (p *Parser) resolveURL(href string) (*url.URL, error) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil, nil
	}
	lower := strings.ToLower(href)
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return nil, nil
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrLinkResolution, href, err)
	}
	link := p.baseURL.ResolveReference(ref)
	link.Fragment = ""
	link.RawFragment = ""
	return link, nil
}
