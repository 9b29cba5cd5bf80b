package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/sitediff/internal/cache"
	"github.com/nao1215/sitediff/internal/fetch"
	"github.com/nao1215/sitediff/internal/model"
)

// CrawlInfo describes one newly visited page.
type CrawlInfo struct {
	// RelativePath is the page path relative to the crawl root.
	RelativePath string

	// URI is the absolute page URI, without credentials.
	URI string

	// Result is the fetch result. It is always successful.
	Result model.ReadResult

	// Document is the parsed page.
	Document *goquery.Document

	// Links are the in-scope relative paths found on the page. It is empty
	// for pages at the depth limit.
	Links []string
}

// Crawler walks the pages under one root URI.
type Crawler struct {
	tag     string
	rootURI string
	root    *url.URL
	fetcher *fetch.Fetcher
	mux     *fetch.Multiplexer

	cache  *cache.Cache
	onPage func(CrawlInfo)
	logger *slog.Logger

	// visited holds every relative path passed to a successful Add.
	visited map[string]bool

	// mutex protects visited. Completion callbacks run concurrently.
	mutex sync.Mutex
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithCache stores every successfully fetched page in c under the
// crawler's tag.
func WithCache(c *cache.Cache) Option {
	return func(cr *Crawler) {
		cr.cache = c
	}
}

// WithOnPage sets the callback receiving each visited page. It may be
// called concurrently.
func WithOnPage(fn func(CrawlInfo)) Option {
	return func(cr *Crawler) {
		cr.onPage = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cr *Crawler) {
		cr.logger = logger
	}
}

// New creates a Crawler for tag rooted at rootURI. rootURI may carry
// credentials; they are used for requests but never reported.
func New(tag, rootURI string, fetcher *fetch.Fetcher, mux *fetch.Multiplexer, opts ...Option) (*Crawler, error) {
	rootURI = fetch.DirURI(rootURI)
	root, err := url.Parse(fetch.Redact(rootURI))
	if err != nil {
		return nil, err
	}
	c := &Crawler{
		tag:     tag,
		rootURI: rootURI,
		root:    root,
		fetcher: fetcher,
		mux:     mux,
		logger:  slog.Default(),
		visited: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Tag returns the crawler's tag.
func (c *Crawler) Tag() string {
	return c.tag
}

// Add visits relativePath unless it has been visited already. A page added
// with depth > 0 has its links added with depth-1; a negative depth is a
// no-op. Add does not wait for the fetch; drain the Multiplexer to wait for
// the whole crawl.
func (c *Crawler) Add(ctx context.Context, relativePath string, depth int) {
	if depth < 0 || !c.markVisited(relativePath) {
		return
	}

	uri := fetch.JoinURI(c.rootURI, relativePath)
	c.fetcher.ReadAsync(ctx, uri, c.mux, func(result model.ReadResult) {
		c.handle(ctx, relativePath, fetch.Redact(uri), result, depth)
	})
}

// markVisited records path and reports whether it was new.
func (c *Crawler) markVisited(path string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.visited[path] {
		return false
	}
	c.visited[path] = true
	return true
}

// Visited returns the visited relative paths, sorted.
func (c *Crawler) Visited() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	paths := make([]string, 0, len(c.visited))
	for p := range c.visited {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// handle processes one completed fetch.
func (c *Crawler) handle(ctx context.Context, relativePath, uri string, result model.ReadResult, depth int) {
	if !result.OK() {
		c.logger.Warn("fetch failed", "tag", c.tag, "uri", uri, "error", result.Error)
		return
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, c.tag, relativePath, result); err != nil {
			c.logger.Warn("cache write failed", "tag", c.tag, "path", relativePath, "error", err)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.Content))
	if err != nil {
		c.logger.Warn("failed to parse page", "tag", c.tag, "uri", uri, "error", err)
		return
	}

	var links []string
	if depth > 0 {
		links = c.scopedLinks(uri, doc)
	}

	c.logger.Debug("visited", "tag", c.tag, "path", relativePath, "links", len(links))
	if c.onPage != nil {
		c.onPage(CrawlInfo{
			RelativePath: relativePath,
			URI:          uri,
			Result:       result,
			Document:     doc,
			Links:        links,
		})
	}

	for _, link := range links {
		c.Add(ctx, link, depth-1)
	}
}

// scopedLinks returns the distinct relative paths of the links on the page
// that stay on the root's host and under its path.
func (c *Crawler) scopedLinks(pageURI string, doc *goquery.Document) []string {
	parser, err := NewParser(pageURI)
	if err != nil {
		c.logger.Warn("cannot resolve links", "uri", pageURI, "error", err)
		return nil
	}

	links, errs := parser.Links(doc)
	for _, err := range errs {
		c.logger.Info("skipping link", "uri", pageURI, "error", err)
	}

	seen := make(map[string]bool)
	var out []string
	for _, link := range links {
		rel, ok := c.relativize(link)
		if !ok || seen[rel] {
			continue
		}
		seen[rel] = true
		out = append(out, rel)
	}
	return out
}

// relativize returns link relative to the root, or false when the link
// leaves the root's host or subtree. Scoping is a plain path prefix match.
// The result never starts with "/" and carries no query or fragment, the
// same form as paths files and cache keys.
func (c *Crawler) relativize(link *url.URL) (string, bool) {
	if !strings.EqualFold(link.Host, c.root.Host) {
		return "", false
	}
	rootPath := c.root.EscapedPath()
	if rootPath == "" {
		rootPath = "/"
	}
	path := link.EscapedPath()
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, rootPath) {
		return "", false
	}
	return strings.TrimLeft(strings.TrimPrefix(path, rootPath), "/"), true
}
