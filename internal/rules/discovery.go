package rules

import (
	"log/slog"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/sitediff/internal/model"
)

// Discovery records which candidate rules apply to crawled pages, per tag.
// HandlePage may be called concurrently.
type Discovery struct {
	candidates []*CompiledRegex
	matched    map[string]map[string]bool
	mu         sync.Mutex

	disableOnDiscovery bool
	logger             *slog.Logger
}

// DiscoveryOption configures a Discovery.
type DiscoveryOption func(*Discovery)

// WithDisabledOnDiscovery marks every emitted rule disabled, so it has to be
// enabled by hand before it affects diffing.
func WithDisabledOnDiscovery(disabled bool) DiscoveryOption {
	return func(d *Discovery) {
		d.disableOnDiscovery = disabled
	}
}

// WithDiscoveryLogger sets the logger.
func WithDiscoveryLogger(logger *slog.Logger) DiscoveryOption {
	return func(d *Discovery) {
		d.logger = logger
	}
}

// NewDiscovery compiles candidates and returns a Discovery over them.
// Disabled candidates are ignored. A candidate that fails to compile is an
// error.
func NewDiscovery(candidates []RegexRule, opts ...DiscoveryOption) (*Discovery, error) {
	d := &Discovery{
		matched: make(map[string]map[string]bool),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	seen := make(map[string]bool)
	for _, r := range candidates {
		if r.Disabled || seen[r.Title] {
			continue
		}
		seen[r.Title] = true
		c, err := r.Compile()
		if err != nil {
			return nil, err
		}
		d.candidates = append(d.candidates, c)
	}
	return d, nil
}

// HandlePage tests every candidate against one page fetched under tag.
// rawHTML is the page text and doc its parsed form. A selector-scoped rule
// applies when the outer HTML of some matched element changes under
// substitution; a global rule applies when rawHTML changes.
func (d *Discovery) HandlePage(tag, rawHTML string, doc *goquery.Document) {
	var hits []string
	for _, c := range d.candidates {
		if d.isMatched(tag, c.Title) {
			continue
		}
		if applies(c, rawHTML, doc) {
			hits = append(hits, c.Title)
		}
	}
	if len(hits) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	set, ok := d.matched[tag]
	if !ok {
		set = make(map[string]bool)
		d.matched[tag] = set
	}
	for _, title := range hits {
		if !set[title] {
			d.logger.Debug("rule applies", slog.String("tag", tag), slog.String("rule", title))
		}
		set[title] = true
	}
}

func (d *Discovery) isMatched(tag, title string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.matched[tag][title]
}

func applies(c *CompiledRegex, rawHTML string, doc *goquery.Document) bool {
	if !c.IsScoped() {
		return c.Applies(rawHTML)
	}
	if doc == nil {
		return false
	}
	found := false
	doc.Find(c.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		outer, err := goquery.OuterHtml(s)
		if err != nil {
			return true
		}
		found = c.Applies(outer)
		return !found
	})
	return found
}

// Finalize partitions the matched rules. Rules matched under both tags go to
// the shared scope, the rest stay under their tag. Each scope is sorted by
// title.
func (d *Discovery) Finalize() Tree {
	d.mu.Lock()
	defer d.mu.Unlock()

	before := d.matched[model.TagBefore]
	after := d.matched[model.TagAfter]

	var tree Tree
	for _, c := range d.candidates {
		rule := c.RegexRule
		if d.disableOnDiscovery {
			rule.Disabled = true
		}
		switch {
		case before[c.Title] && after[c.Title]:
			tree.Shared.RegexRules = append(tree.Shared.RegexRules, rule)
		case before[c.Title]:
			tree.Before.RegexRules = append(tree.Before.RegexRules, rule)
		case after[c.Title]:
			tree.After.RegexRules = append(tree.After.RegexRules, rule)
		}
	}
	SortByTitle(tree.Shared.RegexRules)
	SortByTitle(tree.Before.RegexRules)
	SortByTitle(tree.After.RegexRules)
	return tree
}
