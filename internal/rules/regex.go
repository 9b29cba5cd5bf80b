package rules

import (
	"regexp"

	"github.com/andybalholm/cascadia"
)

// RegexRule rewrites text matching Pattern with Substitution.
type RegexRule struct {
	// Title names the rule. Rules are ordered by title within a scope.
	Title string `yaml:"title"`

	// Pattern is a Go regular expression (RE2 syntax).
	Pattern string `yaml:"pattern"`

	// Substitution replaces each match. It may reference groups as $1,
	// ${1}, ${name} or \1.
	Substitution string `yaml:"substitution"`

	// Selector, when set, limits the rule to elements matching this CSS
	// selector.
	Selector string `yaml:"selector,omitempty"`

	// Disabled rules are kept in configuration but never applied.
	Disabled bool `yaml:"disabled,omitempty"`
}

// CompiledRegex is a RegexRule ready to apply. It is safe for concurrent use.
type CompiledRegex struct {
	RegexRule

	re          *regexp.Regexp
	replacement string
}

// backslashRef matches \1 style group references.
var backslashRef = regexp.MustCompile(`\\(\d+)`)

// Compile validates the rule and compiles its pattern.
func (r RegexRule) Compile() (*CompiledRegex, error) {
	name := r.name()
	if r.Pattern == "" {
		return nil, invalidf(name, "missing pattern")
	}
	if r.Selector != "" {
		if _, err := cascadia.Compile(r.Selector); err != nil {
			return nil, invalidf(name, "bad selector %q: %v", r.Selector, err)
		}
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return nil, invalidf(name, "bad pattern: %v", err)
	}
	return &CompiledRegex{
		RegexRule:   r,
		re:          re,
		replacement: backslashRef.ReplaceAllString(r.Substitution, `$${$1}`),
	}, nil
}

// name returns a label for diagnostics.
func (r RegexRule) name() string {
	if r.Title != "" {
		return "regex rule " + `"` + r.Title + `"`
	}
	return "regex rule /" + r.Pattern + "/"
}

// Substitute returns s with every match replaced.
func (c *CompiledRegex) Substitute(s string) string {
	return c.re.ReplaceAllString(s, c.replacement)
}

// Applies reports whether substituting s changes it. A substitution that
// maps text to itself does not apply.
func (c *CompiledRegex) Applies(s string) bool {
	return c.Substitute(s) != s
}

// IsScoped reports whether the rule targets selected elements rather than
// the whole document.
func (c *CompiledRegex) IsScoped() bool {
	return c.Selector != ""
}
