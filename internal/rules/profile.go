package rules

import (
	"cmp"
	"slices"

	"github.com/nao1215/sitediff/internal/model"
)

// Profile is the sanitization configuration for one scope.
type Profile struct {
	// Selector, when set, narrows the document to the matched elements.
	Selector string `yaml:"selector,omitempty"`

	// RemoveSpacing collapses runs of spaces inside text nodes.
	RemoveSpacing bool `yaml:"removeSpacing,omitempty"`

	// DomTransforms are applied in declared order.
	DomTransforms []TransformSpec `yaml:"domTransforms,omitempty"`

	// RegexRules are applied in declared order.
	RegexRules []RegexRule `yaml:"regexRules,omitempty"`
}

// IsZero reports whether the profile configures nothing.
func (p Profile) IsZero() bool {
	return p.Selector == "" && !p.RemoveSpacing && len(p.DomTransforms) == 0 && len(p.RegexRules) == 0
}

// Tree is the full sanitization configuration: a shared scope plus one scope
// per tag.
type Tree struct {
	Shared Profile `yaml:"shared,omitempty"`
	Before Profile `yaml:"before,omitempty"`
	After  Profile `yaml:"after,omitempty"`
}

// Scope returns the tag-specific profile for tag. Unknown tags get an empty
// profile.
func (t Tree) Scope(tag string) Profile {
	switch tag {
	case model.TagBefore:
		return t.Before
	case model.TagAfter:
		return t.After
	default:
		return Profile{}
	}
}

// For returns the effective profile for tag: the tag selector overrides the
// shared one, RemoveSpacing is enabled if either scope enables it, and shared
// transforms and rules run before the tag's own.
func (t Tree) For(tag string) Profile {
	scoped := t.Scope(tag)
	merged := Profile{
		Selector:      t.Shared.Selector,
		RemoveSpacing: t.Shared.RemoveSpacing || scoped.RemoveSpacing,
	}
	if scoped.Selector != "" {
		merged.Selector = scoped.Selector
	}
	merged.DomTransforms = append(slices.Clone(t.Shared.DomTransforms), scoped.DomTransforms...)
	merged.RegexRules = append(slices.Clone(t.Shared.RegexRules), scoped.RegexRules...)
	return merged
}

// SortByTitle sorts rules by title in place. Ties keep their relative order.
func SortByTitle(rules []RegexRule) {
	slices.SortStableFunc(rules, func(a, b RegexRule) int {
		return cmp.Compare(a.Title, b.Title)
	})
}
