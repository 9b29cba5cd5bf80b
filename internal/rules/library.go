package rules

import (
	"embed"
	"fmt"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPreset is always part of the candidate universe.
const DefaultPreset = "default"

//go:embed library/*.yaml
var libraryFS embed.FS

// LibraryFile is one preset of the rule library.
type LibraryFile struct {
	Preset      string      `yaml:"preset"`
	Description string      `yaml:"description"`
	Rules       []RegexRule `yaml:"rules"`
}

// Presets returns the names of the embedded presets, sorted.
func Presets() []string {
	entries, err := libraryFS.ReadDir("library")
	if err != nil {
		return nil
	}
	presets := make([]string, 0, len(entries))
	for _, e := range entries {
		presets = append(presets, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	slices.Sort(presets)
	return presets
}

// LoadPreset reads one preset from the library.
func LoadPreset(preset string) (*LibraryFile, error) {
	data, err := libraryFS.ReadFile("library/" + preset + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(Presets(), ", "))
	}
	var lf LibraryFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse preset %q: %w", preset, err)
	}
	return &lf, nil
}

// LoadLibrary returns the candidate rules for the given presets plus the
// default preset. When two presets define the same title the first one
// loaded wins. The result is sorted by title.
func LoadLibrary(presets ...string) ([]RegexRule, error) {
	names := append([]string{DefaultPreset}, presets...)

	seenPreset := make(map[string]bool)
	seenTitle := make(map[string]bool)
	var candidates []RegexRule
	for _, name := range names {
		if name == "" || seenPreset[name] {
			continue
		}
		seenPreset[name] = true

		lf, err := LoadPreset(name)
		if err != nil {
			return nil, err
		}
		for _, r := range lf.Rules {
			if seenTitle[r.Title] {
				continue
			}
			seenTitle[r.Title] = true
			candidates = append(candidates, r)
		}
	}
	SortByTitle(candidates)
	return candidates, nil
}
