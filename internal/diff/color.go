package diff

import (
	"strings"

	"github.com/fatih/color"
)

// Colorizer renders unified diffs with ANSI colors.
type Colorizer struct {
	header *color.Color
	hunk   *color.Color
	add    *color.Color
	del    *color.Color
}

// NewColorizer creates a Colorizer. With enabled false the output is plain
// text.
func NewColorizer(enabled bool) *Colorizer {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &Colorizer{
		header: mk(color.Bold),
		hunk:   mk(color.FgCyan),
		add:    mk(color.FgGreen),
		del:    mk(color.FgRed),
	}
}

// Colorize colors each line of a unified diff by its prefix.
func (c *Colorizer) Colorize(diff string) string {
	if diff == "" {
		return ""
	}
	lines := strings.SplitAfter(diff, "\n")
	var sb strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		body, nl := strings.CutSuffix(l, "\n")
		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			sb.WriteString(c.header.Sprint(body))
		case strings.HasPrefix(body, "@@"):
			sb.WriteString(c.hunk.Sprint(body))
		case strings.HasPrefix(body, "+"):
			sb.WriteString(c.add.Sprint(body))
		case strings.HasPrefix(body, "-"):
			sb.WriteString(c.del.Sprint(body))
		default:
			sb.WriteString(body)
		}
		if nl {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Colorize colors diff when the terminal supports it.
func Colorize(diff string) string {
	return NewColorizer(!color.NoColor).Colorize(diff)
}
