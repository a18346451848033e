package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// longformRenderer turns card longform markdown into terminal lines. The
// detail page redraws every animation frame, so both the glamour renderer
// and the rendered lines are cached until the source or wrap width changes.
type longformRenderer struct {
	renderer *glamour.TermRenderer
	width    int

	source string
	lines  []string
}

// renderLines returns the styled lines for the given markdown at the given
// wrap width. On renderer failure the raw source is returned unstyled.
func (r *longformRenderer) renderLines(markdown string, width int) []string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return nil
	}

	wrapWidth := width
	if wrapWidth < 24 {
		wrapWidth = 24
	}
	if r.lines != nil && r.source == markdown && r.width == wrapWidth {
		return r.lines
	}

	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return strings.Split(markdown, "\n")
		}
		r.renderer = renderer
	}
	r.width = wrapWidth
	r.source = markdown

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		r.lines = strings.Split(markdown, "\n")
		return r.lines
	}
	r.lines = strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	return r.lines
}
