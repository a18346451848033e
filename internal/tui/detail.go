package tui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/brygga/kortlek/internal/domain"
	"github.com/brygga/kortlek/internal/stack"
)

// DetailView renders the expanded card's longform content as a scrollable
// page. Scrolling up past the top is the gesture that closes the page.
type DetailView struct {
	md      longformRenderer
	card    domain.CardData
	visible bool
	scroll  int
}

var _ stack.DetailPresenter = (*DetailView)(nil)

// NewDetailView constructs an empty detail page.
func NewDetailView() *DetailView {
	return &DetailView{}
}

// ShowDetail loads a card into the page and resets scroll to the top.
func (d *DetailView) ShowDetail(card domain.CardData) {
	d.card = card
	d.visible = true
	d.scroll = 0
}

// HideDetail hides the page.
func (d *DetailView) HideDetail() {
	d.visible = false
}

// Visible reports whether the page is showing.
func (d *DetailView) Visible() bool { return d.visible }

// scrollBy moves the page by delta lines. It reports true when an upward
// scroll was attempted while already at the top.
func (d *DetailView) scrollBy(delta int) bool {
	if delta < 0 && d.scroll == 0 {
		return true
	}
	d.scroll += delta
	if d.scroll < 0 {
		d.scroll = 0
	}
	return false
}

// body returns the markdown source for the page: longform when present,
// description otherwise, plus a media listing.
func (d *DetailView) body() string {
	var b strings.Builder
	if strings.TrimSpace(d.card.Longform) != "" {
		b.WriteString(d.card.Longform)
	} else {
		b.WriteString(d.card.Description)
	}
	if len(d.card.Media) > 0 {
		b.WriteString("\n\n---\n")
		for _, m := range d.card.Media {
			caption := m.Caption
			if caption == "" {
				caption = m.Source
			}
			fmt.Fprintf(&b, "\n- %s: %s", m.Kind, caption)
		}
	}
	return b.String()
}

// view renders the page clipped to width and height, offset by the scroll
// position.
func (d *DetailView) view(width, height int) string {
	if !d.visible || width <= 0 || height <= 0 {
		return ""
	}
	lines := d.md.renderLines(d.body(), width-4)

	start := d.scroll
	if start > len(lines) {
		start = len(lines)
	}
	end := start + height
	if end > len(lines) {
		end = len(lines)
	}
	page := strings.Join(lines[start:end], "\n")

	hint := lipgloss.NewStyle().Faint(true).Render("scroll up past the top to close")
	if d.scroll == 0 {
		page = page + "\n\n" + hint
	}
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Render(page)
}
