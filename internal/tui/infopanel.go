package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/harmonica"

	"github.com/brygga/kortlek/internal/stack"
)

const (
	infoSpringFrequency = 6.5
	infoSpringDamping   = 0.85
)

// InfoPanel shows the top card's title and description under the stack and
// slides in and out on a spring.
type InfoPanel struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64

	title string
	desc  string
}

var _ stack.InfoPanel = (*InfoPanel)(nil)

// NewInfoPanel constructs an info panel animated at the given frame rate.
func NewInfoPanel(fps int) *InfoPanel {
	if fps <= 0 {
		fps = 60
	}
	return &InfoPanel{
		spring: harmonica.NewSpring(harmonica.FPS(fps), infoSpringFrequency, infoSpringDamping),
	}
}

// SetContent replaces the displayed title and description.
func (p *InfoPanel) SetContent(title, desc string) {
	p.title = title
	p.desc = desc
}

// Show slides the panel in.
func (p *InfoPanel) Show() { p.target = 1 }

// Hide slides the panel out.
func (p *InfoPanel) Hide() { p.target = 0 }

// update advances the slide spring one frame.
func (p *InfoPanel) update() {
	p.pos, p.vel = p.spring.Update(p.pos, p.vel, p.target)
}

// visible reports whether anything of the panel is on screen.
func (p *InfoPanel) visible() bool {
	return p.pos > 0.02 && strings.TrimSpace(p.title) != ""
}

// slide returns how many of maxRows the panel is currently pushed down,
// zero when fully shown.
func (p *InfoPanel) slide(maxRows int) int {
	hidden := int((1 - p.pos) * float64(maxRows))
	if hidden < 0 {
		hidden = 0
	}
	if hidden > maxRows {
		hidden = maxRows
	}
	return hidden
}

// view renders the panel content at the given width.
func (p *InfoPanel) view(width int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	if p.pos < 0.6 {
		titleStyle = titleStyle.Faint(true)
		descStyle = descStyle.Faint(true)
	}
	block := titleStyle.Render(p.title)
	if strings.TrimSpace(p.desc) != "" {
		block += "\n" + descStyle.Render(p.desc)
	}
	return lipgloss.NewStyle().Width(max(0, width)).Align(lipgloss.Center).Render(block)
}
