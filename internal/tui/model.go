package tui

import (
	"context"
	"math"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/brygga/kortlek/internal/domain"
	"github.com/brygga/kortlek/internal/stack"
)

// Service represents service data used by this package.
type Service interface {
	TipSeen(context.Context) (bool, error)
	CompleteTip(context.Context) error
}

// Terminal cells are mapped onto the engine's virtual pixel plane at a fixed
// density; a cell is taller than it is wide, so the two axes differ.
const (
	cellPxX = 10.0
	cellPxY = 20.0
)

const (
	defaultFrameRate  = 60
	defaultTipTimeout = 8 * time.Second
	resizeDebounce    = 120 * time.Millisecond

	minCardCols = 6
	minCardRows = 3
)

// frameMsg carries the wall-clock time of one animation frame.
type frameMsg time.Time

// resizeSettledMsg applies a debounced window resize; stale generations are
// ignored.
type resizeSettledMsg struct {
	gen int
}

// tipLoadedMsg reports the persisted onboarding-tip flag.
type tipLoadedMsg struct {
	seen bool
	err  error
}

// tipSavedMsg reports the result of persisting the tip flag.
type tipSavedMsg struct {
	err error
}

// Model represents model data used by this package.
type Model struct {
	engine *stack.Controller
	detail *DetailView
	info   *InfoPanel
	svc    Service

	ready  bool
	width  int
	height int
	err    error

	help help.Model
	keys keyMap

	frameRate  int
	tipTimeout time.Duration
	recorder   stack.Recorder

	lastFrame time.Time

	// Debounced resize; only the latest generation is applied.
	resizeGen  int
	pendingW   int
	pendingH   int
	hasPending bool

	// Pointer capture for the gesture in flight.
	captured      *stack.Card
	capturedClone *stack.Clone
	pressX        float64
	pressY        float64
	cloneDragged  bool

	showTip      bool
	tipRemaining time.Duration

	writeClipboard func(string) error
}

// NewModel builds the widget model and its engine from a validated stack
// config and deck.
func NewModel(cfg stack.Config, deck []domain.CardData, svc Service, opts ...Option) (Model, error) {
	m := Model{
		svc:            svc,
		help:           help.New(),
		keys:           newKeyMap(DefaultKeyBindings()),
		frameRate:      defaultFrameRate,
		tipTimeout:     defaultTipTimeout,
		writeClipboard: clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.detail = NewDetailView()
	m.info = NewInfoPanel(m.frameRate)

	engineOpts := []stack.Option{
		stack.WithPresenter(m.detail),
		stack.WithInfoPanel(m.info),
	}
	if m.recorder != nil {
		engineOpts = append(engineOpts, stack.WithRecorder(m.recorder))
	}
	engine, err := stack.NewController(cfg, deck, engineOpts...)
	if err != nil {
		return Model{}, err
	}
	m.engine = engine
	return m, nil
}

// Engine exposes the animation engine, mainly for tests.
func (m Model) Engine() *stack.Controller { return m.engine }

// Init handles init.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadTip, m.frameCmd())
}

func (m Model) frameCmd() tea.Cmd {
	interval := time.Second / time.Duration(m.frameRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) loadTip() tea.Msg {
	if m.svc == nil {
		return tipLoadedMsg{seen: true}
	}
	seen, err := m.svc.TipSeen(context.Background())
	return tipLoadedMsg{seen: seen, err: err}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case resizeSettledMsg:
		if msg.gen == m.resizeGen && m.hasPending {
			m.applyResize(m.pendingW, m.pendingH)
			m.hasPending = false
		}
		return m, nil

	case frameMsg:
		return m.handleFrame(time.Time(msg))

	case tipLoadedMsg:
		if msg.err == nil && !msg.seen {
			m.showTip = true
			m.tipRemaining = m.tipTimeout
		}
		return m, nil

	case tipSavedMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseDown(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseUp(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		return m, nil
	}
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	first := !m.ready
	m.ready = true
	m.width = msg.Width
	m.height = msg.Height
	if first {
		m.applyResize(msg.Width, msg.Height)
		return m, nil
	}
	// Terminal resizes arrive in bursts; recompute layout only once the
	// size settles.
	m.resizeGen++
	m.pendingW = msg.Width
	m.pendingH = msg.Height
	m.hasPending = true
	gen := m.resizeGen
	return m, tea.Tick(resizeDebounce, func(time.Time) tea.Msg {
		return resizeSettledMsg{gen: gen}
	})
}

func (m *Model) applyResize(w, h int) {
	m.engine.Resize(float64(w)*cellPxX, float64(h)*cellPxY)
}

func (m Model) handleFrame(now time.Time) (tea.Model, tea.Cmd) {
	dt := time.Duration(0)
	if !m.lastFrame.IsZero() {
		dt = now.Sub(m.lastFrame)
	}
	m.lastFrame = now

	m.engine.Tick(dt)
	m.info.update()

	var cmd tea.Cmd
	if m.showTip {
		m.tipRemaining -= dt
		if m.tipRemaining <= 0 {
			cmd = m.dismissTip()
		}
	}
	return m, tea.Batch(m.frameCmd(), cmd)
}

// dismissTip hides the onboarding hint and persists the flag.
func (m *Model) dismissTip() tea.Cmd {
	if !m.showTip {
		return nil
	}
	m.showTip = false
	if m.svc == nil {
		return nil
	}
	svc := m.svc
	return func() tea.Msg {
		return tipSavedMsg{err: svc.CompleteTip(context.Background())}
	}
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.toggleView):
		m.engine.ToggleViewMode()
		return m, nil

	case key.Matches(msg, m.keys.back):
		if m.engine.Mode() == stack.ModeExpanded {
			m.engine.CollapseCard()
		}
		return m, nil

	case key.Matches(msg, m.keys.copyText):
		if m.engine.Mode() != stack.ModeExpanded {
			return m, nil
		}
		card := m.engine.Expanded()
		if card == nil {
			return m, nil
		}
		text := card.Data.Longform
		if strings.TrimSpace(text) == "" {
			text = card.Data.Description
		}
		if err := m.writeClipboard(text); err != nil {
			m.err = err
		}
		return m, nil

	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	default:
		return m, nil
	}
}

// pointerAt converts a cell coordinate into the engine's centered virtual
// pixel plane.
func (m Model) pointerAt(x, y int) stack.Pointer {
	vw := float64(m.width) * cellPxX
	vh := float64(m.height) * cellPxY
	return stack.Pointer{
		X: (float64(x)+0.5)*cellPxX - vw/2,
		Y: (float64(y)+0.5)*cellPxY - vh/2,
	}
}

func (m Model) handleMouseDown(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.engine.Mode() == stack.ModeExpanded {
		return m, nil
	}
	p := m.pointerAt(msg.X, msg.Y)
	m.pressX, m.pressY = p.X, p.Y
	card, clone := m.engine.HitTest(p.X, p.Y)
	switch {
	case card != nil:
		m.captured = card
		m.capturedClone = nil
		card.PointerDown(p)
	case clone != nil:
		m.capturedClone = clone
		m.captured = nil
		m.cloneDragged = false
	default:
		m.captured = nil
		m.capturedClone = nil
	}
	return m, nil
}

func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	p := m.pointerAt(msg.X, msg.Y)
	var cmd tea.Cmd
	switch {
	case m.captured != nil:
		m.captured.PointerMove(p)
		if m.showTip && m.pastDragThreshold(p) {
			cmd = m.dismissTip()
		}
	case m.capturedClone != nil:
		if m.pastDragThreshold(p) {
			m.cloneDragged = true
		}
	default:
		m.engine.Hover(p.X, p.Y)
	}
	return m, cmd
}

func (m Model) handleMouseUp(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	p := m.pointerAt(msg.X, msg.Y)
	switch {
	case m.captured != nil:
		m.captured.PointerUp(p)
		m.captured = nil
	case m.capturedClone != nil:
		if !m.cloneDragged {
			m.engine.ExpandFromClone(m.capturedClone)
		}
		m.capturedClone = nil
	}
	return m, nil
}

func (m Model) pastDragThreshold(p stack.Pointer) bool {
	threshold := m.engine.Geometry().DragThreshold * m.engine.ViewScale()
	return math.Hypot(p.X-m.pressX, p.Y-m.pressY) > threshold
}

func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.engine.Mode() != stack.ModeExpanded {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.detail.scrollBy(-2) {
			m.engine.CollapseCard()
		}
	case tea.MouseWheelDown:
		m.detail.scrollBy(2)
	}
	return m, nil
}

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress q to quit\n")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}
	if !m.ready || m.width <= 0 || m.height <= 0 {
		v := tea.NewView("loading...")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}

	canvas := lipgloss.NewCanvas(m.width, m.height)
	base := strings.TrimRight(strings.Repeat(strings.Repeat(" ", m.width)+"\n", m.height), "\n")
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))

	if m.detail.Visible() {
		page := m.detail.view(m.width, m.height-detailBannerRows(m.height))
		canvas.Compose(lipgloss.NewLayer(page).X(0).Y(detailBannerRows(m.height)).Z(2))
	}

	if m.engine.Mode() == stack.ModeGrid {
		for _, cl := range m.engine.Clones() {
			if layer, ok := m.cloneLayer(cl); ok {
				canvas.Compose(layer)
			}
		}
	}
	for _, c := range m.engine.Cards() {
		if layer, ok := m.cardLayer(c); ok {
			canvas.Compose(layer)
		}
	}

	if m.info.visible() && m.engine.Mode() == stack.ModeStack {
		panel := m.info.view(m.width)
		rows := lipgloss.Height(panel)
		y := m.height - rows - 1 + m.info.slide(rows+1)
		canvas.Compose(lipgloss.NewLayer(panel).X(0).Y(y).Z(60))
	}

	if m.showTip {
		canvas.Compose(m.tipLayer())
	}

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().Faint(true).Padding(0, 1).Render(helpBubble.View(m.keys))
	canvas.Compose(lipgloss.NewLayer(helpLine).X(0).Y(m.height - lipgloss.Height(helpLine)).Z(65))

	v := tea.NewView(canvas.Render())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// detailBannerRows reserves the top strip where the expanded card's banner
// rides.
func detailBannerRows(height int) int {
	rows := height / 5
	if rows < 2 {
		rows = 2
	}
	return rows
}

// cardLayer renders one card as a positioned layer; invisible cards render
// nothing.
func (m Model) cardLayer(c *stack.Card) (*lipgloss.Layer, bool) {
	if c.Opacity < 0.05 {
		return nil, false
	}
	geo := m.engine.Geometry()
	vs := m.engine.ViewScale()
	cols := cellSpan(geo.CardWidth*vs*c.ScaleX, cellPxX, minCardCols)
	rows := cellSpan(geo.CardHeight*vs*c.ScaleY, cellPxY, minCardRows)

	box := m.renderCardBox(c.Data, cols, rows, c.Opacity, c.Rotation)
	x := m.cellX(c.X) - cols/2
	y := m.cellY(c.Y) - rows/2
	return lipgloss.NewLayer(box).X(x).Y(y).Z(10 + c.ZIndex), true
}

// cloneLayer renders a grid proxy tile; clones sit under every real card.
func (m Model) cloneLayer(cl *stack.Clone) (*lipgloss.Layer, bool) {
	geo := m.engine.Geometry()
	vs := m.engine.ViewScale()
	gx, gy := m.engine.GridPosition(cl.Source.Index, cl.ColOffset)
	cols := cellSpan(geo.CardWidth*vs*cl.Scale, cellPxX, minCardCols)
	rows := cellSpan(geo.CardHeight*vs*cl.Scale, cellPxY, minCardRows)

	box := m.renderCardBox(cl.Source.Data, cols, rows, 0.4, 0)
	x := m.cellX(gx) - cols/2
	y := m.cellY(gy) - rows/2
	return lipgloss.NewLayer(box).X(x).Y(y).Z(1), true
}

func (m Model) renderCardBox(data domain.CardData, cols, rows int, opacity, rotation float64) string {
	style := lipgloss.NewStyle().
		Width(max(1, cols-2)).
		Height(max(1, rows-2)).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(data.Color)).
		Align(lipgloss.Center, lipgloss.Center)
	if opacity < 0.5 {
		style = style.Faint(true)
	}

	title := lipgloss.NewStyle().Bold(true).Render(truncate(data.Title, max(1, cols-4)))
	content := title
	if rows >= 5 {
		content += "\n" + truncate(data.Description, max(1, cols-4))
	}
	// A leaning border glyph stands in for rotation, which cells cannot do.
	switch {
	case rotation > 8:
		content = "╲\n" + content
	case rotation < -8:
		content = "╱\n" + content
	}
	return style.Render(content)
}

func (m Model) tipLayer() *lipgloss.Layer {
	tip := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Render("drag a card to shuffle • click to open")
	x := (m.width - lipgloss.Width(tip)) / 2
	return lipgloss.NewLayer(tip).X(max(0, x)).Y(1).Z(70)
}

// cellX converts a centered virtual x into a cell column.
func (m Model) cellX(vx float64) int {
	return int(math.Round((vx + float64(m.width)*cellPxX/2) / cellPxX))
}

// cellY converts a centered virtual y into a cell row.
func (m Model) cellY(vy float64) int {
	return int(math.Round((vy + float64(m.height)*cellPxY/2) / cellPxY))
}

// cellSpan converts a virtual pixel extent into a cell count with a floor.
func cellSpan(px, perCell float64, minCells int) int {
	n := int(math.Round(px / perCell))
	if n < minCells {
		n = minCells
	}
	return n
}

// truncate truncates the requested operation.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return "…"
	}
	return string(rs[:maxLen-1]) + "…"
}
