package stack

import (
	"math"
	"time"

	"github.com/brygga/kortlek/internal/domain"
	"github.com/brygga/kortlek/internal/geom"
)

const (
	gridColumns  = 3
	gridWrapSets = 5
	gridScaleMin = 0.4
	gridScaleMax = 0.9
	gridFillFrac = 0.75
	gapScaleMax  = 1.5

	slideSmoothing = 0.1

	settleDelay     = 500 * time.Millisecond
	hoverResetDelay = 300 * time.Millisecond
	infoFadeDelay   = 400 * time.Millisecond
)

// Recorded interaction event kinds.
const (
	EventExpand      = "expand"
	EventCollapse    = "collapse"
	EventDragRelease = "drag-release"
	EventToggleView  = "toggle-view"
)

// frameContext is the per-tick view of controller state a card update reads.
type frameContext struct {
	mode            ViewMode
	cardCount       int
	viewScale       float64
	viewportW       float64
	viewportH       float64
	expanded        *Card
	hovered         *Card
	anyHover        bool
	gridScale       float64
	returnCard      *Card
	returnColOffset int
	gridPos         func(index, colOffset int) (x, y float64)
}

// Controller owns the card collection, the active view mode, grid clones,
// z-order resolution and the animation tick that drives every card.
type Controller struct {
	cfg  Config
	deck []domain.CardData

	cards    []*Card
	mode     ViewMode
	prevMode ViewMode
	expanded *Card

	// Grid state. Row offsets accumulate unbounded; wrapping happens purely
	// in GridPosition.
	rowOffsets  [gridColumns]float64
	slideSpeed  float64
	targetSpeed float64
	gridScale   float64
	clones      []*Clone

	hoveredCard   *Card
	hoveredClone  *Clone
	hoverPrevRank int

	// Clone-return tracking for expand-from-clone continuity.
	returnCard      *Card
	returnColOffset int

	viewW, viewH float64
	viewScale    float64

	// Top-card info coordination.
	shownTopIndex  int
	infoTransition bool

	presenter DetailPresenter
	info      InfoPanel
	recorder  Recorder

	sched    scheduler
	spawnAcc time.Duration
}

var _ CardOps = (*Controller)(nil)

// Option configures a Controller at construction.
type Option func(*Controller)

// WithPresenter attaches the detail presenter collaborator.
func WithPresenter(p DetailPresenter) Option {
	return func(ct *Controller) { ct.presenter = p }
}

// WithInfoPanel attaches the info panel collaborator.
func WithInfoPanel(p InfoPanel) Option {
	return func(ct *Controller) { ct.info = p }
}

// WithRecorder attaches the interaction event recorder.
func WithRecorder(r Recorder) Option {
	return func(ct *Controller) { ct.recorder = r }
}

// NewController validates cfg and prepares a controller for the given deck.
// Cards spawn staggered from the first Tick onward.
func NewController(cfg Config, deck []domain.CardData, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(deck) == 0 {
		return nil, domain.ErrEmptyDeck
	}
	if cfg.MaxCards > 0 && len(deck) > cfg.MaxCards {
		deck = deck[:cfg.MaxCards]
	}
	ct := &Controller{
		cfg:           cfg,
		deck:          deck,
		mode:          ModeStack,
		prevMode:      ModeStack,
		viewScale:     1,
		gridScale:     gridScaleMax,
		shownTopIndex: -1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ct)
		}
	}
	return ct, nil
}

// Mode returns the active view mode.
func (ct *Controller) Mode() ViewMode { return ct.mode }

// PreviousMode returns the mode remembered across expand/collapse.
func (ct *Controller) PreviousMode() ViewMode { return ct.prevMode }

// Expanded returns the card shown full-screen, or nil.
func (ct *Controller) Expanded() *Card { return ct.expanded }

// Cards returns the live cards in spawn order.
func (ct *Controller) Cards() []*Card { return ct.cards }

// Clones returns the grid clone proxies; empty outside grid mode.
func (ct *Controller) Clones() []*Clone { return ct.clones }

// ViewScale returns the viewport-derived factor applied to base geometry.
func (ct *Controller) ViewScale() float64 { return ct.viewScale }

// GridScale returns the adaptive grid scale.
func (ct *Controller) GridScale() float64 { return ct.gridScale }

// RowOffsets returns the three row slide offsets.
func (ct *Controller) RowOffsets() [gridColumns]float64 { return ct.rowOffsets }

// Geometry returns the base geometry constants.
func (ct *Controller) Geometry() Geometry { return ct.cfg.Geometry }

// Resize recomputes the viewport scale factor and the adaptive grid scale.
func (ct *Controller) Resize(w, h float64) {
	ct.viewW, ct.viewH = w, h
	if h > 0 {
		ct.viewScale = geom.Clamp(h/ct.cfg.BaseViewportHeight, 0.3, 1.6)
	}
	ct.gridScale = ct.computeGridScale()
}

// Tick advances the widget one frame: scheduled actions, staggered spawns,
// grid sliding and clone visuals, then every card.
func (ct *Controller) Tick(dt time.Duration) {
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	ct.sched.advance(dt)
	ct.spawnPending(dt)
	if ct.mode == ModeGrid {
		ct.updateGridSliding()
		ct.updateClones()
	}
	fc := ct.frameContext()
	for _, c := range ct.cards {
		c.update(dt, fc)
	}
}

func (ct *Controller) frameContext() frameContext {
	return frameContext{
		mode:            ct.mode,
		cardCount:       len(ct.cards),
		viewScale:       ct.viewScale,
		viewportW:       ct.viewW,
		viewportH:       ct.viewH,
		expanded:        ct.expanded,
		hovered:         ct.hoveredCard,
		anyHover:        ct.hoveredCard != nil || ct.hoveredClone != nil,
		gridScale:       ct.gridScale,
		returnCard:      ct.returnCard,
		returnColOffset: ct.returnColOffset,
		gridPos:         ct.GridPosition,
	}
}

// spawnPending creates cards at the configured stagger until the deck is
// exhausted. The first card appears on the first tick.
func (ct *Controller) spawnPending(dt time.Duration) {
	if len(ct.cards) >= len(ct.deck) {
		return
	}
	ct.spawnAcc += dt
	for len(ct.cards) < len(ct.deck) {
		if len(ct.cards) > 0 {
			if ct.spawnAcc < ct.cfg.SpawnStagger {
				return
			}
			ct.spawnAcc -= ct.cfg.SpawnStagger
		}
		idx := len(ct.cards)
		ct.cards = append(ct.cards, newCard(idx, ct.deck[idx], ct, ct.cfg.Geometry))
	}
	ct.refreshInfo(true)
}

// BringToFront moves card to the top rank, shifting everything above its old
// rank down one. The rank multiset stays exactly {0..N-1}.
func (ct *Controller) BringToFront(card *Card) {
	top := len(ct.cards) - 1
	if card.ZIndex != top {
		for _, other := range ct.cards {
			if other != card && other.ZIndex > card.ZIndex {
				other.ZIndex--
			}
		}
		card.ZIndex = top
	}
	ct.refreshInfo(false)
}

// ReorderCard satisfies CardOps; cards request rank changes here rather than
// mutating their own rank.
func (ct *Controller) ReorderCard(card *Card, rank int) {
	ct.UpdateCardOrder(card, rank)
}

// UpdateCardOrder moves card to rank newIndex, shifting the cards in between
// to preserve the permutation invariant.
func (ct *Controller) UpdateCardOrder(card *Card, newIndex int) {
	n := len(ct.cards)
	if n == 0 {
		return
	}
	newIndex = int(geom.Clamp(float64(newIndex), 0, float64(n-1)))
	old := card.ZIndex
	if newIndex == old {
		return
	}
	top := n - 1
	topBefore := ct.topCard()
	if newIndex < old {
		for _, other := range ct.cards {
			if other != card && other.ZIndex >= newIndex && other.ZIndex < old {
				other.ZIndex++
			}
		}
	} else {
		for _, other := range ct.cards {
			if other != card && other.ZIndex > old && other.ZIndex <= newIndex {
				other.ZIndex--
			}
		}
	}
	card.ZIndex = newIndex
	if (old == top || newIndex == top) && ct.topCard() != topBefore {
		ct.refreshInfo(false)
	}
}

// topCard returns the card holding the top rank.
func (ct *Controller) topCard() *Card {
	top := len(ct.cards) - 1
	for _, c := range ct.cards {
		if c.ZIndex == top {
			return c
		}
	}
	return nil
}

// TopCard returns the front-most card, or nil before any spawn.
func (ct *Controller) TopCard() *Card { return ct.topCard() }

// ToggleViewMode switches stack <-> grid. Expanded is entered and left only
// via ExpandCard/CollapseCard.
func (ct *Controller) ToggleViewMode() {
	if ct.mode == ModeExpanded {
		return
	}
	ct.sched.supersede()
	switch ct.mode {
	case ModeStack:
		ct.rowOffsets = [gridColumns]float64{}
		ct.returnCard = nil
		ct.returnColOffset = 0
		ct.gridScale = ct.computeGridScale()
		ct.spawnClones()
		ct.mode = ModeGrid
		ct.slideSpeed = 0
		ct.hideInfo()
	case ModeGrid:
		// Snap each stored position to the wrap-equivalent nearest center so
		// the return transition does not fly in from a far wrapped offset.
		period := ct.gridStride() * gridColumns * gridWrapSets
		for _, c := range ct.cards {
			c.X = wrapNearestZero(c.X, period)
		}
		ct.clones = nil
		ct.clearHover()
		ct.mode = ModeStack
		ct.refreshInfo(false)
		ct.showInfo()
	}
	ct.record(EventToggleView, -1)
}

// spawnClones creates four proxies per card, two on each side.
func (ct *Controller) spawnClones() {
	ct.clones = ct.clones[:0]
	for _, c := range ct.cards {
		for _, off := range cloneColumnOffsets {
			ct.clones = append(ct.clones, &Clone{Source: c, ColOffset: off, Scale: ct.gridScale})
		}
	}
}

// gridStride returns the horizontal cell pitch (cell width plus gap).
func (ct *Controller) gridStride() float64 {
	cell := ct.cfg.Geometry.CardWidth * ct.viewScale * ct.gridScale
	return cell + ct.gridGap()
}

// gridGap grows from 1.0x to 1.5x the base gap as the adaptive scale grows.
func (ct *Controller) gridGap() float64 {
	factor := geom.RemapClamped(ct.gridScale, gridScaleMin, gridScaleMax, 1.0, gapScaleMax)
	return ct.cfg.Geometry.GridGap * ct.viewScale * factor
}

// computeGridScale picks the scale in [0.4, 0.9] at which rows-of-3 plus
// gaps fill the target fraction of the viewport height.
func (ct *Controller) computeGridScale() float64 {
	rows := ct.gridRows()
	if rows == 0 || ct.viewH <= 0 {
		return gridScaleMax
	}
	per := (ct.cfg.Geometry.CardHeight + ct.cfg.Geometry.GridGap) * ct.viewScale
	if per <= 0 {
		return gridScaleMax
	}
	s := (gridFillFrac * ct.viewH) / (float64(rows) * per)
	return geom.Clamp(s, gridScaleMin, gridScaleMax)
}

func (ct *Controller) gridRows() int {
	n := len(ct.deck)
	return (n + gridColumns - 1) / gridColumns
}

// GridPosition returns the centered cell position for a card index at the
// given clone column offset, with the row slide applied and the x wrapped
// continuously into (-half, +half] of the full clone-extended width.
func (ct *Controller) GridPosition(index, colOffset int) (x, y float64) {
	rows := ct.gridRows()
	row := index / gridColumns
	col := index%gridColumns + colOffset

	stride := ct.gridStride()
	x = (float64(col) - 1) * stride
	x += ct.rowOffsets[row%gridColumns]
	x = wrapNearestZero(x, stride*gridColumns*gridWrapSets)

	cellH := ct.cfg.Geometry.CardHeight*ct.viewScale*ct.gridScale + ct.gridGap()
	y = (float64(row) - float64(rows-1)/2) * cellH
	return x, y
}

// wrapNearestZero maps x into (-period/2, +period/2] by whole periods.
func wrapNearestZero(x, period float64) float64 {
	if period <= 0 {
		return x
	}
	half := period / 2
	x = math.Mod(x+half, period)
	if x <= 0 {
		x += period
	}
	return x - half
}

// updateGridSliding eases the slide speed toward its target and accumulates
// per-row offsets; rows 0 and 2 travel opposite row 1.
func (ct *Controller) updateGridSliding() {
	ct.targetSpeed = ct.cfg.CruiseSpeed
	if ct.hoveredCard != nil || ct.hoveredClone != nil {
		ct.targetSpeed = 0
	}
	ct.slideSpeed = geom.Lerp(ct.slideSpeed, ct.targetSpeed, slideSmoothing)
	for i := range ct.rowOffsets {
		dir := 1.0
		if i == 1 {
			dir = -1
		}
		ct.rowOffsets[i] += ct.slideSpeed * dir
	}
}

// updateClones eases each clone's presentational scale.
func (ct *Controller) updateClones() {
	anyHover := ct.hoveredCard != nil || ct.hoveredClone != nil
	for _, cl := range ct.clones {
		target := ct.gridScale
		if anyHover {
			if ct.hoveredClone == cl {
				target *= 1 + hoverScaleBoost
			} else {
				target *= 1 - hoverScaleBoost
			}
		}
		cl.Scale = geom.Lerp(cl.Scale, target, scaleSmoothing)
	}
}

// ExpandCard satisfies CardOps and opens a card full-screen from its own
// position.
func (ct *Controller) ExpandCard(card *Card) {
	ct.expand(card, nil)
}

// ExpandFromClone opens the clone's source card, starting the motion from
// the clone's on-screen position.
func (ct *Controller) ExpandFromClone(cl *Clone) {
	if cl == nil {
		return
	}
	ct.expand(cl.Source, cl)
}

func (ct *Controller) expand(card *Card, cl *Clone) {
	if card == nil || ct.mode == ModeExpanded {
		return
	}
	ct.sched.supersede()
	ct.returnCard = nil
	ct.returnColOffset = 0
	if cl != nil {
		// Continuity of motion: begin from where the clone is rendered, and
		// remember the column so the return trip ends there too.
		ct.returnCard = card
		ct.returnColOffset = cl.ColOffset
		card.X, card.Y = ct.GridPosition(card.Index, cl.ColOffset)
	}
	ct.prevMode = ct.mode
	ct.mode = ModeExpanded
	ct.expanded = card
	ct.hideInfo()
	if ct.presenter != nil {
		ct.presenter.ShowDetail(card.Data)
	}
	if cl != nil {
		row := (card.Index / gridColumns) % gridColumns
		colOff := cl.ColOffset
		// After the expand settles, fold the clone column into the row slide
		// offset so the canonical cell coincides with where the clone was.
		// Cancelled automatically if another transition supersedes it.
		ct.sched.after(settleDelay, func() {
			ct.rowOffsets[row] += float64(colOff) * ct.gridStride()
			ct.returnCard = nil
			ct.returnColOffset = 0
		})
	}
	ct.record(EventExpand, card.Index)
}

// CollapseCard returns from the expanded view to the remembered mode.
func (ct *Controller) CollapseCard() {
	if ct.mode != ModeExpanded {
		return
	}
	ct.sched.supersede()
	collapsed := ct.expanded
	ct.mode = ct.prevMode
	ct.expanded = nil
	if ct.presenter != nil {
		ct.presenter.HideDetail()
	}
	if ct.mode == ModeGrid {
		// Delay the hover reset so a stale hover under the pointer cannot
		// immediately stall the grid again.
		ct.sched.after(hoverResetDelay, func() {
			ct.clearHover()
		})
	} else {
		ct.refreshInfo(false)
		ct.showInfo()
	}
	if collapsed != nil {
		ct.record(EventCollapse, collapsed.Index)
	}
}

// HitTest returns the front-most card, or grid clone, under the point.
func (ct *Controller) HitTest(x, y float64) (*Card, *Clone) {
	var best *Card
	for _, c := range ct.cards {
		if !ct.cardContains(c, x, y) {
			continue
		}
		if best == nil || c.ZIndex > best.ZIndex {
			best = c
		}
	}
	if best != nil || ct.mode != ModeGrid {
		return best, nil
	}
	for _, cl := range ct.clones {
		cx, cy := ct.GridPosition(cl.Source.Index, cl.ColOffset)
		w := ct.cfg.Geometry.CardWidth * ct.viewScale * cl.Scale
		h := ct.cfg.Geometry.CardHeight * ct.viewScale * cl.Scale
		if math.Abs(x-cx) <= w/2 && math.Abs(y-cy) <= h/2 {
			return nil, cl
		}
	}
	return nil, nil
}

func (ct *Controller) cardContains(c *Card, x, y float64) bool {
	w := ct.cfg.Geometry.CardWidth * ct.viewScale * c.ScaleX
	h := ct.cfg.Geometry.CardHeight * ct.viewScale * c.ScaleY
	return math.Abs(x-c.X) <= w/2 && math.Abs(y-c.Y) <= h/2
}

// Hover reports the pointer resting position; only the grid reacts to it.
func (ct *Controller) Hover(x, y float64) {
	if ct.mode != ModeGrid {
		return
	}
	card, clone := ct.HitTest(x, y)
	switch {
	case card != nil:
		if ct.hoveredCard != card {
			ct.restoreHoverRank()
			ct.hoveredCard = card
			ct.hoveredClone = nil
			ct.hoverPrevRank = card.ZIndex
			ct.BringToFront(card)
		}
	case clone != nil:
		ct.restoreHoverRank()
		ct.hoveredClone = clone
		ct.hoveredCard = nil
	default:
		ct.clearHover()
	}
}

// restoreHoverRank undoes the front bump a hovered tile received.
func (ct *Controller) restoreHoverRank() {
	if ct.hoveredCard != nil {
		ct.UpdateCardOrder(ct.hoveredCard, ct.hoverPrevRank)
	}
}

func (ct *Controller) clearHover() {
	ct.restoreHoverRank()
	ct.hoveredCard = nil
	ct.hoveredClone = nil
}

// ReleasedDrag satisfies CardOps.
func (ct *Controller) ReleasedDrag(card *Card) {
	ct.record(EventDragRelease, card.Index)
}

// DismissTip satisfies CardOps; recorded as an interaction so the host can
// persist the onboarding flag.
func (ct *Controller) DismissTip() {
	ct.record("tip-dismiss", -1)
}

func (ct *Controller) record(kind string, cardIndex int) {
	if ct.recorder != nil {
		ct.recorder.Record(kind, cardIndex)
	}
}

// refreshInfo updates the info panel for the current top card. Non-forced
// refreshes are skipped while the same card is shown, while a fade is in
// flight, or while the grid owns the screen; a forced refresh sets content
// synchronously.
func (ct *Controller) refreshInfo(force bool) {
	if ct.info == nil {
		return
	}
	top := ct.topCard()
	if top == nil {
		return
	}
	if force {
		ct.info.SetContent(top.Data.Title, top.Data.Description)
		ct.info.Show()
		ct.shownTopIndex = top.Index
		ct.infoTransition = false
		return
	}
	if ct.mode == ModeGrid || ct.mode == ModeExpanded {
		return
	}
	if top.Index == ct.shownTopIndex || ct.infoTransition {
		return
	}
	ct.infoTransition = true
	ct.info.Hide()
	ct.sched.afterAlways(infoFadeDelay, func() {
		// Re-resolve the top card at fire time; it may have changed again
		// while the fade ran.
		if current := ct.topCard(); current != nil {
			ct.info.SetContent(current.Data.Title, current.Data.Description)
			ct.info.Show()
			ct.shownTopIndex = current.Index
		}
		ct.infoTransition = false
	})
}

func (ct *Controller) hideInfo() {
	if ct.info != nil {
		ct.info.Hide()
	}
}

func (ct *Controller) showInfo() {
	if ct.info != nil {
		ct.info.Show()
	}
}
