package stack

import (
	"math"
	"time"

	"github.com/brygga/kortlek/internal/domain"
	"github.com/brygga/kortlek/internal/geom"
)

// Per-tick smoothing constants. These are deliberately per-iteration rather
// than time-scaled, so effective easing speed tracks the refresh rate; the
// only time compensation is the frame-delta cap.
const (
	maxFrameDelta     = 50 * time.Millisecond
	dragSmoothing     = 0.35
	rotationSmoothing = 0.15
	scaleSmoothing    = 0.3
	easeSmoothing     = 0.12
	fadeSmoothing     = 0.1
	velocityDecay     = 0.9

	maxDragTilt       = 25.0
	tiltVelocityScale = 0.6
	dragScaleMin      = 0.85

	expandedShrinkScale = 0.8
	bannerTopFraction   = 0.35

	hoverScaleBoost = 0.05

	stackFanStep     = 14.0
	stackTiltSpan    = 100.0
	stackTiltMaxStep = 12.0
)

// Pointer is a pointer position in container-centered pixel coordinates.
type Pointer struct {
	X float64
	Y float64
}

// CardOps is the narrow controller surface a card is allowed to call. Cards
// never mutate global state directly; reordering, expansion and tip dismissal
// all go through this handle.
type CardOps interface {
	Mode() ViewMode
	ViewScale() float64
	BringToFront(*Card)
	ReorderCard(*Card, int)
	ExpandCard(*Card)
	ReleasedDrag(*Card)
	DismissTip()
}

// Card owns one card's visual state, drag interaction and per-frame update.
type Card struct {
	Index int
	Data  domain.CardData

	// Visual state, container-centered pixels and degrees.
	X, Y     float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
	Opacity  float64
	ZIndex   int

	// Drag target; other targets are computed inline each tick.
	TargetX float64
	TargetY float64

	dragging           bool
	offsetX, offsetY   float64
	lastPtrX, lastPtrY float64
	velX, velY         float64

	// Click-vs-drag discriminator, reset on each pointer-down.
	downX, downY float64
	hasDragged   bool

	ops CardOps
	geo Geometry
}

func newCard(index int, data domain.CardData, ops CardOps, geo Geometry) *Card {
	return &Card{
		Index:   index,
		Data:    data,
		ScaleX:  1,
		ScaleY:  1,
		Opacity: 0,
		ZIndex:  index,
		ops:     ops,
		geo:     geo,
	}
}

// Dragging reports whether the card currently follows the pointer.
func (c *Card) Dragging() bool { return c.dragging }

// PointerDown captures the pointer. In grid mode only the click intent is
// recorded; in stack mode a drag begins and the card jumps to the top rank.
func (c *Card) PointerDown(p Pointer) {
	if c.ops.Mode() == ModeExpanded {
		return
	}
	c.downX, c.downY = p.X, p.Y
	c.hasDragged = false
	if c.ops.Mode() == ModeGrid {
		// Grid cards are click-to-expand only.
		return
	}
	c.dragging = true
	// Local offset so the card does not jump under the pointer.
	c.offsetX = p.X - c.X
	c.offsetY = p.Y - c.Y
	c.lastPtrX, c.lastPtrY = p.X, p.Y
	c.ops.BringToFront(c)
}

// PointerMove updates the drag target and velocity, and flips the
// has-dragged flag once movement exceeds the scaled click threshold.
func (c *Card) PointerMove(p Pointer) {
	threshold := c.geo.DragThreshold * c.ops.ViewScale()
	if !c.hasDragged && geom.Dist(p.X, p.Y, c.downX, c.downY) > threshold {
		c.hasDragged = true
		c.ops.DismissTip()
	}
	if !c.dragging {
		return
	}
	c.TargetX = p.X - c.offsetX
	c.TargetY = p.Y - c.offsetY
	c.velX = p.X - c.lastPtrX
	c.velY = p.Y - c.lastPtrY
	c.lastPtrX, c.lastPtrY = p.X, p.Y
}

// PointerUp resolves the gesture: a sub-threshold press is a click and asks
// for expansion; an actual drag releases back toward the center.
func (c *Card) PointerUp(p Pointer) {
	if !c.hasDragged && c.ops.Mode() != ModeExpanded {
		c.dragging = false
		c.ops.ExpandCard(c)
		return
	}
	if c.dragging {
		c.dragging = false
		c.TargetX, c.TargetY = 0, 0
		c.ops.ReleasedDrag(c)
	}
}

// update advances the card one frame. dt is capped so a stalled frame cannot
// teleport state.
func (c *Card) update(dt time.Duration, fc frameContext) {
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	if c.dragging {
		c.updateDragging(fc)
	} else {
		switch fc.mode {
		case ModeExpanded:
			c.updateExpanded(fc)
		case ModeGrid:
			c.updateGrid(fc)
		default:
			c.updateStack(fc)
		}
		// Keep decaying so a resumed drag starts from a sane velocity.
		c.velX *= velocityDecay
		c.velY *= velocityDecay
	}
	c.Opacity = geom.Clamp01(c.Opacity)
	c.ScaleX = geom.Clamp(c.ScaleX, 0, 2)
	c.ScaleY = geom.Clamp(c.ScaleY, 0, 2)
}

func (c *Card) updateDragging(fc frameContext) {
	c.X = geom.Lerp(c.X, c.TargetX, dragSmoothing)
	c.Y = geom.Lerp(c.Y, c.TargetY, dragSmoothing)

	tilt := geom.Clamp(c.velX*tiltVelocityScale, -maxDragTilt, maxDragTilt)
	c.Rotation = geom.Lerp(c.Rotation, tilt, rotationSmoothing)

	vs := fc.viewScale
	dist := geom.Dist(c.X, c.Y, 0, 0)

	sb := c.geo.ScaleRadius
	scaleTarget := geom.RemapClamped(dist, sb.Min*vs, sb.Max*vs, 1.0, dragScaleMin)
	c.ScaleX = geom.Lerp(c.ScaleX, scaleTarget, scaleSmoothing)
	c.ScaleY = geom.Lerp(c.ScaleY, scaleTarget, scaleSmoothing)

	rb := c.geo.SiblingRadius
	wantRank := int(math.Round(geom.RemapClamped(dist, rb.Min*vs, rb.Max*vs, float64(fc.cardCount-1), 0)))
	if wantRank != c.ZIndex {
		c.ops.ReorderCard(c, wantRank)
	}

	c.velX *= velocityDecay
	c.velY *= velocityDecay
}

func (c *Card) updateExpanded(fc frameContext) {
	if fc.expanded == c {
		// The expanded card detaches into a page banner near the top while
		// the detail content takes over.
		c.X = geom.Lerp(c.X, 0, easeSmoothing)
		c.Y = geom.Lerp(c.Y, -fc.viewportH*bannerTopFraction, easeSmoothing)
		c.Rotation = geom.Lerp(c.Rotation, 0, easeSmoothing)
		c.ScaleX = geom.Lerp(c.ScaleX, 1, scaleSmoothing)
		c.ScaleY = geom.Lerp(c.ScaleY, 1, scaleSmoothing)
		c.Opacity = geom.Lerp(c.Opacity, 0, fadeSmoothing)
		return
	}
	c.ScaleX = geom.Lerp(c.ScaleX, expandedShrinkScale, scaleSmoothing)
	c.ScaleY = geom.Lerp(c.ScaleY, expandedShrinkScale, scaleSmoothing)
	c.Opacity = geom.Lerp(c.Opacity, 0, fadeSmoothing)
}

func (c *Card) updateGrid(fc frameContext) {
	colOffset := 0
	if fc.returnCard == c {
		// Return trip starts from the clone's slot, not the canonical cell.
		colOffset = fc.returnColOffset
	}
	gx, gy := fc.gridPos(c.Index, colOffset)
	c.X = geom.Lerp(c.X, gx, easeSmoothing)
	c.Y = geom.Lerp(c.Y, gy, easeSmoothing)
	c.Rotation = geom.Lerp(c.Rotation, 0, easeSmoothing)

	// Hovering any grid tile, clone included, shrinks every non-hovered card.
	target := fc.gridScale
	if fc.anyHover {
		if fc.hovered == c {
			target *= 1 + hoverScaleBoost
		} else {
			target *= 1 - hoverScaleBoost
		}
	}
	c.ScaleX = geom.Lerp(c.ScaleX, target, scaleSmoothing)
	c.ScaleY = geom.Lerp(c.ScaleY, target, scaleSmoothing)
	c.Opacity = geom.Lerp(c.Opacity, 1, fadeSmoothing)
}

func (c *Card) updateStack(fc frameContext) {
	n := fc.cardCount
	center := float64(n-1) / 2

	fanY := (float64(c.ZIndex) - center) * stackFanStep * fc.viewScale
	c.X = geom.Lerp(c.X, 0, easeSmoothing)
	c.Y = geom.Lerp(c.Y, fanY, easeSmoothing)

	// Rank-proportional tilt, centered, capped so the whole fan stays inside
	// roughly -50..+50 degrees however many cards there are.
	var tilt float64
	if n > 1 {
		step := math.Min(stackTiltMaxStep, stackTiltSpan/float64(n-1))
		tilt = (float64(c.ZIndex) - center) * step
	}
	c.Rotation = geom.Lerp(c.Rotation, tilt, easeSmoothing)

	c.ScaleX = geom.Lerp(c.ScaleX, 1, scaleSmoothing)
	c.ScaleY = geom.Lerp(c.ScaleY, 1, scaleSmoothing)
	c.Opacity = geom.Lerp(c.Opacity, 1, fadeSmoothing)
}
