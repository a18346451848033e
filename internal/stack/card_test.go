package stack

import (
	"math"
	"testing"
	"time"
)

func settle(ct *Controller, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		ct.Tick(frame)
	}
}

func TestStackCardsSettleIntoCenteredFan(t *testing.T) {
	ct := newTestController(t, 8)
	settle(ct, 5*time.Second)

	var sumY, sumRot float64
	for _, c := range ct.Cards() {
		sumY += c.Y
		sumRot += c.Rotation
		if math.Abs(c.X) > 1 {
			t.Fatalf("card %d x = %v, want ~0", c.Index, c.X)
		}
		if c.Opacity < 0.99 {
			t.Fatalf("card %d opacity = %v, want ~1", c.Index, c.Opacity)
		}
		if math.Abs(c.Rotation) > stackTiltSpan/2+1 {
			t.Fatalf("card %d tilt %v outside the fan span", c.Index, c.Rotation)
		}
	}
	// Fan offsets and tilts are centered around zero across the stack.
	if math.Abs(sumY) > 1 || math.Abs(sumRot) > 1 {
		t.Fatalf("fan not centered: sumY=%v sumRot=%v", sumY, sumRot)
	}

	top, bottom := ct.TopCard(), ct.Cards()[0]
	if !(top.Rotation > bottom.Rotation) {
		t.Fatalf("tilt must grow with rank: top %v, bottom %v", top.Rotation, bottom.Rotation)
	}
}

func TestExpandedCardDetachesIntoBanner(t *testing.T) {
	ct := newTestController(t, 8)
	settle(ct, 2*time.Second)
	top := ct.TopCard()
	ct.ExpandCard(top)
	settle(ct, 5*time.Second)

	if top.Opacity > 0.01 {
		t.Fatalf("expanded card opacity = %v, want ~0", top.Opacity)
	}
	if top.Y >= 0 {
		t.Fatalf("expanded card y = %v, want above center", top.Y)
	}
	if math.Abs(top.Rotation) > 0.1 {
		t.Fatalf("expanded card rotation = %v, want ~0", top.Rotation)
	}
	for _, c := range ct.Cards() {
		if c == top {
			continue
		}
		if c.Opacity > 0.01 {
			t.Fatalf("background card %d opacity = %v, want ~0", c.Index, c.Opacity)
		}
		if math.Abs(c.ScaleX-expandedShrinkScale) > 0.01 {
			t.Fatalf("background card %d scale = %v, want %v", c.Index, c.ScaleX, expandedShrinkScale)
		}
	}
}

func TestGridHoverBoostsScale(t *testing.T) {
	ct := newTestController(t, 8)
	ct.ToggleViewMode()
	settle(ct, 2*time.Second)

	hovered := ct.Cards()[0]
	ct.Hover(hovered.X, hovered.Y)
	settle(ct, 2*time.Second)

	wantHover := ct.GridScale() * (1 + hoverScaleBoost)
	if math.Abs(hovered.ScaleX-wantHover) > 0.01 {
		t.Fatalf("hovered scale = %v, want %v", hovered.ScaleX, wantHover)
	}
	if hovered.ZIndex != len(ct.Cards())-1 {
		t.Fatalf("hovered card rank = %d, want front", hovered.ZIndex)
	}
	wantOther := ct.GridScale() * (1 - hoverScaleBoost)
	for _, c := range ct.Cards() {
		if c == hovered {
			continue
		}
		if math.Abs(c.ScaleX-wantOther) > 0.01 {
			t.Fatalf("card %d scale = %v, want %v", c.Index, c.ScaleX, wantOther)
		}
	}

	// A hovered clone counts too: every real card takes the reduction.
	cx, cy := ct.GridPosition(2, 2)
	ct.Hover(cx, cy)
	settle(ct, 2*time.Second)

	card, clone := ct.HitTest(cx, cy)
	if card != nil || clone == nil {
		t.Fatalf("hit at clone cell = (%v, %v), want a clone", card, clone)
	}
	wantClone := ct.GridScale() * (1 + hoverScaleBoost)
	if math.Abs(clone.Scale-wantClone) > 0.01 {
		t.Fatalf("hovered clone scale = %v, want %v", clone.Scale, wantClone)
	}
	for _, c := range ct.Cards() {
		if math.Abs(c.ScaleX-wantOther) > 0.01 {
			t.Fatalf("card %d scale = %v while a clone is hovered, want %v", c.Index, c.ScaleX, wantOther)
		}
	}
}

func TestDragTiltClampedAndDecaying(t *testing.T) {
	ct := newTestController(t, 8)
	top := ct.TopCard()
	top.PointerDown(Pointer{X: top.X, Y: top.Y})

	// A violent horizontal flick: tilt target saturates at the clamp.
	last := Pointer{X: top.X, Y: top.Y}
	for i := 0; i < 120; i++ {
		last = Pointer{X: last.X + 200, Y: last.Y}
		top.PointerMove(last)
		ct.Tick(frame)
		if top.Rotation > maxDragTilt+1e-6 {
			t.Fatalf("tilt %v exceeded clamp %v", top.Rotation, maxDragTilt)
		}
	}
	if top.Rotation < maxDragTilt-1 {
		t.Fatalf("tilt %v never reached the clamp", top.Rotation)
	}

	// Release: velocity decays, tilt relaxes back toward the fan.
	top.PointerUp(last)
	settle(ct, 5*time.Second)
	if math.Abs(top.velX) > 0.01 {
		t.Fatalf("velocity %v did not decay", top.velX)
	}
	if top.Rotation > maxDragTilt/2 {
		t.Fatalf("tilt %v did not relax after release", top.Rotation)
	}
}

func TestDraggedCardShrinksWithDistance(t *testing.T) {
	ct := newTestController(t, 8)
	top := ct.TopCard()
	top.PointerDown(Pointer{X: top.X, Y: top.Y})
	top.PointerMove(Pointer{X: top.X + 40, Y: top.Y})

	// Pin the card past the outer scale band.
	outer := ct.Geometry().ScaleRadius.Max + 100
	top.X, top.Y = outer, 0
	top.TargetX, top.TargetY = outer, 0
	settle(ct, 3*time.Second)
	if math.Abs(top.ScaleX-dragScaleMin) > 0.01 {
		t.Fatalf("scale at band edge = %v, want %v", top.ScaleX, dragScaleMin)
	}
}

func TestPointerIgnoredWhileExpanded(t *testing.T) {
	ct := newTestController(t, 8)
	top := ct.TopCard()
	ct.ExpandCard(top)

	other := ct.Cards()[0]
	other.PointerDown(Pointer{X: other.X, Y: other.Y})
	if other.Dragging() {
		t.Fatal("pointer-down accepted while expanded")
	}
	other.PointerUp(Pointer{X: other.X, Y: other.Y})
	if ct.Expanded() != top {
		t.Fatal("expanded card changed by a background click")
	}
}

func TestGridPointerDownIsClickIntentOnly(t *testing.T) {
	ct := newTestController(t, 8)
	ct.ToggleViewMode()
	settle(ct, time.Second)

	card := ct.Cards()[2]
	card.PointerDown(Pointer{X: card.X, Y: card.Y})
	if card.Dragging() {
		t.Fatal("grid cards must not be draggable")
	}
	card.PointerUp(Pointer{X: card.X, Y: card.Y})
	if ct.Mode() != ModeExpanded {
		t.Fatalf("grid click must expand, mode = %v", ct.Mode())
	}
}

func TestTickClampsFrameDelta(t *testing.T) {
	ct := newTestController(t, 8)
	ct.ToggleViewMode()
	var clone *Clone
	for _, cl := range ct.Clones() {
		if cl.Source.Index == 0 && cl.ColOffset == 1 {
			clone = cl
		}
	}
	ct.ExpandFromClone(clone)
	before := ct.RowOffsets()

	// One stalled 10s frame counts as at most 50ms: the 500ms settle fold
	// must not have fired.
	ct.Tick(10 * time.Second)
	if ct.RowOffsets() != before {
		t.Fatal("stalled frame fast-forwarded the settle fold")
	}
}
