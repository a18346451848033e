package stack

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/brygga/kortlek/internal/domain"
)

const frame = 16 * time.Millisecond

type fakePresenter struct {
	shown  []string
	hidden int
}

func (f *fakePresenter) ShowDetail(data domain.CardData) { f.shown = append(f.shown, data.Title) }
func (f *fakePresenter) HideDetail()                     { f.hidden++ }

type fakeInfoPanel struct {
	title, description string
	setCalls           int
	shows, hides       int
}

func (f *fakeInfoPanel) SetContent(title, description string) {
	f.title, f.description = title, description
	f.setCalls++
}
func (f *fakeInfoPanel) Show() { f.shows++ }
func (f *fakeInfoPanel) Hide() { f.hides++ }

type fakeRecorder struct {
	events []string
}

func (f *fakeRecorder) Record(kind string, cardIndex int) {
	f.events = append(f.events, kind)
}

func testDeck(t *testing.T, n int) []domain.CardData {
	t.Helper()
	inputs := make([]domain.CardInput, n)
	for i := range inputs {
		inputs[i] = domain.CardInput{
			Title:       string(rune('A' + i)),
			Description: "card",
		}
	}
	deck, err := domain.BuildDeck(inputs, nil, n)
	if err != nil {
		t.Fatalf("BuildDeck: %v", err)
	}
	return deck
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SpawnStagger = 0
	return cfg
}

// newTestController spawns all n cards and sets a viewport where the
// derived scale factor is exactly 1.
func newTestController(t *testing.T, n int, opts ...Option) *Controller {
	t.Helper()
	ct, err := NewController(testConfig(), testDeck(t, n), opts...)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	ct.Resize(1440, 900)
	ct.Tick(frame)
	if len(ct.Cards()) != n {
		t.Fatalf("spawned %d cards, want %d", len(ct.Cards()), n)
	}
	if ct.ViewScale() != 1 {
		t.Fatalf("view scale = %v, want 1", ct.ViewScale())
	}
	return ct
}

func assertPermutation(t *testing.T, ct *Controller) {
	t.Helper()
	seen := map[int]bool{}
	for _, c := range ct.Cards() {
		if c.ZIndex < 0 || c.ZIndex >= len(ct.Cards()) {
			t.Fatalf("rank %d out of range", c.ZIndex)
		}
		if seen[c.ZIndex] {
			t.Fatalf("duplicate rank %d", c.ZIndex)
		}
		seen[c.ZIndex] = true
	}
}

func TestNewControllerRejectsDegenerateBands(t *testing.T) {
	cfg := testConfig()
	cfg.Geometry.SiblingRadius = Band{Min: 350, Max: 150}
	if _, err := NewController(cfg, testDeck(t, 3)); err == nil {
		t.Fatal("degenerate band accepted")
	}
	cfg = testConfig()
	cfg.Geometry.ScaleRadius = Band{Min: 100, Max: 100}
	if _, err := NewController(cfg, testDeck(t, 3)); err == nil {
		t.Fatal("zero-width band accepted")
	}
}

func TestRankPermutationUnderRandomReorders(t *testing.T) {
	ct := newTestController(t, 8)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		card := ct.Cards()[rng.Intn(8)]
		if rng.Intn(2) == 0 {
			ct.BringToFront(card)
			if card.ZIndex != 7 {
				t.Fatalf("BringToFront left rank %d", card.ZIndex)
			}
		} else {
			want := rng.Intn(8)
			ct.UpdateCardOrder(card, want)
			if card.ZIndex != want {
				t.Fatalf("UpdateCardOrder left rank %d, want %d", card.ZIndex, want)
			}
		}
		assertPermutation(t, ct)
	}
}

func TestUpdateCardOrderShiftSemantics(t *testing.T) {
	ct := newTestController(t, 4)
	cards := ct.Cards()
	// Ranks start as spawn order 0,1,2,3. Move rank 3 down to rank 1:
	// former ranks 1 and 2 shift up.
	ct.UpdateCardOrder(cards[3], 1)
	got := []int{cards[0].ZIndex, cards[1].ZIndex, cards[2].ZIndex, cards[3].ZIndex}
	want := []int{0, 2, 3, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ranks = %v, want %v", got, want)
		}
	}
	// Move it back up to the top: ranks in (1, 3] shift down.
	ct.UpdateCardOrder(cards[3], 3)
	got = []int{cards[0].ZIndex, cards[1].ZIndex, cards[2].ZIndex, cards[3].ZIndex}
	want = []int{0, 1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ranks = %v, want %v", got, want)
		}
	}
}

func TestClickExpandsTopCard(t *testing.T) {
	presenter := &fakePresenter{}
	ct := newTestController(t, 8, WithPresenter(presenter))
	top := ct.TopCard()
	if top == nil || top.ZIndex != 7 {
		t.Fatalf("top card missing")
	}

	p := Pointer{X: top.X, Y: top.Y}
	top.PointerDown(p)
	top.PointerMove(Pointer{X: p.X + 4, Y: p.Y + 3})
	top.PointerUp(Pointer{X: p.X + 4, Y: p.Y + 3})

	if ct.Mode() != ModeExpanded {
		t.Fatalf("mode = %v, want expanded", ct.Mode())
	}
	if ct.PreviousMode() != ModeStack {
		t.Fatalf("previous mode = %v, want stack", ct.PreviousMode())
	}
	if ct.Expanded() != top {
		t.Fatal("expanded card mismatch")
	}
	if len(presenter.shown) != 1 || presenter.shown[0] != top.Data.Title {
		t.Fatalf("presenter shown = %v", presenter.shown)
	}
}

func TestDragSuppressesExpand(t *testing.T) {
	rec := &fakeRecorder{}
	ct := newTestController(t, 8, WithRecorder(rec))
	top := ct.TopCard()

	start := Pointer{X: top.X, Y: top.Y}
	top.PointerDown(start)
	if !top.Dragging() {
		t.Fatal("stack pointer-down must begin a drag")
	}
	top.PointerMove(Pointer{X: start.X + 40, Y: start.Y})
	top.PointerUp(Pointer{X: start.X + 40, Y: start.Y})

	if ct.Mode() != ModeStack {
		t.Fatalf("mode = %v after drag release, want stack", ct.Mode())
	}
	if top.Dragging() {
		t.Fatal("drag still active after release")
	}
	if top.TargetX != 0 || top.TargetY != 0 {
		t.Fatalf("release target = (%v,%v), want origin", top.TargetX, top.TargetY)
	}
	found := false
	for _, ev := range rec.events {
		if ev == EventDragRelease {
			found = true
		}
	}
	if !found {
		t.Fatalf("events = %v, want drag-release", rec.events)
	}
}

func TestPointerDownBringsCardToFront(t *testing.T) {
	ct := newTestController(t, 8)
	bottom := ct.Cards()[0]
	if bottom.ZIndex != 0 {
		t.Fatalf("setup: rank = %d", bottom.ZIndex)
	}
	bottom.PointerDown(Pointer{X: bottom.X, Y: bottom.Y})
	if bottom.ZIndex != 7 {
		t.Fatalf("rank after pointer-down = %d, want 7", bottom.ZIndex)
	}
	assertPermutation(t, ct)
}

func TestDragDistanceRemapsRank(t *testing.T) {
	ct := newTestController(t, 8)
	top := ct.TopCard()

	top.PointerDown(Pointer{X: top.X, Y: top.Y})
	top.PointerMove(Pointer{X: top.X + 40, Y: top.Y})

	// Band midpoint: remap(250, 150, 350, 7, 0) = 3.5, rounded to 4.
	top.X, top.Y = 250, 0
	top.TargetX, top.TargetY = 250, 0
	ct.Tick(frame)
	if top.ZIndex != 4 {
		t.Fatalf("rank at band midpoint = %d, want 4", top.ZIndex)
	}
	assertPermutation(t, ct)

	// Past the outer band edge the card sinks to the back.
	top.X, top.Y = 400, 0
	top.TargetX, top.TargetY = 400, 0
	ct.Tick(frame)
	if top.ZIndex != 0 {
		t.Fatalf("rank past band = %d, want 0", top.ZIndex)
	}
	assertPermutation(t, ct)
}

func TestToggleViewModeIdempotence(t *testing.T) {
	ct := newTestController(t, 8)

	ct.ToggleViewMode()
	if ct.Mode() != ModeGrid {
		t.Fatalf("mode = %v, want grid", ct.Mode())
	}
	if len(ct.Clones()) != 32 {
		t.Fatalf("clones = %d, want 32 (4 per card)", len(ct.Clones()))
	}

	ct.ToggleViewMode()
	if ct.Mode() != ModeStack {
		t.Fatalf("mode = %v, want stack", ct.Mode())
	}
	if len(ct.Clones()) != 0 {
		t.Fatalf("clones = %d after leaving grid, want 0", len(ct.Clones()))
	}
	offsets := ct.RowOffsets()
	for i, off := range offsets {
		if off != 0 {
			t.Fatalf("rowOffsets[%d] = %v, want 0", i, off)
		}
	}
}

func TestToggleIgnoredWhileExpanded(t *testing.T) {
	ct := newTestController(t, 4)
	ct.ExpandCard(ct.TopCard())
	ct.ToggleViewMode()
	if ct.Mode() != ModeExpanded {
		t.Fatalf("mode = %v, want expanded", ct.Mode())
	}
}

func TestGridPositionWrapCycle(t *testing.T) {
	ct := newTestController(t, 8)
	ct.ToggleViewMode()
	// Accumulate some slide so offsets are non-trivial.
	for i := 0; i < 30; i++ {
		ct.Tick(frame)
	}
	for index := 0; index < 8; index++ {
		for _, off := range []int{-2, -1, 0, 1, 2} {
			x1, y1 := ct.GridPosition(index, off)
			x2, y2 := ct.GridPosition(index, off+gridWrapSets*gridColumns)
			if math.Abs(x1-x2) > 1e-6 {
				t.Fatalf("wrap x mismatch at index %d offset %d: %v vs %v", index, off, x1, x2)
			}
			if y1 != y2 {
				t.Fatalf("wrap must not move y: %v vs %v", y1, y2)
			}
		}
	}
}

func TestGridRowsSlideInAlternatingDirections(t *testing.T) {
	ct := newTestController(t, 8)
	ct.ToggleViewMode()
	for i := 0; i < 60; i++ {
		ct.Tick(frame)
	}
	offsets := ct.RowOffsets()
	if !(offsets[0] > 0) || !(offsets[2] > 0) {
		t.Fatalf("rows 0 and 2 should accumulate forward: %v", offsets)
	}
	if !(offsets[1] < 0) {
		t.Fatalf("row 1 should travel the other way: %v", offsets)
	}
}

func TestHoverStallsGridSliding(t *testing.T) {
	ct := newTestController(t, 8)
	ct.ToggleViewMode()
	for i := 0; i < 120; i++ {
		ct.Tick(frame)
	}
	cruising := ct.slideSpeed
	if cruising < ct.cfg.CruiseSpeed*0.9 {
		t.Fatalf("slide speed %v never approached cruise %v", cruising, ct.cfg.CruiseSpeed)
	}

	card := ct.Cards()[0]
	ct.Hover(card.X, card.Y)
	for i := 0; i < 120; i++ {
		ct.Tick(frame)
	}
	if ct.slideSpeed > cruising*0.05 {
		t.Fatalf("slide speed %v did not ease toward 0 under hover", ct.slideSpeed)
	}
	assertPermutation(t, ct)
}

func TestGridScaleStaysInBounds(t *testing.T) {
	ct := newTestController(t, 8)
	for _, h := range []float64{200, 600, 900, 4000} {
		ct.Resize(1440, h)
		s := ct.GridScale()
		if s < gridScaleMin || s > gridScaleMax {
			t.Fatalf("grid scale %v out of [%v, %v] at height %v", s, gridScaleMin, gridScaleMax, h)
		}
	}
}

func TestExpandFromCloneFoldsOffsetAfterSettle(t *testing.T) {
	ct := newTestController(t, 8)
	ct.ToggleViewMode()

	var clone *Clone
	for _, cl := range ct.Clones() {
		if cl.Source.Index == 4 && cl.ColOffset == 1 {
			clone = cl
		}
	}
	if clone == nil {
		t.Fatal("clone not found")
	}
	cloneX, cloneY := ct.GridPosition(4, 1)

	ct.ExpandFromClone(clone)
	if ct.Mode() != ModeExpanded || ct.PreviousMode() != ModeGrid {
		t.Fatalf("mode = %v / prev = %v", ct.Mode(), ct.PreviousMode())
	}
	card := clone.Source
	if card.X != cloneX || card.Y != cloneY {
		t.Fatalf("expand must start from the clone position, got (%v,%v)", card.X, card.Y)
	}

	row := (4 / gridColumns) % gridColumns
	before := ct.RowOffsets()[row]

	// Let the settle delay elapse.
	for elapsed := time.Duration(0); elapsed < settleDelay+frame; elapsed += frame {
		ct.Tick(frame)
	}
	after := ct.RowOffsets()[row]
	if after == before {
		t.Fatal("column offset was never folded into the row offset")
	}
	// After the fold the canonical cell must land where the clone was.
	canonicalAfter, _ := ct.GridPosition(4, 0)
	if math.Abs(canonicalAfter-cloneX) > 1e-6 {
		t.Fatalf("canonical cell at %v, want clone position %v", canonicalAfter, cloneX)
	}
}

func TestCollapseBeforeSettleCancelsFold(t *testing.T) {
	ct := newTestController(t, 8)
	ct.ToggleViewMode()
	var clone *Clone
	for _, cl := range ct.Clones() {
		if cl.Source.Index == 0 && cl.ColOffset == -1 {
			clone = cl
		}
	}
	ct.ExpandFromClone(clone)
	before := ct.RowOffsets()

	// Collapse before the settle delay fires; the pending fold must die with
	// the superseded transition.
	ct.CollapseCard()
	for elapsed := time.Duration(0); elapsed < settleDelay*2; elapsed += frame {
		ct.Tick(frame)
	}
	after := ct.RowOffsets()
	row := 0
	drift := after[row] - before[row]
	// Only slide accumulation may move the offset, never a whole-column jump.
	if math.Abs(drift) >= ct.gridStride() {
		t.Fatalf("stale fold applied after collapse: drift %v", drift)
	}
	if ct.Mode() != ModeGrid {
		t.Fatalf("mode = %v, want grid", ct.Mode())
	}
}

func TestCollapseRestoresPreviousMode(t *testing.T) {
	presenter := &fakePresenter{}
	ct := newTestController(t, 8, WithPresenter(presenter))
	ct.ExpandCard(ct.TopCard())
	ct.CollapseCard()
	if ct.Mode() != ModeStack {
		t.Fatalf("mode = %v, want stack", ct.Mode())
	}
	if ct.Expanded() != nil {
		t.Fatal("expanded reference not cleared")
	}
	if presenter.hidden != 1 {
		t.Fatalf("HideDetail calls = %d, want 1", presenter.hidden)
	}
}

func TestInfoPanelForcedAndGuardedRefresh(t *testing.T) {
	info := &fakeInfoPanel{}
	ct := newTestController(t, 8, WithInfoPanel(info))

	// Spawn completion forces a synchronous update for the top card.
	if info.setCalls != 1 {
		t.Fatalf("setCalls = %d after spawn, want 1", info.setCalls)
	}
	topTitle := ct.TopCard().Data.Title
	if info.title != topTitle {
		t.Fatalf("info title = %q, want %q", info.title, topTitle)
	}

	// Bringing the already-shown top card forward must not restart a fade.
	hides := info.hides
	ct.BringToFront(ct.TopCard())
	if info.hides != hides {
		t.Fatal("refresh ran for an unchanged top card")
	}

	// A new top card fades: hide now, content swap after the fade delay.
	other := ct.Cards()[0]
	ct.BringToFront(other)
	if info.hides != hides+1 {
		t.Fatalf("hide not called for new top card")
	}
	for elapsed := time.Duration(0); elapsed < infoFadeDelay+frame; elapsed += frame {
		ct.Tick(frame)
	}
	if info.title != other.Data.Title {
		t.Fatalf("info title = %q, want %q", info.title, other.Data.Title)
	}
}

func TestRecorderReceivesLifecycleEvents(t *testing.T) {
	rec := &fakeRecorder{}
	ct := newTestController(t, 4, WithRecorder(rec))
	ct.ExpandCard(ct.TopCard())
	ct.CollapseCard()
	ct.ToggleViewMode()
	want := []string{EventExpand, EventCollapse, EventToggleView}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Fatalf("events = %v, want %v", rec.events, want)
		}
	}
}

func TestStaggeredSpawn(t *testing.T) {
	cfg := testConfig()
	cfg.SpawnStagger = 100 * time.Millisecond
	ct, err := NewController(cfg, testDeck(t, 4))
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	ct.Resize(1440, 900)

	ct.Tick(frame)
	if len(ct.Cards()) != 1 {
		t.Fatalf("cards after first tick = %d, want 1", len(ct.Cards()))
	}
	for elapsed := time.Duration(0); elapsed < 400*time.Millisecond; elapsed += frame {
		ct.Tick(frame)
	}
	if len(ct.Cards()) != 4 {
		t.Fatalf("cards after stagger window = %d, want 4", len(ct.Cards()))
	}
	assertPermutation(t, ct)
}

func TestHitTestPrefersHigherRank(t *testing.T) {
	ct := newTestController(t, 3)
	// Let the stack settle so all cards overlap near the center.
	for i := 0; i < 60; i++ {
		ct.Tick(frame)
	}
	card, clone := ct.HitTest(0, 0)
	if clone != nil {
		t.Fatal("clone hit outside grid mode")
	}
	if card == nil || card.ZIndex != 2 {
		t.Fatalf("hit card rank = %v, want top", card)
	}
}
