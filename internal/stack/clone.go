package stack

// Clone is an ephemeral visual proxy of a card, used only while the grid is
// active to render the illusion of infinite horizontal wrap. Clones carry no
// identity of their own: they are created on entering grid mode and fully
// destroyed on leaving it.
type Clone struct {
	Source    *Card
	ColOffset int

	// Scale is purely presentational; position is always derived from the
	// source card's grid cell plus the column offset.
	Scale float64
}

// cloneColumnOffsets places two clone sets on each side of the real cards.
var cloneColumnOffsets = []int{-2, -1, 1, 2}
