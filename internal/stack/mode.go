package stack

// ViewMode represents a selectable widget view.
type ViewMode int

const (
	ModeStack ViewMode = iota
	ModeGrid
	ModeExpanded
)

// String returns the mode name used in logs and recorded events.
func (m ViewMode) String() string {
	switch m {
	case ModeStack:
		return "stack"
	case ModeGrid:
		return "grid"
	case ModeExpanded:
		return "expanded"
	default:
		return "unknown"
	}
}
