package tui

import (
	"time"

	"github.com/brygga/kortlek/internal/stack"
)

// Option defines a functional option for model configuration.
type Option func(*Model)

// WithKeyBindings overrides the stock key bindings.
func WithKeyBindings(kb KeyBindings) Option {
	return func(m *Model) {
		m.keys = newKeyMap(kb)
	}
}

// WithFrameRate sets the animation frame rate in frames per second.
func WithFrameRate(fps int) Option {
	return func(m *Model) {
		if fps > 0 && fps <= 240 {
			m.frameRate = fps
		}
	}
}

// WithTipTimeout sets how long the onboarding tip lingers before it
// dismisses itself.
func WithTipTimeout(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.tipTimeout = d
		}
	}
}

// WithRecorder forwards widget interaction events to r.
func WithRecorder(r stack.Recorder) Option {
	return func(m *Model) {
		m.recorder = r
	}
}

// WithClipboard overrides the clipboard writer used by the copy action.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.writeClipboard = write
		}
	}
}
