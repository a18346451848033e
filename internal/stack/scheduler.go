package stack

import "time"

// deferred is one pending scheduled action. Actions scheduled with after are
// keyed to the transition generation current at schedule time; sticky actions
// survive transitions.
type deferred struct {
	due    time.Duration
	gen    uint64
	sticky bool
	fn     func()
}

// scheduler sequences transition phases deterministically from the animation
// tick instead of wall-clock timers, so a superseding transition can cancel
// actions that have not fired yet and tests can drive it with synthetic time.
type scheduler struct {
	now     time.Duration
	gen     uint64
	pending []deferred
}

// after schedules fn to run once delay has elapsed, unless a newer transition
// supersedes it first.
func (s *scheduler) after(delay time.Duration, fn func()) {
	s.pending = append(s.pending, deferred{due: s.now + delay, gen: s.gen, fn: fn})
}

// afterAlways schedules fn unconditionally; transitions do not cancel it.
func (s *scheduler) afterAlways(delay time.Duration, fn func()) {
	s.pending = append(s.pending, deferred{due: s.now + delay, sticky: true, fn: fn})
}

// supersede cancels every non-sticky pending action and starts a new
// transition generation.
func (s *scheduler) supersede() {
	s.gen++
	kept := s.pending[:0]
	for _, d := range s.pending {
		if d.sticky {
			kept = append(kept, d)
		}
	}
	s.pending = kept
}

// advance moves scheduler time forward and fires due actions in schedule
// order. Actions from a canceled generation never run.
func (s *scheduler) advance(dt time.Duration) {
	s.now += dt
	kept := s.pending[:0]
	var fire []func()
	for _, d := range s.pending {
		stale := !d.sticky && d.gen != s.gen
		if stale {
			continue
		}
		if d.due <= s.now {
			fire = append(fire, d.fn)
			continue
		}
		kept = append(kept, d)
	}
	s.pending = kept
	for _, fn := range fire {
		fn()
	}
}
