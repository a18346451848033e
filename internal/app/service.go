package app

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// InteractionEvent is one recorded user interaction with the widget.
type InteractionEvent struct {
	ID         string
	Kind       string
	CardIndex  int
	OccurredAt time.Time
}

// Service mediates between the widget and persistence: the one-shot
// onboarding-tip flag and the interaction event log.
type Service struct {
	repo    Repository
	idGen   IDGenerator
	clock   Clock
	tipDone bool
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:  repo,
		idGen: idGen,
		clock: clock,
	}
}

// TipSeen reports whether the onboarding tip was completed in an earlier
// session. Read once at startup.
func (s *Service) TipSeen(ctx context.Context) (bool, error) {
	seen, err := s.repo.TipSeen(ctx)
	if err != nil {
		return false, fmt.Errorf("read tip flag: %w", err)
	}
	s.tipDone = seen
	return seen, nil
}

// CompleteTip persists the onboarding flag the first time the completion
// condition is met; later calls are no-ops.
func (s *Service) CompleteTip(ctx context.Context) error {
	if s.tipDone {
		return nil
	}
	if err := s.repo.MarkTipSeen(ctx, s.clock()); err != nil {
		return fmt.Errorf("mark tip seen: %w", err)
	}
	s.tipDone = true
	return nil
}

// RecordInteraction stamps and stores one interaction event. cardIndex is -1
// for events not tied to a specific card.
func (s *Service) RecordInteraction(ctx context.Context, kind string, cardIndex int) (InteractionEvent, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return InteractionEvent{}, ErrInvalidEventKind
	}
	ev := InteractionEvent{
		ID:         s.idGen(),
		Kind:       kind,
		CardIndex:  cardIndex,
		OccurredAt: s.clock(),
	}
	if err := s.repo.RecordInteraction(ctx, ev); err != nil {
		return InteractionEvent{}, fmt.Errorf("record interaction: %w", err)
	}
	return ev, nil
}

// RecentInteractions returns up to limit events, newest first.
func (s *Service) RecentInteractions(ctx context.Context, limit int) ([]InteractionEvent, error) {
	events, err := s.repo.ListInteractions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return events, nil
}
