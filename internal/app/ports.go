package app

import (
	"context"
	"time"
)

// Repository is the persistence surface the widget needs: one onboarding
// flag plus an append-only interaction log.
type Repository interface {
	TipSeen(context.Context) (bool, error)
	MarkTipSeen(context.Context, time.Time) error
	RecordInteraction(context.Context, InteractionEvent) error
	ListInteractions(context.Context, int) ([]InteractionEvent, error)
}

// IDGenerator returns unique identifiers for new events.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time
