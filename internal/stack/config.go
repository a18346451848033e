package stack

import (
	"errors"
	"fmt"
	"time"
)

// Band is a [Min, Max] pixel distance range used to remap a dragged card's
// distance from center into another quantity.
type Band struct {
	Min float64
	Max float64
}

// validate rejects degenerate bands up front; a Min >= Max band would turn
// the remap division into NaN or garbage at runtime.
func (b Band) validate(name string) error {
	if b.Min >= b.Max {
		return fmt.Errorf("%s band [%v, %v]: %w", name, b.Min, b.Max, ErrDegenerateBand)
	}
	return nil
}

// Geometry carries the base pixel constants every card computation scales by
// the viewport factor.
type Geometry struct {
	CardWidth     float64
	CardHeight    float64
	GridGap       float64
	ScaleRadius   Band
	SiblingRadius Band
	DragThreshold float64
}

// Config holds the host-provided construction parameters for a Controller.
type Config struct {
	Geometry           Geometry
	MaxCards           int
	SpawnStagger       time.Duration
	CruiseSpeed        float64
	BaseViewportHeight float64
}

// ErrDegenerateBand and related errors describe construction failures.
var (
	ErrDegenerateBand = errors.New("degenerate radius band")
	ErrInvalidCard    = errors.New("invalid card dimensions")
)

// DefaultConfig returns the tuned defaults the widget ships with.
func DefaultConfig() Config {
	return Config{
		Geometry: Geometry{
			CardWidth:     220,
			CardHeight:    300,
			GridGap:       24,
			ScaleRadius:   Band{Min: 100, Max: 420},
			SiblingRadius: Band{Min: 150, Max: 350},
			DragThreshold: 10,
		},
		MaxCards:           8,
		SpawnStagger:       120 * time.Millisecond,
		CruiseSpeed:        1.2,
		BaseViewportHeight: 900,
	}
}

// Validate fails fast on configuration that would produce NaN geometry.
func (c Config) Validate() error {
	if c.Geometry.CardWidth <= 0 || c.Geometry.CardHeight <= 0 {
		return ErrInvalidCard
	}
	if err := c.Geometry.ScaleRadius.validate("scale"); err != nil {
		return err
	}
	if err := c.Geometry.SiblingRadius.validate("sibling"); err != nil {
		return err
	}
	if c.Geometry.DragThreshold <= 0 {
		return errors.New("drag threshold must be positive")
	}
	if c.BaseViewportHeight <= 0 {
		return errors.New("base viewport height must be positive")
	}
	return nil
}
