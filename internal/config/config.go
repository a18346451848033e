package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/brygga/kortlek/internal/domain"
	"github.com/brygga/kortlek/internal/stack"
)

type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
	Deck      []CardConfig    `toml:"deck"`
	Palette   []string        `toml:"palette"`
	Geometry  GeometryConfig  `toml:"geometry"`
	Animation AnimationConfig `toml:"animation"`
	Keys      KeyConfig       `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type CardConfig struct {
	Title       string        `toml:"title"`
	Description string        `toml:"description"`
	Longform    string        `toml:"longform"`
	Color       string        `toml:"color"`
	Media       []MediaConfig `toml:"media"`
}

type MediaConfig struct {
	Kind    string `toml:"kind"`
	Source  string `toml:"source"`
	Caption string `toml:"caption"`
}

type GeometryConfig struct {
	CardWidth        float64 `toml:"card_width"`
	CardHeight       float64 `toml:"card_height"`
	GridGap          float64 `toml:"grid_gap"`
	ScaleRadiusMin   float64 `toml:"scale_radius_min"`
	ScaleRadiusMax   float64 `toml:"scale_radius_max"`
	SiblingRadiusMin float64 `toml:"sibling_radius_min"`
	SiblingRadiusMax float64 `toml:"sibling_radius_max"`
	DragThreshold    float64 `toml:"drag_threshold"`
}

type AnimationConfig struct {
	MaxCards           int     `toml:"max_cards"`
	SpawnStaggerMillis int     `toml:"spawn_stagger_ms"`
	CruiseSpeed        float64 `toml:"cruise_speed"`
	BaseViewportHeight float64 `toml:"base_viewport_height"`
	FrameRate          int     `toml:"frame_rate"`
	TipTimeoutSeconds  int     `toml:"tip_timeout_s"`
}

type KeyConfig struct {
	ToggleView string `toml:"toggle_view"`
	Back       string `toml:"back"`
	Copy       string `toml:"copy"`
	Quit       string `toml:"quit"`
}

// Default returns the configuration the widget ships with, including a small
// built-in demo deck so a first run shows something.
func Default(dbPath string) Config {
	base := stack.DefaultConfig()
	return Config{
		Database: DatabaseConfig{Path: dbPath},
		Logging: LoggingConfig{
			Level: "info",
		},
		Deck: defaultDeck(),
		Geometry: GeometryConfig{
			CardWidth:        base.Geometry.CardWidth,
			CardHeight:       base.Geometry.CardHeight,
			GridGap:          base.Geometry.GridGap,
			ScaleRadiusMin:   base.Geometry.ScaleRadius.Min,
			ScaleRadiusMax:   base.Geometry.ScaleRadius.Max,
			SiblingRadiusMin: base.Geometry.SiblingRadius.Min,
			SiblingRadiusMax: base.Geometry.SiblingRadius.Max,
			DragThreshold:    base.Geometry.DragThreshold,
		},
		Animation: AnimationConfig{
			MaxCards:           base.MaxCards,
			SpawnStaggerMillis: int(base.SpawnStagger / time.Millisecond),
			CruiseSpeed:        base.CruiseSpeed,
			BaseViewportHeight: base.BaseViewportHeight,
			FrameRate:          60,
			TipTimeoutSeconds:  8,
		},
		Keys: KeyConfig{
			ToggleView: "g",
			Back:       "esc",
			Copy:       "y",
			Quit:       "q",
		},
	}
}

func defaultDeck() []CardConfig {
	return []CardConfig{
		{Title: "Fjällräv", Description: "The arctic fox of the high fells", Longform: "# Fjällräv\n\nA mountain dweller built for cold.\n"},
		{Title: "Storlom", Description: "A black-throated loon of clear lakes", Longform: "# Storlom\n\nIts call carries across still water.\n"},
		{Title: "Järv", Description: "The wolverine, a solitary wanderer", Longform: "# Järv\n\nSmall bear-like mustelid of the taiga.\n"},
		{Title: "Kungsörn", Description: "The golden eagle over open moor", Longform: "# Kungsörn\n\nWingspan past two meters.\n"},
		{Title: "Lodjur", Description: "The lynx, rarely seen, always near", Longform: "# Lodjur\n\nTufted ears and silent steps.\n"},
		{Title: "Myskoxe", Description: "The musk ox of the tundra edge", Longform: "# Myskoxe\n\nAn ice-age relic still grazing.\n"},
		{Title: "Tjäder", Description: "The capercaillie of old pine woods", Longform: "# Tjäder\n\nIts spring play wakes the forest.\n"},
		{Title: "Utter", Description: "The otter returned to clean rivers", Longform: "# Utter\n\nA comeback story in running water.\n"},
	}
}

// Load reads TOML from path over the provided defaults. A missing file is
// not an error; the defaults stand.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if len(c.Deck) == 0 {
		return errors.New("deck must include at least one card")
	}
	if c.Animation.FrameRate <= 0 || c.Animation.FrameRate > 240 {
		return fmt.Errorf("animation.frame_rate out of range: %d", c.Animation.FrameRate)
	}
	if c.Animation.SpawnStaggerMillis < 0 {
		return errors.New("animation.spawn_stagger_ms must not be negative")
	}
	if c.Animation.MaxCards <= 0 {
		return errors.New("animation.max_cards must be positive")
	}
	// Geometry sanity, including the fail-fast radius band check, is owned
	// by the engine config; surface those errors at load time rather than
	// at controller construction.
	if err := c.StackConfig().Validate(); err != nil {
		return fmt.Errorf("geometry: %w", err)
	}
	return nil
}

// StackConfig converts file values into the engine's construction config.
func (c Config) StackConfig() stack.Config {
	return stack.Config{
		Geometry: stack.Geometry{
			CardWidth:     c.Geometry.CardWidth,
			CardHeight:    c.Geometry.CardHeight,
			GridGap:       c.Geometry.GridGap,
			ScaleRadius:   stack.Band{Min: c.Geometry.ScaleRadiusMin, Max: c.Geometry.ScaleRadiusMax},
			SiblingRadius: stack.Band{Min: c.Geometry.SiblingRadiusMin, Max: c.Geometry.SiblingRadiusMax},
			DragThreshold: c.Geometry.DragThreshold,
		},
		MaxCards:           c.Animation.MaxCards,
		SpawnStagger:       time.Duration(c.Animation.SpawnStaggerMillis) * time.Millisecond,
		CruiseSpeed:        c.Animation.CruiseSpeed,
		BaseViewportHeight: c.Animation.BaseViewportHeight,
	}
}

// DeckInputs converts file deck entries into domain card inputs.
func (c Config) DeckInputs() []domain.CardInput {
	inputs := make([]domain.CardInput, 0, len(c.Deck))
	for _, card := range c.Deck {
		media := make([]domain.MediaRef, 0, len(card.Media))
		for _, m := range card.Media {
			media = append(media, domain.MediaRef{
				Kind:    domain.MediaKind(m.Kind),
				Source:  m.Source,
				Caption: m.Caption,
			})
		}
		inputs = append(inputs, domain.CardInput{
			Title:       card.Title,
			Description: card.Description,
			Longform:    card.Longform,
			Color:       card.Color,
			Media:       media,
		})
	}
	return inputs
}

// BuildDeck validates the configured deck into spawnable card data.
func (c Config) BuildDeck() ([]domain.CardData, error) {
	return domain.BuildDeck(c.DeckInputs(), c.Palette, c.Animation.MaxCards)
}
