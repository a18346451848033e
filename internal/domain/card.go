package domain

import (
	"regexp"
	"slices"
	"strings"
)

// MediaKind represents a selectable kind of embedded media.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

var validMediaKinds = []MediaKind{MediaImage, MediaVideo}

// MediaRef points at an external media asset referenced from a card's
// long-form description.
type MediaRef struct {
	Kind    MediaKind
	Source  string
	Caption string
}

// CardData is the immutable payload carried by one card. It is fixed at
// spawn time; only the card's visual state mutates afterwards.
type CardData struct {
	Title       string
	Description string
	Longform    string
	Color       string
	Media       []MediaRef
}

// CardInput carries raw per-card values before validation.
type CardInput struct {
	Title       string
	Description string
	Longform    string
	Color       string
	Media       []MediaRef
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// NewCardData validates raw input into a CardData. An empty color is allowed
// here; deck assembly substitutes a palette fallback.
func NewCardData(in CardInput) (CardData, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Color = strings.TrimSpace(in.Color)

	if in.Title == "" {
		return CardData{}, ErrInvalidTitle
	}
	if in.Color != "" && !hexColorPattern.MatchString(in.Color) {
		return CardData{}, ErrInvalidColor
	}
	media := make([]MediaRef, 0, len(in.Media))
	for _, ref := range in.Media {
		ref.Source = strings.TrimSpace(ref.Source)
		if ref.Source == "" {
			continue
		}
		if ref.Kind == "" {
			ref.Kind = MediaImage
		}
		if !slices.Contains(validMediaKinds, ref.Kind) {
			return CardData{}, ErrInvalidMediaKind
		}
		media = append(media, ref)
	}

	return CardData{
		Title:       in.Title,
		Description: in.Description,
		Longform:    in.Longform,
		Color:       in.Color,
		Media:       media,
	}, nil
}
