package domain

// DefaultPalette holds the fallback colors cycled over cards that declare
// none of their own.
var DefaultPalette = []string{
	"#e8603c", "#3c8fe8", "#45b069", "#d8a531",
	"#9a5fd0", "#d05f8e", "#50b8b0", "#8a8f98",
}

// BuildDeck validates card inputs into the deck the widget spawns from.
// Cards beyond maxCards are discarded; cards without a color receive one
// from the palette by spawn position.
func BuildDeck(inputs []CardInput, palette []string, maxCards int) ([]CardData, error) {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if maxCards > 0 && len(inputs) > maxCards {
		inputs = inputs[:maxCards]
	}

	deck := make([]CardData, 0, len(inputs))
	for idx, in := range inputs {
		card, err := NewCardData(in)
		if err != nil {
			return nil, err
		}
		if card.Color == "" {
			card.Color = palette[idx%len(palette)]
		}
		deck = append(deck, card)
	}
	if len(deck) == 0 {
		return nil, ErrEmptyDeck
	}
	return deck, nil
}
