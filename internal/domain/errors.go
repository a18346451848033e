package domain

import "errors"

var (
	ErrInvalidTitle     = errors.New("invalid title")
	ErrInvalidColor     = errors.New("invalid color")
	ErrInvalidMediaKind = errors.New("invalid media kind")
	ErrEmptyDeck        = errors.New("empty deck")
)
