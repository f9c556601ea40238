package game

import "errors"

var (
	// ErrInvalidArgument reports a malformed card index, wager or balance.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState reports a round command issued outside the state it is valid in.
	ErrInvalidState = errors.New("invalid state")

	// ErrEmptyDeck reports a draw from a deck with no cards left. It is fatal to the round.
	ErrEmptyDeck = errors.New("empty deck")
)
