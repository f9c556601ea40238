package game

import (
	"fmt"
	"math/rand"
	"time"
)

type Deck struct {
	cards []Card
}

// NewDeck creates a new standard 52-card deck, face up, in ascending index order
func NewDeck() *Deck {
	deck := &Deck{cards: make([]Card, 0, DeckSize)}
	for i := 0; i < DeckSize; i++ {
		deck.cards = append(deck.cards, MustCard(i))
	}
	return deck
}

// NewStackedDeck creates a deck that deals the given cards in reverse order:
// the last card of the slice is drawn first.
func NewStackedDeck(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// NewRand returns a generator seeded from the clock, for callers that do not
// inject their own.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle(r *rand.Rand) {
	if r == nil {
		r = NewRand()
	}

	// Fisher-Yates shuffle algorithm
	for i := len(d.cards) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card of the deck, which is the last element
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, fmt.Errorf("%w: no cards left to draw", ErrEmptyDeck)
	}

	top := len(d.cards) - 1
	card := d.cards[top]
	d.cards = d.cards[:top]
	return card, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards, bottom first.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}
