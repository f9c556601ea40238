package game

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type Suit string
type Rank string

const (
	Clubs    Suit = "Clubs"
	Diamonds Suit = "Diamonds"
	Hearts   Suit = "Hearts"
	Spades   Suit = "Spades"
)

const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "Jack"
	Queen Rank = "Queen"
	King  Rank = "King"
	Ace   Rank = "Ace"
)

// DeckSize is the number of distinct cards, one per index in [0, DeckSize).
const DeckSize = 52

const cardsPerSuit = 13

var (
	suits = [...]Suit{Clubs, Diamonds, Hearts, Spades}
	ranks = [...]Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
)

// Symbolic reports whether the rank has a name rather than a number.
func (r Rank) Symbolic() bool {
	switch r {
	case Jack, Queen, King, Ace:
		return true
	}
	return false
}

// Card is one of the 52 playing cards. Suit, rank and value are fixed when the
// card is created; only its visibility changes afterwards.
type Card struct {
	suit   Suit
	rank   Rank
	value  int
	faceUp bool
}

// NewCard maps an index in [0, 52) to a face-up card. The suit is index/13 and
// the rank is index%13, numeric ranks first and Ace last.
func NewCard(index int) (Card, error) {
	if index < 0 || index >= DeckSize {
		return Card{}, fmt.Errorf("%w: card index %d outside [0,%d)", ErrInvalidArgument, index, DeckSize)
	}

	rankIndex := index % cardsPerSuit
	var value int
	switch {
	case rankIndex <= 8:
		value = rankIndex + 2
	case rankIndex == 12:
		value = 11 // Ace is always 11
	default:
		value = 10
	}

	return Card{
		suit:   suits[index/cardsPerSuit],
		rank:   ranks[rankIndex],
		value:  value,
		faceUp: true,
	}, nil
}

// MustCard is NewCard for indices known to be valid. It panics otherwise.
func MustCard(index int) Card {
	c, err := NewCard(index)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Card) Suit() Suit   { return c.suit }
func (c Card) Rank() Rank   { return c.rank }
func (c Card) Value() int   { return c.value }
func (c Card) FaceUp() bool { return c.faceUp }

func (c *Card) FlipUp()   { c.faceUp = true }
func (c *Card) FlipDown() { c.faceUp = false }

// String renders "<facedown>" for a concealed card, otherwise "Queen of Clubs"
// or "7 of Hearts".
func (c Card) String() string {
	if !c.faceUp {
		return "<facedown>"
	}
	if c.rank.Symbolic() {
		return string(c.rank) + " of " + string(c.suit)
	}
	return strconv.Itoa(c.value) + " of " + string(c.suit)
}

type cardJSON struct {
	Suit    Suit   `json:"suit,omitempty"`
	Rank    Rank   `json:"rank,omitempty"`
	Value   int    `json:"value,omitempty"`
	FaceUp  bool   `json:"faceUp"`
	Display string `json:"display"`
}

// MarshalJSON hides everything but the visibility flag of a face-down card.
func (c Card) MarshalJSON() ([]byte, error) {
	out := cardJSON{FaceUp: c.faceUp, Display: c.String()}
	if c.faceUp {
		out.Suit = c.suit
		out.Rank = c.rank
		out.Value = c.value
	}
	return json.Marshal(out)
}
