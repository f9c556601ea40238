package game

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	d := NewDeck()
	require.Equal(t, DeckSize, d.Remaining())

	for i, c := range d.Cards() {
		assert.Equal(t, MustCard(i), c)
		assert.True(t, c.FaceUp())
	}
}

func TestDeck_DrawTakesLastCard(t *testing.T) {
	d := NewDeck()

	c, err := d.Draw()
	require.NoError(t, err)
	assert.Equal(t, "Ace of Spades", c.String())
	assert.Equal(t, 51, d.Remaining())

	c, err = d.Draw()
	require.NoError(t, err)
	assert.Equal(t, "King of Spades", c.String())
}

func TestDeck_DrawEmpty(t *testing.T) {
	d := NewStackedDeck([]Card{MustCard(0)})

	_, err := d.Draw()
	require.NoError(t, err)

	_, err = d.Draw()
	assert.True(t, errors.Is(err, ErrEmptyDeck))
	assert.Equal(t, 0, d.Remaining())
}

func TestDeck_ShufflePreservesCards(t *testing.T) {
	d := NewDeck()
	d.Shuffle(rand.New(rand.NewSource(42)))

	cards := d.Cards()
	require.Len(t, cards, DeckSize)
	assert.ElementsMatch(t, NewDeck().Cards(), cards)
	assert.NotEqual(t, NewDeck().Cards(), cards)
}

func TestDeck_ShuffleIsDeterministicPerSeed(t *testing.T) {
	a, b := NewDeck(), NewDeck()
	a.Shuffle(rand.New(rand.NewSource(7)))
	b.Shuffle(rand.New(rand.NewSource(7)))
	assert.Equal(t, a.Cards(), b.Cards())
}

func TestDeck_ShuffleSpreadsTopCard(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tops := make(map[string]bool)

	for i := 0; i < 200; i++ {
		d := NewDeck()
		d.Shuffle(rng)
		c, err := d.Draw()
		require.NoError(t, err)
		tops[c.String()] = true
	}

	// 200 draws over 52 equally likely cards should hit most of them.
	assert.Greater(t, len(tops), 40)
}

func TestNewStackedDeck_CopiesInput(t *testing.T) {
	cards := []Card{MustCard(0), MustCard(1)}
	d := NewStackedDeck(cards)
	cards[1] = MustCard(51)

	c, err := d.Draw()
	require.NoError(t, err)
	assert.Equal(t, "3 of Clubs", c.String())
}
