package game

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// card builds a card from its rank index (0 is Two, 12 is Ace) and suit index.
func card(rankIndex, suitIndex int) Card {
	return MustCard(suitIndex*cardsPerSuit + rankIndex)
}

func pip(value, suitIndex int) Card { return card(value-2, suitIndex) }

var (
	jack  = func(s int) Card { return card(9, s) }
	queen = func(s int) Card { return card(10, s) }
	king  = func(s int) Card { return card(11, s) }
	ace   = func(s int) Card { return card(12, s) }
)

// dealOrder stacks a deck so cards come out in the order given.
func dealOrder(cards ...Card) *Deck {
	stacked := make([]Card, len(cards))
	for i, c := range cards {
		stacked[len(cards)-1-i] = c
	}
	return NewStackedDeck(stacked)
}

func startedRound(t *testing.T, wager int, cards ...Card) *Round {
	t.Helper()
	r := NewRound(WithDeck(dealOrder(cards...)))
	require.NoError(t, r.SetWager(wager))
	require.NoError(t, r.Start())
	return r
}

func TestRound_Blackjack(t *testing.T) {
	r := startedRound(t, 10, ace(0), king(1))

	assert.Equal(t, Resolved, r.Status())
	assert.Equal(t, OutcomeBlackjack, r.Outcome())
	assert.Equal(t, "Blackjack! You win!", string(r.Outcome()))
	assert.Equal(t, 20, r.Winnings())
	assert.Equal(t, 21, r.PlayerPoints())
	assert.Empty(t, r.DealerHand(), "dealer is not dealt on a blackjack")
	assert.False(t, r.InProgress())
}

func TestRound_StartDealsDealerHoleCardFaceDown(t *testing.T) {
	r := startedRound(t, 10, pip(10, 0), pip(8, 0), pip(4, 1), pip(2, 1))

	assert.Equal(t, PlayerTurn, r.Status())
	assert.True(t, r.InProgress())
	assert.Equal(t, 18, r.PlayerPoints())

	dealer := r.DealerHand()
	require.Len(t, dealer, 2)
	assert.False(t, dealer[0].FaceUp())
	assert.True(t, dealer[1].FaceUp())
	assert.Equal(t, "<facedown>", dealer[0].String())

	assert.Equal(t, 6, r.DealerPoints(), "hole card counts toward the running total")
	assert.Equal(t, 2, r.VisibleDealerPoints())
	assert.Equal(t, 2, r.View().DealerPoints)
}

func TestRound_PlayerBusts(t *testing.T) {
	r := startedRound(t, 10, pip(10, 0), pip(3, 0), pip(5, 1), pip(6, 1), pip(10, 2))

	c, err := r.Hit()
	require.NoError(t, err)
	assert.Equal(t, "10 of Hearts", c.String())

	assert.Equal(t, 23, r.PlayerPoints())
	assert.Equal(t, Resolved, r.Status())
	assert.Equal(t, OutcomePlayerBust, r.Outcome())
	assert.Equal(t, 0, r.Winnings())
}

func TestRound_HitUntilBust(t *testing.T) {
	r := startedRound(t, 5, pip(2, 0), pip(3, 0), pip(9, 1), pip(9, 2), pip(4, 0), pip(5, 0), pip(9, 3))

	_, err := r.Hit()
	require.NoError(t, err)
	assert.Equal(t, 9, r.PlayerPoints())
	_, err = r.Hit()
	require.NoError(t, err)
	assert.Equal(t, 14, r.PlayerPoints())
	assert.Equal(t, PlayerTurn, r.Status())

	_, err = r.Hit()
	require.NoError(t, err)
	assert.Equal(t, 23, r.PlayerPoints())
	assert.Equal(t, OutcomePlayerBust, r.Outcome())
}

func TestRound_DealerBusts(t *testing.T) {
	r := startedRound(t, 10, pip(10, 0), pip(8, 0), pip(4, 1), pip(2, 1), pip(8, 2), pip(10, 3))

	require.NoError(t, r.Stand())
	assert.Equal(t, DealerTurn, r.Status())
	assert.True(t, r.DealerHand()[0].FaceUp(), "hole card is revealed on stand")

	c, drew, err := r.DealerStep()
	require.NoError(t, err)
	assert.True(t, drew)
	assert.Equal(t, "8 of Hearts", c.String())
	assert.Equal(t, 14, r.DealerPoints())
	assert.Equal(t, DealerTurn, r.Status())

	_, drew, err = r.DealerStep()
	require.NoError(t, err)
	assert.True(t, drew)

	assert.Equal(t, 24, r.DealerPoints())
	assert.Equal(t, Resolved, r.Status())
	assert.Equal(t, OutcomeDealerBust, r.Outcome())
	assert.Equal(t, 20, r.Winnings())
}

func TestRound_ShowdownOutcomes(t *testing.T) {
	tests := []struct {
		name         string
		cards        []Card
		playerPoints int
		dealerPoints int
		outcome      Outcome
		winnings     int
	}{
		{
			name:         "dealer beats player",
			cards:        []Card{pip(10, 0), pip(8, 0), pip(10, 1), pip(9, 1)},
			playerPoints: 18,
			dealerPoints: 19,
			outcome:      OutcomeDealerWins,
			winnings:     0,
		},
		{
			name:         "player beats dealer",
			cards:        []Card{king(0), queen(0), pip(10, 1), pip(8, 1)},
			playerPoints: 20,
			dealerPoints: 18,
			outcome:      OutcomePlayerWins,
			winnings:     20,
		},
		{
			name:         "tie returns the stake",
			cards:        []Card{king(0), queen(0), pip(10, 1), jack(1)},
			playerPoints: 20,
			dealerPoints: 20,
			outcome:      OutcomeTie,
			winnings:     10,
		},
		{
			name:         "dealer stands on 17",
			cards:        []Card{pip(10, 0), pip(6, 0), pip(10, 1), pip(7, 1)},
			playerPoints: 16,
			dealerPoints: 17,
			outcome:      OutcomeDealerWins,
			winnings:     0,
		},
		{
			name:         "dealer draws to a win",
			cards:        []Card{pip(10, 0), pip(8, 0), pip(5, 1), pip(6, 1), pip(9, 2)},
			playerPoints: 18,
			dealerPoints: 20,
			outcome:      OutcomeDealerWins,
			winnings:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := startedRound(t, 10, tt.cards...)
			require.NoError(t, r.Stand())

			_, err := r.PlayOutDealer()
			require.NoError(t, err)

			assert.Equal(t, Resolved, r.Status())
			assert.Equal(t, tt.playerPoints, r.PlayerPoints())
			assert.Equal(t, tt.dealerPoints, r.DealerPoints())
			assert.Equal(t, tt.outcome, r.Outcome())
			assert.Equal(t, tt.winnings, r.Winnings())
		})
	}
}

func TestRound_DealerStandsWithoutDrawing(t *testing.T) {
	r := startedRound(t, 10, pip(10, 0), pip(8, 0), pip(10, 1), pip(9, 1))
	require.NoError(t, r.Stand())

	_, drew, err := r.DealerStep()
	require.NoError(t, err)
	assert.False(t, drew)
	assert.Len(t, r.DealerHand(), 2)
	assert.Equal(t, Resolved, r.Status())
}

func TestRound_PlayOutDealerReturnsDraws(t *testing.T) {
	r := startedRound(t, 10, pip(10, 0), pip(8, 0), pip(4, 1), pip(2, 1), pip(8, 2), pip(10, 3))
	require.NoError(t, r.Stand())

	drawn, err := r.PlayOutDealer()
	require.NoError(t, err)
	require.Len(t, drawn, 2)
	assert.Equal(t, "8 of Hearts", drawn[0].String())
	assert.Equal(t, "10 of Spades", drawn[1].String())
}

func TestRound_AcesAlwaysCountEleven(t *testing.T) {
	r := startedRound(t, 10, ace(0), ace(1), pip(5, 2), pip(6, 2), pip(2, 3))

	assert.Equal(t, 22, r.PlayerPoints())
	assert.Equal(t, PlayerTurn, r.Status(), "an opening 22 is checked on the player's first decision")

	_, err := r.Hit()
	require.NoError(t, err)
	assert.Equal(t, OutcomePlayerBust, r.Outcome())
}

func TestRound_StandOnOpeningPairOfAcesBusts(t *testing.T) {
	r := startedRound(t, 10, ace(0), ace(1), pip(10, 2), pip(8, 2))

	require.NoError(t, r.Stand())
	assert.Equal(t, Resolved, r.Status())
	assert.Equal(t, OutcomePlayerBust, r.Outcome())
	assert.Equal(t, 0, r.Winnings())
	assert.False(t, r.DealerHand()[0].FaceUp(), "dealer never plays")

	_, err := r.PlayOutDealer()
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestRound_ResolvedIsFinal(t *testing.T) {
	r := startedRound(t, 10, ace(0), king(1))

	_, err := r.Hit()
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.True(t, errors.Is(r.Stand(), ErrInvalidState))
	_, _, err = r.DealerStep()
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.True(t, errors.Is(r.Start(), ErrInvalidState))
	assert.True(t, errors.Is(r.SetWager(50), ErrInvalidState))

	assert.Equal(t, OutcomeBlackjack, r.Outcome())
	assert.Equal(t, 20, r.Winnings())
	assert.Equal(t, 10, r.Wager())
}

func TestRound_InvalidState(t *testing.T) {
	t.Run("hit before start", func(t *testing.T) {
		r := NewRound()
		_, err := r.Hit()
		assert.True(t, errors.Is(err, ErrInvalidState))
	})

	t.Run("hit during dealer turn", func(t *testing.T) {
		r := startedRound(t, 10, pip(10, 0), pip(8, 0), pip(4, 1), pip(2, 1), pip(8, 2), pip(10, 3))
		require.NoError(t, r.Stand())
		_, err := r.Hit()
		assert.True(t, errors.Is(err, ErrInvalidState))
		assert.True(t, errors.Is(r.Stand(), ErrInvalidState))
	})

	t.Run("dealer step during player turn", func(t *testing.T) {
		r := startedRound(t, 10, pip(10, 0), pip(8, 0), pip(4, 1), pip(2, 1))
		_, _, err := r.DealerStep()
		assert.True(t, errors.Is(err, ErrInvalidState))
		_, err = r.PlayOutDealer()
		assert.True(t, errors.Is(err, ErrInvalidState))
	})

	t.Run("stand before start", func(t *testing.T) {
		assert.True(t, errors.Is(NewRound().Stand(), ErrInvalidState))
	})
}

func TestRound_Wager(t *testing.T) {
	r := NewRound()
	assert.True(t, errors.Is(r.SetWager(0), ErrInvalidArgument))
	assert.True(t, errors.Is(r.SetWager(-10), ErrInvalidArgument))
	assert.True(t, errors.Is(r.Start(), ErrInvalidArgument), "start needs a wager")
	assert.Equal(t, NotStarted, r.Status())

	require.NoError(t, r.SetWager(25))
	assert.Equal(t, 25, r.Wager())
}

func TestRound_EmptyDeckFaultsRound(t *testing.T) {
	r := NewRound(WithDeck(dealOrder(pip(10, 0), pip(8, 0), pip(4, 1))))
	require.NoError(t, r.SetWager(10))

	err := r.Start()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyDeck))
	assert.True(t, errors.Is(r.Fault(), ErrEmptyDeck))
	assert.False(t, r.InProgress())

	_, err = r.Hit()
	assert.True(t, errors.Is(err, ErrEmptyDeck), "later commands report the fault")
	assert.NotEmpty(t, r.View().Error)
}

func TestRound_ShuffledStart(t *testing.T) {
	r := NewRound(WithRand(rand.New(rand.NewSource(3))))
	require.NoError(t, r.SetWager(10))
	require.NoError(t, r.Start())

	if r.Status() == Resolved {
		assert.Equal(t, OutcomeBlackjack, r.Outcome())
		return
	}
	assert.Equal(t, PlayerTurn, r.Status())
	assert.Len(t, r.PlayerHand(), 2)
	assert.Len(t, r.DealerHand(), 2)
	assert.Equal(t, DeckSize-4, r.deck.Remaining())
}

func TestRound_HandsAreCopies(t *testing.T) {
	r := startedRound(t, 10, pip(10, 0), pip(8, 0), pip(4, 1), pip(2, 1))

	hand := r.DealerHand()
	hand[0].FlipUp()
	assert.False(t, r.DealerHand()[0].FaceUp())
}

func TestOutcome_Result(t *testing.T) {
	assert.Equal(t, ResultBlackjack, OutcomeBlackjack.Result())
	assert.Equal(t, ResultWin, OutcomeDealerBust.Result())
	assert.Equal(t, ResultWin, OutcomePlayerWins.Result())
	assert.Equal(t, ResultPush, OutcomeTie.Result())
	assert.Equal(t, ResultLose, OutcomePlayerBust.Result())
	assert.Equal(t, ResultLose, OutcomeDealerWins.Result())
}

func TestRound_View(t *testing.T) {
	v := NewRound().View()
	assert.Equal(t, NotStarted, v.Status)
	assert.NotNil(t, v.PlayerHand)
	assert.NotNil(t, v.DealerHand)

	r := startedRound(t, 10, pip(10, 0), pip(8, 0), pip(10, 1), pip(9, 1))
	require.NoError(t, r.Stand())
	assert.Equal(t, 19, r.View().DealerPoints, "revealed hole card shows in the view")
}
