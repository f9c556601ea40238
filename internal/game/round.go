package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	NotStarted    Status = "notStarted"    // Wager may be set, no cards dealt
	Dealing       Status = "dealing"       // Initial cards are being dealt
	PlayerTurn    Status = "playerTurn"    // Player decides to hit or stand
	DealerTurn    Status = "dealerTurn"    // Dealer draws to 17
	HandsCompared Status = "handsCompared" // Both stood, points are compared
	Resolved      Status = "resolved"      // Outcome and winnings are final
)

type Outcome string

const (
	OutcomeNone       Outcome = ""
	OutcomeBlackjack  Outcome = "Blackjack! You win!"
	OutcomePlayerBust Outcome = "You bust!"
	OutcomeDealerBust Outcome = "Dealer busts, you win!"
	OutcomeDealerWins Outcome = "The dealer beats your hand!"
	OutcomePlayerWins Outcome = "You beat the dealer's hand!"
	OutcomeTie        Outcome = "It's a tie!"
)

type Result string

const (
	ResultBlackjack Result = "blackjack"
	ResultWin       Result = "win"
	ResultPush      Result = "push"
	ResultLose      Result = "lose"
)

// Result classifies an outcome for bookkeeping.
func (o Outcome) Result() Result {
	switch o {
	case OutcomeBlackjack:
		return ResultBlackjack
	case OutcomeDealerBust, OutcomePlayerWins:
		return ResultWin
	case OutcomeTie:
		return ResultPush
	default:
		return ResultLose
	}
}

const (
	// Blackjack is the best total and the bust threshold.
	Blackjack = 21

	// DealerStandsOn is the total at or above which the dealer stops drawing.
	DealerStandsOn = 17
)

// Round is one hand of blackjack between the player and the dealer. Commands
// move it through NotStarted, PlayerTurn, DealerTurn and Resolved; Dealing and
// HandsCompared are passed through inside a single command.
//
// Points are plain sums of card values. An Ace always counts 11.
type Round struct {
	id           string
	deck         *Deck
	rng          *rand.Rand
	playerHand   []Card
	dealerHand   []Card
	playerPoints int
	dealerPoints int
	wager        int
	winnings     int
	status       Status
	outcome      Outcome
	fault        error
	createdAt    time.Time
	updatedAt    time.Time
}

type RoundOption func(*Round)

// WithDeck makes the round deal from d as-is instead of a freshly shuffled deck.
func WithDeck(d *Deck) RoundOption {
	return func(r *Round) { r.deck = d }
}

// WithRand sets the generator used to shuffle the fresh deck.
func WithRand(rng *rand.Rand) RoundOption {
	return func(r *Round) { r.rng = rng }
}

func WithID(id string) RoundOption {
	return func(r *Round) { r.id = id }
}

// NewRound creates a round in NotStarted
func NewRound(opts ...RoundOption) *Round {
	now := time.Now()
	r := &Round{
		id:        uuid.New().String(),
		status:    NotStarted,
		createdAt: now,
		updatedAt: now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetWager sets the stake for the round before it starts
func (r *Round) SetWager(amount int) error {
	if err := r.expect(NotStarted); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("%w: wager must be positive, got %d", ErrInvalidArgument, amount)
	}
	r.wager = amount
	return nil
}

// Start deals two cards to the player and, unless that is a blackjack, two to
// the dealer with the first one face down.
func (r *Round) Start() error {
	if err := r.expect(NotStarted); err != nil {
		return err
	}
	if r.wager <= 0 {
		return fmt.Errorf("%w: no wager set", ErrInvalidArgument)
	}

	r.status = Dealing
	if r.deck == nil {
		r.deck = NewDeck()
		r.deck.Shuffle(r.rng)
	}

	for i := 0; i < 2; i++ {
		if _, err := r.drawPlayer(); err != nil {
			return err
		}
	}
	if r.playerPoints == Blackjack {
		r.resolve(OutcomeBlackjack, r.wager*2)
		return nil
	}

	if _, err := r.drawDealer(); err != nil {
		return err
	}
	r.dealerHand[0].FlipDown()
	if _, err := r.drawDealer(); err != nil {
		return err
	}

	r.status = PlayerTurn
	r.touch()
	return nil
}

// Hit gives the player another card and busts them past 21
func (r *Round) Hit() (Card, error) {
	if err := r.expect(PlayerTurn); err != nil {
		return Card{}, err
	}

	card, err := r.drawPlayer()
	if err != nil {
		return Card{}, err
	}
	if r.playerPoints > Blackjack {
		r.resolve(OutcomePlayerBust, 0)
		return card, nil
	}

	r.touch()
	return card, nil
}

// Stand ends the player's turn and turns over the dealer's hole card. A
// player already over 21 (an opening pair of Aces) busts instead.
func (r *Round) Stand() error {
	if err := r.expect(PlayerTurn); err != nil {
		return err
	}
	if r.playerPoints > Blackjack {
		r.resolve(OutcomePlayerBust, 0)
		return nil
	}

	r.status = DealerTurn
	r.dealerHand[0].FlipUp()
	r.touch()
	return nil
}

// DealerStep plays one move of the dealer's fixed policy: draw below 17,
// otherwise stand and compare hands. It reports the drawn card, if any.
func (r *Round) DealerStep() (Card, bool, error) {
	if err := r.expect(DealerTurn); err != nil {
		return Card{}, false, err
	}

	if r.dealerPoints >= DealerStandsOn {
		r.compareHands()
		return Card{}, false, nil
	}

	card, err := r.drawDealer()
	if err != nil {
		return Card{}, false, err
	}
	if r.dealerPoints > Blackjack {
		r.resolve(OutcomeDealerBust, r.wager*2)
		return card, true, nil
	}

	r.touch()
	return card, true, nil
}

// PlayOutDealer runs DealerStep until the round leaves DealerTurn and returns
// the cards the dealer drew.
func (r *Round) PlayOutDealer() ([]Card, error) {
	if err := r.expect(DealerTurn); err != nil {
		return nil, err
	}

	var drawn []Card
	for r.status == DealerTurn {
		card, ok, err := r.DealerStep()
		if err != nil {
			return drawn, err
		}
		if ok {
			drawn = append(drawn, card)
		}
	}
	return drawn, nil
}

func (r *Round) compareHands() {
	r.status = HandsCompared
	switch {
	case r.dealerPoints > r.playerPoints:
		r.resolve(OutcomeDealerWins, 0)
	case r.dealerPoints < r.playerPoints:
		r.resolve(OutcomePlayerWins, r.wager*2)
	default:
		r.resolve(OutcomeTie, r.wager)
	}
}

func (r *Round) resolve(outcome Outcome, winnings int) {
	r.status = Resolved
	r.outcome = outcome
	r.winnings = winnings
	r.touch()
}

func (r *Round) drawPlayer() (Card, error) {
	card, err := r.draw()
	if err != nil {
		return Card{}, err
	}
	card.FlipUp()
	r.playerHand = append(r.playerHand, card)
	r.playerPoints += card.Value()
	return card, nil
}

// drawDealer counts the card toward the dealer's points whether or not it is
// later turned face down.
func (r *Round) drawDealer() (Card, error) {
	card, err := r.draw()
	if err != nil {
		return Card{}, err
	}
	card.FlipUp()
	r.dealerHand = append(r.dealerHand, card)
	r.dealerPoints += card.Value()
	return card, nil
}

func (r *Round) draw() (Card, error) {
	card, err := r.deck.Draw()
	if err != nil {
		r.fault = fmt.Errorf("round %s aborted: %w", r.id, err)
		r.touch()
		return Card{}, r.fault
	}
	return card, nil
}

func (r *Round) expect(want Status) error {
	if r.fault != nil {
		return r.fault
	}
	if r.status != want {
		return fmt.Errorf("%w: round is %s, want %s", ErrInvalidState, r.status, want)
	}
	return nil
}

func (r *Round) touch() {
	r.updatedAt = time.Now()
}

func (r *Round) ID() string           { return r.id }
func (r *Round) Status() Status       { return r.status }
func (r *Round) Outcome() Outcome     { return r.outcome }
func (r *Round) Wager() int           { return r.wager }
func (r *Round) Winnings() int        { return r.winnings }
func (r *Round) PlayerPoints() int    { return r.playerPoints }
func (r *Round) DealerPoints() int    { return r.dealerPoints }
func (r *Round) CreatedAt() time.Time { return r.createdAt }
func (r *Round) UpdatedAt() time.Time { return r.updatedAt }

// Fault returns the error that aborted the round, if any.
func (r *Round) Fault() error { return r.fault }

// InProgress reports whether the round has been started and not yet resolved
// or aborted.
func (r *Round) InProgress() bool {
	return r.fault == nil && r.status != NotStarted && r.status != Resolved
}

// PlayerHand returns a copy of the player's cards
func (r *Round) PlayerHand() []Card {
	return append([]Card(nil), r.playerHand...)
}

// DealerHand returns a copy of the dealer's cards, the hole card face down
// until the player stands
func (r *Round) DealerHand() []Card {
	return append([]Card(nil), r.dealerHand...)
}

// VisibleDealerPoints sums only the dealer's face-up cards.
func (r *Round) VisibleDealerPoints() int {
	points := 0
	for _, c := range r.dealerHand {
		if c.FaceUp() {
			points += c.Value()
		}
	}
	return points
}

// RoundView is the state of a round as it may be shown to the player.
type RoundView struct {
	ID           string    `json:"id"`
	Status       Status    `json:"status"`
	Wager        int       `json:"wager"`
	Winnings     int       `json:"winnings"`
	Outcome      Outcome   `json:"outcome,omitempty"`
	PlayerHand   []Card    `json:"playerHand"`
	DealerHand   []Card    `json:"dealerHand"`
	PlayerPoints int       `json:"playerPoints"`
	DealerPoints int       `json:"dealerPoints"`
	Error        string    `json:"error,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// View returns the round's current state. DealerPoints counts only face-up
// cards so the hole card's value is not leaked.
func (r *Round) View() RoundView {
	v := RoundView{
		ID:           r.id,
		Status:       r.status,
		Wager:        r.wager,
		Winnings:     r.winnings,
		Outcome:      r.outcome,
		PlayerHand:   r.PlayerHand(),
		DealerHand:   r.DealerHand(),
		PlayerPoints: r.playerPoints,
		DealerPoints: r.VisibleDealerPoints(),
		UpdatedAt:    r.updatedAt,
	}
	if v.PlayerHand == nil {
		v.PlayerHand = []Card{}
	}
	if v.DealerHand == nil {
		v.DealerHand = []Card{}
	}
	if r.fault != nil {
		v.Error = r.fault.Error()
	}
	return v
}
