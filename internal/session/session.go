// Package session drives rounds of blackjack against a player's chip bank:
// it collects the wager, forwards the player's decisions, plays out the
// dealer and pays the winnings back into the bank.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/calvinwijaya/casino-night/internal/db"
	"github.com/calvinwijaya/casino-night/internal/game"
	"github.com/calvinwijaya/casino-night/pkg/apperror"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultStartingBalance is the bank a new player sits down with.
const DefaultStartingBalance = 250

// Recorder stores settled rounds.
type Recorder interface {
	SaveRoundResult(ctx context.Context, r db.RoundResult) error
}

type Option func(*Session)

func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithRoundFactory replaces how rounds are created, e.g. to deal stacked decks.
func WithRoundFactory(f func() *game.Round) Option {
	return func(s *Session) { s.newRound = f }
}

// WithMaxWager rejects wagers above max. Zero means no limit.
func WithMaxWager(max int) Option {
	return func(s *Session) { s.maxWager = max }
}

// Session is one player's sitting at the table.
type Session struct {
	id        string
	bank      *game.ChipBank
	round     *game.Round
	settled   bool
	closed    bool
	rounds    int
	maxWager  int
	recorder  Recorder
	newRound  func() *game.Round
	log       zerolog.Logger
	createdAt time.Time
	mu        sync.Mutex
}

// New creates a session holding initialBalance chips
func New(initialBalance int, opts ...Option) (*Session, error) {
	bank, err := game.NewChipBank(initialBalance)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:        uuid.New().String(),
		bank:      bank,
		newRound:  func() *game.Round { return game.NewRound() },
		log:       zerolog.Nop(),
		createdAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("session_id", s.id).Logger()

	return s, nil
}

// Deal withdraws the wager and starts a new round. A wager larger than the
// balance is reduced to the whole balance.
func (s *Session) Deal(ctx context.Context, wager int) (*game.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("%w: session %s is cashed out", game.ErrInvalidState, s.id)
	}
	if wager <= 0 {
		return nil, fmt.Errorf("%w: wager must be positive, got %d", game.ErrInvalidArgument, wager)
	}
	if s.maxWager > 0 && wager > s.maxWager {
		return nil, fmt.Errorf("%w: wager %d above table limit %d", game.ErrInvalidArgument, wager, s.maxWager)
	}
	if s.round != nil && s.round.InProgress() {
		return nil, fmt.Errorf("%w: round %s still in progress", game.ErrInvalidState, s.round.ID())
	}
	if s.bank.Balance() == 0 {
		return nil, apperror.ErrNoChips()
	}

	if wager > s.bank.Balance() {
		s.log.Info().Int("requested", wager).Int("balance", s.bank.Balance()).Msg("wager capped to balance")
		wager = s.bank.Balance()
	}

	r := s.newRound()
	if err := r.SetWager(wager); err != nil {
		return nil, err
	}
	s.bank.Withdraw(wager)
	s.round = r
	s.settled = false

	s.log.Debug().Str("round_id", r.ID()).Int("wager", wager).Msg("round dealt")

	// Aborted rounds are refunded and never recorded, so they are not counted
	if err := r.Start(); err != nil {
		if r.Fault() == nil {
			s.bank.Deposit(wager)
			s.settled = true
		}
		s.settleIfDone(ctx)
		return r, err
	}
	s.rounds++
	s.settleIfDone(ctx)
	return r, nil
}

// Hit draws a card for the player
func (s *Session) Hit(ctx context.Context) (game.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil {
		return game.Card{}, fmt.Errorf("%w: no round dealt", game.ErrInvalidState)
	}

	card, err := s.round.Hit()
	s.settleIfDone(ctx)
	return card, err
}

// Stand ends the player's turn and plays the dealer's hand to the end. It
// returns the cards the dealer drew.
func (s *Session) Stand(ctx context.Context) ([]game.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil {
		return nil, fmt.Errorf("%w: no round dealt", game.ErrInvalidState)
	}
	if err := s.round.Stand(); err != nil {
		return nil, err
	}
	if s.round.Status() != game.DealerTurn {
		// Player was already bust
		s.settleIfDone(ctx)
		return nil, nil
	}

	drawn, err := s.round.PlayOutDealer()
	s.settleIfDone(ctx)
	return drawn, err
}

// CashOut closes the session and returns its final view. It fails while a
// round is in progress, and later deals are refused.
func (s *Session) CashOut() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return View{}, apperror.ErrNotFound("Session")
	}
	if s.round != nil && s.round.InProgress() {
		return View{}, fmt.Errorf("%w: finish round %s before cashing out", game.ErrInvalidState, s.round.ID())
	}
	s.closed = true
	s.log.Info().Int("balance", s.bank.Balance()).Int("rounds", s.rounds).Msg("cashed out")
	return s.view(), nil
}

func (s *Session) settleIfDone(ctx context.Context) {
	if s.round.Status() == game.Resolved || s.round.Fault() != nil {
		s.settle(ctx)
	}
}

// settle pays out a finished round once. An aborted round refunds the wager.
func (s *Session) settle(ctx context.Context) {
	if s.settled {
		return
	}
	s.settled = true
	r := s.round

	if r.Fault() != nil {
		s.bank.Deposit(r.Wager())
		s.log.Error().Err(r.Fault()).Str("round_id", r.ID()).Int("refund", r.Wager()).Msg("round aborted, wager refunded")
		return
	}

	s.bank.Deposit(r.Winnings())
	s.log.Info().
		Str("round_id", r.ID()).
		Str("outcome", string(r.Outcome())).
		Int("wager", r.Wager()).
		Int("winnings", r.Winnings()).
		Int("balance", s.bank.Balance()).
		Msg("round settled")

	if s.recorder == nil {
		return
	}
	err := s.recorder.SaveRoundResult(ctx, db.RoundResult{
		SessionID:    s.id,
		RoundID:      r.ID(),
		Wager:        r.Wager(),
		Outcome:      r.Outcome(),
		Result:       r.Outcome().Result(),
		Winnings:     r.Winnings(),
		PlayerPoints: r.PlayerPoints(),
		DealerPoints: r.DealerPoints(),
		BalanceAfter: s.bank.Balance(),
		CreatedAt:    r.UpdatedAt(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("round_id", r.ID()).Msg("round not recorded")
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Balance() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bank.Balance()
}

func (s *Session) Breakdown() game.Breakdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bank.Breakdown()
}

// Round returns the current or most recent round, or nil before the first deal.
func (s *Session) Round() *game.Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

func (s *Session) RoundsPlayed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rounds
}

// Busted reports that the player is out of chips with nothing left in play.
func (s *Session) Busted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busted()
}

func (s *Session) busted() bool {
	return s.bank.Balance() == 0 && (s.round == nil || !s.round.InProgress())
}

// View is the session state as shown to the player.
type View struct {
	ID           string          `json:"id"`
	Balance      int             `json:"balance"`
	Chips        string          `json:"chips"`
	Breakdown    game.Breakdown  `json:"breakdown"`
	RoundsPlayed int             `json:"roundsPlayed"`
	Busted       bool            `json:"busted"`
	Round        *game.RoundView `json:"round"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	b := s.bank.Breakdown()
	v := View{
		ID:           s.id,
		Balance:      s.bank.Balance(),
		Chips:        b.String(),
		Breakdown:    b,
		RoundsPlayed: s.rounds,
		Busted:       s.busted(),
		CreatedAt:    s.createdAt,
	}
	if s.round != nil {
		rv := s.round.View()
		v.Round = &rv
	}
	return v
}
