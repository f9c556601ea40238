// Command blackjack plays casino night at the terminal: one player, one
// dealer, a bank of chips and rounds of blackjack until the player quits or
// runs out of chips.
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/calvinwijaya/casino-night/config"
	"github.com/calvinwijaya/casino-night/internal/db"
	"github.com/calvinwijaya/casino-night/internal/game"
	"github.com/calvinwijaya/casino-night/internal/session"
	"github.com/calvinwijaya/casino-night/pkg/logger"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

const (
	actionHit   = "HIT"
	actionStand = "STAND"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config file")
		seed       = flag.Int64("seed", 0, "Shuffle seed, 0 seeds from the clock")
		verbose    = flag.Bool("v", false, "Log round settlements")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		pterm.Error.Printfln("Failed to load config: %v", err)
		os.Exit(1)
	}

	level := "warn"
	if *verbose {
		level = cfg.Log.Level
	}
	log := logger.New(level, true)

	s, history, err := newSession(cfg, log, *seed)
	if err != nil {
		pterm.Error.Printfln("Failed to open the table: %v", err)
		os.Exit(1)
	}
	if history != nil {
		defer history.Close()
	}

	ctx := context.Background()

	pterm.DefaultHeader.WithFullWidth().Println("Casino Night - Blackjack")
	pterm.Info.Printfln("Your starting chip balance is: %s", s.Breakdown())
	pterm.Println()

	for !s.Busted() {
		wager, ok := promptWager()
		if !ok {
			break
		}
		playRound(ctx, s, wager)

		pterm.Info.Printfln("Your chip balance is: %s", s.Breakdown())
		pterm.Println()
	}

	if s.Busted() {
		pterm.Error.Println("You are out of chips, better luck next time!")
	}
	if history != nil {
		stats, err := history.GetSessionStats(ctx, s.ID())
		if err != nil {
			log.Warn().Err(err).Msg("stats unavailable")
		}
		printStats(stats)
	}
	pterm.Println("Thank you for playing...")
}

func newSession(cfg *config.Config, log zerolog.Logger, seed int64) (*session.Session, *db.Database, error) {
	opts := []session.Option{
		session.WithLogger(log),
		session.WithMaxWager(cfg.Table.MaxWager),
	}

	history, err := db.NewDatabase(log)
	if err != nil {
		log.Warn().Err(err).Msg("round history unavailable, playing without it")
		history = nil
	} else {
		opts = append(opts, session.WithRecorder(history))
	}

	if seed != 0 {
		rng := rand.New(rand.NewSource(seed))
		opts = append(opts, session.WithRoundFactory(func() *game.Round {
			return game.NewRound(game.WithRand(rng))
		}))
	}

	s, err := session.New(cfg.Table.StartingBalance, opts...)
	if err != nil {
		if history != nil {
			history.Close()
		}
		return nil, nil, err
	}
	return s, history, nil
}

// promptWager asks until it gets a whole number. ok is false when the player
// quits with 0.
func promptWager() (int, bool) {
	for {
		input, err := pterm.DefaultInteractiveTextInput.
			WithDefaultText("Enter a wager (whole numbers only) or 0 to quit").
			Show()
		if err != nil {
			return 0, false
		}
		pterm.Println()

		wager, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil || wager < 0 {
			pterm.Warning.Printfln("%q is not a whole number of chips", input)
			continue
		}
		return wager, wager != 0
	}
}

func playRound(ctx context.Context, s *session.Session, wager int) {
	r, err := s.Deal(ctx, wager)
	if err != nil {
		if r != nil && r.Fault() != nil {
			pterm.Error.Printfln("%v, your wager was returned", r.Fault())
			return
		}
		pterm.Warning.Println(err.Error())
		return
	}
	if r.Wager() < wager {
		pterm.Info.Printfln("You only have %d chips, wagering all of them", r.Wager())
	}

	printTable(r)

	for r.Status() == game.PlayerTurn {
		action, err := pterm.DefaultInteractiveSelect.
			WithDefaultText("STAND or HIT").
			WithOptions([]string{actionHit, actionStand}).
			Show()
		if err != nil {
			action = actionStand
		}

		switch action {
		case actionHit:
			card, err := s.Hit(ctx)
			if err != nil {
				pterm.Error.Println(err.Error())
				return
			}
			pterm.Info.Printfln("You draw: %s", card)
			if r.Status() == game.PlayerTurn {
				printTable(r)
			}

		case actionStand:
			pterm.Info.Println("Dealer turns over the hole card")
			drawn, err := s.Stand(ctx)
			for _, card := range drawn {
				pterm.Info.Printfln("Dealer draws: %s", card)
			}
			if err != nil {
				pterm.Error.Println(err.Error())
				return
			}
		}
	}

	if r.Status() == game.Resolved {
		printTable(r, outcomePanel(r))
	}
}
