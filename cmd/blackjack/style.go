package main

import (
	"strings"

	"github.com/calvinwijaya/casino-night/internal/db"
	"github.com/calvinwijaya/casino-night/internal/game"
	"github.com/pterm/pterm"
)

// handBox formats one hand in a titled box. points is shown only when the
// whole hand can be counted.
func handBox(title string, cards []game.Card, points int) string {
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)

	names := make([]string, 0, len(cards))
	for _, c := range cards {
		names = append(names, c.String())
	}
	hand := pterm.BgGreen.Sprint(" " + strings.Join(names, ", ") + " ")

	return pbox.WithTitle(pterm.LightCyan(title)).WithTitleTopLeft().
		Sprintf("%s\nPoints: %d", hand, points)
}

// printTable renders the player's and dealer's hands side by side. While the
// hole card is down only the dealer's face-up points are shown.
func printTable(r *game.Round, extra ...pterm.Panel) {
	player := pterm.Panel{Data: handBox("|YOUR HAND|", r.PlayerHand(), r.PlayerPoints())}
	dealer := pterm.Panel{Data: handBox("|DEALER|", r.DealerHand(), r.VisibleDealerPoints())}

	rows := [][]pterm.Panel{{player, dealer}}
	if len(extra) > 0 {
		rows = append(rows, extra)
	}
	pterm.DefaultPanel.WithPanels(rows).Render()
}

// outcomePanel shows the result of a resolved round.
func outcomePanel(r *game.Round) pterm.Panel {
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)

	var outcome string
	switch r.Outcome().Result() {
	case game.ResultBlackjack, game.ResultWin:
		outcome = pterm.LightGreen(string(r.Outcome()))
	case game.ResultPush:
		outcome = pterm.LightYellow(string(r.Outcome()))
	default:
		outcome = pterm.LightRed(string(r.Outcome()))
	}

	body := pterm.Sprintfln("%s\nWager: %d\nWinnings: %d", outcome, r.Wager(), r.Winnings())
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightYellow("|RESULT|")).WithTitleTopCenter().Sprint(body)}
}

// printStats prints the night's totals from the round history.
func printStats(stats *db.SessionStats) {
	if stats == nil || stats.RoundsPlayed == 0 {
		return
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Rounds", "Won", "Blackjacks", "Pushed", "Lost", "Wagered", "Won back", "Net"},
		{
			pterm.Sprint(stats.RoundsPlayed),
			pterm.Sprint(stats.RoundsWon),
			pterm.Sprint(stats.Blackjacks),
			pterm.Sprint(stats.RoundsPushed),
			pterm.Sprint(stats.RoundsLost),
			pterm.Sprint(stats.TotalWagered),
			pterm.Sprint(stats.TotalWinnings),
			pterm.Sprint(stats.Net),
		},
	}).Render()
}
