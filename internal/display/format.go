package display

import (
	"fmt"
	"strings"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/game"
)

// Card formats a card with suit colouring
func (s Styles) Card(c deck.Card) string {
	if c.IsRed() {
		return s.RedCard.Render(c.String())
	}
	return s.BlackCard.Render(c.String())
}

// Cards formats a bracketed list of cards
func (s Styles) Cards(cards []deck.Card) string {
	if len(cards) == 0 {
		return "[]"
	}
	formatted := make([]string, len(cards))
	for i, c := range cards {
		formatted[i] = s.Card(c)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// HiddenCards formats n face-down cards
func (s Styles) HiddenCards(n int) string {
	if n == 0 {
		return ""
	}
	return s.Hidden.Render("[" + strings.TrimSpace(strings.Repeat("## ", n)) + "]")
}

// PlayerLine formats one seat, marking the dealer
func (s Styles) PlayerLine(p game.PlayerView, dealer bool) string {
	marker := "  "
	if dealer {
		marker = "D "
	}

	cards := s.HiddenCards(p.CardCount)
	if len(p.Hand) > 0 {
		cards = s.Cards(p.Hand)
	}

	line := fmt.Sprintf("%s%-12s $%-6d", marker, p.Name, p.Chips)
	var status []string
	if p.CurrentBet > 0 {
		status = append(status, fmt.Sprintf("bet %d", p.CurrentBet))
	}
	switch {
	case p.Folded:
		status = append(status, "folded")
	case p.IsAllIn:
		status = append(status, "all-in")
	case p.LastAction != game.NoAction:
		status = append(status, p.LastAction.String())
	}
	if len(status) > 0 {
		line += " (" + strings.Join(status, ", ") + ")"
	}
	if cards != "" {
		line += " " + cards
	}

	if p.Folded {
		return s.Folded.Render(line)
	}
	return s.Player.Render(line)
}

// ActionList formats the options offered to a player, e.g. "[fold] [call 20] [raise 40-1000]"
func (s Styles) ActionList(opts game.ActionOptions) string {
	var actions []string
	for _, a := range opts.Actions {
		switch a {
		case game.Fold:
			actions = append(actions, s.Error.Render("[fold]"))
		case game.Check:
			actions = append(actions, s.Success.Render("[check]"))
		case game.Call:
			actions = append(actions, s.Success.Render(fmt.Sprintf("[call %d]", opts.ToCall)))
		case game.Bet, game.Raise:
			actions = append(actions, s.Warning.Render(fmt.Sprintf("[%s %d-%d]", a, opts.MinRaise, opts.MaxRaise)))
		case game.AllIn:
			actions = append(actions, s.Warning.Render("[allin]"))
		}
	}
	if len(actions) == 0 {
		return s.Error.Render("[no actions available]")
	}
	return s.Actions.Render("Actions: ") + strings.Join(actions, " ")
}
