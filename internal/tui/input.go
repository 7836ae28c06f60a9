package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/holdem/internal/game"
)

var errEmptyInput = errors.New("enter an action")

// ParseInput turns a typed command into an action. Accepted forms are
// "fold", "check", "call", "allin", "bet N", "raise N" and "raise to N",
// where N is the new round total.
func ParseInput(input string) (game.Action, error) {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return game.Action{}, errEmptyInput
	}

	t, err := game.ParseActionType(parts[0])
	if err != nil {
		return game.Action{}, err
	}
	args := parts[1:]

	switch t {
	case game.Bet, game.Raise:
		if len(args) > 0 && args[0] == "to" {
			args = args[1:]
		}
		if len(args) != 1 {
			return game.Action{}, fmt.Errorf("usage: %s <amount>", t)
		}
		amount, err := strconv.Atoi(strings.TrimPrefix(args[0], "$"))
		if err != nil || amount <= 0 {
			return game.Action{}, fmt.Errorf("invalid amount %q", args[0])
		}
		return game.Action{Type: t, Amount: amount}, nil
	default:
		if len(args) > 0 {
			return game.Action{}, fmt.Errorf("%s takes no amount", t)
		}
		return game.Action{Type: t}, nil
	}
}
