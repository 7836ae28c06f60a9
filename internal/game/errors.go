package game

import (
	"errors"
	"fmt"
)

// Errors returned by Table and Engine. A rejected action is an *ActionError
// wrapping ErrInvalidAction; ErrInsufficientPlayers marks the end of a session.
var (
	ErrInvalidAction       = errors.New("invalid action")
	ErrInsufficientPlayers = errors.New("insufficient players")
	ErrDeckExhausted       = errors.New("deck exhausted")
	ErrHandInProgress      = errors.New("hand in progress")
	ErrNoHandInProgress    = errors.New("no hand in progress")
	ErrActionPending       = errors.New("betting round awaiting action")
	ErrEngineStopped       = errors.New("engine stopped")
)

// ActionError describes why an action was rejected. The actor keeps the turn.
type ActionError struct {
	Seat   int
	Action Action
	Reason string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("seat %d: %s rejected: %s", e.Seat, e.Action, e.Reason)
}

func (e *ActionError) Unwrap() error {
	return ErrInvalidAction
}
