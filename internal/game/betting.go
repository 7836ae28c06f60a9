package game

import (
	"fmt"
	"strings"
)

// Phase is the current stage of a hand
type Phase int

const (
	Preflop Phase = iota
	Flop
	Turn
	River
	Showdown
)

func (p Phase) String() string {
	switch p {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	default:
		return "unknown"
	}
}

// streetCards is the number of community cards dealt when entering a phase
var streetCards = map[Phase]int{Flop: 3, Turn: 1, River: 1}

// ActionType is a discrete betting decision
type ActionType int

const (
	NoAction ActionType = iota
	Fold
	Check
	Call
	Bet
	Raise
	AllIn
)

func (a ActionType) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Bet:
		return "bet"
	case Raise:
		return "raise"
	case AllIn:
		return "allin"
	default:
		return ""
	}
}

// ParseActionType parses an action name as typed by a player
func ParseActionType(s string) (ActionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold", "f":
		return Fold, nil
	case "check", "k":
		return Check, nil
	case "call", "c":
		return Call, nil
	case "bet", "b":
		return Bet, nil
	case "raise", "r":
		return Raise, nil
	case "allin", "all-in", "a":
		return AllIn, nil
	default:
		return NoAction, fmt.Errorf("unknown action %q", s)
	}
}

// Action is a decision submitted for the current actor. For Bet and Raise the
// Amount is the player's new total bet for the round, not the increment.
type Action struct {
	Type   ActionType
	Amount int
}

func (a Action) String() string {
	if a.Type == Bet || a.Type == Raise {
		return fmt.Sprintf("%s %d", a.Type, a.Amount)
	}
	return a.Type.String()
}

// ActionOptions describes what the current actor may do. MinRaise and
// MaxRaise are round totals and are zero when no bet or raise is possible.
type ActionOptions struct {
	Seat     int
	Actions  []ActionType
	ToCall   int
	MinRaise int
	MaxRaise int
}

// Allows reports whether the action type is available
func (o ActionOptions) Allows(t ActionType) bool {
	for _, a := range o.Actions {
		if a == t {
			return true
		}
	}
	return false
}

// openRound prepares a betting round and selects the first actor
func (t *Table) openRound(phase Phase) {
	t.phase = phase
	for _, p := range t.players {
		if phase != Preflop {
			p.ResetForNewRound()
		}
		if p.CanAct() {
			p.HasActed = false
		}
	}
	if phase != Preflop {
		t.highestBet = 0
	}

	start := t.dealer
	if phase == Preflop {
		// Heads-up the seat after the big blind is the dealer, otherwise UTG
		start = t.bigBlindSeat
	}
	t.active = t.nextActor(start)
	t.updateRoundStatus()
}

// nextActor scans forward from the seat after from, wrapping, and returns the
// first player who can still act, or -1.
func (t *Table) nextActor(from int) int {
	n := len(t.players)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if t.players[seat].CanAct() {
			return seat
		}
	}
	return -1
}

// roundComplete reports whether the current betting round is over
func (t *Table) roundComplete() bool {
	inHand, canAct := 0, 0
	var last *Player
	for _, p := range t.players {
		if !p.InHand() {
			continue
		}
		inHand++
		if p.CanAct() {
			canAct++
			last = p
		}
	}
	if inHand <= 1 || canAct == 0 {
		return true
	}
	// Nobody left to bet against: the last live player only has to match
	if canAct == 1 && last.CurrentBet >= t.highestBet {
		return true
	}

	for _, p := range t.players {
		if !p.CanAct() {
			continue
		}
		if !p.HasActed || p.CurrentBet != t.highestBet {
			return false
		}
	}
	return true
}

func (t *Table) updateRoundStatus() {
	if t.active < 0 || t.roundComplete() {
		t.active = -1
		t.status = RoundComplete
		return
	}
	t.status = AwaitingAction
}

// minRaiseIncrement is the smallest legal raise size for a player
func (t *Table) minRaiseIncrement(p *Player) int {
	return max(t.opts.BigBlind, p.LastRaiseIncrement)
}

// validActions computes the options for a player
func (t *Table) validActions(p *Player) ActionOptions {
	opts := ActionOptions{Seat: p.Seat, Actions: []ActionType{Fold}}
	if !p.CanAct() {
		return opts
	}

	toCall := t.highestBet - p.CurrentBet
	if toCall <= 0 {
		opts.Actions = append(opts.Actions, Check)
	} else {
		opts.ToCall = min(toCall, p.Chips)
		opts.Actions = append(opts.Actions, Call)
	}

	maxTotal := p.CurrentBet + p.Chips
	if maxTotal > t.highestBet {
		if t.highestBet == 0 {
			opts.Actions = append(opts.Actions, Bet)
		} else {
			opts.Actions = append(opts.Actions, Raise)
		}
		opts.Actions = append(opts.Actions, AllIn)
		opts.MinRaise = min(t.highestBet+t.minRaiseIncrement(p), maxTotal)
		opts.MaxRaise = maxTotal
	} else {
		// Calling puts the player all-in
		opts.Actions = append(opts.Actions, AllIn)
	}
	return opts
}

// normalize resolves AllIn and no-cost calls into the concrete action applied
func (t *Table) normalize(p *Player, a Action) Action {
	switch a.Type {
	case AllIn:
		total := p.CurrentBet + p.Chips
		if total <= t.highestBet {
			return Action{Type: Call}
		}
		return Action{Type: Raise, Amount: total}
	case Call:
		if t.highestBet-p.CurrentBet <= 0 {
			return Action{Type: Check}
		}
	case Bet:
		a.Type = Raise
	}
	return a
}

// validate checks a normalized action against the betting rules
func (t *Table) validate(p *Player, a Action) error {
	reject := func(format string, args ...any) error {
		return &ActionError{Seat: p.Seat, Action: a, Reason: fmt.Sprintf(format, args...)}
	}

	switch a.Type {
	case Fold, Call:
		return nil
	case Check:
		if p.CurrentBet != t.highestBet {
			return reject("cannot check facing a bet of %d", t.highestBet)
		}
		return nil
	case Raise:
		maxTotal := p.CurrentBet + p.Chips
		if a.Amount > maxTotal {
			return reject("total %d exceeds stack, maximum is %d", a.Amount, maxTotal)
		}
		if a.Amount <= t.highestBet {
			return reject("total %d must exceed the current bet of %d", a.Amount, t.highestBet)
		}
		allIn := a.Amount == maxTotal
		if allIn {
			return nil
		}
		if t.highestBet == 0 && a.Amount < t.opts.BigBlind {
			return reject("minimum bet is %d", t.opts.BigBlind)
		}
		if inc := a.Amount - t.highestBet; inc < t.minRaiseIncrement(p) {
			return reject("minimum raise is to %d", t.highestBet+t.minRaiseIncrement(p))
		}
		return nil
	default:
		return reject("unknown action")
	}
}

// apply mutates state for a validated action and returns the label recorded
func (t *Table) apply(p *Player, a Action) ActionType {
	label := a.Type
	switch a.Type {
	case Fold:
		p.Folded = true
	case Check:
	case Call:
		t.pot.PlaceBet(p, t.highestBet-p.CurrentBet)
	case Raise:
		previous := t.highestBet
		increment := a.Amount - previous
		fullRaise := increment >= t.minRaiseIncrement(p)
		if previous == 0 {
			label = Bet
		}

		t.pot.PlaceBet(p, a.Amount-p.CurrentBet)
		t.highestBet = a.Amount

		for _, other := range t.players {
			if !other.InHand() {
				continue
			}
			if fullRaise {
				other.LastRaiseIncrement = increment
			}
			if other != p && other.CanAct() {
				other.HasActed = false
			}
		}
	}

	p.HasActed = true
	p.LastAction = label
	return label
}
