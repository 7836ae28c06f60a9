package game

import "github.com/lox/holdem/internal/deck"

// Player is the per-seat record for a session. It is allocated once per seat
// and its hand-scoped fields are reset at the start of every hand.
type Player struct {
	Seat  int
	Name  string
	Human bool
	Chips int

	Hand             []deck.Card // hole cards
	CurrentBet       int         // chips committed this betting round
	TotalContributed int         // chips committed this hand
	Folded           bool
	IsAllIn          bool
	HasActed         bool // acted since the last bet or raise this round
	// LastRaiseIncrement is the size of the last full raise this player made
	// or faced this round; it sets the minimum raise.
	LastRaiseIncrement int
	Revealed           bool // hole cards face up (showdown)
	LastAction         ActionType
}

// NewPlayer creates a seated player with a starting stack
func NewPlayer(seat int, name string, human bool, chips int) *Player {
	return &Player{
		Seat:       seat,
		Name:       name,
		Human:      human,
		Chips:      chips,
		LastAction: NoAction,
	}
}

// ResetForNewHand clears everything scoped to a single hand
func (p *Player) ResetForNewHand() {
	p.Hand = p.Hand[:0]
	p.CurrentBet = 0
	p.TotalContributed = 0
	p.Folded = false
	p.IsAllIn = false
	p.HasActed = false
	p.LastRaiseIncrement = 0
	p.Revealed = false
	p.LastAction = NoAction
}

// ResetForNewRound clears per-street betting state
func (p *Player) ResetForNewRound() {
	p.CurrentBet = 0
	p.LastRaiseIncrement = 0
}

// CanAct returns true if the player can still make betting decisions this hand
func (p *Player) CanAct() bool {
	return !p.Folded && !p.IsAllIn
}

// InHand returns true if the player has not folded
func (p *Player) InHand() bool {
	return !p.Folded
}

// commit moves up to amount chips from the stack into the current bet and
// returns the number of chips actually moved.
func (p *Player) commit(amount int) int {
	if amount <= 0 {
		return 0
	}
	amount = min(amount, p.Chips)
	p.Chips -= amount
	p.CurrentBet += amount
	p.TotalContributed += amount
	if p.Chips == 0 {
		p.IsAllIn = true
	}
	return amount
}

// View returns a read-only snapshot of the player for renderers and policies
func (p *Player) View(showCards bool) PlayerView {
	v := PlayerView{
		Seat:             p.Seat,
		Name:             p.Name,
		Human:            p.Human,
		Chips:            p.Chips,
		CurrentBet:       p.CurrentBet,
		TotalContributed: p.TotalContributed,
		Folded:           p.Folded,
		IsAllIn:          p.IsAllIn,
		LastAction:       p.LastAction,
		CardCount:        len(p.Hand),
		Revealed:         p.Revealed,
	}
	if showCards || p.Revealed {
		v.Hand = append([]deck.Card(nil), p.Hand...)
	}
	return v
}

// PlayerView is an immutable copy of a player's public state. Hand is only
// populated when the cards are visible to the consumer.
type PlayerView struct {
	Seat             int
	Name             string
	Human            bool
	Chips            int
	CurrentBet       int
	TotalContributed int
	Folded           bool
	IsAllIn          bool
	LastAction       ActionType
	CardCount        int
	Hand             []deck.Card
	Revealed         bool
}
