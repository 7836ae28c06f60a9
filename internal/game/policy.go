package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/lox/holdem/internal/deck"
)

// View is the read-only state handed to a Policy for the acting seat
type View struct {
	Seat       int
	Phase      Phase
	Hand       []deck.Card
	Community  []deck.Card
	Pot        int
	HighestBet int
	CurrentBet int
	Chips      int
	BigBlind   int
	Options    ActionOptions
	Players    []PlayerView
}

// ToCall returns the chips needed to match the table bet
func (v View) ToCall() int {
	return max(v.HighestBet-v.CurrentBet, 0)
}

// CanCheck reports whether the seat has nothing to call
func (v View) CanCheck() bool {
	return v.CurrentBet == v.HighestBet
}

// minBetTotal is the smallest legal bet or raise total, ignoring the stack
func (v View) minBetTotal() int {
	if v.Options.MinRaise > 0 {
		return v.Options.MinRaise
	}
	return max(v.HighestBet+v.BigBlind, v.BigBlind)
}

// Policy decides actions for a seat. Interactive policies return false and
// the engine waits for an external SubmitAction instead.
type Policy interface {
	Decide(v View) (Action, bool)
}

// HumanPolicy waits for external input
type HumanPolicy struct{}

func (HumanPolicy) Decide(View) (Action, bool) {
	return Action{}, false
}

// IsHuman reports whether a policy waits for external input
func IsHuman(p Policy) bool {
	_, ok := p.(HumanPolicy)
	return ok
}

// CallingPolicy checks when possible and otherwise calls
type CallingPolicy struct{}

func (CallingPolicy) Decide(v View) (Action, bool) {
	if v.CanCheck() {
		return Action{Type: Check}, true
	}
	return Action{Type: Call}, true
}

// profile holds the tunables that distinguish the random AI styles
type profile struct {
	checkRate    float64 // chance to check when unbet
	betMinBlinds int     // minimum opening bet in big blinds
	betPotBase   float64 // opening bet as a fraction of the pot, plus up to betPotSpread
	betPotSpread float64
	foldRate     float64 // chance to fold when facing a bet
	foldShare    float64 // only fold when the call exceeds this share of the stack; 0 means always
	raiseRate    float64 // chance to raise when facing a bet
	raiseSpread  float64 // extra raise size as a fraction of the stack
	callRate     float64 // otherwise call below this roll, fold above it
}

// StandardAI is a passive random player: it checks often, folds to large
// bets and rarely raises
type StandardAI struct {
	rng *rand.Rand
}

// NewStandardAI creates a standard AI drawing from rng
func NewStandardAI(rng *rand.Rand) *StandardAI {
	return &StandardAI{rng: rng}
}

var standardProfile = profile{
	checkRate:    0.6,
	betMinBlinds: 1,
	betPotBase:   0.3,
	betPotSpread: 0.3,
	foldRate:     0.6,
	foldShare:    0.6,
	raiseRate:    0.15,
	raiseSpread:  0.2,
	callRate:     0.8,
}

func (ai *StandardAI) Decide(v View) (Action, bool) {
	return decide(ai.rng, standardProfile, v), true
}

// AggressiveAI bets and raises more often and sizes bets larger
type AggressiveAI struct {
	rng *rand.Rand
}

// NewAggressiveAI creates an aggressive AI drawing from rng
func NewAggressiveAI(rng *rand.Rand) *AggressiveAI {
	return &AggressiveAI{rng: rng}
}

var aggressiveProfile = profile{
	checkRate:    0.35,
	betMinBlinds: 2,
	betPotBase:   0.4,
	betPotSpread: 0.6,
	foldRate:     0.10,
	raiseRate:    0.50,
	raiseSpread:  0.4,
	callRate:     1,
}

func (ai *AggressiveAI) Decide(v View) (Action, bool) {
	return decide(ai.rng, aggressiveProfile, v), true
}

func decide(rng *rand.Rand, pr profile, v View) Action {
	roll := rng.Float64()
	maxTotal := v.CurrentBet + v.Chips
	minTotal := v.minBetTotal()

	if v.CanCheck() {
		if roll < pr.checkRate {
			return Action{Type: Check}
		}
		size := int(float64(v.Pot) * (pr.betPotBase + rng.Float64()*pr.betPotSpread))
		size = max(size, v.BigBlind*pr.betMinBlinds, minTotal)
		size = min(size, maxTotal)
		if size <= v.CurrentBet {
			return Action{Type: Check}
		}
		return Action{Type: Bet, Amount: size}
	}

	toCall := v.ToCall()
	if toCall >= v.Chips {
		return Action{Type: Call}
	}

	// The passive player only folds when the price is a big share of its stack
	bigCall := pr.foldShare == 0 || float64(toCall) > float64(v.Chips)*pr.foldShare
	if bigCall && roll < pr.foldRate {
		return Action{Type: Fold}
	}

	if roll < pr.raiseRate && maxTotal >= minTotal {
		raiseTo := minTotal + int(float64(v.Chips)*rng.Float64()*pr.raiseSpread)
		raiseTo = min(raiseTo, maxTotal)
		if raiseTo > v.CurrentBet {
			return Action{Type: Raise, Amount: raiseTo}
		}
		return Action{Type: Call}
	}

	if roll < pr.callRate {
		return Action{Type: Call}
	}
	return Action{Type: Fold}
}

// PolicyByName builds a policy from its configuration name
func PolicyByName(name string, rng *rand.Rand) (Policy, error) {
	switch name {
	case "human":
		return HumanPolicy{}, nil
	case "standard":
		return NewStandardAI(rng), nil
	case "aggressive":
		return NewAggressiveAI(rng), nil
	case "calling":
		return CallingPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}

// PolicyNames lists the names accepted by PolicyByName
var PolicyNames = []string{"human", "standard", "aggressive", "calling"}
