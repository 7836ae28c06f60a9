// Package evaluator ranks Texas Hold'em hands.
//
// Evaluate takes 5 to 7 cards and returns the best five-card Value: a
// Category (high card through straight flush) plus a Tiebreak that orders
// hands of the same category. Values compare by category first, then
// tiebreak; equal values are true splits.
package evaluator

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/lox/holdem/internal/deck"
)

// Category is the class of a poker hand, ordered weakest to strongest
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable category name
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

var (
	ErrCardCount     = errors.New("evaluator: need 5 to 7 cards")
	ErrDuplicateCard = errors.New("evaluator: duplicate card")
)

// Value is the strength of a hand
type Value struct {
	Category Category
	// Tiebreak packs the deciding ranks four bits each, most significant
	// first, so integer comparison orders hands of the same category.
	Tiebreak int
}

// Score folds category and tiebreak into a single comparable integer
func (v Value) Score() int {
	return int(v.Category)<<20 | v.Tiebreak
}

// Compare returns 1 if v beats other, -1 if other wins, 0 for a split
func (v Value) Compare(other Value) int {
	return Compare(v, other)
}

// Ranks returns the deciding ranks encoded in the tiebreak, most significant first
func (v Value) Ranks() []deck.Rank {
	var ranks []deck.Rank
	for t := v.Tiebreak; t > 0; t >>= 4 {
		ranks = append([]deck.Rank{deck.Rank(t & 0xF)}, ranks...)
	}
	return ranks
}

// String describes the hand, e.g. "Pair (K)" or "Full House (Q over 7)"
func (v Value) String() string {
	ranks := v.Ranks()
	switch {
	case len(ranks) == 0:
		return v.Category.String()
	case len(ranks) >= 2 && (v.Category == TwoPair || v.Category == FullHouse):
		return fmt.Sprintf("%s (%s over %s)", v.Category, ranks[0], ranks[1])
	}
	return fmt.Sprintf("%s (%s)", v.Category, ranks[0])
}

// Compare compares two values and returns 1 if a wins, -1 if b wins, 0 for a tie
func Compare(a, b Value) int {
	switch {
	case a.Category > b.Category:
		return 1
	case a.Category < b.Category:
		return -1
	case a.Tiebreak > b.Tiebreak:
		return 1
	case a.Tiebreak < b.Tiebreak:
		return -1
	}
	return 0
}

// Best evaluates hole cards together with the board
func Best(hole, board []deck.Card) (Value, error) {
	cards := make([]deck.Card, 0, len(hole)+len(board))
	cards = append(cards, hole...)
	cards = append(cards, board...)
	return Evaluate(cards)
}

// Evaluate returns the best five-card value contained in 5 to 7 cards
func Evaluate(cards []deck.Card) (Value, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return Value{}, fmt.Errorf("%w: got %d", ErrCardCount, len(cards))
	}

	var (
		counts    [deck.Ace + 1]int
		suitMasks [4]uint16
		rankMask  uint16
		seen      = make(map[deck.Card]bool, len(cards))
	)
	for _, c := range cards {
		if seen[c] {
			return Value{}, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen[c] = true
		counts[c.Rank]++
		suitMasks[c.Suit] |= 1 << c.Rank
		rankMask |= 1 << c.Rank
	}

	// Flushes first: a straight flush beats everything, and with at most
	// seven cards a flush excludes quads and full houses.
	for _, mask := range suitMasks {
		if bits.OnesCount16(mask) < 5 {
			continue
		}
		if high := straightHigh(mask); high > 0 {
			return Value{Category: StraightFlush, Tiebreak: int(high)}, nil
		}
		return Value{Category: Flush, Tiebreak: pack(topRanks(mask, 5, nil)...)}, nil
	}

	if quads := findNOfAKind(counts, 4, nil); quads > 0 {
		return fourOfAKind(counts, quads), nil
	}

	if fh, ok := fullHouse(counts); ok {
		return fh, nil
	}

	if high := straightHigh(rankMask); high > 0 {
		return Value{Category: Straight, Tiebreak: int(high)}, nil
	}

	if trips := findNOfAKind(counts, 3, nil); trips > 0 {
		kickers := topRanks(rankMask, 2, []deck.Rank{trips})
		return Value{Category: ThreeOfAKind, Tiebreak: pack(append([]deck.Rank{trips}, kickers...)...)}, nil
	}

	if high := findNOfAKind(counts, 2, nil); high > 0 {
		if low := findNOfAKind(counts, 2, []deck.Rank{high}); low > 0 {
			kicker := topRanks(rankMask, 1, []deck.Rank{high, low})
			return Value{Category: TwoPair, Tiebreak: pack(append([]deck.Rank{high, low}, kicker...)...)}, nil
		}
		kickers := topRanks(rankMask, 3, []deck.Rank{high})
		return Value{Category: Pair, Tiebreak: pack(append([]deck.Rank{high}, kickers...)...)}, nil
	}

	return Value{Category: HighCard, Tiebreak: pack(topRanks(rankMask, 5, nil)...)}, nil
}

func fourOfAKind(counts [deck.Ace + 1]int, quads deck.Rank) Value {
	kicker := deck.Rank(0)
	for r := deck.Ace; r >= deck.Two; r-- {
		if r != quads && counts[r] > 0 {
			kicker = r
			break
		}
	}
	return Value{Category: FourOfAKind, Tiebreak: pack(quads, kicker)}
}

func fullHouse(counts [deck.Ace + 1]int) (Value, bool) {
	trips := findNOfAKind(counts, 3, nil)
	if trips == 0 {
		return Value{}, false
	}
	// A second set of trips plays as the pair
	pair := findNOfAKind(counts, 2, []deck.Rank{trips})
	if pair == 0 {
		return Value{}, false
	}
	return Value{Category: FullHouse, Tiebreak: pack(trips, pair)}, true
}

// findNOfAKind finds the highest rank with at least n cards, skipping excluded ranks
func findNOfAKind(counts [deck.Ace + 1]int, n int, exclude []deck.Rank) deck.Rank {
	for r := deck.Ace; r >= deck.Two; r-- {
		if counts[r] >= n && !containsRank(exclude, r) {
			return r
		}
	}
	return 0
}

// topRanks returns the n highest ranks present in mask, skipping excluded ranks
func topRanks(mask uint16, n int, exclude []deck.Rank) []deck.Rank {
	ranks := make([]deck.Rank, 0, n)
	for r := deck.Ace; r >= deck.Two && len(ranks) < n; r-- {
		if mask&(1<<r) != 0 && !containsRank(exclude, r) {
			ranks = append(ranks, r)
		}
	}
	return ranks
}

// straightHigh returns the high card of the best straight in mask, or 0
func straightHigh(mask uint16) deck.Rank {
	// Ace also plays low (A-2-3-4-5)
	if mask&(1<<deck.Ace) != 0 {
		mask |= 1 << 1
	}
	for high := deck.Ace; high >= deck.Five; high-- {
		run := uint16(0x1F) << (high - 4)
		if mask&run == run {
			return high
		}
	}
	return 0
}

func containsRank(ranks []deck.Rank, r deck.Rank) bool {
	for _, x := range ranks {
		if x == r {
			return true
		}
	}
	return false
}

func pack(ranks ...deck.Rank) int {
	v := 0
	for _, r := range ranks {
		v = v<<4 | int(r)
	}
	return v
}
