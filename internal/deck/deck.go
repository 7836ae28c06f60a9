package deck

import (
	"errors"
	"math/rand/v2"
)

// ErrExhausted is returned when drawing from an empty deck
var ErrExhausted = errors.New("deck exhausted")

// Size is the number of cards in a standard deck
const Size = 52

// Deck represents a standard 52-card deck
type Deck struct {
	cards []Card
	next  int
	rng   *rand.Rand
	stack []Card // fixed top-of-deck order; disables shuffling when set
}

// New creates a shuffled 52-card deck using the provided RNG
func New(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("rng is required for deck creation")
	}
	d := &Deck{
		cards: make([]Card, 0, Size),
		rng:   rng,
	}
	d.Reset()
	return d
}

// NewStacked creates an unshuffled deck whose top cards are exactly the given
// cards in order, followed by the remaining cards in standard order. Reset
// restores the same order. Used for deterministic deals.
func NewStacked(top []Card) *Deck {
	d := &Deck{
		cards: make([]Card, 0, Size),
		stack: append([]Card(nil), top...),
	}
	d.Reset()
	return d
}

func standardCards(dst []Card) []Card {
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			dst = append(dst, NewCard(rank, suit))
		}
	}
	return dst
}

// Shuffle randomizes the undealt cards using Fisher-Yates
func (d *Deck) Shuffle() {
	if d.rng == nil {
		return
	}
	rest := d.cards[d.next:]
	for i := len(rest) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		rest[i], rest[j] = rest[j], rest[i]
	}
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, error) {
	if d.next >= len(d.cards) {
		return Card{}, ErrExhausted
	}
	card := d.cards[d.next]
	d.next++
	return card, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Reset restores the deck to a full 52 cards and shuffles it
func (d *Deck) Reset() {
	d.next = 0
	d.cards = d.cards[:0]

	if d.stack != nil {
		used := make(map[Card]bool, len(d.stack))
		for _, c := range d.stack {
			used[c] = true
		}
		d.cards = append(d.cards, d.stack...)
		for _, c := range standardCards(nil) {
			if !used[c] {
				d.cards = append(d.cards, c)
			}
		}
		return
	}

	d.cards = standardCards(d.cards)
	d.Shuffle()
}
