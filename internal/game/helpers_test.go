package game

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/deck"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func testSeats(n int) []Seat {
	seats := make([]Seat, n)
	for i := range seats {
		seats[i] = Seat{Name: fmt.Sprintf("P%d", i)}
	}
	return seats
}

// newTestTable builds a table with default stakes and a quiet logger
func newTestTable(t *testing.T, n int, d Deck, opts ...TableOption) *Table {
	t.Helper()
	opts = append([]TableOption{WithLogger(quietLogger())}, opts...)
	tbl, err := NewTable(testSeats(n), DefaultOptions, d, opts...)
	require.NoError(t, err)
	return tbl
}

// stackedDeck orders a deck so that each seat receives the given hole cards
// when dealing starts left of dealer, followed by the board with burn cards
// in between. Seats with an empty hand are skipped when dealing.
func stackedDeck(dealer int, holes []string, board string) *deck.Deck {
	n := len(holes)
	hands := make([][]deck.Card, n)
	for i, h := range holes {
		hands[i] = deck.MustParseCards(h)
	}

	var top []deck.Card
	for round := 0; round < 2; round++ {
		for i := 1; i <= n; i++ {
			seat := (dealer + i) % n
			if len(hands[seat]) > round {
				top = append(top, hands[seat][round])
			}
		}
	}

	boardCards := deck.MustParseCards(board)
	used := make(map[deck.Card]bool)
	for _, c := range append(append([]deck.Card(nil), top...), boardCards...) {
		used[c] = true
	}
	var burns []deck.Card
	for suit := deck.Clubs; suit >= deck.Spades && len(burns) < 3; suit-- {
		for rank := deck.Two; rank <= deck.Ace && len(burns) < 3; rank++ {
			if c := deck.NewCard(rank, suit); !used[c] {
				burns = append(burns, c)
				used[c] = true
			}
		}
	}

	next := 0
	for street, count := range []int{3, 1, 1} {
		top = append(top, burns[street])
		for i := 0; i < count && next < len(boardCards); i++ {
			top = append(top, boardCards[next])
			next++
		}
	}
	return deck.NewStacked(top)
}

// shortDeck deals a fixed list of cards and then runs out
type shortDeck struct {
	cards []deck.Card
	next  int
}

func (d *shortDeck) Draw() (deck.Card, error) {
	if d.next >= len(d.cards) {
		return deck.Card{}, deck.ErrExhausted
	}
	c := d.cards[d.next]
	d.next++
	return c, nil
}

func (d *shortDeck) Reset() { d.next = 0 }

// submit applies an action and fails the test if it is rejected
func submit(t *testing.T, tbl *Table, typ ActionType, amount ...int) {
	t.Helper()
	a := Action{Type: typ}
	if len(amount) > 0 {
		a.Amount = amount[0]
	}
	seat := tbl.Actor()
	require.NoError(t, tbl.Submit(seat, a), "seat %d %s", seat, a)
}

// checkDown checks or calls every remaining round through showdown
func checkDown(t *testing.T, tbl *Table) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		switch tbl.Status() {
		case AwaitingAction:
			submit(t, tbl, Call)
		case RoundComplete:
			require.NoError(t, tbl.Advance(ctx))
		default:
			return
		}
	}
	t.Fatal("hand did not finish")
}

// playHand drives a hand to completion using policies, applying the same
// fallback chain as the engine for rejected decisions. After every step it
// calls check, if non-nil.
func playHand(t *testing.T, tbl *Table, policies []Policy, check func()) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		switch tbl.Status() {
		case AwaitingAction:
			seat := tbl.Actor()
			a, _ := policies[seat].Decide(tbl.ViewFor(seat))
			if err := tbl.Submit(seat, a); err != nil {
				require.ErrorIs(t, err, ErrInvalidAction)
				for _, fb := range []ActionType{Check, Call, Fold} {
					if tbl.Submit(seat, Action{Type: fb}) == nil {
						break
					}
				}
			}
		case RoundComplete:
			require.NoError(t, tbl.Advance(ctx))
		default:
			return
		}
		if check != nil {
			check()
		}
	}
	t.Fatal("hand did not finish")
}

// recordingRenderer captures renderer calls for assertions
type recordingRenderer struct {
	NopRenderer

	mu       sync.Mutex
	messages []string
	dealt    []DealTarget
	controls []ActionOptions
	dealers  []int
	disabled int
	prompted chan ActionOptions
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{prompted: make(chan ActionOptions, 16)}
}

func (r *recordingRenderer) RenderMessage(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingRenderer) RenderDealerMarker(seat int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dealers = append(r.dealers, seat)
}

func (r *recordingRenderer) RenderActionControls(opts ActionOptions) {
	r.mu.Lock()
	r.controls = append(r.controls, opts)
	r.mu.Unlock()
	r.prompted <- opts
}

func (r *recordingRenderer) DisableActionControls() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled++
}

func (r *recordingRenderer) DealCardAnimation(ctx context.Context, target DealTarget, _ deck.Card, _ bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dealt = append(r.dealt, target)
	return ctx.Err()
}

func (r *recordingRenderer) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
