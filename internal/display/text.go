// Package display renders table state as styled text.
package display

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/game"
)

// TextRenderer writes a line-oriented log of the table to an io.Writer. It
// keeps the latest view of every seat so the whole table can be summarised.
type TextRenderer struct {
	mu     sync.Mutex
	w      io.Writer
	styles Styles
	clock  quartz.Clock
	delay  time.Duration

	players map[int]game.PlayerView
	phase   game.Phase
	board   []deck.Card
	pot     int
	dealer  int
}

// TextOption configures a TextRenderer
type TextOption func(*TextRenderer)

// WithColor enables or disables ANSI colour
func WithColor(color bool) TextOption {
	return func(r *TextRenderer) {
		r.styles = NewStyles(NewRenderer(r.w, color))
	}
}

// WithDealDelay pauses for d on every dealt card
func WithDealDelay(d time.Duration) TextOption {
	return func(r *TextRenderer) {
		r.delay = d
	}
}

// WithClock sets the clock used for dealing delays
func WithClock(clock quartz.Clock) TextOption {
	return func(r *TextRenderer) {
		r.clock = clock
	}
}

// NewTextRenderer creates a renderer writing to w, colourless by default
func NewTextRenderer(w io.Writer, opts ...TextOption) *TextRenderer {
	r := &TextRenderer{
		w:       w,
		clock:   quartz.NewReal(),
		players: make(map[int]game.PlayerView),
		dealer:  -1,
	}
	r.styles = NewStyles(NewRenderer(w, false))
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *TextRenderer) println(s string) {
	fmt.Fprintln(r.w, s)
}

func (r *TextRenderer) RenderPlayer(p game.PlayerView, phase game.Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[p.Seat] = p
	r.phase = phase
}

func (r *TextRenderer) RenderCommunityCards(cards []deck.Card) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(cards) == len(r.board) {
		return
	}
	r.board = append(r.board[:0], cards...)
	if len(cards) > 0 {
		r.println(r.styles.HandInfo.Render("Board: ") + r.styles.Cards(cards))
	}
}

func (r *TextRenderer) RenderPot(amount int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pot = amount
}

func (r *TextRenderer) RenderDealerMarker(seat int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dealer = seat
}

func (r *TextRenderer) RenderActionControls(opts game.ActionOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := fmt.Sprintf("Seat %d", opts.Seat)
	if p, ok := r.players[opts.Seat]; ok {
		name = p.Name
	}
	r.println(fmt.Sprintf("%s to act. %s", name, r.styles.ActionList(opts)))
}

func (r *TextRenderer) DisableActionControls() {}

func (r *TextRenderer) RenderMessage(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.println(r.styles.Log.Render(msg))
}

// DealCardAnimation waits the configured deal delay
func (r *TextRenderer) DealCardAnimation(ctx context.Context, _ game.DealTarget, _ deck.Card, _ bool) error {
	if r.delay <= 0 {
		return ctx.Err()
	}
	timer := r.clock.NewTimer(r.delay, "display", "deal")
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Summary renders every seat, the board and the pot
func (r *TextRenderer) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	b.WriteString(r.styles.Header.Render(fmt.Sprintf("%s  Pot: %d", strings.ToUpper(r.phase.String()), r.pot)))
	b.WriteString("\n")
	for seat := 0; seat < len(r.players); seat++ {
		p, ok := r.players[seat]
		if !ok {
			continue
		}
		b.WriteString(r.styles.PlayerLine(p, seat == r.dealer))
		b.WriteString("\n")
	}
	b.WriteString("Board: ")
	b.WriteString(r.styles.Cards(r.board))
	return b.String()
}

var _ game.Renderer = (*TextRenderer)(nil)
