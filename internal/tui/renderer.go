package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/game"
)

type (
	playerMsg struct {
		player game.PlayerView
		phase  game.Phase
	}
	boardMsg    struct{ cards []deck.Card }
	potMsg      struct{ amount int }
	dealerMsg   struct{ seat int }
	controlsMsg struct{ opts game.ActionOptions }
	disableMsg  struct{}
	logMsg      struct{ text string }
	dealMsg     struct {
		target game.DealTarget
		card   deck.Card
		hidden bool
	}
	submitResultMsg struct{ err error }
)

// EngineDoneMsg tells the model the engine has stopped
type EngineDoneMsg struct {
	Err error
}

// Renderer forwards table updates to a running bubbletea program
type Renderer struct {
	send  func(tea.Msg)
	clock quartz.Clock
	delay time.Duration
}

// RendererOption configures a Renderer
type RendererOption func(*Renderer)

// WithDealDelay pauses for d on every dealt card
func WithDealDelay(d time.Duration) RendererOption {
	return func(r *Renderer) {
		r.delay = d
	}
}

// WithClock sets the clock used for dealing delays
func WithClock(clock quartz.Clock) RendererOption {
	return func(r *Renderer) {
		r.clock = clock
	}
}

// NewRenderer creates a renderer delivering messages through send, usually
// (*tea.Program).Send.
func NewRenderer(send func(tea.Msg), opts ...RendererOption) *Renderer {
	r := &Renderer{send: send, clock: quartz.NewReal()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) RenderPlayer(p game.PlayerView, phase game.Phase) {
	r.send(playerMsg{player: p, phase: phase})
}

func (r *Renderer) RenderCommunityCards(cards []deck.Card) {
	r.send(boardMsg{cards: append([]deck.Card(nil), cards...)})
}

func (r *Renderer) RenderPot(amount int) {
	r.send(potMsg{amount: amount})
}

func (r *Renderer) RenderDealerMarker(seat int) {
	r.send(dealerMsg{seat: seat})
}

func (r *Renderer) RenderActionControls(opts game.ActionOptions) {
	r.send(controlsMsg{opts: opts})
}

func (r *Renderer) DisableActionControls() {
	r.send(disableMsg{})
}

func (r *Renderer) RenderMessage(msg string) {
	r.send(logMsg{text: msg})
}

// DealCardAnimation notifies the model and waits the deal delay
func (r *Renderer) DealCardAnimation(ctx context.Context, target game.DealTarget, card deck.Card, hidden bool) error {
	r.send(dealMsg{target: target, card: card, hidden: hidden})
	if r.delay <= 0 {
		return ctx.Err()
	}
	timer := r.clock.NewTimer(r.delay, "tui", "deal")
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ game.Renderer = (*Renderer)(nil)
