package game

import (
	"context"

	"github.com/lox/holdem/internal/deck"
)

// DealTarget identifies where a dealt card goes. Seat is -1 for community cards.
type DealTarget struct {
	Seat  int
	Index int // card index within the hand or board
}

// Board is the deal target for community cards
func Board(index int) DealTarget {
	return DealTarget{Seat: -1, Index: index}
}

// IsBoard reports whether the target is the community board
func (d DealTarget) IsBoard() bool {
	return d.Seat < 0
}

// Renderer receives display updates from the table. Implementations perform
// no game logic. DealCardAnimation may block for pacing and returns an error
// only if ctx is cancelled.
type Renderer interface {
	RenderPlayer(p PlayerView, phase Phase)
	RenderCommunityCards(cards []deck.Card)
	RenderPot(amount int)
	RenderDealerMarker(seat int)
	RenderActionControls(opts ActionOptions)
	DisableActionControls()
	RenderMessage(msg string)
	DealCardAnimation(ctx context.Context, target DealTarget, card deck.Card, hidden bool) error
}

// NopRenderer discards all updates
type NopRenderer struct{}

func (NopRenderer) RenderPlayer(PlayerView, Phase) {}
func (NopRenderer) RenderCommunityCards([]deck.Card) {}
func (NopRenderer) RenderPot(int) {}
func (NopRenderer) RenderDealerMarker(int) {}
func (NopRenderer) RenderActionControls(ActionOptions) {}
func (NopRenderer) DisableActionControls() {}
func (NopRenderer) RenderMessage(string) {}
func (NopRenderer) DealCardAnimation(ctx context.Context, _ DealTarget, _ deck.Card, _ bool) error {
	return ctx.Err()
}

// MultiRenderer fans every update out to several renderers in order
type MultiRenderer []Renderer

func (m MultiRenderer) RenderPlayer(p PlayerView, phase Phase) {
	for _, r := range m {
		r.RenderPlayer(p, phase)
	}
}

func (m MultiRenderer) RenderCommunityCards(cards []deck.Card) {
	for _, r := range m {
		r.RenderCommunityCards(cards)
	}
}

func (m MultiRenderer) RenderPot(amount int) {
	for _, r := range m {
		r.RenderPot(amount)
	}
}

func (m MultiRenderer) RenderDealerMarker(seat int) {
	for _, r := range m {
		r.RenderDealerMarker(seat)
	}
}

func (m MultiRenderer) RenderActionControls(opts ActionOptions) {
	for _, r := range m {
		r.RenderActionControls(opts)
	}
}

func (m MultiRenderer) DisableActionControls() {
	for _, r := range m {
		r.DisableActionControls()
	}
}

func (m MultiRenderer) RenderMessage(msg string) {
	for _, r := range m {
		r.RenderMessage(msg)
	}
}

// DealCardAnimation runs each renderer's animation in turn
func (m MultiRenderer) DealCardAnimation(ctx context.Context, target DealTarget, card deck.Card, hidden bool) error {
	for _, r := range m {
		if err := r.DealCardAnimation(ctx, target, card, hidden); err != nil {
			return err
		}
	}
	return nil
}
