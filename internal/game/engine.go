package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Timing controls the pauses the engine inserts between steps
type Timing struct {
	ThinkDelay  time.Duration // minimum AI deliberation
	ThinkJitter time.Duration // extra random deliberation, up to this much
	StreetDelay time.Duration // pause before dealing the next street
	HandDelay   time.Duration // pause between hands
}

// DefaultTiming matches a relaxed table pace
var DefaultTiming = Timing{
	ThinkDelay:  1200 * time.Millisecond,
	ThinkJitter: 800 * time.Millisecond,
	StreetDelay: 1 * time.Second,
	HandDelay:   3 * time.Second,
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithClock sets the clock used for every delay
func WithClock(clock quartz.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithTiming sets the engine delays
func WithTiming(timing Timing) EngineOption {
	return func(e *Engine) {
		e.timing = timing
	}
}

// WithRand sets the source used for think-time jitter
func WithRand(rng *rand.Rand) EngineOption {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithMaxHands stops the session after n hands; zero plays until one player is left
func WithMaxHands(n int) EngineOption {
	return func(e *Engine) {
		e.maxHands = n
	}
}

// WithEngineLogger sets the engine logger
func WithEngineLogger(logger *log.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// OnHandComplete registers a callback invoked on the engine goroutine after each hand
func OnHandComplete(fn func(HandResult)) EngineOption {
	return func(e *Engine) {
		e.onHand = fn
	}
}

type timerKind int

const (
	timerAct timerKind = iota
	timerAdvance
	timerNextHand
)

func (k timerKind) String() string {
	return [...]string{"act", "advance", "next-hand"}[k]
}

// timerFired is posted to the inbox when a scheduled delay elapses
type timerFired struct {
	token Token
	kind  timerKind
}

// submission carries an external action into the loop
type submission struct {
	seat   int
	action Action
	reply  chan error
}

// Engine runs a Table as a single-goroutine message loop. AI decisions and
// phase transitions are scheduled on the clock and tagged with the table's
// token; a timer whose token no longer matches is dropped. Human decisions
// arrive through SubmitAction.
type Engine struct {
	table    *Table
	policies []Policy
	renderer Renderer
	clock    quartz.Clock
	timing   Timing
	rng      *rand.Rand
	logger   *log.Logger
	maxHands int
	onHand   func(HandResult)

	inbox chan any
	done  chan struct{}

	mu       sync.Mutex
	winner   *PlayerView
	finished bool
}

// NewEngine creates an engine around a table. policies holds one entry per
// seat; renderer receives action-control updates for human seats and should
// be the same renderer the table was built with.
func NewEngine(table *Table, policies []Policy, renderer Renderer, opts ...EngineOption) (*Engine, error) {
	if len(policies) != len(table.Players()) {
		return nil, fmt.Errorf("need %d policies, got %d", len(table.Players()), len(policies))
	}
	if renderer == nil {
		renderer = NopRenderer{}
	}
	e := &Engine{
		table:    table,
		policies: policies,
		renderer: renderer,
		clock:    quartz.NewReal(),
		timing:   DefaultTiming,
		logger:   log.Default(),
		inbox:    make(chan any, 16),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	e.logger = e.logger.WithPrefix("engine")
	return e, nil
}

// Table returns the engine's table. It must only be inspected once Run has returned.
func (e *Engine) Table() *Table { return e.table }

// Winner returns the session winner once the game is over
func (e *Engine) Winner() (PlayerView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.winner == nil {
		return PlayerView{}, false
	}
	return *e.winner, true
}

// Run plays hands until the game is over, the hand limit is reached or ctx is
// cancelled. Game over is not an error.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)

	if err := e.startHand(ctx); err != nil {
		if errors.Is(err, ErrInsufficientPlayers) {
			e.finish()
			return nil
		}
		return err
	}

	for {
		if e.isFinished() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-e.inbox:
			if err := e.handle(ctx, msg); err != nil {
				return err
			}
		}
	}
}

// SubmitAction delivers a human decision for a seat and returns the
// validation result. It is safe to call from any goroutine.
func (e *Engine) SubmitAction(ctx context.Context, seat int, t ActionType, amount int) error {
	reply := make(chan error, 1)
	msg := submission{seat: seat, action: Action{Type: t, Amount: amount}, reply: reply}

	select {
	case e.inbox <- msg:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrEngineStopped
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrEngineStopped
	}
}

func (e *Engine) handle(ctx context.Context, msg any) error {
	switch m := msg.(type) {
	case submission:
		err := e.handleSubmission(m)
		m.reply <- err
		if err != nil {
			e.rerenderControls(m.seat)
			return nil
		}
		return e.step()

	case timerFired:
		if m.token != e.table.Token() {
			e.logger.Debug("Dropping stale timer", "kind", m.kind, "token", m.token, "current", e.table.Token())
			return nil
		}
		switch m.kind {
		case timerAct:
			e.actAI()
		case timerAdvance:
			if err := e.table.Advance(ctx); err != nil {
				if !errors.Is(err, ErrDeckExhausted) {
					return err
				}
				e.logger.Error("Hand aborted", "error", err)
			}
		case timerNextHand:
			if err := e.startHand(ctx); err != nil {
				if errors.Is(err, ErrInsufficientPlayers) {
					e.finish()
					return nil
				}
				return err
			}
			return nil
		}
		return e.step()
	}
	return nil
}

func (e *Engine) handleSubmission(m submission) error {
	seat := e.table.Actor()
	if seat < 0 {
		return &ActionError{Seat: m.seat, Action: m.action, Reason: "no action is expected"}
	}
	if m.seat == seat && !IsHuman(e.policies[seat]) {
		return &ActionError{Seat: m.seat, Action: m.action, Reason: "seat is not human controlled"}
	}
	if err := e.table.Submit(m.seat, m.action); err != nil {
		return err
	}
	e.renderer.DisableActionControls()
	return nil
}

// rerenderControls restores the human's controls after a rejected decision.
// Nothing is rescheduled; the pending timer for the current status still stands.
func (e *Engine) rerenderControls(seat int) {
	if e.table.Status() != AwaitingAction || e.table.Actor() != seat || !IsHuman(e.policies[seat]) {
		return
	}
	opts, _ := e.table.ValidActions()
	e.renderer.RenderActionControls(opts)
}

// actAI asks the current seat's policy for a decision and applies it, falling
// back to check, then call, then fold if the decision is rejected.
func (e *Engine) actAI() {
	seat := e.table.Actor()
	if seat < 0 {
		return
	}
	action, ok := e.policies[seat].Decide(e.table.ViewFor(seat))
	if !ok {
		return
	}
	err := e.table.Submit(seat, action)
	if err == nil {
		return
	}

	e.logger.Error("Policy returned invalid action, falling back", "seat", seat, "action", action, "error", err)
	for _, fallback := range []ActionType{Check, Call, Fold} {
		if err := e.table.Submit(seat, Action{Type: fallback}); err == nil {
			return
		}
	}
}

// startHand begins a hand and schedules whatever it needs first
func (e *Engine) startHand(ctx context.Context) error {
	if err := e.table.StartHand(ctx); err != nil {
		if !errors.Is(err, ErrDeckExhausted) {
			return err
		}
		e.logger.Error("Hand aborted", "error", err)
	}
	return e.step()
}

// step schedules the next piece of work for the table's current status
func (e *Engine) step() error {
	switch e.table.Status() {
	case AwaitingAction:
		seat := e.table.Actor()
		policy := e.policies[seat]
		if IsHuman(policy) {
			opts, _ := e.table.ValidActions()
			e.renderer.RenderActionControls(opts)
			return nil
		}
		delay := e.timing.ThinkDelay
		if e.timing.ThinkJitter > 0 {
			delay += time.Duration(e.rng.Int64N(int64(e.timing.ThinkJitter)))
		}
		e.schedule(timerAct, delay)

	case RoundComplete:
		e.schedule(timerAdvance, e.timing.StreetDelay)

	case HandComplete:
		if err := e.handComplete(); err != nil {
			return err
		}
		if e.maxHands > 0 && e.table.HandNumber() >= e.maxHands {
			e.logger.Info("Hand limit reached", "hands", e.table.HandNumber())
			e.finish()
			return nil
		}
		e.schedule(timerNextHand, e.timing.HandDelay)

	case GameOver:
		if err := e.handComplete(); err != nil {
			return err
		}
		e.finish()
	}
	return nil
}

func (e *Engine) handComplete() error {
	if err := e.table.ValidateChipConservation(); err != nil {
		e.logger.Error("Chip conservation check failed", "hand", e.table.HandNumber(), "error", err)
		return err
	}
	if e.onHand != nil {
		e.onHand(e.table.LastResult())
	}
	return nil
}

// schedule posts a timer message tagged with the current token after delay
func (e *Engine) schedule(kind timerKind, delay time.Duration) {
	msg := timerFired{token: e.table.Token(), kind: kind}
	e.scheduleMsg(msg, delay)
}

func (e *Engine) scheduleMsg(msg timerFired, delay time.Duration) {
	e.clock.AfterFunc(delay, func() {
		select {
		case e.inbox <- msg:
		case <-e.done:
		}
	}, "engine", msg.kind.String())
}

func (e *Engine) finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finished = true
	if w := e.table.Winner(); w != nil {
		v := w.View(true)
		e.winner = &v
	}
}

func (e *Engine) isFinished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finished
}
