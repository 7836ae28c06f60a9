package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/evaluator"
)

// Deck is the card source a table deals from. Reset restores and shuffles a
// full deck.
type Deck interface {
	Draw() (deck.Card, error)
	Reset()
}

// Status is the table's position in the hand lifecycle
type Status int

const (
	Idle Status = iota
	AwaitingAction
	RoundComplete
	HandComplete
	GameOver
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingAction:
		return "awaiting-action"
	case RoundComplete:
		return "round-complete"
	case HandComplete:
		return "hand-complete"
	case GameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// Token identifies a point in the table's history. It changes on every hand
// start, accepted action and street transition, so work scheduled against an
// old token can be recognised as stale.
type Token struct {
	Hand int
	Seq  int
}

// Options are the stakes for a session
type Options struct {
	StartingChips int
	SmallBlind    int
	BigBlind      int
}

// DefaultOptions are the stakes used when none are configured
var DefaultOptions = Options{StartingChips: 1000, SmallBlind: 10, BigBlind: 20}

// Seat describes who sits in a seat when the session starts
type Seat struct {
	Name  string
	Human bool
}

// HandResult summarises a finished hand
type HandResult struct {
	ID       uuid.UUID
	Number   int
	Winners  []int // seats
	Payouts  []Payout
	Pot      int
	Showdown bool
	Aborted  bool
	Board    []deck.Card
	Hands    map[int]evaluator.Value // showdown values by seat
}

// TableOption configures a Table during creation
type TableOption func(*Table)

// WithRenderer sets the renderer that receives display updates
func WithRenderer(r Renderer) TableOption {
	return func(t *Table) {
		t.renderer = r
	}
}

// WithLogger sets the table logger
func WithLogger(logger *log.Logger) TableOption {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithChips overrides the starting stack of each seat
func WithChips(chips []int) TableOption {
	return func(t *Table) {
		for i, c := range chips {
			if i < len(t.players) {
				t.players[i].Chips = c
			}
		}
	}
}

// Table owns all state for a session and sequences each hand through its
// phases. It has no timers: callers drive it with StartHand, Submit and
// Advance, and Status says which call is expected next.
type Table struct {
	opts     Options
	players  []*Player
	deck     Deck
	renderer Renderer
	logger   *log.Logger

	pot          Pot
	community    []deck.Card
	highestBet   int
	dealer       int
	bigBlindSeat int
	phase        Phase
	active       int // seat of the current actor, -1 when nobody is to act
	status       Status
	handNumber   int
	seq          int
	totalChips   int

	result HandResult
	winner *Player
}

// NewTable seats players and prepares a session. Hands are started with StartHand.
func NewTable(seats []Seat, opts Options, d Deck, tableOpts ...TableOption) (*Table, error) {
	if len(seats) < 2 {
		return nil, fmt.Errorf("need at least 2 seats, got %d", len(seats))
	}
	if opts.SmallBlind <= 0 || opts.BigBlind < opts.SmallBlind {
		return nil, fmt.Errorf("invalid blinds %d/%d", opts.SmallBlind, opts.BigBlind)
	}
	if d == nil {
		return nil, errors.New("deck is required")
	}

	t := &Table{
		opts:     opts,
		deck:     d,
		renderer: NopRenderer{},
		logger:   log.Default(),
		dealer:   -1,
		active:   -1,
	}
	for i, s := range seats {
		t.players = append(t.players, NewPlayer(i, s.Name, s.Human, opts.StartingChips))
	}
	for _, opt := range tableOpts {
		opt(t)
	}
	t.logger = t.logger.WithPrefix("table")
	t.totalChips = t.TotalChips()
	return t, nil
}

// Status returns what the table expects next
func (t *Table) Status() Status { return t.status }

// Phase returns the current phase of the hand
func (t *Table) Phase() Phase { return t.phase }

// Token returns the current generation token
func (t *Table) Token() Token { return Token{Hand: t.handNumber, Seq: t.seq} }

// HandNumber returns the number of hands started
func (t *Table) HandNumber() int { return t.handNumber }

// Dealer returns the dealer seat, or -1 before the first hand
func (t *Table) Dealer() int { return t.dealer }

// Pot returns the chips in the pot
func (t *Table) Pot() int { return t.pot.Amount }

// HighestBet returns the bet to match this round
func (t *Table) HighestBet() int { return t.highestBet }

// Options returns the session stakes
func (t *Table) Options() Options { return t.opts }

// Community returns a copy of the board
func (t *Table) Community() []deck.Card {
	return append([]deck.Card(nil), t.community...)
}

// Players returns the seated players. Callers must not mutate them.
func (t *Table) Players() []*Player { return t.players }

// Player returns the player in a seat
func (t *Table) Player(seat int) *Player {
	if seat < 0 || seat >= len(t.players) {
		return nil
	}
	return t.players[seat]
}

// Actor returns the seat to act, or -1
func (t *Table) Actor() int {
	if t.status != AwaitingAction {
		return -1
	}
	return t.active
}

// LastResult returns the summary of the most recent finished hand
func (t *Table) LastResult() HandResult { return t.result }

// Winner returns the last funded player once the session is over
func (t *Table) Winner() *Player { return t.winner }

// TotalChips returns the chips on the table including the pot
func (t *Table) TotalChips() int {
	total := t.pot.Amount
	for _, p := range t.players {
		total += p.Chips
	}
	return total
}

// ValidateChipConservation checks that no chips were created or destroyed
func (t *Table) ValidateChipConservation() error {
	if got := t.TotalChips(); got != t.totalChips {
		return fmt.Errorf("chip conservation violated: expected %d, found %d", t.totalChips, got)
	}
	return nil
}

// ValidActions returns the options for the current actor
func (t *Table) ValidActions() (ActionOptions, bool) {
	if t.Actor() < 0 {
		return ActionOptions{Seat: -1}, false
	}
	return t.validActions(t.players[t.active]), true
}

// ViewFor builds the decision view for a seat. Other players' hole cards are
// hidden unless revealed.
func (t *Table) ViewFor(seat int) View {
	p := t.players[seat]
	v := View{
		Seat:       seat,
		Phase:      t.phase,
		Hand:       append([]deck.Card(nil), p.Hand...),
		Community:  t.Community(),
		Pot:        t.pot.Amount,
		HighestBet: t.highestBet,
		CurrentBet: p.CurrentBet,
		Chips:      p.Chips,
		BigBlind:   t.opts.BigBlind,
		Options:    t.validActions(p),
	}
	for _, other := range t.players {
		v.Players = append(v.Players, other.View(other == p))
	}
	return v
}

func (t *Table) fundedCount() int {
	n := 0
	for _, p := range t.players {
		if p.Chips > 0 {
			n++
		}
	}
	return n
}

// nextFunded returns the first seat after from that has chips
func (t *Table) nextFunded(from int) int {
	n := len(t.players)
	for i := 1; i <= n; i++ {
		seat := ((from+i)%n + n) % n
		if t.players[seat].Chips > 0 {
			return seat
		}
	}
	return -1
}

// checkGameOver ends the session when fewer than two players have chips
func (t *Table) checkGameOver() bool {
	if t.fundedCount() >= 2 {
		return false
	}
	t.status = GameOver
	t.active = -1
	if seat := t.nextFunded(-1); seat >= 0 {
		t.winner = t.players[seat]
		t.renderer.RenderMessage(fmt.Sprintf("Game over! %s wins with %d chips.", t.winner.Name, t.winner.Chips))
		t.logger.Info("Game over", "winner", t.winner.Name, "chips", t.winner.Chips, "hands", t.handNumber)
	}
	return true
}

// StartHand begins the next hand: rotates the dealer, posts blinds, deals hole
// cards and opens the pre-flop betting round.
func (t *Table) StartHand(ctx context.Context) error {
	switch t.status {
	case AwaitingAction, RoundComplete:
		return ErrHandInProgress
	case GameOver:
		return ErrInsufficientPlayers
	}
	if t.checkGameOver() {
		return ErrInsufficientPlayers
	}

	t.handNumber++
	t.seq = 0
	t.community = t.community[:0]
	t.result = HandResult{}
	t.pot = Pot{}
	for _, p := range t.players {
		p.ResetForNewHand()
		if p.Chips == 0 {
			// Busted seats sit out
			p.Folded = true
		}
	}
	t.deck.Reset()

	t.dealer = t.nextFunded(t.dealer)
	t.renderer.RenderDealerMarker(t.dealer)

	sb := t.nextFunded(t.dealer)
	if t.fundedCount() == 2 {
		// Heads-up: the dealer posts the small blind and acts first pre-flop
		sb = t.dealer
	}
	bb := t.nextFunded(sb)
	t.bigBlindSeat = bb

	sbPosted := t.pot.PostBlind(t.players[sb], t.opts.SmallBlind)
	bbPosted := t.pot.PostBlind(t.players[bb], t.opts.BigBlind)
	t.highestBet = t.opts.BigBlind
	t.phase = Preflop

	t.logger.Info("Starting hand", "hand", t.handNumber, "dealer", t.players[t.dealer].Name,
		"smallBlind", t.players[sb].Name, "bigBlind", t.players[bb].Name)
	t.renderer.RenderMessage(fmt.Sprintf("Hand #%d: %s posts small blind %d, %s posts big blind %d",
		t.handNumber, t.players[sb].Name, sbPosted, t.players[bb].Name, bbPosted))
	t.renderAll()

	if err := t.dealHoleCards(ctx); err != nil {
		return t.abort(err)
	}

	t.openRound(Preflop)
	t.renderAll()
	return nil
}

// dealHoleCards deals two cards to each live player, one at a time, starting
// left of the dealer
func (t *Table) dealHoleCards(ctx context.Context) error {
	live := t.livePlayers()
	for round := 0; round < 2; round++ {
		for _, p := range orderFromDealer(live, t.dealer, len(t.players)) {
			seat := p.Seat
			card, err := t.deck.Draw()
			if err != nil {
				return err
			}
			p.Hand = append(p.Hand, card)
			if err := t.renderer.DealCardAnimation(ctx, DealTarget{Seat: seat, Index: round}, card, !p.Human); err != nil {
				return err
			}
		}
	}
	return nil
}

// abort abandons the current hand, returning every contribution
func (t *Table) abort(cause error) error {
	t.pot.Refund(t.players)
	t.active = -1
	t.status = HandComplete
	t.seq++
	t.result = HandResult{ID: uuid.New(), Number: t.handNumber, Aborted: true, Board: t.Community()}
	t.renderAll()

	if errors.Is(cause, deck.ErrExhausted) {
		t.logger.Error("Hand aborted", "hand", t.handNumber, "error", cause)
		t.renderer.RenderMessage("Hand aborted: the deck ran out. Bets returned.")
		return fmt.Errorf("hand %d: %w: %w", t.handNumber, ErrDeckExhausted, cause)
	}
	t.logger.Warn("Hand aborted", "hand", t.handNumber, "error", cause)
	return fmt.Errorf("hand %d aborted: %w", t.handNumber, cause)
}

// Submit applies an action for a seat. Rejected actions return an
// *ActionError and leave the turn with the same actor.
func (t *Table) Submit(seat int, a Action) error {
	if t.status != AwaitingAction {
		if t.status == RoundComplete {
			return &ActionError{Seat: seat, Action: a, Reason: "betting round is complete"}
		}
		return ErrNoHandInProgress
	}
	if seat != t.active {
		return &ActionError{Seat: seat, Action: a, Reason: fmt.Sprintf("not your turn, waiting on seat %d", t.active)}
	}

	p := t.players[seat]
	resolved := t.normalize(p, a)
	if err := t.validate(p, resolved); err != nil {
		return err
	}

	before := p.CurrentBet
	label := t.apply(p, resolved)
	t.seq++

	t.logger.Debug("Action", "hand", t.handNumber, "phase", t.phase, "player", p.Name,
		"action", label, "total", p.CurrentBet, "pot", t.pot.Amount)
	t.renderer.RenderMessage(describeAction(p, label, p.CurrentBet-before))
	t.renderer.RenderPlayer(p.View(p.Human), t.phase)
	t.renderer.RenderPot(t.pot.Amount)

	t.advanceTurn()
	return nil
}

func describeAction(p *Player, label ActionType, moved int) string {
	allIn := ""
	if p.IsAllIn {
		allIn = " and is all-in"
	}
	switch label {
	case Fold:
		return fmt.Sprintf("%s folds", p.Name)
	case Check:
		return fmt.Sprintf("%s checks", p.Name)
	case Call:
		return fmt.Sprintf("%s calls %d%s", p.Name, moved, allIn)
	case Bet:
		return fmt.Sprintf("%s bets %d%s", p.Name, p.CurrentBet, allIn)
	default:
		return fmt.Sprintf("%s raises to %d%s", p.Name, p.CurrentBet, allIn)
	}
}

// advanceTurn moves to the next eligible actor or completes the round
func (t *Table) advanceTurn() {
	if t.roundComplete() {
		t.active = -1
		t.status = RoundComplete
		return
	}
	t.active = t.nextActor(t.active)
	t.updateRoundStatus()
}

// Advance moves a completed betting round on: it awards an uncontested pot,
// deals the next street, or resolves the showdown after the river.
func (t *Table) Advance(ctx context.Context) error {
	switch t.status {
	case RoundComplete:
	case AwaitingAction:
		return ErrActionPending
	default:
		return ErrNoHandInProgress
	}

	if live := t.livePlayers(); len(live) == 1 {
		t.finishHand(live, false, nil)
		return nil
	}
	if t.phase == River {
		t.showdown()
		return nil
	}

	next := t.phase + 1
	if err := t.dealStreet(ctx, next); err != nil {
		return t.abort(err)
	}
	t.seq++
	t.openRound(next)
	if t.status == RoundComplete {
		t.logger.Debug("No betting possible, running out the board", "phase", next)
	}
	t.renderAll()
	return nil
}

// dealStreet burns a card then deals the community cards for a phase
func (t *Table) dealStreet(ctx context.Context, phase Phase) error {
	if _, err := t.deck.Draw(); err != nil {
		return err
	}
	for range streetCards[phase] {
		card, err := t.deck.Draw()
		if err != nil {
			return err
		}
		t.community = append(t.community, card)
		if err := t.renderer.DealCardAnimation(ctx, Board(len(t.community)-1), card, false); err != nil {
			return err
		}
	}
	t.logger.Debug("Dealt street", "hand", t.handNumber, "phase", phase, "board", t.community)
	return nil
}

func (t *Table) livePlayers() []*Player {
	var live []*Player
	for _, p := range t.players {
		if p.InHand() {
			live = append(live, p)
		}
	}
	return live
}

// showdown reveals live hands and awards the pot to the best of them
func (t *Table) showdown() {
	t.phase = Showdown
	values := make(map[int]evaluator.Value)
	var (
		winners []*Player
		best    evaluator.Value
	)
	for _, p := range t.livePlayers() {
		p.Revealed = true
		v, err := evaluator.Best(p.Hand, t.community)
		if err != nil {
			// Cannot happen with a complete board; treat the hand as dead
			t.logger.Error("Failed to evaluate hand", "player", p.Name, "error", err)
			continue
		}
		values[p.Seat] = v
		switch {
		case len(winners) == 0 || v.Compare(best) > 0:
			winners = []*Player{p}
			best = v
		case v.Compare(best) == 0:
			winners = append(winners, p)
		}
		t.renderer.RenderMessage(fmt.Sprintf("%s shows %s %s: %s", p.Name, p.Hand[0], p.Hand[1], v))
	}
	t.finishHand(winners, true, values)
}

// finishHand awards the pot and ends the hand
func (t *Table) finishHand(winners []*Player, showdown bool, values map[int]evaluator.Value) {
	potSize := t.pot.Amount
	payouts := t.pot.Award(winners, t.dealer, len(t.players))

	t.result = HandResult{
		ID:       uuid.New(),
		Number:   t.handNumber,
		Payouts:  payouts,
		Pot:      potSize,
		Showdown: showdown,
		Board:    t.Community(),
		Hands:    values,
	}
	for _, pay := range payouts {
		t.result.Winners = append(t.result.Winners, pay.Seat)
		t.renderer.RenderMessage(fmt.Sprintf("%s wins %d", t.players[pay.Seat].Name, pay.Amount))
	}
	t.logger.Info("Hand complete", "hand", t.handNumber, "pot", potSize, "winners", t.result.Winners, "showdown", showdown)

	t.active = -1
	t.status = HandComplete
	t.seq++
	t.renderAll()
	t.checkGameOver()
}

func (t *Table) renderAll() {
	for _, p := range t.players {
		t.renderer.RenderPlayer(p.View(p.Human), t.phase)
	}
	t.renderer.RenderCommunityCards(t.Community())
	t.renderer.RenderPot(t.pot.Amount)
}
