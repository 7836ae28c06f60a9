// Package simulator plays AI-only sessions in parallel and reports how each
// policy fares.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Sessions int           // number of independent sessions
	Hands    int           // hand limit per session, zero plays to a single winner
	Parallel int           // sessions run at once
	Seed     int64         // base seed, each session derives its own streams
	Timeout  time.Duration // per-session limit, zero for none
	Options  game.Options
	Policies []string // one policy name per seat
	Logger   *log.Logger
}

// DefaultPolicies seats two of each AI style
var DefaultPolicies = []string{"standard", "aggressive", "standard", "aggressive"}

// SessionResult summarises one session
type SessionResult struct {
	Index    int
	Seed     int64
	Hands    int
	Aborted  int
	Showdown int
	GameOver bool
	Winner   string
	Chips    []int
}

// Report is the outcome of a simulation run
type Report struct {
	Sessions []SessionResult
	// ByPolicy accumulates every seat's per-hand result under its policy name
	ByPolicy map[string]*statistics.Statistics
	Duration time.Duration
}

// Hands returns the total number of hands played
func (r *Report) Hands() int {
	total := 0
	for _, s := range r.Sessions {
		total += s.Hands
	}
	return total
}

// Simulator runs AI sessions
type Simulator struct {
	config Config
}

// New creates a new simulator, filling unset fields with defaults. A zero
// seed is replaced with a time-based one.
func New(config Config) *Simulator {
	if config.Sessions <= 0 {
		config.Sessions = 1
	}
	if config.Parallel <= 0 {
		config.Parallel = 1
	}
	if config.Options == (game.Options{}) {
		config.Options = game.DefaultOptions
	}
	if len(config.Policies) == 0 {
		config.Policies = DefaultPolicies
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	config.Seed = randutil.Seed(config.Seed)
	return &Simulator{config: config}
}

// Run plays every session and returns the combined results. The first
// failing session cancels the rest.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	for _, name := range s.config.Policies {
		if name == "human" {
			return nil, errors.New("simulations cannot seat a human")
		}
	}

	started := time.Now()
	results := make([]SessionResult, s.config.Sessions)
	stats := make([]map[string]*statistics.Statistics, s.config.Sessions)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallel)
	for i := 0; i < s.config.Sessions; i++ {
		g.Go(func() error {
			result, sessionStats, err := s.playSession(ctx, i)
			if err != nil {
				return fmt.Errorf("session %d (seed %d): %w", i, result.Seed, err)
			}
			results[i] = result
			stats[i] = sessionStats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Sessions: results,
		ByPolicy: make(map[string]*statistics.Statistics),
		Duration: time.Since(started),
	}
	for _, sessionStats := range stats {
		for name, st := range sessionStats {
			agg, ok := report.ByPolicy[name]
			if !ok {
				agg = &statistics.Statistics{}
				report.ByPolicy[name] = agg
			}
			agg.Merge(st)
		}
	}
	return report, nil
}

// playSession runs one session on the real clock with no delays
func (s *Simulator) playSession(ctx context.Context, index int) (SessionResult, map[string]*statistics.Statistics, error) {
	seed := s.config.Seed + int64(index)
	result := SessionResult{Index: index, Seed: seed}
	logger := s.config.Logger.With("session", index)

	seats := make([]game.Seat, len(s.config.Policies))
	policies := make([]game.Policy, len(s.config.Policies))
	for i, name := range s.config.Policies {
		seats[i] = game.Seat{Name: fmt.Sprintf("%s-%d", name, i)}
		policy, err := game.PolicyByName(name, randutil.Derive(seed, i+2))
		if err != nil {
			return result, nil, err
		}
		policies[i] = policy
	}

	table, err := game.NewTable(seats, s.config.Options, deck.New(randutil.Derive(seed, 0)),
		game.WithLogger(logger))
	if err != nil {
		return result, nil, err
	}

	var mu sync.Mutex
	byPolicy := make(map[string]*statistics.Statistics)
	last := make([]int, len(seats))
	for i := range last {
		last[i] = s.config.Options.StartingChips
	}

	record := func(hand game.HandResult) {
		mu.Lock()
		defer mu.Unlock()
		result.Hands++
		if hand.Aborted {
			result.Aborted++
		}
		if hand.Showdown {
			result.Showdown++
		}
		street := streetName(len(hand.Board))
		for i, p := range table.Players() {
			if last[i] == 0 {
				continue
			}
			name := s.config.Policies[i]
			st, ok := byPolicy[name]
			if !ok {
				st = &statistics.Statistics{}
				byPolicy[name] = st
			}
			st.Add(statistics.HandResult{
				NetChips:       p.Chips - last[i],
				BigBlind:       s.config.Options.BigBlind,
				Seat:           i,
				WentToShowdown: hand.Showdown && p.InHand(),
				Pot:            hand.Pot,
				Street:         street,
			})
			last[i] = p.Chips
		}
	}

	engine, err := game.NewEngine(table, policies, game.NopRenderer{},
		game.WithTiming(game.Timing{}),
		game.WithRand(randutil.Derive(seed, 1)),
		game.WithMaxHands(s.config.Hands),
		game.WithEngineLogger(logger),
		game.OnHandComplete(record),
	)
	if err != nil {
		return result, nil, err
	}

	runCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}
	if err := engine.Run(runCtx); err != nil {
		return result, nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	for _, p := range table.Players() {
		result.Chips = append(result.Chips, p.Chips)
	}
	if w, ok := engine.Winner(); ok {
		result.GameOver = true
		result.Winner = w.Name
	}
	logger.Debug("Session complete", "hands", result.Hands, "winner", result.Winner)
	return result, byPolicy, nil
}

func streetName(boardCards int) string {
	switch {
	case boardCards >= 5:
		return game.River.String()
	case boardCards == 4:
		return game.Turn.String()
	case boardCards == 3:
		return game.Flop.String()
	default:
		return game.Preflop.String()
	}
}

// PrintSummary writes a readable summary of a report
func PrintSummary(w io.Writer, report *Report) {
	gameOvers := 0
	wins := make(map[string]int)
	for _, s := range report.Sessions {
		if s.GameOver {
			gameOvers++
			wins[strings.SplitN(s.Winner, "-", 2)[0]]++
		}
	}

	fmt.Fprintf(w, "\n=== SIMULATION RESULTS ===\n")
	fmt.Fprintf(w, "Sessions: %d (%d played to a single winner)\n", len(report.Sessions), gameOvers)
	fmt.Fprintf(w, "Hands played: %d in %s\n", report.Hands(), report.Duration.Round(time.Millisecond))

	names := make([]string, 0, len(report.ByPolicy))
	for name := range report.ByPolicy {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		stats := report.ByPolicy[name]
		low, high := stats.ConfidenceInterval95()
		fmt.Fprintf(w, "\n=== %s ===\n", strings.ToUpper(name))
		fmt.Fprintf(w, "Seat-hands: %d, session wins: %d\n", stats.Hands, wins[name])
		fmt.Fprintf(w, "Mean: %.4f bb/hand, Std Dev: %.4f bb\n", stats.Mean(), stats.StdDev())
		fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] bb/hand\n", low, high)
		fmt.Fprintf(w, "Percentiles: P5=%.3f, P25=%.3f, P50=%.3f, P75=%.3f, P95=%.3f\n",
			stats.Percentile(0.05), stats.Percentile(0.25), stats.Median(), stats.Percentile(0.75), stats.Percentile(0.95))
		fmt.Fprintf(w, "Winning hands: %d showdown, %d without showdown\n", stats.ShowdownWins, stats.NonShowdownWins)
		fmt.Fprintf(w, "Max pot: %d chips (%.1f bb), big pots (>=%dbb): %d\n",
			stats.MaxPotChips, stats.MaxPotBB, statistics.BigPotBB, stats.BigPots)
	}
}
