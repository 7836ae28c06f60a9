package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem/internal/config"
	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/display"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/spectate"
	"github.com/lox/holdem/internal/tui"
)

// PlayCmd runs an interactive session
type PlayCmd struct {
	Config   string `short:"c" default:"holdem.hcl" help:"HCL config file, defaults are used when it does not exist"`
	Seed     int64  `help:"RNG seed, overrides the config (0 for random)"`
	Spectate string `help:"Accept websocket spectators on this address, e.g. :8080"`
	LogFile  string `help:"Log file, overrides the config"`
	Color    bool   `default:"true" negatable:"" help:"Colour output"`
}

func (c *PlayCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Seed != 0 {
		cfg.Seed = c.Seed
	}
	if c.LogFile != "" {
		cfg.LogFile = c.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", c.Config, err)
	}

	logger, closeLog, err := openLog(cfg.LogFile, cfg.Level())
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hub *spectate.Hub
	if c.Spectate != "" {
		hub = spectate.NewHub(logger)
	}

	if !hasHuman(cfg) {
		return c.watch(ctx, cfg, hub, logger)
	}
	return c.play(ctx, cfg, hub, logger)
}

// play runs the TUI for the human seat alongside the engine
func (c *PlayCmd) play(ctx context.Context, cfg *config.Config, hub *spectate.Hub, logger *log.Logger) error {
	dealDelay, err := cfg.DealDelay()
	if err != nil {
		return err
	}

	var program *tea.Program
	var renderer game.Renderer = tui.NewRenderer(func(msg tea.Msg) { program.Send(msg) },
		tui.WithDealDelay(dealDelay))
	if hub != nil {
		renderer = game.MultiRenderer{renderer, hub}
	}

	engine, err := newSession(cfg, renderer, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	styles := display.NewStyles(display.NewRenderer(os.Stdout, c.Color))
	model := tui.NewModel(ctx, engine.SubmitAction, styles, logger)
	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	g.Go(func() error {
		err := engine.Run(ctx)
		program.Send(tui.EngineDoneMsg{Err: err})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if hub != nil {
		g.Go(func() error { return hub.Serve(ctx, c.Spectate) })
	}
	g.Go(func() error {
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("failed to run TUI: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	printStandings(engine, c.Color)
	return nil
}

// watch streams an AI-only table to stdout
func (c *PlayCmd) watch(ctx context.Context, cfg *config.Config, hub *spectate.Hub, logger *log.Logger) error {
	dealDelay, err := cfg.DealDelay()
	if err != nil {
		return err
	}

	printTitle()
	text := display.NewTextRenderer(os.Stdout, display.WithColor(c.Color), display.WithDealDelay(dealDelay))
	var renderer game.Renderer = text
	if hub != nil {
		renderer = game.MultiRenderer{text, hub}
	}

	engine, err := newSession(cfg, renderer, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if hub != nil {
		g.Go(func() error { return hub.Serve(ctx, c.Spectate) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(text.Summary())
	printStandings(engine, c.Color)
	return nil
}

// newSession builds the table, policies and engine described by cfg
func newSession(cfg *config.Config, renderer game.Renderer, logger *log.Logger, opts ...game.EngineOption) (*game.Engine, error) {
	seed := randutil.Seed(cfg.Seed)
	logger.Info("Starting session", "seed", seed, "seats", len(cfg.Seats))

	policies := make([]game.Policy, len(cfg.Seats))
	for i, s := range cfg.Seats {
		policy, err := game.PolicyByName(s.Policy, randutil.Derive(seed, i+2))
		if err != nil {
			return nil, fmt.Errorf("seat %q: %w", s.Name, err)
		}
		policies[i] = policy
	}

	table, err := game.NewTable(cfg.GameSeats(), cfg.GameOptions(), deck.New(randutil.Derive(seed, 0)),
		game.WithRenderer(renderer), game.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	timing, err := cfg.EngineTiming()
	if err != nil {
		return nil, err
	}
	engineOpts := []game.EngineOption{
		game.WithTiming(timing),
		game.WithRand(randutil.Derive(seed, 1)),
		game.WithMaxHands(cfg.Table.MaxHands),
		game.WithEngineLogger(logger),
		game.OnHandComplete(func(r game.HandResult) {
			logger.Debug("Hand result", "id", r.ID, "hand", r.Number, "pot", r.Pot, "winners", r.Winners)
		}),
	}
	return game.NewEngine(table, policies, renderer, append(engineOpts, opts...)...)
}

func hasHuman(cfg *config.Config) bool {
	for _, s := range cfg.Seats {
		if s.Policy == "human" {
			return true
		}
	}
	return false
}

// printStandings reports final stacks once the engine has stopped
func printStandings(engine *game.Engine, color bool) {
	styles := display.NewStyles(display.NewRenderer(os.Stdout, color))
	fmt.Println(styles.Header.Render(fmt.Sprintf("Final standings after %d hands", engine.Table().HandNumber())))
	for _, p := range engine.Table().Players() {
		fmt.Println(styles.PlayerLine(p.View(false), false))
	}
	if w, ok := engine.Winner(); ok {
		fmt.Println(styles.Success.Render(fmt.Sprintf("%s wins with %d chips", w.Name, w.Chips)))
	}
}
