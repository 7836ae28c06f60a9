package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/simulator"
)

// SimulateCmd plays AI-only sessions in parallel
type SimulateCmd struct {
	Sessions int           `default:"100" help:"Number of sessions to play"`
	Hands    int           `default:"200" help:"Hand limit per session (0 plays to a single winner)"`
	Parallel int           `default:"0" help:"Sessions run at once (0 for one per CPU)"`
	Seed     int64         `default:"0" help:"RNG seed (0 for random)"`
	Policies []string      `default:"standard,aggressive,standard,aggressive" help:"Policy for each seat"`
	Chips    int           `default:"1000" help:"Starting chips"`
	Blinds   []int         `default:"10,20" help:"Small and big blind"`
	Timeout  time.Duration `default:"1m" help:"Time limit per session"`
	Verbose  bool          `help:"Verbose logging to stderr"`
}

func (c *SimulateCmd) Run() error {
	if len(c.Blinds) != 2 {
		return fmt.Errorf("--blinds takes a small and a big blind, got %d values", len(c.Blinds))
	}
	for _, p := range c.Policies {
		if p == "human" {
			return fmt.Errorf("--policies cannot include human")
		}
	}
	if c.Parallel <= 0 {
		c.Parallel = runtime.NumCPU()
	}

	level := log.WarnLevel
	if c.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Level: level})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := simulator.New(simulator.Config{
		Sessions: c.Sessions,
		Hands:    c.Hands,
		Parallel: c.Parallel,
		Seed:     c.Seed,
		Timeout:  c.Timeout,
		Options: game.Options{
			StartingChips: c.Chips,
			SmallBlind:    c.Blinds[0],
			BigBlind:      c.Blinds[1],
		},
		Policies: c.Policies,
		Logger:   logger,
	})

	printTitle()
	fmt.Printf("Simulating %d sessions of up to %d hands: %s\n", c.Sessions, c.Hands, strings.Join(c.Policies, ", "))

	report, err := sim.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	simulator.PrintSummary(os.Stdout, report)
	return nil
}
