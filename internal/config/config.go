// Package config loads session settings from HCL.
//
//	log_level = "debug"
//
//	table {
//	  seats          = 4
//	  starting_chips = 1000
//	  small_blind    = 10
//	  big_blind      = 20
//	}
//
//	timing {
//	  think_delay = "1.2s"
//	}
//
//	seat "You"        { policy = "human" }
//	seat "AI Player 1" { policy = "standard" }
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem/internal/game"
)

const (
	MinSeats = 2
	MaxSeats = 10
)

// Config is the complete session configuration
type Config struct {
	LogLevel string          `hcl:"log_level,optional"`
	LogFile  string          `hcl:"log_file,optional"`
	Seed     int64           `hcl:"seed,optional"`
	Table    *TableSettings  `hcl:"table,block"`
	Timing   *TimingSettings `hcl:"timing,block"`
	Seats    []SeatConfig    `hcl:"seat,block"`
}

// TableSettings are the stakes and size of the table
type TableSettings struct {
	Seats         int `hcl:"seats,optional"`
	StartingChips int `hcl:"starting_chips,optional"`
	SmallBlind    int `hcl:"small_blind,optional"`
	BigBlind      int `hcl:"big_blind,optional"`
	MaxHands      int `hcl:"max_hands,optional"`
}

// TimingSettings are engine delays as Go duration strings
type TimingSettings struct {
	ThinkDelay  string `hcl:"think_delay,optional"`
	ThinkJitter string `hcl:"think_jitter,optional"`
	StreetDelay string `hcl:"street_delay,optional"`
	HandDelay   string `hcl:"hand_delay,optional"`
	DealDelay   string `hcl:"deal_delay,optional"`
}

// SeatConfig describes one seat
type SeatConfig struct {
	Name   string `hcl:"name,label"`
	Policy string `hcl:"policy,optional"`
}

// Default returns the configuration used when no file is present: one human
// against three AI players.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads an HCL file. A missing file yields the default configuration.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file)
}

// Parse decodes configuration from HCL source
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file)
}

func decode(file *hcl.File) (*Config, error) {
	var config Config
	if diags := gohcl.DecodeBody(file.Body, nil, &config); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFile == "" {
		c.LogFile = "holdem.log"
	}
	if c.Table == nil {
		c.Table = &TableSettings{}
	}
	if c.Timing == nil {
		c.Timing = &TimingSettings{}
	}

	t := c.Table
	if t.StartingChips == 0 {
		t.StartingChips = game.DefaultOptions.StartingChips
	}
	if t.SmallBlind == 0 {
		t.SmallBlind = game.DefaultOptions.SmallBlind
	}
	if t.BigBlind == 0 {
		t.BigBlind = t.SmallBlind * 2
	}

	if t.Seats == 0 {
		t.Seats = len(c.Seats)
		if t.Seats == 0 {
			t.Seats = 4
		}
	}
	if len(c.Seats) == 0 {
		c.Seats = defaultSeats(t.Seats)
	}
	for i := range c.Seats {
		if c.Seats[i].Policy == "" {
			c.Seats[i].Policy = "standard"
		}
	}

	d := game.DefaultTiming
	setDuration(&c.Timing.ThinkDelay, d.ThinkDelay)
	setDuration(&c.Timing.ThinkJitter, d.ThinkJitter)
	setDuration(&c.Timing.StreetDelay, d.StreetDelay)
	setDuration(&c.Timing.HandDelay, d.HandDelay)
	setDuration(&c.Timing.DealDelay, 250*time.Millisecond)
}

func setDuration(s *string, d time.Duration) {
	if *s == "" {
		*s = d.String()
	}
}

// defaultSeats seats a human first and alternates AI styles after
func defaultSeats(n int) []SeatConfig {
	seats := []SeatConfig{{Name: "You", Policy: "human"}}
	for i := 1; i < n; i++ {
		policy := "standard"
		if i%2 == 0 {
			policy = "aggressive"
		}
		seats = append(seats, SeatConfig{Name: fmt.Sprintf("AI Player %d", i), Policy: policy})
	}
	return seats
}

// Validate checks the configuration is playable
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}

	t := c.Table
	if t.Seats < MinSeats || t.Seats > MaxSeats {
		return fmt.Errorf("seats must be between %d and %d, got %d", MinSeats, MaxSeats, t.Seats)
	}
	if len(c.Seats) != t.Seats {
		return fmt.Errorf("table has %d seats but %d seat blocks", t.Seats, len(c.Seats))
	}
	if t.SmallBlind <= 0 {
		return fmt.Errorf("small_blind must be positive, got %d", t.SmallBlind)
	}
	if t.BigBlind <= t.SmallBlind {
		return fmt.Errorf("big_blind (%d) must be greater than small_blind (%d)", t.BigBlind, t.SmallBlind)
	}
	if t.StartingChips < t.BigBlind {
		return fmt.Errorf("starting_chips (%d) must cover the big blind (%d)", t.StartingChips, t.BigBlind)
	}
	if t.MaxHands < 0 {
		return fmt.Errorf("max_hands must not be negative, got %d", t.MaxHands)
	}

	names := make(map[string]bool)
	humans := 0
	for _, s := range c.Seats {
		if names[s.Name] {
			return fmt.Errorf("duplicate seat name %q", s.Name)
		}
		names[s.Name] = true
		if !slices.Contains(game.PolicyNames, s.Policy) {
			return fmt.Errorf("seat %q: unknown policy %q", s.Name, s.Policy)
		}
		if s.Policy == "human" {
			humans++
		}
	}
	if humans > 1 {
		return fmt.Errorf("at most one human seat is supported, got %d", humans)
	}

	if _, err := c.EngineTiming(); err != nil {
		return err
	}
	if _, err := c.DealDelay(); err != nil {
		return err
	}
	return nil
}

// GameOptions returns the table stakes
func (c *Config) GameOptions() game.Options {
	return game.Options{
		StartingChips: c.Table.StartingChips,
		SmallBlind:    c.Table.SmallBlind,
		BigBlind:      c.Table.BigBlind,
	}
}

// GameSeats returns the seats in order
func (c *Config) GameSeats() []game.Seat {
	seats := make([]game.Seat, len(c.Seats))
	for i, s := range c.Seats {
		seats[i] = game.Seat{Name: s.Name, Human: s.Policy == "human"}
	}
	return seats
}

// EngineTiming parses the engine delays
func (c *Config) EngineTiming() (game.Timing, error) {
	var (
		timing game.Timing
		err    error
	)
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"think_delay", c.Timing.ThinkDelay, &timing.ThinkDelay},
		{"think_jitter", c.Timing.ThinkJitter, &timing.ThinkJitter},
		{"street_delay", c.Timing.StreetDelay, &timing.StreetDelay},
		{"hand_delay", c.Timing.HandDelay, &timing.HandDelay},
	}
	for _, f := range fields {
		if *f.dst, err = parseDuration(f.name, f.value); err != nil {
			return game.Timing{}, err
		}
	}
	return timing, nil
}

// DealDelay is the pause for each dealt card in interactive renderers
func (c *Config) DealDelay() (time.Duration, error) {
	return parseDuration("deal_delay", c.Timing.DealDelay)
}

// Level returns the parsed log level
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func parseDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", name, value)
	}
	return d, nil
}
