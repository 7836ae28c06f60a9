package simulator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/game"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	sim := New(Config{})
	assert.Equal(t, 1, sim.config.Sessions)
	assert.Equal(t, 1, sim.config.Parallel)
	assert.Equal(t, game.DefaultOptions, sim.config.Options)
	assert.Equal(t, DefaultPolicies, sim.config.Policies)
	assert.NotZero(t, sim.config.Seed)
	assert.NotNil(t, sim.config.Logger)
}

func TestRunConservesChips(t *testing.T) {
	t.Parallel()
	sim := New(Config{
		Sessions: 4,
		Hands:    50,
		Parallel: 2,
		Seed:     7,
		Timeout:  30 * time.Second,
	})

	report, err := sim.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Sessions, 4)

	total := len(DefaultPolicies) * game.DefaultOptions.StartingChips
	for i, s := range report.Sessions {
		assert.Equal(t, i, s.Index)
		assert.Equal(t, int64(7+i), s.Seed)
		assert.LessOrEqual(t, s.Hands, 50)
		assert.Positive(t, s.Hands)
		assert.Zero(t, s.Aborted, "a full deck never runs out")

		sum := 0
		for _, c := range s.Chips {
			sum += c
		}
		assert.Equal(t, total, sum, "session %d leaked chips", i)
		if s.GameOver {
			assert.NotEmpty(t, s.Winner)
		}
	}

	require.Contains(t, report.ByPolicy, "standard")
	require.Contains(t, report.ByPolicy, "aggressive")
	netBB := 0.0
	for _, st := range report.ByPolicy {
		require.NoError(t, st.Validate())
		netBB += st.AllBB
	}
	assert.InDelta(t, 0, netBB, 1e-6, "winnings and losses cancel out")
	assert.Equal(t, report.Hands(), sumHands(report))
}

func sumHands(r *Report) int {
	n := 0
	for _, s := range r.Sessions {
		n += s.Hands
	}
	return n
}

func TestRunIsReproducible(t *testing.T) {
	t.Parallel()
	cfg := Config{Sessions: 2, Hands: 30, Parallel: 2, Seed: 99, Policies: []string{"standard", "aggressive", "calling"}}

	a, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	b, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	for i := range a.Sessions {
		assert.Equal(t, a.Sessions[i].Chips, b.Sessions[i].Chips)
		assert.Equal(t, a.Sessions[i].Hands, b.Sessions[i].Hands)
	}
}

func TestRunRejectsHumans(t *testing.T) {
	t.Parallel()
	_, err := New(Config{Policies: []string{"human", "standard"}}).Run(context.Background())
	assert.ErrorContains(t, err, "cannot seat a human")

	_, err = New(Config{Policies: []string{"shark", "standard"}}).Run(context.Background())
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{Sessions: 2, Seed: 1}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()
	report, err := New(Config{Sessions: 1, Hands: 20, Seed: 3}).Run(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSummary(&buf, report)
	out := buf.String()
	assert.Contains(t, out, "=== SIMULATION RESULTS ===")
	assert.Contains(t, out, "Sessions: 1")
	assert.Contains(t, out, "=== AGGRESSIVE ===")
	assert.Contains(t, out, "=== STANDARD ===")
	assert.Contains(t, out, "bb/hand")
}
