package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmpty(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}

	assert.Zero(t, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Zero(t, stats.StdDev())
	assert.Zero(t, stats.StdError())
	assert.Zero(t, stats.Median())
	assert.Zero(t, stats.Percentile(0.5))
	assert.Zero(t, stats.SeatMean(3))
	assert.ErrorContains(t, stats.Validate(), "invalid hands count")
}

func TestSingleResult(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}
	stats.Add(HandResult{NetChips: 50, BigBlind: 20, Seat: 3, WentToShowdown: true, Pot: 100, Street: "river"})

	assert.Equal(t, 1, stats.Hands)
	assert.InDelta(t, 2.5, stats.Mean(), 1e-9)
	assert.Zero(t, stats.Variance())
	assert.InDelta(t, 2.5, stats.Median(), 1e-9)
	assert.Equal(t, 1, stats.ShowdownWins)
	assert.InDelta(t, 2.5, stats.SeatMean(3), 1e-9)
	assert.Equal(t, 100, stats.MaxPotChips)
	assert.InDelta(t, 5.0, stats.MaxPotBB, 1e-9)
	assert.Equal(t, map[string]int{"river": 1}, stats.Streets)
	require.NoError(t, stats.Validate())
}

func TestAggregates(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}
	for i, net := range []int{-20, 0, 20, 40, 60} {
		stats.Add(HandResult{NetChips: net, BigBlind: 20, Seat: i % 2, Pot: 1200})
	}

	assert.InDelta(t, 1.0, stats.Mean(), 1e-9)
	assert.InDelta(t, 2.5, stats.Variance(), 1e-9)
	assert.InDelta(t, 1.0, stats.Median(), 1e-9)
	assert.InDelta(t, 2.0, stats.Percentile(0.75), 1e-9)
	assert.InDelta(t, 3.0, stats.Percentile(1), 1e-9)
	assert.Equal(t, 3, stats.NonShowdownWins)
	assert.Equal(t, 5, stats.BigPots, "60bb pots count as big")
	assert.Equal(t, []int{0, 1}, stats.Seats())
	assert.InDelta(t, 1.0, stats.SeatMean(0), 1e-9)
	assert.InDelta(t, 1.0, stats.SeatMean(1), 1e-9)

	low, high := stats.ConfidenceInterval95()
	assert.Less(t, low, stats.Mean())
	assert.Greater(t, high, stats.Mean())
	require.NoError(t, stats.Validate())
}

func TestMerge(t *testing.T) {
	t.Parallel()
	a, b := &Statistics{}, &Statistics{}
	a.Add(HandResult{NetChips: 40, BigBlind: 20, Seat: 0, Pot: 80, Street: "flop"})
	b.Add(HandResult{NetChips: -40, BigBlind: 20, Seat: 0, WentToShowdown: true, Pot: 400, Street: "river"})
	b.Add(HandResult{NetChips: 20, BigBlind: 20, Seat: 1, Pot: 40, Street: "preflop"})

	a.Merge(b)
	a.Merge(nil)

	assert.Equal(t, 3, a.Hands)
	assert.InDelta(t, 1.0/3.0, a.Mean(), 1e-9)
	assert.Equal(t, 400, a.MaxPotChips)
	assert.Equal(t, 2, a.SeatResults[0].Hands)
	assert.Equal(t, map[string]int{"flop": 1, "river": 1, "preflop": 1}, a.Streets)
	require.NoError(t, a.Validate())
}

func TestValidateDetectsInconsistency(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}
	stats.Add(HandResult{NetChips: 20, BigBlind: 20})
	stats.ShowdownBB += 5
	assert.ErrorContains(t, stats.Validate(), "ledger mismatch")

	stats = &Statistics{}
	stats.Add(HandResult{NetChips: 20, BigBlind: 20})
	stats.Values = nil
	assert.ErrorContains(t, stats.Validate(), "values array length")
}
