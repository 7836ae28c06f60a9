package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/randutil"
)

func TestNewDeckHasAllCards(t *testing.T) {
	d := New(randutil.New(1))
	require.Equal(t, Size, d.Remaining())

	seen := make(map[Card]bool)
	for d.Remaining() > 0 {
		c, err := d.Draw()
		require.NoError(t, err)
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, Size)

	_, err := d.Draw()
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestDeckShuffleIsDeterministicPerSeed(t *testing.T) {
	a := New(randutil.New(42))
	b := New(randutil.New(42))
	c := New(randutil.New(7))

	var sameAsB, sameAsC = true, true
	for i := 0; i < Size; i++ {
		ca, _ := a.Draw()
		cb, _ := b.Draw()
		cc, _ := c.Draw()
		sameAsB = sameAsB && ca == cb
		sameAsC = sameAsC && ca == cc
	}
	assert.True(t, sameAsB, "same seed must give same order")
	assert.False(t, sameAsC, "different seed should give a different order")
}

func TestDeckReset(t *testing.T) {
	d := New(randutil.New(3))
	for i := 0; i < 10; i++ {
		_, err := d.Draw()
		require.NoError(t, err)
	}
	assert.Equal(t, Size-10, d.Remaining())

	d.Reset()
	assert.Equal(t, Size, d.Remaining())
}

func TestStackedDeck(t *testing.T) {
	top := MustParseCards("Ah Kh Qh")
	d := NewStacked(top)
	assert.Equal(t, Size, d.Remaining())

	for _, want := range top {
		got, err := d.Draw()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// Remaining cards never repeat the stacked ones
	for d.Remaining() > 0 {
		c, _ := d.Draw()
		assert.NotContains(t, top, c)
	}

	d.Reset()
	first, _ := d.Draw()
	assert.Equal(t, top[0], first)
}
