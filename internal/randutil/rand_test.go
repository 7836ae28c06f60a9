package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()
	a, b := New(42), New(42)
	for range 10 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.NotEqual(t, New(1).Uint64(), New(2).Uint64())
}

func TestDeriveStreamsDiffer(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Derive(7, 3).Uint64(), Derive(7, 3).Uint64())
	assert.NotEqual(t, Derive(7, 0).Uint64(), Derive(7, 1).Uint64())
	assert.NotEqual(t, Derive(7, 0).Uint64(), New(7).Uint64())
}

func TestSeed(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(5), Seed(5))
	assert.NotZero(t, Seed(0))
}
