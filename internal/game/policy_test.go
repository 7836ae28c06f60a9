package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/randutil"
)

func TestCallingPolicy(t *testing.T) {
	t.Parallel()
	var p CallingPolicy

	a, ok := p.Decide(View{HighestBet: 20, CurrentBet: 20})
	assert.True(t, ok)
	assert.Equal(t, Check, a.Type)

	a, _ = p.Decide(View{HighestBet: 40, CurrentBet: 20})
	assert.Equal(t, Call, a.Type)
}

func TestHumanPolicyWaits(t *testing.T) {
	t.Parallel()
	_, ok := HumanPolicy{}.Decide(View{})
	assert.False(t, ok)
	assert.True(t, IsHuman(HumanPolicy{}))
	assert.False(t, IsHuman(CallingPolicy{}))
}

func TestPolicyByName(t *testing.T) {
	t.Parallel()
	rng := randutil.New(1)
	for _, name := range PolicyNames {
		p, err := PolicyByName(name, rng)
		require.NoError(t, err, name)
		assert.NotNil(t, p)
	}
	_, err := PolicyByName("shark", rng)
	assert.Error(t, err)
}

// AI policies only ever produce legal actions
func TestAIDecisionsAreLegal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for seed := int64(1); seed <= 10; seed++ {
		tbl := newTestTable(t, 4, randomDeck(seed), WithChips([]int{1000, 300, 60, 2000}))
		policies := []Policy{
			NewAggressiveAI(randutil.Derive(seed, 0)),
			NewStandardAI(randutil.Derive(seed, 1)),
			NewAggressiveAI(randutil.Derive(seed, 2)),
			NewStandardAI(randutil.Derive(seed, 3)),
		}

		for hand := 0; hand < 25 && tbl.Status() != GameOver; hand++ {
			require.NoError(t, tbl.StartHand(ctx))
			for tbl.Status() == AwaitingAction || tbl.Status() == RoundComplete {
				if tbl.Status() == RoundComplete {
					require.NoError(t, tbl.Advance(ctx))
					continue
				}
				seat := tbl.Actor()
				a, ok := policies[seat].Decide(tbl.ViewFor(seat))
				require.True(t, ok)
				require.NoError(t, tbl.Submit(seat, a), "seed %d seat %d", seed, seat)
			}
		}
	}
}

func TestAggressiveBetsMoreThanStandard(t *testing.T) {
	t.Parallel()
	view := View{Pot: 100, HighestBet: 0, CurrentBet: 0, Chips: 1000, BigBlind: 20,
		Options: ActionOptions{MinRaise: 20, MaxRaise: 1000}}

	count := func(p Policy) int {
		bets := 0
		for i := 0; i < 1000; i++ {
			if a, _ := p.Decide(view); a.Type == Bet {
				bets++
			}
		}
		return bets
	}

	aggressive := count(NewAggressiveAI(randutil.New(7)))
	standard := count(NewStandardAI(randutil.New(7)))
	assert.Greater(t, aggressive, standard)
	assert.InDelta(t, 650, aggressive, 80)
	assert.InDelta(t, 400, standard, 80)
}
