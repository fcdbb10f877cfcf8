package searcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUCB1(t *testing.T) {
	t.Run("unvisited actions score infinity", func(t *testing.T) {
		require.True(t, math.IsInf(ucb1(1.0, 0, 0, 100), 1),
			"Should explore unvisited actions first")
	})

	t.Run("computing UCB1 value", func(t *testing.T) {
		got := ucb1(2.0, 5.0, 10, 100)

		expected := 5.0/10 + 2.0*math.Sqrt(math.Log(100)/10.0)
		require.InDelta(t, expected, got, 0.0001,
			"Should compute w/v + c*sqrt(ln(t)/v)")
	})

	t.Run("single state visit has no exploration term", func(t *testing.T) {
		require.Equal(t, 0.5, ucb1(2.0, 1.0, 2, 1))
	})

	t.Run("exploration term increases with state visits", func(t *testing.T) {
		score1 := ucb1(2.0, 5.0, 10, 100)
		score2 := ucb1(2.0, 5.0, 10, 1000)

		require.Greater(t, score2, score1,
			"More state visits should increase exploration term")
	})

	t.Run("exploration term decreases with action visits", func(t *testing.T) {
		score1 := ucb1(2.0, 5.0, 10, 100)
		score2 := ucb1(2.0, 5.0, 20, 100)

		require.Greater(t, score1, score2,
			"More action visits should decrease exploration term")
	})

	t.Run("exploitation term increases with returns", func(t *testing.T) {
		score1 := ucb1(2.0, 5.0, 10, 100)
		score2 := ucb1(2.0, 10.0, 10, 100)

		require.Greater(t, score2, score1,
			"More returns should increase exploitation term")
	})

	t.Run("zero exploration is the mean return", func(t *testing.T) {
		require.Equal(t, -0.25, ucb1(0, -1.0, 4, 50))
	})
}
