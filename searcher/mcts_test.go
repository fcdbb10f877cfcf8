package searcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"xoxo/game"
)

// countGame is a one-dimensional walk: Add moves the total by -1..3, Sub by -3..1. Reaching
// 10 pays 1 and ends the game, as does falling to -10. turns keeps states from repeating.
type countState struct {
	total int
	turns int
}

type countAction int

const (
	add countAction = iota
	sub
)

type countGame struct {
	rng *rand.Rand
}

func (g countGame) Act(s countState, a countAction) (countState, float64) {
	step := g.rng.Intn(5)
	if a == add {
		s.total += step - 1
	} else {
		s.total += step - 3
	}
	s.turns++
	if s.total >= 10 {
		return s, 1
	}
	return s, 0
}

func (countGame) IsTerminal(s countState) bool {
	return s.total >= 10 || s.total <= -10
}

func (countGame) AllowedActions(countState) []countAction {
	return []countAction{add, sub}
}

func (countGame) Discount() float64 {
	return 0.99
}

func (countGame) Hash(s countState) game.StateHash {
	return game.StateHash(uint64(uint32(s.total))<<32 | uint64(uint32(s.turns)))
}

func newCountGame(seed uint64) countGame {
	return countGame{rng: rand.New(rand.NewSource(seed))}
}

func TestMCTSStep(t *testing.T) {
	t.Run("two steps visit both actions once", func(t *testing.T) {
		m := NewMCTS[countState, countAction](newCountGame(1), WithExploration(0.75), WithSeed(1))
		root := countState{}
		m.Step(root)
		m.Step(root)

		q := m.QMap()
		require.Equal(t, 2.0, q.Visits(root), "The root should have been visited twice")
		require.Equal(t, 1.0, q.Get(root, add).Visits)
		require.Equal(t, 1.0, q.Get(root, sub).Visits)
	})

	t.Run("terminal state returns zero and records nothing", func(t *testing.T) {
		m := NewMCTS[countState, countAction](newCountGame(1), WithSeed(1))
		require.Equal(t, 0.0, m.Step(countState{total: 10}))
		require.Zero(t, m.QMap().Len())
	})

	t.Run("new states are valued by a rollout and marked visited", func(t *testing.T) {
		b := game.NewTicTacToe()
		m := NewMCTS[game.TicTacToe, game.Cell](BoardMDP[game.TicTacToe, game.Cell]{}, WithSeed(3))
		m.Step(b)

		require.Equal(t, 1, m.QMap().Len())
		require.Equal(t, 2, m.QMap().States(), "The root and the expanded child are known")
		for _, c := range b.ValidMoves() {
			child := b.Play(c, game.Naught)
			if m.QMap().Visits(child) > 0 {
				require.Equal(t, 1.0, m.QMap().Visits(child))
				require.Equal(t, 1.0, m.QMap().Get(b, c).Visits)
			}
		}
	})

	t.Run("returns accumulate consistently", func(t *testing.T) {
		m := NewMCTS[countState, countAction](newCountGame(5), WithSeed(5))
		root := countState{}
		total := 0.0
		for i := 0; i < 50; i++ {
			total += m.Step(root)
		}
		q := m.QMap()
		stats := []Stat{q.Get(root, add), q.Get(root, sub)}
		require.Equal(t, 50.0, stats[0].Visits+stats[1].Visits)
		require.Equal(t, q.Visits(root), stats[0].Visits+stats[1].Visits)
		require.InDelta(t, total, stats[0].Return+stats[1].Return, 1e-9,
			"Root returns should sum to the returns of all steps")
	})
}

func TestMCTSConvergence(t *testing.T) {
	// Stochastic: passes with high probability, not always.
	m := NewMCTS[countState, countAction](newCountGame(uint64(time.Now().UnixNano())), WithExploration(0.75))
	root := countState{}
	m.Train(root, 1000)
	require.Equal(t, add, m.BestAction(root), "Stochastic test that might fail sometimes")
}

func TestMCTSRollout(t *testing.T) {
	t.Run("discounts the final reward", func(t *testing.T) {
		b := parseTicTacToe(t, "oo xx    ")
		m := NewMCTS[game.TicTacToe, game.Cell](BoardMDP[game.TicTacToe, game.Cell]{}, WithSeed(9))
		for i := 0; i < 20; i++ {
			g := m.Rollout(b)
			require.LessOrEqual(t, g, 1.0)
			require.GreaterOrEqual(t, g, -1.0)
		}
	})

	t.Run("finished game has no return", func(t *testing.T) {
		m := NewMCTS[game.TicTacToe, game.Cell](BoardMDP[game.TicTacToe, game.Cell]{}, WithSeed(9))
		require.Equal(t, 0.0, m.Rollout(parseTicTacToe(t, "xxxoo    ")))
	})
}

func TestBoardMDP(t *testing.T) {
	mdp := BoardMDP[game.TicTacToe, game.Cell]{}

	t.Run("the winning mover is rewarded", func(t *testing.T) {
		b := parseTicTacToe(t, "oo xx    ")
		next, reward := mdp.Act(b, 3)
		require.Equal(t, 1.0, reward)
		require.True(t, mdp.IsTerminal(next))
		require.Equal(t, game.NaughtWon, next.Status())
	})

	t.Run("other moves earn nothing", func(t *testing.T) {
		next, reward := mdp.Act(game.NewTicTacToe(), 5)
		require.Equal(t, 0.0, reward)
		require.Equal(t, game.Naught, next.At(5))
		require.False(t, mdp.IsTerminal(next))
	})

	t.Run("discount alternates sign", func(t *testing.T) {
		require.Equal(t, DiscountFactor, mdp.Discount())
		require.Less(t, mdp.Discount(), 0.0)
	})
}

func TestMCTSPlayer(t *testing.T) {
	t.Run("takes an immediate win", func(t *testing.T) {
		p := NewMCTSPlayer[game.TicTacToe, game.Cell](WithIterations(2000), WithSeed(11))
		require.Equal(t, game.Cell(3), p.Play(parseTicTacToe(t, "oo xx    ")))
	})

	t.Run("blitz stays within its share of the clock", func(t *testing.T) {
		p := NewMCTSPlayer[game.ConnectFour, game.Column](WithSeed(4), WithMetrics())
		b := game.NewConnectFour()
		start := time.Now()
		move := p.Blitz(b, 800*time.Millisecond)
		require.Less(t, time.Since(start), 400*time.Millisecond, "One eighth of the clock is 100ms")
		require.Contains(t, b.ValidMoves(), move)

		metric := p.LastMetric()
		require.Equal(t, 100*time.Millisecond, metric.Budget)
		require.Positive(t, metric.Episodes)
	})

	t.Run("blitz with an empty clock still moves", func(t *testing.T) {
		p := NewMCTSPlayer[game.TicTacToe, game.Cell](WithSeed(4))
		b := game.NewTicTacToe()
		require.Contains(t, b.ValidMoves(), p.Blitz(b, 0))
	})

	t.Run("panics on a finished game", func(t *testing.T) {
		p := NewMCTSPlayer[game.TicTacToe, game.Cell](WithSeed(4))
		require.Panics(t, func() { p.Play(parseTicTacToe(t, "xxxoo    ")) })
	})

	t.Run("invalid options panic", func(t *testing.T) {
		require.Panics(t, func() { NewMCTSPlayer[game.TicTacToe, game.Cell](WithIterations(0)) })
		require.Panics(t, func() { NewMCTSPlayer[game.TicTacToe, game.Cell](WithBlitzFraction(2)) })
		require.Panics(t, func() { NewMCTSPlayer[game.TicTacToe, game.Cell](WithExploration(-1)) })
	})

	t.Run("close without persistence is a no-op", func(t *testing.T) {
		p := NewMCTSPlayer[game.TicTacToe, game.Cell](WithSeed(4))
		require.NoError(t, p.Close())
	})

	t.Run("close reports save failures", func(t *testing.T) {
		path := t.TempDir() + "/missing/dir/ttt.qmap"
		p := NewMCTSPlayer[game.TicTacToe, game.Cell](WithPersistence(path), WithSeed(4))
		require.Error(t, p.Close(), "The directory does not exist")
	})
}

func TestExplorationFor(t *testing.T) {
	require.Equal(t, 1.0, ExplorationFor(game.TicTacToeType))
	require.Equal(t, 1.0, ExplorationFor(game.ConnectFourType))
	require.Equal(t, 0.75, ExplorationFor(game.UltimateType))
}
