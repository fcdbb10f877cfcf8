package searcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"xoxo/game"
)

func trainedTicTacToe(t *testing.T, steps int) *MCTS[game.TicTacToe, game.Cell] {
	t.Helper()
	m := NewMCTS[game.TicTacToe, game.Cell](BoardMDP[game.TicTacToe, game.Cell]{}, WithSeed(21))
	m.Train(game.NewTicTacToe(), steps)
	return m
}

// midGame plays plies random moves from start, never one that ends the game.
func midGame[B game.Board[B, C], C game.Coordinate](start B, plies int, seed uint64) B {
	rng := rand.New(rand.NewSource(seed))
	b := start
	for i := 0; i < plies; i++ {
		moves := b.ValidMoves()
		rng.Shuffle(len(moves), func(x, y int) { moves[x], moves[y] = moves[y], moves[x] })
		next := b
		for _, c := range moves {
			if next = b.Play(c, b.CurrentPlayer()); !next.IsOver() {
				break
			}
		}
		if next.IsOver() {
			break
		}
		b = next
	}
	return b
}

// requireReloads trains from start, saves and loads the map, and checks every state and
// statistic survived.
func requireReloads[B game.Board[B, C], C game.Coordinate](t *testing.T, start B, steps int) {
	t.Helper()
	codec := BoardMDP[B, C]{}
	m := NewMCTS[B, C](codec, WithSeed(5))
	m.Train(start, steps)
	q := m.QMap()
	require.Positive(t, q.Len())

	path := filepath.Join(t.TempDir(), "game.qmap")
	require.NoError(t, q.Save(path, codec))
	loaded, err := LoadQMap[B, C](path, codec)
	require.NoError(t, err)

	require.Equal(t, q.Len(), loaded.Len())
	require.Equal(t, q.States(), loaded.States())
	for h, s := range q.states {
		require.True(t, s == loaded.states[h], "State should decode to the played position:\n%v", s)
		require.Equal(t, q.Visits(s), loaded.Visits(s))
	}
	for key, stat := range q.actions {
		require.Equal(t, stat, loaded.Get(q.states[key.state], key.action))
	}
	require.Equal(t, q.Visits(start), loaded.Visits(start))
}

func TestQMapPersistence(t *testing.T) {
	codec := BoardMDP[game.TicTacToe, game.Cell]{}

	t.Run("save then load reproduces every entry", func(t *testing.T) {
		q := trainedTicTacToe(t, 500).QMap()
		path := filepath.Join(t.TempDir(), "ttt.qmap")
		require.NoError(t, q.Save(path, codec))

		loaded, err := LoadQMap[game.TicTacToe, game.Cell](path, codec)
		require.NoError(t, err)
		require.Equal(t, q.Len(), loaded.Len())
		require.Equal(t, q.States(), loaded.States())
		for key, stat := range q.actions {
			require.Equal(t, stat, loaded.Get(q.states[key.state], key.action),
				"Stat for move %v should survive a round trip", key.action)
		}
		for h, visits := range q.visits {
			require.Equal(t, visits, loaded.Visits(q.states[h]))
		}
	})

	t.Run("equal maps write equal files", func(t *testing.T) {
		q := trainedTicTacToe(t, 200).QMap()
		dir := t.TempDir()
		first, second := filepath.Join(dir, "a.qmap"), filepath.Join(dir, "b.qmap")
		require.NoError(t, q.Save(first, codec))

		loaded, err := LoadQMap[game.TicTacToe, game.Cell](first, codec)
		require.NoError(t, err)
		require.NoError(t, loaded.Save(second, codec))

		a, err := os.ReadFile(first)
		require.NoError(t, err)
		b, err := os.ReadFile(second)
		require.NoError(t, err)
		require.Equal(t, a, b)
	})

	t.Run("saving replaces the previous file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ttt.qmap")
		require.NoError(t, trainedTicTacToe(t, 300).QMap().Save(path, codec))
		require.NoError(t, NewQMap[game.TicTacToe, game.Cell](codec.Hash).Save(path, codec))

		loaded, err := LoadQMap[game.TicTacToe, game.Cell](path, codec)
		require.NoError(t, err)
		require.Zero(t, loaded.Len())

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		require.Len(t, entries, 1, "No temporary files should be left behind")
	})

	t.Run("missing and corrupt files are errors", func(t *testing.T) {
		dir := t.TempDir()
		_, err := LoadQMap[game.TicTacToe, game.Cell](filepath.Join(dir, "none.qmap"), codec)
		require.ErrorIs(t, err, os.ErrNotExist)

		corrupt := filepath.Join(dir, "corrupt.qmap")
		require.NoError(t, os.WriteFile(corrupt, []byte{0x12, 0xff, 0x01}, 0o644))
		_, err = LoadQMap[game.TicTacToe, game.Cell](corrupt, codec)
		require.Error(t, err)

		empty := filepath.Join(dir, "empty.qmap")
		require.NoError(t, os.WriteFile(empty, nil, 0o644))
		_, err = LoadQMap[game.TicTacToe, game.Cell](empty, codec)
		require.Error(t, err, "A file without a version is not a q-map")
	})

	t.Run("ultimate maps trained mid-game reload", func(t *testing.T) {
		start := midGame(game.NewUltimate(), 30, 3)
		require.False(t, start.IsOver())
		requireReloads(t, start, 400)
	})

	t.Run("connect four maps trained mid-game reload", func(t *testing.T) {
		start := midGame(game.NewConnectFour(), 12, 3)
		require.False(t, start.IsOver())
		requireReloads(t, start, 400)
	})

	t.Run("unreadable states are skipped", func(t *testing.T) {
		q := trainedTicTacToe(t, 300).QMap()
		root := game.NewTicTacToe()
		rootVisits := q.Visits(root)
		// Two crosses and no naught cannot be reached by play.
		unreachable := parseTicTacToe(t, "   xx    ")
		q.record(unreachable, 7, 1)
		path := filepath.Join(t.TempDir(), "ttt.qmap")
		require.NoError(t, q.Save(path, codec))

		loaded, err := LoadQMap[game.TicTacToe, game.Cell](path, codec)
		require.NoError(t, err)
		require.Equal(t, q.Len()-1, loaded.Len())
		require.Equal(t, q.States()-1, loaded.States())
		require.Zero(t, loaded.Visits(unreachable))
		require.Equal(t, rootVisits, loaded.Visits(root))
	})

	t.Run("invalid boards are rejected", func(t *testing.T) {
		q := NewQMap[game.TicTacToe, game.Cell](codec.Hash)
		q.record(game.NewTicTacToe(), 5, 1)
		path := filepath.Join(t.TempDir(), "ttt.qmap")
		require.NoError(t, q.Save(path, codec))

		_, err := LoadQMap[game.Ultimate, game.Square](path, BoardMDP[game.Ultimate, game.Square]{})
		require.Error(t, err, "A tic-tac-toe board does not decode as ultimate")
	})
}

func TestMCTSPlayerPersistence(t *testing.T) {
	t.Run("statistics carry over between players", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mcts.o.ttt.qmap")
		b := game.NewTicTacToe()

		first := NewMCTSPlayer[game.TicTacToe, game.Cell](WithPersistence(path), WithIterations(300), WithSeed(1))
		first.Play(b)
		learned := first.QMap().Visits(b)
		require.NoError(t, first.Close())

		second := NewMCTSPlayer[game.TicTacToe, game.Cell](WithPersistence(path), WithIterations(300), WithSeed(2))
		require.Equal(t, learned, second.QMap().Visits(b))
		second.Play(b)
		require.Equal(t, learned+300, second.QMap().Visits(b))
	})

	t.Run("corrupt file falls back to an empty map", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mcts.x.c4.qmap")
		require.NoError(t, os.WriteFile(path, []byte("not a q-map"), 0o644))

		p := NewMCTSPlayer[game.ConnectFour, game.Column](WithPersistence(path), WithIterations(50), WithSeed(1))
		require.Zero(t, p.QMap().Len())
		p.Play(game.NewConnectFour())
		require.NoError(t, p.Close())

		loaded, err := LoadQMap[game.ConnectFour, game.Column](path, BoardMDP[game.ConnectFour, game.Column]{})
		require.NoError(t, err, "Close should overwrite the corrupt file")
		require.Equal(t, p.QMap().Len(), loaded.Len())
	})

	t.Run("missing file starts empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mcts.o.uttt.qmap")
		p := NewMCTSPlayer[game.Ultimate, game.Square](WithPersistence(path), WithIterations(20), WithSeed(1))
		require.Zero(t, p.QMap().Len())
		p.Play(game.NewUltimate())
		require.NoError(t, p.Close())
		require.FileExists(t, path)
	})
}
