package agent

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"xoxo/game"
	"xoxo/meta"
	"xoxo/player"
	"xoxo/searcher"
)

// Kind names a player configuration selectable from the command line.
type Kind string

const (
	Console  Kind = "console"
	Random   Kind = "random"
	AB       Kind = "ab"
	AB4      Kind = "ab4"
	AB6      Kind = "ab6"
	Minimax  Kind = "minimax"
	Minimax4 Kind = "minimax4"
	MCTS     Kind = "mcts"
	MCTS1    Kind = "mcts1"
	MCTS2    Kind = "mcts2"
	MCTS3    Kind = "mcts3"
)

// Kinds lists every player kind, in the order they are offered to users.
var Kinds = []Kind{Console, Random, AB, AB4, AB6, Minimax, Minimax4, MCTS, MCTS1, MCTS2, MCTS3}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == strings.ToLower(s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown player %q", s)
}

// IsMCTS reports whether players of this kind keep a Q-map.
func (k Kind) IsMCTS() bool {
	switch k {
	case MCTS, MCTS1, MCTS2, MCTS3:
		return true
	}
	return false
}

// exploration returns the UCB1 constant of an MCTS kind; mcts uses the game default.
func (k Kind) exploration(t game.Type) float64 {
	switch k {
	case MCTS1:
		return 1.0
	case MCTS2:
		return 2.0
	case MCTS3:
		return 0.5
	default:
		return searcher.ExplorationFor(t)
	}
}

// Options carries the settings shared by all players of a match.
type Options struct {
	QMapDir        string
	Iterations     int
	BlitzFraction  float64
	AlphaBetaDepth int
	MinimaxDepth   int
	// Seed makes the randomised players reproducible; zero seeds from system entropy.
	Seed uint64
	// Lines and Out are the terminal of console players.
	Lines   player.LineReader
	Out     io.Writer
	Metrics bool
}

// DefaultOptions returns the compiled-in defaults.
func DefaultOptions() Options {
	return Options{
		QMapDir:        meta.QMapDir,
		Iterations:     meta.Iterations,
		BlitzFraction:  meta.BlitzFraction,
		AlphaBetaDepth: meta.AlphaBetaDepth,
		MinimaxDepth:   meta.MinimaxDepth,
	}
}

// QMapPath returns the file an MCTS player of kind keeps its statistics in.
func QMapPath(dir string, kind Kind, mark game.Mark, t game.Type) string {
	name := fmt.Sprintf("%s.%s.%s.qmap", kind, strings.ToLower(mark.String()), t)
	return filepath.Join(dir, name)
}

// New builds a player of kind for mark. The caller must Close players implementing
// searcher.Closer once the game is over.
func New[B game.Board[B, C], C game.Coordinate](kit Kit[B, C], kind Kind, mark game.Mark, opts Options) (searcher.Player[B, C], error) {
	if mark != game.Cross && mark != game.Naught {
		return nil, fmt.Errorf("cannot build a player for mark %q", mark)
	}

	var common []searcher.Option
	if opts.Seed != 0 {
		common = append(common, searcher.WithSeed(opts.Seed))
	}
	if opts.Metrics {
		common = append(common, searcher.WithMetrics())
	}

	switch kind {
	case Console:
		if opts.Lines == nil || opts.Out == nil {
			return nil, fmt.Errorf("console player needs a terminal")
		}
		return player.NewConsole[B, C](mark, kit.ParseMove, kit.Prompt, opts.Lines, opts.Out), nil
	case Random:
		return searcher.NewRandom[B, C](common...), nil
	case AB, AB4, AB6:
		depth := opts.AlphaBetaDepth
		if kind == AB4 {
			depth = 4
		} else if kind == AB6 {
			depth = 6
		}
		if depth < 0 {
			return nil, fmt.Errorf("invalid alpha-beta depth %d", depth)
		}
		return searcher.NewAlphaBeta[B, C](mark, depth, kit.Heuristic, common...), nil
	case Minimax, Minimax4:
		depth := opts.MinimaxDepth
		if kind == Minimax4 {
			depth = 4
		}
		if depth < 0 {
			return nil, fmt.Errorf("invalid minimax depth %d", depth)
		}
		return searcher.NewMinimax[B, C](mark, depth, kit.Heuristic, common...), nil
	case MCTS, MCTS1, MCTS2, MCTS3:
		if opts.Iterations <= 0 {
			return nil, fmt.Errorf("invalid number of iterations %d", opts.Iterations)
		}
		if opts.BlitzFraction <= 0 || opts.BlitzFraction > 1 {
			return nil, fmt.Errorf("invalid blitz fraction %v", opts.BlitzFraction)
		}
		options := append(common,
			searcher.WithIterations(opts.Iterations),
			searcher.WithBlitzFraction(opts.BlitzFraction),
			searcher.WithExploration(kind.exploration(kit.Type)),
		)
		if opts.QMapDir != "" {
			options = append(options, searcher.WithPersistence(QMapPath(opts.QMapDir, kind, mark, kit.Type)))
		}
		return searcher.NewMCTSPlayer[B, C](options...), nil
	}
	return nil, fmt.Errorf("unknown player %q", kind)
}
