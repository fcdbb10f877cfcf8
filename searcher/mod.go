package searcher

import (
	"time"

	"xoxo/experiments/metrics"
	"xoxo/game"
)

// DiscountFactor folds two-player alternation into a single-agent return: a reward earned
// by the mover counts against the player one ply up. It stays just short of -1 so that
// returns of very long lines still decay.
const DiscountFactor = -0.999

// Player picks moves for one side of a game.
type Player[B any, C game.Coordinate] interface {
	// Play returns a legal move for b. It panics when b is over.
	Play(b B) C
	// Blitz returns a legal move for b, with remaining left on the player's clock for the rest
	// of the game.
	Blitz(b B, remaining time.Duration) C
}

// Closer is implemented by players that hold resources, such as a persisted Q-map, which
// must be released when the player retires.
type Closer interface {
	Close() error
}

// Instrumented is implemented by players that record search metrics per decision.
type Instrumented interface {
	LastMetric() metrics.SearchMetric
}

// ExplorationFor returns the default UCB1 exploration constant of a game. Ultimate
// tic-tac-toe branches widely, so it explores less.
func ExplorationFor(t game.Type) float64 {
	switch t {
	case game.UltimateType:
		return 0.75
	default:
		return 1.0
	}
}

func requirePlayable[C any](moves []C) {
	if len(moves) == 0 {
		panic("Must not search a finished game")
	}
}
