package engine

import (
	"time"

	"xoxo/experiments/metrics"
	"xoxo/game"
)

// Result is the outcome of one game. Index 0 of per-side fields is player 1, who plays Naught
// and moves first.
type Result struct {
	Status game.Status
	// Remaining is what was left on each clock; zero for untimed games.
	Remaining [2]time.Duration
	Moves     int
	// Forfeit is set when the loser ran out of time.
	Forfeit bool
	Metrics []metrics.MoveMetric
}

type Engine interface {
	// Run plays an untimed game to the end.
	Run() Result
	// RunBlitz plays a game where each side has clock to spend on all its moves.
	RunBlitz(clock time.Duration) Result
}

// side returns the index of mark's player.
func side(mark game.Mark) int {
	if mark == game.Naught {
		return 0
	}
	return 1
}
