package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"xoxo/experiments/metrics"
	"xoxo/game"
	"xoxo/searcher"
)

// Local plays two in-process players against each other.
type Local[B game.Board[B, C], C game.Coordinate] struct {
	start   B
	players [2]searcher.Player[B, C]
}

// LocalEngine pits player1 (Naught) against player2 (Cross) from start.
func LocalEngine[B game.Board[B, C], C game.Coordinate](start B, player1, player2 searcher.Player[B, C]) *Local[B, C] {
	if player1 == nil || player2 == nil {
		panic("need two players")
	}
	return &Local[B, C]{
		start:   start,
		players: [2]searcher.Player[B, C]{player1, player2},
	}
}

func (e *Local[B, C]) Run() Result {
	return e.run(func(p searcher.Player[B, C], b B, _ time.Duration) C {
		return p.Play(b)
	}, 0)
}

// RunBlitz charges each side the wall-clock time of its moves. A side whose clock reaches
// zero loses, even if its move would have ended the game.
func (e *Local[B, C]) RunBlitz(clock time.Duration) Result {
	if clock <= 0 {
		panic(fmt.Sprintf("Must specify a positive clock, got %v", clock))
	}
	return e.run(func(p searcher.Player[B, C], b B, remaining time.Duration) C {
		return p.Blitz(b, remaining)
	}, clock)
}

func (e *Local[B, C]) run(decide func(searcher.Player[B, C], B, time.Duration) C, clock time.Duration) Result {
	board := e.start
	result := Result{Remaining: [2]time.Duration{clock, clock}}

	log.Debug().Msgf("player %v is starting", board.CurrentPlayer())
	for !board.IsOver() {
		mark := board.CurrentPlayer()
		i := side(mark)
		p := e.players[i]

		start := time.Now()
		move := decide(p, board, result.Remaining[i])
		elapsed := time.Since(start)

		if clock > 0 {
			result.Remaining[i] -= elapsed
			if result.Remaining[i] <= 0 {
				result.Remaining[i] = 0
				result.Status = game.Won(mark.Other())
				result.Forfeit = true
				log.Info().Msgf("%v ran out of time after %d moves", mark, result.Moves)
				return result
			}
		}

		// Players built without metrics report an empty metric.
		if instrumented, ok := p.(searcher.Instrumented); ok {
			if metric := instrumented.LastMetric(); metric.Engine != "" {
				result.Metrics = append(result.Metrics, metrics.MoveMetric{
					Step:         result.Moves + 1,
					Player:       mark.String(),
					SearchMetric: metric,
				})
			}
		}

		board = board.Play(move, mark)
		result.Moves++
		log.Debug().Msgf("%v played %v in %v\n%v", mark, move, elapsed, board)
	}

	result.Status = board.Status()
	log.Info().Msgf("game over after %d moves: %v", result.Moves, result.Status)
	return result
}

// Close releases both players, returning the first failure.
func (e *Local[B, C]) Close() error {
	var first error
	for _, p := range e.players {
		if closer, ok := p.(searcher.Closer); ok {
			if err := closer.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
