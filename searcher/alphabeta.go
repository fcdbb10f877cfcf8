package searcher

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"xoxo/experiments/metrics"
	"xoxo/game"
)

// AlphaBeta is a depth-bounded minimax search with alpha-beta pruning. Each decision walks
// the tree from scratch; positions at the horizon are scored by the heuristic.
type AlphaBeta[B game.Board[B, C], C game.Coordinate] struct {
	mark      game.Mark
	depth     int
	heuristic game.Heuristic[B]
	leaves    int
	metrics   metrics.Collector
	last      metrics.SearchMetric
}

func NewAlphaBeta[B game.Board[B, C], C game.Coordinate](mark game.Mark, depth int, heuristic game.Heuristic[B], options ...Option) *AlphaBeta[B, C] {
	s := newSettings(options)
	if depth < 0 {
		panic(fmt.Sprintf("Must specify a non-negative search depth, got %d", depth))
	}
	if heuristic == nil {
		panic("Must specify a heuristic")
	}
	return &AlphaBeta[B, C]{
		mark:      mark,
		depth:     depth,
		heuristic: heuristic,
		metrics:   s.metrics,
	}
}

func (p *AlphaBeta[B, C]) Play(b B) C {
	moves := b.ValidMoves()
	requirePlayable(moves)

	p.leaves = 0
	p.metrics.Start("alphabeta", 0)
	candidates := make([]scored[C], len(moves))
	for i, move := range moves {
		child := b.Play(move, p.mark)
		candidates[i] = scored[C]{move, p.search(child, p.depth, math.Inf(-1), math.Inf(1), false)}
	}
	best := argmax(candidates)
	p.last = p.metrics.Complete()

	log.Debug().Msgf("alpha-beta for %v evaluated %d leaves, picked %v", p.mark, p.leaves, best)
	return best
}

// Blitz ignores the clock: a fixed-depth search is cheap for the supported games.
func (p *AlphaBeta[B, C]) Blitz(b B, remaining time.Duration) C {
	return p.Play(b)
}

// Leaves returns the number of positions scored by the heuristic during the last decision.
func (p *AlphaBeta[B, C]) Leaves() int {
	return p.leaves
}

func (p *AlphaBeta[B, C]) LastMetric() metrics.SearchMetric {
	return p.last
}

func (p *AlphaBeta[B, C]) search(node B, depth int, alpha, beta float64, maximizing bool) float64 {
	if depth == 0 || node.IsOver() {
		p.leaves++
		p.metrics.AddLeaf()
		return p.heuristic(p.mark, node)
	}

	mover := p.mark
	if !maximizing {
		mover = p.mark.Other()
	}
	if maximizing {
		value := math.Inf(-1)
		for _, move := range node.ValidMoves() {
			value = max(value, p.search(node.Play(move, mover), depth-1, alpha, beta, false))
			if value >= beta {
				break
			}
			alpha = max(alpha, value)
		}
		return value
	}

	value := math.Inf(1)
	for _, move := range node.ValidMoves() {
		value = min(value, p.search(node.Play(move, mover), depth-1, alpha, beta, true))
		if value <= alpha {
			break
		}
		beta = min(beta, value)
	}
	return value
}

type scored[C any] struct {
	move  C
	score float64
}

// argmax returns the first candidate with the highest score. NaN scores never displace the
// current best.
func argmax[C any](candidates []scored[C]) C {
	return lo.MaxBy(candidates, func(a, b scored[C]) bool {
		return a.score > b.score
	}).move
}
