package searcher

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"xoxo/experiments/metrics"
	"xoxo/game"
)

// Minimax is AlphaBeta without pruning. It visits every position up to the horizon.
type Minimax[B game.Board[B, C], C game.Coordinate] struct {
	mark      game.Mark
	depth     int
	heuristic game.Heuristic[B]
	leaves    int
	metrics   metrics.Collector
	last      metrics.SearchMetric
}

func NewMinimax[B game.Board[B, C], C game.Coordinate](mark game.Mark, depth int, heuristic game.Heuristic[B], options ...Option) *Minimax[B, C] {
	s := newSettings(options)
	if depth < 0 {
		panic(fmt.Sprintf("Must specify a non-negative search depth, got %d", depth))
	}
	if heuristic == nil {
		panic("Must specify a heuristic")
	}
	return &Minimax[B, C]{
		mark:      mark,
		depth:     depth,
		heuristic: heuristic,
		metrics:   s.metrics,
	}
}

func (p *Minimax[B, C]) Play(b B) C {
	moves := b.ValidMoves()
	requirePlayable(moves)

	p.leaves = 0
	p.metrics.Start("minimax", 0)
	candidates := make([]scored[C], len(moves))
	for i, move := range moves {
		candidates[i] = scored[C]{move, p.search(b.Play(move, p.mark), p.depth, false)}
	}
	best := argmax(candidates)
	p.last = p.metrics.Complete()

	log.Debug().Msgf("minimax for %v evaluated %d leaves, picked %v", p.mark, p.leaves, best)
	return best
}

func (p *Minimax[B, C]) Blitz(b B, remaining time.Duration) C {
	return p.Play(b)
}

func (p *Minimax[B, C]) Leaves() int {
	return p.leaves
}

func (p *Minimax[B, C]) LastMetric() metrics.SearchMetric {
	return p.last
}

func (p *Minimax[B, C]) search(node B, depth int, maximizing bool) float64 {
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
			value = max(value, p.search(node.Play(move, mover), depth-1, false))
		}
		return value
	}
	value := math.Inf(1)
	for _, move := range node.ValidMoves() {
		value = min(value, p.search(node.Play(move, mover), depth-1, true))
	}
	return value
}
