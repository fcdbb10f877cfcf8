package searcher

import (
	"time"

	"golang.org/x/exp/rand"

	"xoxo/game"
)

// Random plays a uniformly random legal move.
type Random[B game.Board[B, C], C game.Coordinate] struct {
	rng *rand.Rand
}

func NewRandom[B game.Board[B, C], C game.Coordinate](options ...Option) *Random[B, C] {
	s := newSettings(options)
	return &Random[B, C]{rng: s.rng()}
}

func (p *Random[B, C]) Play(b B) C {
	moves := b.ValidMoves()
	requirePlayable(moves)
	return moves[p.rng.Intn(len(moves))]
}

func (p *Random[B, C]) Blitz(b B, remaining time.Duration) C {
	return p.Play(b)
}
