package searcher

import (
	"errors"
	"io/fs"
	"time"

	"github.com/rs/zerolog/log"

	"xoxo/experiments/metrics"
	"xoxo/game"
)

// MCTSPlayer plays a board game with MCTS. With WithPersistence its Q-map is loaded when the
// player is built and saved by Close, so learning carries across games.
type MCTSPlayer[B game.Board[B, C], C game.Coordinate] struct {
	*MCTS[B, C]
	iterations    int
	blitzFraction float64
	file          string
	last          metrics.SearchMetric
}

func NewMCTSPlayer[B game.Board[B, C], C game.Coordinate](options ...Option) *MCTSPlayer[B, C] {
	s := newSettings(options)
	mdp := BoardMDP[B, C]{}

	q := NewQMap[B, C](mdp.Hash)
	if s.path != "" {
		loaded, err := LoadQMap[B, C](s.path, mdp)
		switch {
		case err == nil:
			q = loaded
			log.Debug().Msgf("loaded q-map %s with %d state-action pairs", s.path, q.Len())
		case errors.Is(err, fs.ErrNotExist):
			log.Debug().Msgf("no q-map at %s, starting empty", s.path)
		default:
			log.Warn().Err(err).Msgf("ignoring unreadable q-map %s", s.path)
		}
	}

	return &MCTSPlayer[B, C]{
		MCTS:          newMCTS[B, C](mdp, q, s),
		iterations:    s.iterations,
		blitzFraction: s.blitzFraction,
		file:          s.path,
	}
}

func (p *MCTSPlayer[B, C]) Play(b B) C {
	requirePlayable(b.ValidMoves())

	p.metrics.Start("mcts", 0)
	p.Train(b, p.iterations)
	move := p.BestAction(b)
	p.last = p.metrics.Complete()

	log.Debug().Msgf("mcts ran %d steps, picked %v", p.iterations, move)
	return move
}

// Blitz spends a fixed fraction of the remaining clock on this move.
func (p *MCTSPlayer[B, C]) Blitz(b B, remaining time.Duration) C {
	requirePlayable(b.ValidMoves())

	budget := time.Duration(float64(remaining) * p.blitzFraction)
	p.metrics.Start("mcts", budget)
	steps := p.TrainFor(b, budget)
	move := p.BestAction(b)
	p.last = p.metrics.Complete()

	log.Debug().Msgf("mcts ran %d steps in %v, picked %v", steps, budget, move)
	return move
}

func (p *MCTSPlayer[B, C]) LastMetric() metrics.SearchMetric {
	return p.last
}

// Close saves the Q-map when the player was built with a persistence path.
func (p *MCTSPlayer[B, C]) Close() error {
	if p.file == "" {
		return nil
	}
	p.logStats("saving " + p.file)
	if err := p.q.Save(p.file, BoardMDP[B, C]{}); err != nil {
		log.Error().Err(err).Msgf("failed to save q-map %s", p.file)
		return err
	}
	return nil
}
