package searcher

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"

	"xoxo/experiments/metrics"
)

// MCTS runs UCB1 tree search over an MDP. The tree is never stored: statistics live in a
// QMap keyed by state, and transitions are recomputed on every descent.
type MCTS[S, A comparable] struct {
	mdp         MDP[S, A]
	q           *QMap[S, A]
	exploration float64
	rng         *rand.Rand
	metrics     metrics.Collector
	path        []transition[S, A]
}

type transition[S, A comparable] struct {
	state  S
	action A
	reward float64
}

func NewMCTS[S, A comparable](mdp MDP[S, A], options ...Option) *MCTS[S, A] {
	s := newSettings(options)
	return newMCTS(mdp, NewQMap[S, A](mdp.Hash), s)
}

func newMCTS[S, A comparable](mdp MDP[S, A], q *QMap[S, A], s settings) *MCTS[S, A] {
	return &MCTS[S, A]{
		mdp:         mdp,
		q:           q,
		exploration: s.exploration,
		rng:         s.rng(),
		metrics:     s.metrics,
	}
}

func (m *MCTS[S, A]) QMap() *QMap[S, A] {
	return m.q
}

// Step runs one simulation from s and returns its discounted return. It descends by UCB1
// until it reaches a terminal state or a state never seen before, which is valued by a
// random rollout. The return is then folded back up the path into the Q-map.
func (m *MCTS[S, A]) Step(s S) float64 {
	path := m.path[:0]
	state := s
	g := 0.0
	for !m.mdp.IsTerminal(state) {
		action := m.selectAction(state)
		next, reward := m.mdp.Act(state, action)
		path = append(path, transition[S, A]{state, action, reward})
		if m.q.Visits(next) == 0 {
			m.q.discover(next)
			g = m.Rollout(next)
			break
		}
		state = next
	}

	discount := m.mdp.Discount()
	for i := len(path) - 1; i >= 0; i-- {
		g = path[i].reward + discount*g
		m.q.record(path[i].state, path[i].action, g)
	}
	m.path = path
	m.metrics.AddEpisode()
	return g
}

// Rollout plays uniformly random actions from s until the end and returns the discounted
// sum of rewards.
func (m *MCTS[S, A]) Rollout(s S) float64 {
	m.metrics.AddRollout()
	discount := m.mdp.Discount()
	g, weight := 0.0, 1.0
	for !m.mdp.IsTerminal(s) {
		actions := m.mdp.AllowedActions(s)
		var reward float64
		s, reward = m.mdp.Act(s, actions[m.rng.Intn(len(actions))])
		g += weight * reward
		weight *= discount
	}
	return g
}

// Train runs n steps from s.
func (m *MCTS[S, A]) Train(s S, n int) {
	for i := 0; i < n; i++ {
		m.Step(s)
	}
}

// TrainFor runs steps from s until the projected end of the next step, based on the running
// average step time, would pass budget. It returns the number of steps run.
func (m *MCTS[S, A]) TrainFor(s S, budget time.Duration) int {
	start := time.Now()
	n := 0
	for {
		elapsed := time.Since(start)
		if n == 0 && elapsed >= budget {
			break
		}
		if n > 0 && elapsed+elapsed/time.Duration(n) > budget {
			break
		}
		m.Step(s)
		n++
	}
	return n
}

// BestAction picks the action of s with the highest UCB1 score, at random among ties.
func (m *MCTS[S, A]) BestAction(s S) A {
	return m.selectAction(s)
}

func (m *MCTS[S, A]) selectAction(s S) A {
	actions := m.mdp.AllowedActions(s)
	requirePlayable(actions)

	t := m.q.Visits(s)
	scores := lo.Map(actions, func(a A, _ int) float64 {
		stat := m.q.Get(s, a)
		return ucb1(m.exploration, stat.Return, stat.Visits, t)
	})
	best := lo.Max(scores)
	ties := lo.Filter(actions, func(_ A, i int) bool {
		return scores[i] == best
	})
	if len(ties) == 0 { // NaN scores
		ties = actions
	}
	return ties[m.rng.Intn(len(ties))]
}

func (m *MCTS[S, A]) logStats(prefix string) {
	log.Debug().Msgf("%s: q-map holds %d states and %d state-action pairs", prefix, m.q.States(), m.q.Len())
}
