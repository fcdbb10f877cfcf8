package searcher

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"lukechampine.com/frand"

	"xoxo/experiments/metrics"
	"xoxo/meta"
)

type settings struct {
	iterations    int
	exploration   float64
	blitzFraction float64
	path          string
	seed          uint64
	seeded        bool
	metrics       metrics.Collector
}

type Option func(s *settings)

func defaultSettings() settings {
	return settings{
		iterations:    meta.Iterations,
		exploration:   1.0,
		blitzFraction: meta.BlitzFraction,
		metrics:       metrics.NewDummyCollector(),
	}
}

func newSettings(options []Option) settings {
	s := defaultSettings()
	for _, option := range options {
		option(&s)
	}
	return s
}

// WithIterations sets the number of MCTS steps per untimed decision.
func WithIterations(iterations int) Option {
	return func(s *settings) {
		if iterations <= 0 {
			panic(fmt.Sprintf("Must specify a positive number of iterations, got %d", iterations))
		}
		s.iterations = iterations
	}
}

// WithExploration sets the UCB1 exploration constant.
func WithExploration(c float64) Option {
	return func(s *settings) {
		if c < 0 || math.IsNaN(c) {
			panic(fmt.Sprintf("Must specify a non-negative exploration constant, got %v", c))
		}
		s.exploration = c
	}
}

// WithBlitzFraction sets the share of the remaining clock spent on one blitz decision.
func WithBlitzFraction(fraction float64) Option {
	return func(s *settings) {
		if fraction <= 0 || fraction > 1 {
			panic(fmt.Sprintf("Must specify a blitz fraction in (0, 1], got %v", fraction))
		}
		s.blitzFraction = fraction
	}
}

// WithPersistence loads the Q-map from path and saves it back on Close.
func WithPersistence(path string) Option {
	return func(s *settings) {
		s.path = path
	}
}

func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.seed = seed
		s.seeded = true
	}
}

func WithMetrics() Option {
	return func(s *settings) {
		s.metrics = metrics.NewCollector()
	}
}

// rng returns a generator seeded from the settings, or from system entropy.
func (s settings) rng() *rand.Rand {
	seed := s.seed
	if !s.seeded {
		seed = frand.Uint64n(math.MaxUint64)
		log.Debug().Msgf("seeding search with %d", seed)
	}
	return rand.New(rand.NewSource(seed))
}
