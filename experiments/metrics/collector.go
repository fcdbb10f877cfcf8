package metrics

import (
	"time"
)

type SearchMetric struct {
	Engine   string
	Budget   time.Duration // Zero for untimed decisions
	Duration time.Duration
	Episodes int
	Leaves   int
	Rollouts int
}

type MoveMetric struct {
	Step   int
	Player string // Mark
	SearchMetric
}

type Collector interface {
	Start(engine string, budget time.Duration)
	AddEpisode()
	AddLeaf()
	AddRollout()
	Complete() SearchMetric
}

type collector struct {
	engine    string
	budget    time.Duration
	startTime time.Time
	episodes  int
	leaves    int
	rollouts  int
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(engine string, budget time.Duration) {
	m.startTime = time.Now()
	m.engine = engine
	m.budget = budget
	m.episodes, m.leaves, m.rollouts = 0, 0, 0
}

func (m *collector) AddEpisode() {
	m.episodes++
}

func (m *collector) AddLeaf() {
	m.leaves++
}

func (m *collector) AddRollout() {
	m.rollouts++
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Engine:   m.engine,
		Budget:   m.budget,
		Duration: time.Since(m.startTime),
		Episodes: m.episodes,
		Leaves:   m.leaves,
		Rollouts: m.rollouts,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(engine string, budget time.Duration) {}
func (m *dummyCollector) AddEpisode()                               {}
func (m *dummyCollector) AddLeaf()                                  {}
func (m *dummyCollector) AddRollout()                               {}
func (m *dummyCollector) Complete() SearchMetric                    { return SearchMetric{} }
