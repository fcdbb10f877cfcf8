package experiments

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"xoxo/engine"
	"xoxo/experiments/metrics"
	"xoxo/game"
	"xoxo/searcher"
	"xoxo/searcher/agent"
)

// Tournament plays every ordered pair of distinct kinds against each other in blitz games.
type Tournament struct {
	Game  game.Type
	Kinds []agent.Kind
	// Games per match up.
	Games int
	Clock time.Duration
	// ScoreFile receives one record per game.
	ScoreFile string
	// MovesFile, if set, receives the per-move search metrics of the whole tournament.
	MovesFile string
	Options   agent.Options
}

type matchUp struct {
	player1, player2 agent.Kind
}

func (t Tournament) matchUps() []matchUp {
	var matchUps []matchUp
	for _, p1 := range t.Kinds {
		for _, p2 := range t.Kinds {
			if p1 != p2 {
				matchUps = append(matchUps, matchUp{p1, p2})
			}
		}
	}
	return matchUps
}

// Run plays the tournament and returns the records it appended to the score file.
func (t Tournament) Run() ([]metrics.GameRecord, error) {
	if t.Games <= 0 {
		return nil, fmt.Errorf("invalid number of games %d", t.Games)
	}
	if t.Clock <= 0 {
		return nil, fmt.Errorf("invalid clock %v", t.Clock)
	}
	for _, k := range t.Kinds {
		if k == agent.Console {
			return nil, fmt.Errorf("console players cannot enter a tournament")
		}
	}

	switch t.Game {
	case game.TicTacToeType:
		return runTournament(agent.TicTacToeKit(), t)
	case game.ConnectFourType:
		return runTournament(agent.ConnectFourKit(), t)
	case game.UltimateType:
		return runTournament(agent.UltimateKit(), t)
	}
	return nil, fmt.Errorf("unknown game %q", t.Game)
}

func runTournament[B game.Board[B, C], C game.Coordinate](kit agent.Kit[B, C], t Tournament) ([]metrics.GameRecord, error) {
	matchUps := t.matchUps()
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	t.Options.Metrics = t.MovesFile != ""

	log.Info().Msgf("starting %s tournament between %v...", t.Game, t.Kinds)

	for mi, m := range matchUps {
		log.Info().Msgf("starting matchup %d of %d between %s and %s...", mi+1, len(matchUps), m.player1, m.player2)

		for i := 0; i < t.Games; i++ {
			record, moves, err := RunGame(kit, m.player1, m.player2, t.Clock, t.Options)
			if err != nil {
				return gameRecords, err
			}
			if err := metrics.AppendRecord(t.ScoreFile, record); err != nil {
				return gameRecords, err
			}
			gameRecords = append(gameRecords, record)
			for _, mm := range moves {
				moveRecords = append(moveRecords, metrics.MoveRecord{Game: len(gameRecords), MoveMetric: mm})
			}

			log.Info().Msgf("completed matchup %d of %d game %d with result: %v", mi+1, len(matchUps), i+1, record.Result)
		}
	}

	log.Info().Msgf("completed %s tournament", t.Game)

	if t.MovesFile != "" {
		if err := metrics.WriteMoveRecords(t.MovesFile, moveRecords); err != nil {
			return gameRecords, err
		}
		log.Info().Msgf("stored move records in %s", t.MovesFile)
	}
	return gameRecords, nil
}

// RunGame plays one blitz game between fresh players of kinds player1 (Naught) and player2.
// Both players are closed afterwards, which saves their Q-maps.
func RunGame[B game.Board[B, C], C game.Coordinate](kit agent.Kit[B, C], player1, player2 agent.Kind, clock time.Duration, opts agent.Options) (record metrics.GameRecord, moves []metrics.MoveMetric, err error) {
	p1, err := agent.New(kit, player1, game.Naught, opts)
	if err != nil {
		return metrics.GameRecord{}, nil, err
	}
	p2, err := agent.New(kit, player2, game.Cross, opts)
	if err != nil {
		if closer, ok := p1.(searcher.Closer); ok {
			err = errors.Join(err, closer.Close())
		}
		return metrics.GameRecord{}, nil, err
	}

	e := engine.LocalEngine(kit.New(), p1, p2)
	defer func() {
		if closeErr := e.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close players: %w", closeErr))
		}
	}()
	playedAt := time.Now()
	result := e.RunBlitz(clock)

	return metrics.GameRecord{
		Game:     kit.Type,
		Player1:  string(player1),
		Player2:  string(player2),
		Result:   result.Status,
		PlayedAt: playedAt,
		Time1:    result.Remaining[0],
		Time2:    result.Remaining[1],
	}, result.Metrics, nil
}
