package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"xoxo/config"
	"xoxo/engine"
	"xoxo/experiments"
	"xoxo/experiments/metrics"
	"xoxo/game"
	"xoxo/meta"
	"xoxo/player"
	"xoxo/searcher/agent"
)

const usage = `usage: xoxo <command> [flags]

commands:
  run         play one game, e.g. xoxo run -game c4 -p1 console -p2 mcts
  tournament  play every pair of players against each other in blitz games
  report      print the win/draw/loss matrix of the score log

players: %s
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, kindList())
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "run":
		err = runCommand(args)
	case "tournament":
		err = tournamentCommand(args)
	case "report":
		err = reportCommand(args, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, usage, kindList())
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msg("failed")
		os.Exit(1)
	}
}

func kindList() string {
	return strings.Join(lo.Map(agent.Kinds, func(k agent.Kind, _ int) string { return string(k) }), ", ")
}

// commonFlags registers the flags shared by every command. Only flags given on the command
// line override the configuration.
func commonFlags(fs *flag.FlagSet) (configPath *string, gameName *string) {
	configPath = fs.String("config", "", "YAML configuration file")
	gameName = fs.String("game", string(game.TicTacToeType), "game to play: ttt, uttt or c4")
	fs.String(config.KeyScoreFile, meta.ScoreFile, "score log to append outcomes to")
	fs.String(config.KeyQMapDir, meta.QMapDir, "directory of the MCTS q-maps")
	fs.Int(config.KeyIterations, meta.Iterations, "MCTS steps per untimed move")
	fs.Float64(config.KeyBlitzFraction, meta.BlitzFraction, "share of the remaining clock MCTS spends on a move")
	fs.Duration(config.KeyClock, meta.BlitzClock, "clock of each side in blitz games")
	fs.Int(config.KeyAlphaBetaDepth, meta.AlphaBetaDepth, "search depth of the ab player")
	fs.Int(config.KeyMinimaxDepth, meta.MinimaxDepth, "search depth of the minimax player")
	fs.Int(config.KeyGames, meta.TournamentGames, "games per match up in a tournament")
	fs.Uint64(config.KeySeed, 0, "seed of the randomised players, 0 for a random seed")
	fs.Bool(config.KeyVerbose, false, "log every move and search statistics")
	return configPath, gameName
}

func loadConfig(fs *flag.FlagSet, path string) (config.Config, error) {
	overrides := map[string]string{}
	fs.Visit(func(f *flag.Flag) {
		if f.Name != "config" && f.Name != "game" {
			overrides[f.Name] = f.Value.String()
		}
	})
	cfg, err := config.Load(path, overrides)
	if err != nil {
		return cfg, err
	}
	setupLogging(cfg.Verbose)
	return cfg, nil
}

func setupLogging(verbose bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	log.Debug().Msg("debug logging is on")
}

func agentOptions(cfg config.Config) agent.Options {
	return agent.Options{
		QMapDir:        cfg.QMapDir,
		Iterations:     cfg.Iterations,
		BlitzFraction:  cfg.BlitzFraction,
		AlphaBetaDepth: cfg.AlphaBetaDepth,
		MinimaxDepth:   cfg.MinimaxDepth,
		Seed:           cfg.Seed,
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath, gameName := commonFlags(fs)
	p1 := fs.String("p1", string(agent.Console), "player 1, who plays O and moves first")
	p2 := fs.String("p2", string(agent.MCTS), "player 2, who plays X")
	blitz := fs.Bool("blitz", false, "give each side a clock")
	record := fs.Bool("record", false, "append the outcome to the score log")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(fs, *configPath)
	if err != nil {
		return err
	}
	t, err := game.ParseType(*gameName)
	if err != nil {
		return err
	}
	kind1, err := agent.ParseKind(*p1)
	if err != nil {
		return err
	}
	kind2, err := agent.ParseKind(*p2)
	if err != nil {
		return err
	}

	opts := agentOptions(cfg)
	if kind1 == agent.Console || kind2 == agent.Console {
		terminal, err := player.NewTerminal()
		if err != nil {
			return err
		}
		defer terminal.Close()
		opts.Lines = terminal
		opts.Out = terminal.Stdout()
	}

	s := session{kind1: kind1, kind2: kind2, opts: opts, cfg: cfg, blitz: *blitz, record: *record, out: os.Stdout}
	switch t {
	case game.TicTacToeType:
		return play(agent.TicTacToeKit(), s)
	case game.ConnectFourType:
		return play(agent.ConnectFourKit(), s)
	default:
		return play(agent.UltimateKit(), s)
	}
}

type session struct {
	kind1, kind2  agent.Kind
	opts          agent.Options
	cfg           config.Config
	blitz, record bool
	out           io.Writer
}

func play[B game.Board[B, C], C game.Coordinate](kit agent.Kit[B, C], s session) (err error) {
	p1, err := agent.New(kit, s.kind1, game.Naught, s.opts)
	if err != nil {
		return err
	}
	p2, err := agent.New(kit, s.kind2, game.Cross, s.opts)
	if err != nil {
		return err
	}

	e := engine.LocalEngine(kit.New(), p1, p2)
	// Runs on panics too, so no learning is lost.
	defer func() {
		if closeErr := e.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	playedAt := time.Now()
	var result engine.Result
	if s.blitz {
		result = e.RunBlitz(s.cfg.Clock)
	} else {
		result = e.Run()
	}

	switch winner, ok := result.Status.Winner(); {
	case !ok:
		fmt.Fprintln(s.out, "The game is a draw")
	case result.Forfeit:
		fmt.Fprintf(s.out, "%v wins on time\n", winner)
	default:
		fmt.Fprintf(s.out, "%v wins\n", winner)
	}

	if !s.record {
		return nil
	}
	return metrics.AppendRecord(s.cfg.ScoreFile, metrics.GameRecord{
		Game:     kit.Type,
		Player1:  string(s.kind1),
		Player2:  string(s.kind2),
		Result:   result.Status,
		PlayedAt: playedAt,
		Time1:    result.Remaining[0],
		Time2:    result.Remaining[1],
	})
}

func tournamentCommand(args []string) error {
	fs := flag.NewFlagSet("tournament", flag.ContinueOnError)
	configPath, gameName := commonFlags(fs)
	players := fs.String("players", "random,ab,mcts", "comma separated players to enter")
	moves := fs.String("moves", "", "file to write per-move search metrics to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(fs, *configPath)
	if err != nil {
		return err
	}
	t, err := game.ParseType(*gameName)
	if err != nil {
		return err
	}
	var kinds []agent.Kind
	for _, name := range strings.Split(*players, ",") {
		kind, err := agent.ParseKind(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		kinds = append(kinds, kind)
	}

	tournament := experiments.Tournament{
		Game:      t,
		Kinds:     lo.Uniq(kinds),
		Games:     cfg.Games,
		Clock:     cfg.Clock,
		ScoreFile: cfg.ScoreFile,
		MovesFile: *moves,
		Options:   agentOptions(cfg),
	}
	records, err := tournament.Run()
	if err != nil {
		return err
	}
	return metrics.NewReport(t, records).Print(os.Stdout)
}

func reportCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	configPath, gameName := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(fs, *configPath)
	if err != nil {
		return err
	}
	t, err := game.ParseType(*gameName)
	if err != nil {
		return err
	}
	records, err := metrics.ReadRecords(cfg.ScoreFile)
	if err != nil {
		log.Warn().Err(err).Msgf("ignoring unreadable score log %s", cfg.ScoreFile)
	}
	return metrics.NewReport(t, records).Print(out)
}
