package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"xoxo/meta"
)

// Config is the runtime configuration of the command line tool.
type Config struct {
	ScoreFile      string
	QMapDir        string
	Iterations     int
	BlitzFraction  float64
	Clock          time.Duration
	AlphaBetaDepth int
	MinimaxDepth   int
	Games          int
	// Seed of the randomised players; zero seeds from system entropy.
	Seed    uint64
	Verbose bool
}

// Keys of the configuration file. Environment variables use the upper-cased key with
// underscores and the XOXO_ prefix, e.g. XOXO_SCORE_FILE.
const (
	KeyScoreFile      = "score-file"
	KeyQMapDir        = "qmap-dir"
	KeyIterations     = "iterations"
	KeyBlitzFraction  = "blitz-fraction"
	KeyClock          = "clock"
	KeyAlphaBetaDepth = "ab-depth"
	KeyMinimaxDepth   = "minimax-depth"
	KeyGames          = "games"
	KeySeed           = "seed"
	KeyVerbose        = "verbose"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyScoreFile, meta.ScoreFile)
	v.SetDefault(KeyQMapDir, meta.QMapDir)
	v.SetDefault(KeyIterations, meta.Iterations)
	v.SetDefault(KeyBlitzFraction, meta.BlitzFraction)
	v.SetDefault(KeyClock, meta.BlitzClock)
	v.SetDefault(KeyAlphaBetaDepth, meta.AlphaBetaDepth)
	v.SetDefault(KeyMinimaxDepth, meta.MinimaxDepth)
	v.SetDefault(KeyGames, meta.TournamentGames)
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyVerbose, false)
}

// Load layers the compiled-in defaults, the optional config file at path, the environment
// and finally overrides, which take precedence over everything else.
func Load(path string, overrides map[string]string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(meta.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	for key, value := range overrides {
		v.Set(key, value)
	}

	cfg := Config{
		ScoreFile:      v.GetString(KeyScoreFile),
		QMapDir:        v.GetString(KeyQMapDir),
		Iterations:     v.GetInt(KeyIterations),
		BlitzFraction:  v.GetFloat64(KeyBlitzFraction),
		Clock:          v.GetDuration(KeyClock),
		AlphaBetaDepth: v.GetInt(KeyAlphaBetaDepth),
		MinimaxDepth:   v.GetInt(KeyMinimaxDepth),
		Games:          v.GetInt(KeyGames),
		Seed:           v.GetUint64(KeySeed),
		Verbose:        v.GetBool(KeyVerbose),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.Iterations <= 0:
		return fmt.Errorf("%s must be positive, got %d", KeyIterations, c.Iterations)
	case c.BlitzFraction <= 0 || c.BlitzFraction > 1:
		return fmt.Errorf("%s must be in (0, 1], got %v", KeyBlitzFraction, c.BlitzFraction)
	case c.Clock <= 0:
		return fmt.Errorf("%s must be positive, got %v", KeyClock, c.Clock)
	case c.AlphaBetaDepth < 0:
		return fmt.Errorf("%s must not be negative, got %d", KeyAlphaBetaDepth, c.AlphaBetaDepth)
	case c.MinimaxDepth < 0:
		return fmt.Errorf("%s must not be negative, got %d", KeyMinimaxDepth, c.MinimaxDepth)
	case c.Games <= 0:
		return fmt.Errorf("%s must be positive, got %d", KeyGames, c.Games)
	}
	return nil
}
