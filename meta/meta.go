// meta/meta.go
package meta

import "time"

// Iterations defines the number of MCTS steps per untimed decision.
const Iterations = 10000

// BlitzFraction defines the share of the remaining clock spent on one timed decision.
const BlitzFraction = 1.0 / 8

// BlitzClock defines each side's clock for a timed game.
const BlitzClock = time.Second

// AlphaBetaDepth and MinimaxDepth define the search horizon of the depth-bounded engines.
const AlphaBetaDepth = 7

const MinimaxDepth = 3

// ScoreFile defines where game outcomes are appended.
const ScoreFile = "score.csv"

// QMapDir defines where MCTS players keep their statistics.
const QMapDir = "."

// TournamentGames defines the number of games per match up.
const TournamentGames = 10

// EnvPrefix prefixes the environment variables read by the configuration.
const EnvPrefix = "XOXO"
