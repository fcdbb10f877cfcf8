package metrics

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"xoxo/game"
)

// MatchUp is the tally of every recorded game between two players, seen from player 1.
type MatchUp struct {
	Player1, Player2 string
	Wins             int
	Draws            int
	Losses           int
	// Mean and standard deviation of the time left on each clock.
	MeanTime1, StdTime1 time.Duration
	MeanTime2, StdTime2 time.Duration
}

func (m MatchUp) Games() int {
	return m.Wins + m.Draws + m.Losses
}

// Score is player 1's share of points, a draw counting half, with the half-width of its
// confidence interval at the given level in percent.
func (m MatchUp) Score(confidence float64) (float64, float64) {
	n := float64(m.Games())
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	score := (float64(m.Wins) + float64(m.Draws)/2) / n
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile((1 + confidence/100) / 2)
	return score, z * math.Sqrt(score*(1-score)/n)
}

// Report summarizes the score log of one game.
type Report struct {
	Game     game.Type
	Players  []string
	MatchUps map[[2]string]MatchUp
}

// NewReport tallies the records of game t.
func NewReport(t game.Type, records []GameRecord) Report {
	records = lo.Filter(records, func(r GameRecord, _ int) bool {
		return r.Game == t && r.Result.IsOver()
	})
	players := lo.Uniq(append(
		lo.Map(records, func(r GameRecord, _ int) string { return r.Player1 }),
		lo.Map(records, func(r GameRecord, _ int) string { return r.Player2 })...,
	))
	sort.Strings(players)

	grouped := lo.GroupBy(records, func(r GameRecord) [2]string {
		return [2]string{r.Player1, r.Player2}
	})
	matchUps := make(map[[2]string]MatchUp, len(grouped))
	for key, games := range grouped {
		m := MatchUp{Player1: key[0], Player2: key[1]}
		for _, r := range games {
			switch r.Result {
			case game.NaughtWon:
				m.Wins++
			case game.CrossWon:
				m.Losses++
			default:
				m.Draws++
			}
		}
		m.MeanTime1, m.StdTime1 = spread(lo.Map(games, func(r GameRecord, _ int) float64 { return float64(r.Time1) }))
		m.MeanTime2, m.StdTime2 = spread(lo.Map(games, func(r GameRecord, _ int) float64 { return float64(r.Time2) }))
		matchUps[key] = m
	}

	return Report{Game: t, Players: players, MatchUps: matchUps}
}

func spread(xs []float64) (time.Duration, time.Duration) {
	if len(xs) < 2 {
		return time.Duration(stat.Mean(xs, nil)), 0
	}
	mean, std := stat.MeanStdDev(xs, nil)
	return time.Duration(mean), time.Duration(std)
}

// Print writes the win/draw/loss matrix, player 1 by row and player 2 by column, followed by
// the clock statistics of every match up.
func (r Report) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tW/D/L", r.Game)
	for _, p2 := range r.Players {
		fmt.Fprintf(tw, "\t%s", p2)
	}
	fmt.Fprintln(tw)
	for _, p1 := range r.Players {
		fmt.Fprintf(tw, "%s\t", p1)
		for _, p2 := range r.Players {
			if m, ok := r.MatchUps[[2]string{p1, p2}]; ok {
				fmt.Fprintf(tw, "\t%d/%d/%d", m.Wins, m.Draws, m.Losses)
			} else {
				fmt.Fprint(tw, "\t-")
			}
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	keys := lo.Keys(r.MatchUps)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	if len(keys) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "player1\tplayer2\tgames\tscore\ttime1\ttime2")
	for _, key := range keys {
		m := r.MatchUps[key]
		score, margin := m.Score(95)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f±%.2f\t%v±%v\t%v±%v\n",
			m.Player1, m.Player2, m.Games(), score, margin,
			m.MeanTime1.Round(time.Millisecond), m.StdTime1.Round(time.Millisecond),
			m.MeanTime2.Round(time.Millisecond), m.StdTime2.Round(time.Millisecond))
	}
	return tw.Flush()
}
