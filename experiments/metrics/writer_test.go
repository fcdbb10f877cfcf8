package metrics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"xoxo/game"
)

func record(p1, p2 string, result game.Status, time1, time2 time.Duration) GameRecord {
	return GameRecord{
		Game:     game.TicTacToeType,
		Player1:  p1,
		Player2:  p2,
		Result:   result,
		PlayedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Time1:    time1,
		Time2:    time2,
	}
}

func TestScoreLogRoundTrip(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "score.csv")

	first := record("mcts", "ab", game.NaughtWon, 812*time.Millisecond, 993*time.Millisecond)
	second := record("ab", "mcts", game.Draw, time.Second, 1500*time.Microsecond)
	is.NoErr(AppendRecord(path, first))
	is.NoErr(AppendRecord(path, second))

	data, err := os.ReadFile(path)
	is.NoErr(err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	is.Equal(len(lines), 3)
	is.Equal(lines[0], "game,player1,player2,result,played_at,time1,time2") // header written once
	is.Equal(lines[1], "ttt,mcts,ab,o,2024-03-01T12:00:00Z,812000,993000")

	records, err := ReadRecords(path)
	is.NoErr(err)
	is.Equal(records, []GameRecord{first, second})
}

func TestReadRecords(t *testing.T) {
	t.Run("missing log is empty", func(t *testing.T) {
		is := is.New(t)
		records, err := ReadRecords(filepath.Join(t.TempDir(), "none.csv"))
		is.NoErr(err)
		is.Equal(len(records), 0)
	})

	t.Run("malformed rows are skipped", func(t *testing.T) {
		is := is.New(t)
		path := filepath.Join(t.TempDir(), "score.csv")
		content := strings.Join([]string{
			"game,player1,player2,result,played_at,time1,time2",
			"ttt,mcts,ab,o,2024-03-01T12:00:00Z,1000,2000",
			"chess,mcts,ab,o,2024-03-01T12:00:00Z,1000,2000",
			"ttt,mcts,ab,maybe,2024-03-01T12:00:00Z,1000,2000",
			"ttt,mcts,ab,x,yesterday,1000,2000",
			"ttt,mcts,ab,x,2024-03-01T12:00:00Z,soon,2000",
			"ttt,mcts",
			"c4,random,ab4,draw,2024-03-02T08:30:00Z,0,5",
		}, "\n") + "\n"
		is.NoErr(os.WriteFile(path, []byte(content), 0o644))

		records, err := ReadRecords(path)
		is.NoErr(err)
		is.Equal(len(records), 2)
		is.Equal(records[0].Time2, 2*time.Millisecond)
		is.Equal(records[1].Game, game.ConnectFourType)
		is.Equal(records[1].Result, game.Draw)
	})
}

func TestWriteMoveRecords(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "moves.csv")
	err := WriteMoveRecords(path, []MoveRecord{{
		Game: 2,
		MoveMetric: MoveMetric{
			Step:         5,
			Player:       "X",
			SearchMetric: SearchMetric{Engine: "mcts", Budget: time.Second, Duration: time.Second, Episodes: 40},
		},
	}})
	is.NoErr(err)

	data, err := os.ReadFile(path)
	is.NoErr(err)
	is.Equal(string(data), "game,step,player,engine,budget,duration,episodes,leaves,rollouts\n2,5,X,mcts,1s,1s,40,0,0\n")
}

func TestReport(t *testing.T) {
	records := []GameRecord{
		record("mcts", "ab", game.NaughtWon, 400*time.Millisecond, 900*time.Millisecond),
		record("mcts", "ab", game.NaughtWon, 600*time.Millisecond, 900*time.Millisecond),
		record("mcts", "ab", game.Draw, 500*time.Millisecond, 900*time.Millisecond),
		record("ab", "mcts", game.CrossWon, 900*time.Millisecond, 500*time.Millisecond),
		record("ab", "random", game.Undecided, 0, 0),
	}
	other := record("mcts", "ab", game.CrossWon, 0, 0)
	other.Game = game.UltimateType
	records = append(records, other)

	t.Run("tallies from player 1's side", func(t *testing.T) {
		is := is.New(t)
		r := NewReport(game.TicTacToeType, records)
		is.Equal(r.Players, []string{"ab", "mcts"}) // unfinished games and other games are ignored

		m := r.MatchUps[[2]string{"mcts", "ab"}]
		is.Equal(m.Wins, 2)
		is.Equal(m.Draws, 1)
		is.Equal(m.Losses, 0)
		is.Equal(m.MeanTime1, 500*time.Millisecond)
		is.Equal(m.StdTime1, 100*time.Millisecond)
		is.Equal(m.StdTime2, time.Duration(0))

		reverse := r.MatchUps[[2]string{"ab", "mcts"}]
		is.Equal(reverse.Losses, 1)
		is.Equal(reverse.MeanTime1, 900*time.Millisecond)
	})

	t.Run("score and its margin", func(t *testing.T) {
		is := is.New(t)
		m := MatchUp{Wins: 2, Draws: 1}
		score, margin := m.Score(95)
		is.True(score > 0.83 && score < 0.84)
		is.True(margin > 0.42 && margin < 0.43) // 1.96 * sqrt(5/6 * 1/6 / 3)
	})

	t.Run("prints the matrix", func(t *testing.T) {
		is := is.New(t)
		var out bytes.Buffer
		is.NoErr(NewReport(game.TicTacToeType, records).Print(&out))
		text := out.String()
		is.True(strings.Contains(text, "2/1/0"))
		is.True(strings.Contains(text, "0/0/1"))
		is.True(strings.Contains(text, "ttt"))
	})

	t.Run("empty log prints a header only", func(t *testing.T) {
		is := is.New(t)
		var out bytes.Buffer
		is.NoErr(NewReport(game.ConnectFourType, nil).Print(&out))
		is.Equal(strings.TrimSpace(out.String()), "c4  W/D/L")
	})
}
