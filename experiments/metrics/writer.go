package metrics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"xoxo/game"
)

// GameRecord is one line of the score log. Player 1 plays Naught.
type GameRecord struct {
	Game     game.Type
	Player1  string
	Player2  string
	Result   game.Status
	PlayedAt time.Time
	// Time left on each clock; stored in microseconds.
	Time1 time.Duration
	Time2 time.Duration
}

type MoveRecord struct {
	Game int // Index of the game in the run
	MoveMetric
}

var scoreHeader = []string{"game", "player1", "player2", "result", "played_at", "time1", "time2"}

// AppendRecord adds record to the score log at path, creating the file with a header if needed.
func AppendRecord(path string, record GameRecord) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open score log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat score log: %w", err)
	}

	writer := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := writer.Write(scoreHeader); err != nil {
			return fmt.Errorf("failed to write score log header: %w", err)
		}
	}

	row := []string{
		string(record.Game),
		record.Player1,
		record.Player2,
		record.Result.String(),
		record.PlayedAt.UTC().Format(time.RFC3339),
		strconv.FormatInt(record.Time1.Microseconds(), 10),
		strconv.FormatInt(record.Time2.Microseconds(), 10),
	}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("failed to write game record row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush score log: %w", err)
	}
	return f.Close()
}

// ReadRecords returns every well-formed record of the score log at path. A missing log has no
// records; malformed rows are skipped.
func ReadRecords(path string) ([]GameRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Msgf("no score log at %s", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open score log: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var records []GameRecord
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			log.Warn().Err(err).Msgf("skipping unreadable line %d of %s", line, path)
			continue
		}
		if err != nil {
			return records, fmt.Errorf("failed to read score log: %w", err)
		}
		if line == 1 && len(row) > 0 && row[0] == scoreHeader[0] {
			continue
		}
		record, err := parseRecord(row)
		if err != nil {
			log.Warn().Err(err).Msgf("skipping line %d of %s", line, path)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRecord(row []string) (GameRecord, error) {
	if len(row) != len(scoreHeader) {
		return GameRecord{}, fmt.Errorf("want %d fields, got %d", len(scoreHeader), len(row))
	}
	t, err := game.ParseType(row[0])
	if err != nil {
		return GameRecord{}, err
	}
	result, err := game.ParseStatus(row[3])
	if err != nil {
		return GameRecord{}, err
	}
	playedAt, err := time.Parse(time.RFC3339, row[4])
	if err != nil {
		return GameRecord{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	time1, err := strconv.ParseInt(row[5], 10, 64)
	if err != nil {
		return GameRecord{}, fmt.Errorf("invalid time1: %w", err)
	}
	time2, err := strconv.ParseInt(row[6], 10, 64)
	if err != nil {
		return GameRecord{}, fmt.Errorf("invalid time2: %w", err)
	}
	return GameRecord{
		Game:     t,
		Player1:  row[1],
		Player2:  row[2],
		Result:   result,
		PlayedAt: playedAt,
		Time1:    time.Duration(time1) * time.Microsecond,
		Time2:    time.Duration(time2) * time.Microsecond,
	}, nil
}

// WriteMoveRecords writes per-move search metrics of a tournament to a new file at path.
func WriteMoveRecords(path string, records []MoveRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create move records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	header := []string{"game", "step", "player", "engine", "budget", "duration", "episodes", "leaves", "rollouts"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write move records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			record.Player,
			record.Engine,
			record.Budget.String(),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.Leaves),
			strconv.Itoa(record.Rollouts),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write move record row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush move records: %w", err)
	}
	return f.Close()
}
