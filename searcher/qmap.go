package searcher

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/encoding/protowire"

	"xoxo/game"
)

// Stat is the accumulated return and visit count of one state-action pair.
type Stat struct {
	Return float64
	Visits float64
}

type stateAction[A comparable] struct {
	state  game.StateHash
	action A
}

// QMap holds the learned MCTS statistics: per state-action returns and visits, and per state
// visits. States are identified by their hash, so a state decoded from a file finds the
// statistics of the same position reached by play.
type QMap[S, A comparable] struct {
	hash    func(S) game.StateHash
	actions map[stateAction[A]]Stat
	visits  map[game.StateHash]float64
	states  map[game.StateHash]S
}

func NewQMap[S, A comparable](hash func(S) game.StateHash) *QMap[S, A] {
	if hash == nil {
		panic("Must specify a state hash")
	}
	return &QMap[S, A]{
		hash:    hash,
		actions: make(map[stateAction[A]]Stat),
		visits:  make(map[game.StateHash]float64),
		states:  make(map[game.StateHash]S),
	}
}

func (q *QMap[S, A]) Get(s S, a A) Stat {
	return q.actions[stateAction[A]{q.hash(s), a}]
}

// Visits returns how often s was visited; zero for an unseen state.
func (q *QMap[S, A]) Visits(s S) float64 {
	return q.visits[q.hash(s)]
}

// Len returns the number of state-action pairs.
func (q *QMap[S, A]) Len() int {
	return len(q.actions)
}

// States returns the number of visited states.
func (q *QMap[S, A]) States() int {
	return len(q.visits)
}

func (q *QMap[S, A]) record(s S, a A, g float64) {
	h := q.hash(s)
	key := stateAction[A]{h, a}
	stat := q.actions[key]
	stat.Return += g
	stat.Visits++
	q.actions[key] = stat
	q.visits[h]++
	q.states[h] = s
}

// discover marks a state seen for the first time.
func (q *QMap[S, A]) discover(s S) {
	h := q.hash(s)
	q.visits[h] = 1
	q.states[h] = s
}

// The file is a sequence of protobuf wire fields:
//
//	1: format version (varint)
//	2: state entry (bytes), repeated
//
// A state entry holds 1: encoded state (bytes), 2: visits (double) and 3: action entries
// (bytes, repeated), each holding 1: action key (varint), 2: return (double), 3: visits (double).
const (
	qmapVersion = 1

	fieldVersion protowire.Number = 1
	fieldState   protowire.Number = 2

	fieldStateKey     protowire.Number = 1
	fieldStateVisits  protowire.Number = 2
	fieldStateActions protowire.Number = 3

	fieldActionKey    protowire.Number = 1
	fieldActionReturn protowire.Number = 2
	fieldActionVisits protowire.Number = 3
)

// Save writes the map to path, replacing any previous file atomically. States are written in
// codec order and actions by key, so equal maps produce equal files.
func (q *QMap[S, A]) Save(path string, codec Codec[S, A]) error {
	byState := make(map[game.StateHash][]A, len(q.visits))
	for key := range q.actions {
		byState[key.state] = append(byState[key.state], key.action)
	}
	states := slices.SortedFunc(maps.Values(q.states), codec.CompareStates)

	buf := protowire.AppendTag(nil, fieldVersion, protowire.VarintType)
	buf = protowire.AppendVarint(buf, qmapVersion)

	var encoded, entry, action []byte
	for _, s := range states {
		var err error
		encoded, err = codec.AppendState(encoded[:0], s)
		if err != nil {
			return fmt.Errorf("failed to encode state: %w", err)
		}
		entry = protowire.AppendTag(entry[:0], fieldStateKey, protowire.BytesType)
		entry = protowire.AppendBytes(entry, encoded)
		h := q.hash(s)
		entry = appendDouble(entry, fieldStateVisits, q.visits[h])

		actions := byState[h]
		slices.SortFunc(actions, func(a, b A) int {
			return cmp.Compare(codec.ActionKey(a), codec.ActionKey(b))
		})
		for _, a := range actions {
			stat := q.actions[stateAction[A]{h, a}]
			action = protowire.AppendTag(action[:0], fieldActionKey, protowire.VarintType)
			action = protowire.AppendVarint(action, codec.ActionKey(a))
			action = appendDouble(action, fieldActionReturn, stat.Return)
			action = appendDouble(action, fieldActionVisits, stat.Visits)

			entry = protowire.AppendTag(entry, fieldStateActions, protowire.BytesType)
			entry = protowire.AppendBytes(entry, action)
		}

		buf = protowire.AppendTag(buf, fieldState, protowire.BytesType)
		buf = protowire.AppendBytes(buf, entry)
	}

	return writeFileAtomic(path, buf)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

// LoadQMap reads a map written by Save.
func LoadQMap[S, A comparable](path string, codec Codec[S, A]) (*QMap[S, A], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read q-map: %w", err)
	}

	q := NewQMap[S, A](codec.Hash)
	versioned := false
	entries, skipped := 0, 0
	err = walkFields(data, func(num protowire.Number, typ protowire.Type, value []byte) (int, error) {
		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			version, n := protowire.ConsumeVarint(value)
			if n >= 0 && version != qmapVersion {
				return n, fmt.Errorf("unsupported q-map version %d", version)
			}
			versioned = true
			return n, nil
		case num == fieldState && typ == protowire.BytesType:
			entry, n := protowire.ConsumeBytes(value)
			if n < 0 {
				return n, nil
			}
			entries++
			if err := q.decodeEntry(entry, codec); err != nil {
				skipped++
				log.Debug().Err(err).Msg("skipping q-map entry")
			}
			return n, nil
		default:
			return protowire.ConsumeFieldValue(num, typ, value), nil
		}
	})
	if err != nil {
		return nil, fmt.Errorf("corrupt q-map %s: %w", path, err)
	}
	if !versioned {
		return nil, fmt.Errorf("corrupt q-map %s: missing version", path)
	}
	if skipped > 0 {
		if skipped == entries {
			return nil, fmt.Errorf("corrupt q-map %s: none of its %d states could be read", path, entries)
		}
		log.Warn().Msgf("skipped %d of %d unreadable states in q-map %s", skipped, entries, path)
	}
	return q, nil
}

func (q *QMap[S, A]) decodeEntry(entry []byte, codec Codec[S, A]) error {
	var (
		state    S
		hasState bool
		visits   float64
		actions  []A
		stats    []Stat
	)
	err := walkFields(entry, func(num protowire.Number, typ protowire.Type, value []byte) (int, error) {
		switch {
		case num == fieldStateKey && typ == protowire.BytesType:
			encoded, n := protowire.ConsumeBytes(value)
			if n < 0 {
				return n, nil
			}
			s, err := codec.DecodeState(encoded)
			if err != nil {
				return n, fmt.Errorf("failed to decode state: %w", err)
			}
			state, hasState = s, true
			return n, nil
		case num == fieldStateVisits && typ == protowire.Fixed64Type:
			bits, n := protowire.ConsumeFixed64(value)
			visits = math.Float64frombits(bits)
			return n, nil
		case num == fieldStateActions && typ == protowire.BytesType:
			encoded, n := protowire.ConsumeBytes(value)
			if n < 0 {
				return n, nil
			}
			a, stat, err := decodeAction(encoded, codec)
			if err != nil {
				return n, err
			}
			actions = append(actions, a)
			stats = append(stats, stat)
			return n, nil
		default:
			return protowire.ConsumeFieldValue(num, typ, value), nil
		}
	})
	if err != nil {
		return err
	}
	if !hasState {
		return errors.New("state entry without a state")
	}
	h := q.hash(state)
	q.visits[h] = visits
	q.states[h] = state
	for i, a := range actions {
		q.actions[stateAction[A]{h, a}] = stats[i]
	}
	return nil
}

func decodeAction[S, A any](encoded []byte, codec Codec[S, A]) (A, Stat, error) {
	var (
		action A
		stat   Stat
		hasKey bool
	)
	err := walkFields(encoded, func(num protowire.Number, typ protowire.Type, value []byte) (int, error) {
		switch {
		case num == fieldActionKey && typ == protowire.VarintType:
			key, n := protowire.ConsumeVarint(value)
			if n < 0 {
				return n, nil
			}
			a, err := codec.DecodeAction(key)
			if err != nil {
				return n, fmt.Errorf("failed to decode action: %w", err)
			}
			action, hasKey = a, true
			return n, nil
		case num == fieldActionReturn && typ == protowire.Fixed64Type:
			bits, n := protowire.ConsumeFixed64(value)
			stat.Return = math.Float64frombits(bits)
			return n, nil
		case num == fieldActionVisits && typ == protowire.Fixed64Type:
			bits, n := protowire.ConsumeFixed64(value)
			stat.Visits = math.Float64frombits(bits)
			return n, nil
		default:
			return protowire.ConsumeFieldValue(num, typ, value), nil
		}
	})
	if err == nil && !hasKey {
		err = errors.New("action entry without a key")
	}
	return action, stat, err
}

// walkFields calls consume for every field in data. consume returns how many bytes of the
// value it read, negative on a wire error.
func walkFields(data []byte, consume func(num protowire.Number, typ protowire.Type, value []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		n, err := consume(num, typ, data)
		if err != nil {
			return err
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create q-map file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write q-map file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync q-map file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close q-map file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace q-map file: %w", err)
	}
	return nil
}
