package game

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Square is an ultimate tic-tac-toe move: sub-board*9 + position, both numbered 0-8
// row-major, so 0-80.
type Square int

// NewSquare builds a square from 0-based sub-board row/column and position row/column.
func NewSquare(boardRow, boardCol, posRow, posCol int) Square {
	return Square((boardRow*3+boardCol)*9 + posRow*3 + posCol)
}

func (s Square) SubBoard() int { return int(s) / 9 }
func (s Square) Position() int { return int(s) % 9 }

// String prints the 1-based "board-row board-col pos-row pos-col" form read by ParseSquare.
func (s Square) String() string {
	sub, pos := s.SubBoard(), s.Position()
	return fmt.Sprintf("%d %d %d %d", sub/3+1, sub%3+1, pos/3+1, pos%3+1)
}

// ParseSquare reads four 1-based numbers i j k l: play position (k, l) of the sub-board on
// row i, column j.
func ParseSquare(s string) (Square, error) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return 0, fmt.Errorf("move must be four numbers 1-3 separated by spaces, got %q", s)
	}
	var n [4]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return 0, fmt.Errorf("move part %d: %w", i+1, err)
		}
		if v < 1 || v > 3 {
			return 0, fmt.Errorf("move part %d is %d, not in range 1-3", i+1, v)
		}
		n[i] = v - 1
	}
	return NewSquare(n[0], n[1], n[2], n[3]), nil
}

// Ultimate is a 3x3 grid of tic-tac-toe sub-boards. A move must go in the sub-board
// matching the position of the previous move, unless that sub-board is decided.
// Line counters follow TicTacToe: +1 naught, -1 cross. superLines count won sub-boards.
type Ultimate struct {
	cells      [81]Mark
	subLines   [9][8]int8
	subMoves   [9]uint8
	subStatus  [9]Status
	superLines [8]int8
	decided    uint8
	moves      uint8
	// last is the previous square plus one; zero before the first move.
	last   uint8
	status Status
}

func NewUltimate() Ultimate {
	return Ultimate{}
}

// TargetBoard returns the sub-board the next move must go in, or false when any
// undecided sub-board is allowed.
func (b Ultimate) TargetBoard() (int, bool) {
	if b.last == 0 {
		return 0, false
	}
	target := Square(b.last - 1).Position()
	if b.subStatus[target].IsOver() {
		return 0, false
	}
	return target, true
}

func (b Ultimate) ValidMoves() []Square {
	if b.status.IsOver() {
		return nil
	}
	if target, ok := b.TargetBoard(); ok {
		return b.appendFree(make([]Square, 0, 9), target)
	}
	moves := make([]Square, 0, 81-int(b.moves))
	for sub := 0; sub < 9; sub++ {
		if !b.subStatus[sub].IsOver() {
			moves = b.appendFree(moves, sub)
		}
	}
	return moves
}

func (b Ultimate) appendFree(moves []Square, sub int) []Square {
	for pos := 0; pos < 9; pos++ {
		if b.cells[sub*9+pos] == Empty {
			moves = append(moves, Square(sub*9+pos))
		}
	}
	return moves
}

// PlaceMark puts mark at s. It panics if s is out of range, taken, inside a decided
// sub-board, outside the forced sub-board, or the game is over.
func (b *Ultimate) PlaceMark(s Square, mark Mark) {
	if s < 0 || s >= 81 {
		panic(fmt.Sprintf("ultimate square %d out of range", s))
	}
	if mark == Empty {
		panic("cannot place an empty mark")
	}
	if b.status.IsOver() {
		panic("ultimate game is already over")
	}
	if b.cells[s] != Empty {
		panic(fmt.Sprintf("ultimate square %v is already taken", s))
	}
	if b.subStatus[s.SubBoard()].IsOver() {
		panic(fmt.Sprintf("ultimate square %v is in a decided sub-board", s))
	}
	if target, ok := b.TargetBoard(); ok && target != s.SubBoard() {
		panic(fmt.Sprintf("ultimate square %v is outside sub-board %d", s, target+1))
	}
	b.set(s, mark)
}

func (b Ultimate) Play(s Square, mark Mark) Ultimate {
	b.PlaceMark(s, mark)
	return b
}

// lineIndexes lists the lines of a 3x3 grid through pos: row, column and the diagonals
// it lies on, -1 for none.
func lineIndexes(pos int) [4]int {
	row, col := pos/3, pos%3
	lines := [4]int{row, 3 + col, -1, -1}
	if row == col {
		lines[2] = 6
	}
	if row == 2-col {
		lines[3] = 7
	}
	return lines
}

func markDelta(mark Mark) int8 {
	if mark == Naught {
		return 1
	}
	return -1
}

// set places mark at s. Line counters are updated for every mark, so they depend only on
// the marks on the board and not on the order they were placed in; only the outcomes are
// frozen once decided.
func (b *Ultimate) set(s Square, mark Mark) {
	sub, pos := s.SubBoard(), s.Position()
	delta := markDelta(mark)
	b.cells[s] = mark
	b.moves++
	b.subMoves[sub]++
	b.last = uint8(s) + 1

	won := false
	for _, l := range lineIndexes(pos) {
		if l < 0 {
			continue
		}
		b.subLines[sub][l] += delta
		won = won || b.subLines[sub][l] == 3*delta
	}
	if b.subStatus[sub].IsOver() {
		return
	}
	switch {
	case won:
		b.subStatus[sub] = Won(mark)
	case b.subMoves[sub] == 9:
		b.subStatus[sub] = Draw
	default:
		return
	}
	b.decided++

	// The super-board is checked through the sub-board's own position.
	if won {
		for _, l := range lineIndexes(sub) {
			if l < 0 {
				continue
			}
			b.superLines[l] += delta
			if b.superLines[l] == 3*delta && !b.status.IsOver() {
				b.status = Won(mark)
			}
		}
	}
	if b.decided == 9 && !b.status.IsOver() {
		b.status = Draw
	}
}

func (b Ultimate) Status() Status {
	return b.status
}

func (b Ultimate) IsOver() bool {
	return b.status.IsOver()
}

func (b Ultimate) CurrentPlayer() Mark {
	if b.moves%2 == 0 {
		return Naught
	}
	return Cross
}

func (b Ultimate) MovesMade() int {
	return int(b.moves)
}

func (b Ultimate) At(s Square) Mark {
	return b.cells[s]
}

// SubStatus returns the status of sub-board sub, 0-8 row-major.
func (b Ultimate) SubStatus(sub int) Status {
	return b.subStatus[sub]
}

func (b Ultimate) Hash() StateHash {
	return hashBoard(b)
}

func (b Ultimate) Compare(other Ultimate) int {
	if c := slices.Compare(b.cells[:], other.cells[:]); c != 0 {
		return c
	}
	return int(b.last) - int(other.last)
}

// AppendBinary writes the 81 marks followed by the previous square plus one.
func (b Ultimate) AppendBinary(buf []byte) ([]byte, error) {
	for _, mark := range b.cells {
		buf = append(buf, byte(mark))
	}
	return append(buf, b.last), nil
}

func (Ultimate) Decode(data []byte) (Ultimate, error) {
	var b Ultimate
	if len(data) != len(b.cells)+1 {
		return b, fmt.Errorf("ultimate encoding has %d bytes, want %d", len(data), len(b.cells)+1)
	}
	last := data[len(b.cells)]
	if int(last) > len(b.cells) {
		return b, fmt.Errorf("invalid previous square %d", last)
	}
	counts := [3]int{}
	for i, v := range data[:len(b.cells)] {
		mark := Mark(v)
		if mark > Naught {
			return b, fmt.Errorf("invalid mark %d at square %d", v, i)
		}
		counts[mark]++
		if mark != Empty {
			b.set(Square(i), mark)
		}
	}
	if d := counts[Naught] - counts[Cross]; d != 0 && d != 1 {
		return b, fmt.Errorf("impossible mark counts: %d naughts, %d crosses", counts[Naught], counts[Cross])
	}
	if (last == 0) != (b.moves == 0) {
		return b, fmt.Errorf("previous square %d does not match %d moves", last, b.moves)
	}
	if last != 0 && b.cells[last-1] != b.CurrentPlayer().Other() {
		return b, fmt.Errorf("previous square %v was not played by the last mover", Square(last-1))
	}
	b.last = last
	return b, nil
}

func (b Ultimate) String() string {
	var sb strings.Builder
	sb.WriteString(" --- --- --- \n")
	for boardRow := 0; boardRow < 3; boardRow++ {
		for posRow := 0; posRow < 3; posRow++ {
			sb.WriteByte('|')
			for boardCol := 0; boardCol < 3; boardCol++ {
				for posCol := 0; posCol < 3; posCol++ {
					sb.WriteString(b.cells[NewSquare(boardRow, boardCol, posRow, posCol)].String())
				}
				sb.WriteByte('|')
			}
			sb.WriteByte('\n')
		}
		sb.WriteString(" --- --- --- \n")
	}
	return sb.String()
}
