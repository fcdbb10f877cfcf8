package game

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Cell is a tic-tac-toe square numbered 1-9, row-major from the top left:
//
//	1 2 3
//	4 5 6
//	7 8 9
type Cell int

func (c Cell) String() string {
	return strconv.Itoa(int(c))
}

// TicTacToe is a 3x3 board. lines tracks 3 rows, 3 columns and the two diagonals
// (south-east, then north-east) as +1 per naught and -1 per cross, so a line at ±3 is a win.
type TicTacToe struct {
	cells  [9]Mark
	lines  [8]int8
	moves  uint8
	status Status
}

func NewTicTacToe() TicTacToe {
	return TicTacToe{}
}

// ParseTicTacToe reads nine characters, row-major, each 'x', 'o' or ' '.
// The turn order of the marks is not checked.
func ParseTicTacToe(s string) (TicTacToe, error) {
	var b TicTacToe
	if len(s) != len(b.cells) {
		return b, fmt.Errorf("tic-tac-toe board needs %d squares, got %d", len(b.cells), len(s))
	}
	for i, c := range s {
		switch c {
		case 'x', 'X':
			b.set(i, Cross)
		case 'o', 'O':
			b.set(i, Naught)
		case ' ', '.':
		default:
			return b, fmt.Errorf("invalid square %q at %d", c, i+1)
		}
	}
	if err := b.check(); err != nil {
		return b, err
	}
	return b, nil
}

// ParseCell reads a human move: a single number 1-9.
func ParseCell(s string) (Cell, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("move must be a number 1-9: %w", err)
	}
	if n < 1 || n > 9 {
		return 0, fmt.Errorf("move %d not in range 1-9", n)
	}
	return Cell(n), nil
}

func (b TicTacToe) ValidMoves() []Cell {
	if b.status.IsOver() {
		return nil
	}
	moves := make([]Cell, 0, len(b.cells)-int(b.moves))
	for i, mark := range b.cells {
		if mark == Empty {
			moves = append(moves, Cell(i+1))
		}
	}
	return moves
}

// PlaceMark puts mark at c. It panics if c is out of range, already taken or the game is over.
func (b *TicTacToe) PlaceMark(c Cell, mark Mark) {
	if c < 1 || c > 9 {
		panic(fmt.Sprintf("tic-tac-toe square %d out of range", c))
	}
	if mark == Empty {
		panic("cannot place an empty mark")
	}
	if b.cells[c-1] != Empty {
		panic(fmt.Sprintf("tic-tac-toe square %d is already taken", c))
	}
	if b.status.IsOver() {
		panic("tic-tac-toe game is already over")
	}
	b.set(int(c-1), mark)
}

func (b TicTacToe) Play(c Cell, mark Mark) TicTacToe {
	b.PlaceMark(c, mark)
	return b
}

// set places the mark and updates only the lines through the square.
func (b *TicTacToe) set(i int, mark Mark) {
	delta := markDelta(mark)
	b.cells[i] = mark
	b.moves++

	won := false
	for _, l := range lineIndexes(i) {
		if l < 0 {
			continue
		}
		b.lines[l] += delta
		if b.lines[l] == 3*delta {
			won = true
		}
	}

	if b.status != Undecided {
		return
	}
	if won {
		b.status = Won(mark)
	} else if int(b.moves) == len(b.cells) {
		b.status = Draw
	}
}

func (b TicTacToe) check() error {
	var crossLine, naughtLine bool
	for _, l := range b.lines {
		crossLine = crossLine || l == -3
		naughtLine = naughtLine || l == 3
	}
	if crossLine && naughtLine {
		return fmt.Errorf("both players have three in a row")
	}
	return nil
}

func (b TicTacToe) Status() Status {
	return b.status
}

func (b TicTacToe) IsOver() bool {
	return b.status.IsOver()
}

// CurrentPlayer is Naught on even move counts; Naught always opens.
func (b TicTacToe) CurrentPlayer() Mark {
	if b.moves%2 == 0 {
		return Naught
	}
	return Cross
}

func (b TicTacToe) MovesMade() int {
	return int(b.moves)
}

// At returns the mark at c.
func (b TicTacToe) At(c Cell) Mark {
	return b.cells[c-1]
}

func (b TicTacToe) Hash() StateHash {
	return hashBoard(b)
}

func (b TicTacToe) Compare(other TicTacToe) int {
	return slices.Compare(b.cells[:], other.cells[:])
}

func (b TicTacToe) AppendBinary(buf []byte) ([]byte, error) {
	for _, mark := range b.cells {
		buf = append(buf, byte(mark))
	}
	return buf, nil
}

func (TicTacToe) Decode(data []byte) (TicTacToe, error) {
	var b TicTacToe
	if len(data) != len(b.cells) {
		return b, fmt.Errorf("tic-tac-toe encoding has %d bytes, want %d", len(data), len(b.cells))
	}
	counts := [3]int{}
	for i, v := range data {
		mark := Mark(v)
		if mark > Naught {
			return b, fmt.Errorf("invalid mark %d at square %d", v, i+1)
		}
		counts[mark]++
		if mark != Empty {
			b.set(i, mark)
		}
	}
	if d := counts[Naught] - counts[Cross]; d != 0 && d != 1 {
		return b, fmt.Errorf("impossible mark counts: %d naughts, %d crosses", counts[Naught], counts[Cross])
	}
	if err := b.check(); err != nil {
		return b, err
	}
	return b, nil
}

func (b TicTacToe) String() string {
	var sb strings.Builder
	sb.WriteString(" ------- \n")
	for row := 0; row < 3; row++ {
		sb.WriteString("| ")
		for col := 0; col < 3; col++ {
			sb.WriteString(b.cells[row*3+col].String())
			sb.WriteByte(' ')
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(" ------- \n")
	return sb.String()
}
