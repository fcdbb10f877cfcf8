package game

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	c4Columns = 7
	c4Rows    = 6
	c4Cells   = c4Columns * c4Rows
)

// Column is a connect-four move, 0-6 from the left. Humans type and read it 1-based.
type Column int

func (c Column) String() string {
	return strconv.Itoa(int(c) + 1)
}

// ConnectFour is a 7x6 board stored column-major, row 0 at the bottom.
// heights holds the next free row of each column.
type ConnectFour struct {
	cells   [c4Cells]Mark
	heights [c4Columns]uint8
	moves   uint8
	status  Status
}

func NewConnectFour() ConnectFour {
	return ConnectFour{}
}

// ParseConnectFour reads six rows of seven characters, top row first, using 'x', 'o' and '.'.
// Blank lines and indentation are ignored. Marks must rest on a full column.
func ParseConnectFour(s string) (ConnectFour, error) {
	var b ConnectFour
	var rows []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) != c4Rows {
		return b, fmt.Errorf("connect-four board needs %d rows, got %d", c4Rows, len(rows))
	}
	var grid [c4Cells]Mark
	for i, line := range rows {
		if len(line) != c4Columns {
			return b, fmt.Errorf("row %d has %d columns, want %d", i+1, len(line), c4Columns)
		}
		row := c4Rows - 1 - i
		for col, c := range line {
			var mark Mark
			switch c {
			case 'x', 'X':
				mark = Cross
			case 'o', 'O':
				mark = Naught
			case '.', ' ':
				mark = Empty
			default:
				return b, fmt.Errorf("invalid character %q at row %d column %d", c, i+1, col+1)
			}
			grid[col*c4Rows+row] = mark
		}
	}
	return b.fill(grid)
}

// ParseColumn reads a human move: a column number 1-7.
func ParseColumn(s string) (Column, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("move must be a column 1-7: %w", err)
	}
	if n < 1 || n > c4Columns {
		return 0, fmt.Errorf("column %d not in range 1-7", n)
	}
	return Column(n - 1), nil
}

// fill stacks the marks of grid column by column, rejecting floating marks.
func (b ConnectFour) fill(grid [c4Cells]Mark) (ConnectFour, error) {
	for col := 0; col < c4Columns; col++ {
		gap := false
		for row := 0; row < c4Rows; row++ {
			mark := grid[col*c4Rows+row]
			switch {
			case mark == Empty:
				gap = true
			case mark > Naught:
				return b, fmt.Errorf("invalid mark %d in column %d", mark, col+1)
			case gap:
				return b, fmt.Errorf("floating mark in column %d row %d", col+1, row+1)
			default:
				b.set(col, mark)
			}
		}
	}
	return b, b.check()
}

func (b ConnectFour) ValidMoves() []Column {
	if b.status.IsOver() {
		return nil
	}
	moves := make([]Column, 0, c4Columns)
	for col, h := range b.heights {
		if h < c4Rows {
			moves = append(moves, Column(col))
		}
	}
	return moves
}

// PlaceMark drops mark into column c. It panics if c is out of range, the column is full
// or the game is over.
func (b *ConnectFour) PlaceMark(c Column, mark Mark) {
	if c < 0 || c >= c4Columns {
		panic(fmt.Sprintf("connect-four column %d out of range", c))
	}
	if mark == Empty {
		panic("cannot place an empty mark")
	}
	if b.heights[c] >= c4Rows {
		panic(fmt.Sprintf("connect-four column %d is full", c))
	}
	if b.status.IsOver() {
		panic("connect-four game is already over")
	}
	b.set(int(c), mark)
}

func (b ConnectFour) Play(c Column, mark Mark) ConnectFour {
	b.PlaceMark(c, mark)
	return b
}

var c4Directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

func (b *ConnectFour) set(col int, mark Mark) {
	row := int(b.heights[col])
	b.cells[col*c4Rows+row] = mark
	b.heights[col]++
	b.moves++

	if b.status != Undecided {
		return
	}
	for _, d := range c4Directions {
		n := 1 + b.run(col, row, d[0], d[1], mark) + b.run(col, row, -d[0], -d[1], mark)
		if n >= 4 {
			b.status = Won(mark)
			return
		}
	}
	if b.moves == c4Cells {
		b.status = Draw
	}
}

// run counts consecutive marks starting next to (col, row) in direction (dc, dr).
func (b *ConnectFour) run(col, row, dc, dr int, mark Mark) int {
	n := 0
	for {
		col, row = col+dc, row+dr
		if col < 0 || col >= c4Columns || row < 0 || row >= c4Rows {
			return n
		}
		if b.cells[col*c4Rows+row] != mark {
			return n
		}
		n++
	}
}

func (b ConnectFour) check() error {
	var naughts, crosses int
	for _, mark := range b.cells {
		switch mark {
		case Naught:
			naughts++
		case Cross:
			crosses++
		}
	}
	if d := naughts - crosses; d != 0 && d != 1 {
		return fmt.Errorf("impossible mark counts: %d naughts, %d crosses", naughts, crosses)
	}
	return nil
}

func (b ConnectFour) Status() Status {
	return b.status
}

func (b ConnectFour) IsOver() bool {
	return b.status.IsOver()
}

func (b ConnectFour) CurrentPlayer() Mark {
	if b.moves%2 == 0 {
		return Naught
	}
	return Cross
}

func (b ConnectFour) MovesMade() int {
	return int(b.moves)
}

// At returns the mark in column col, row from the bottom.
func (b ConnectFour) At(col Column, row int) Mark {
	return b.cells[int(col)*c4Rows+row]
}

func (b ConnectFour) Hash() StateHash {
	return hashBoard(b)
}

func (b ConnectFour) Compare(other ConnectFour) int {
	return slices.Compare(b.cells[:], other.cells[:])
}

func (b ConnectFour) AppendBinary(buf []byte) ([]byte, error) {
	for _, mark := range b.cells {
		buf = append(buf, byte(mark))
	}
	return buf, nil
}

func (ConnectFour) Decode(data []byte) (ConnectFour, error) {
	var grid [c4Cells]Mark
	if len(data) != c4Cells {
		return ConnectFour{}, fmt.Errorf("connect-four encoding has %d bytes, want %d", len(data), c4Cells)
	}
	for i, v := range data {
		grid[i] = Mark(v)
	}
	return ConnectFour{}.fill(grid)
}

func (b ConnectFour) String() string {
	var sb strings.Builder
	for row := c4Rows - 1; row >= 0; row-- {
		for col := 0; col < c4Columns; col++ {
			switch b.cells[col*c4Rows+row] {
			case Cross:
				sb.WriteByte('x')
			case Naught:
				sb.WriteByte('o')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("1234567\n")
	return sb.String()
}
