package game

import "fmt"

// Mark is what a player places on a square. The zero value is an empty square.
type Mark uint8

const (
	Empty Mark = iota
	Cross
	Naught
)

// Other swaps Cross and Naught.
func (m Mark) Other() Mark {
	switch m {
	case Cross:
		return Naught
	case Naught:
		return Cross
	default:
		panic("empty square has no opponent")
	}
}

func (m Mark) String() string {
	switch m {
	case Cross:
		return "X"
	case Naught:
		return "O"
	default:
		return " "
	}
}

// ParseMark accepts x/X and o/O.
func ParseMark(s string) (Mark, error) {
	switch s {
	case "x", "X":
		return Cross, nil
	case "o", "O":
		return Naught, nil
	}
	return Empty, fmt.Errorf("unknown mark %q", s)
}

// Status is the outcome of a position: undecided, drawn, or won by one of the marks.
type Status uint8

const (
	Undecided Status = iota
	Draw
	CrossWon
	NaughtWon
)

// Won returns the status of a game won by mark.
func Won(mark Mark) Status {
	switch mark {
	case Cross:
		return CrossWon
	case Naught:
		return NaughtWon
	default:
		panic("empty square cannot win")
	}
}

// Winner returns the winning mark, if any.
func (s Status) Winner() (Mark, bool) {
	switch s {
	case CrossWon:
		return Cross, true
	case NaughtWon:
		return Naught, true
	default:
		return Empty, false
	}
}

func (s Status) IsOver() bool {
	return s != Undecided
}

func (s Status) String() string {
	switch s {
	case Draw:
		return "draw"
	case CrossWon:
		return "x"
	case NaughtWon:
		return "o"
	default:
		return "undecided"
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "undecided":
		return Undecided, nil
	case "draw":
		return Draw, nil
	case "x":
		return CrossWon, nil
	case "o":
		return NaughtWon, nil
	}
	return Undecided, fmt.Errorf("unknown game status %q", s)
}

type StateHash uint64

// Coordinate identifies a move on a board. Coordinates are small integers so that they
// are hashable, ordered and cheap to copy.
type Coordinate interface {
	~int
	fmt.Stringer
}

// Board is a complete game position. Implementations are fixed-size value types:
// assignment copies the position and Play never mutates its receiver.
// Status and CurrentPlayer are maintained incrementally when a mark is placed.
type Board[B any, C Coordinate] interface {
	comparable
	fmt.Stringer

	// ValidMoves lists the legal moves; it is empty once the game is over.
	ValidMoves() []C
	// Play returns a copy of the board with mark placed at c. It panics when c is
	// not a legal square.
	Play(c C, mark Mark) B
	Status() Status
	CurrentPlayer() Mark
	IsOver() bool
	Hash() StateHash
	// Compare orders positions, for stable iteration.
	Compare(other B) int
	// AppendBinary appends a compact encoding of the position to buf.
	AppendBinary(buf []byte) ([]byte, error)
	// Decode parses the output of AppendBinary into a new position.
	Decode(data []byte) (B, error)
}

// Heuristic scores a position from mark's perspective: higher is better for mark.
// Scores are finite, except that ±Inf may report a certain win or loss.
type Heuristic[B any] func(mark Mark, b B) float64

// Type names the supported games.
type Type string

const (
	TicTacToeType   Type = "ttt"
	UltimateType    Type = "uttt"
	ConnectFourType Type = "c4"
)

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TicTacToeType, UltimateType, ConnectFourType:
		return t, nil
	}
	return "", fmt.Errorf("unknown game %q (want ttt, uttt or c4)", s)
}
