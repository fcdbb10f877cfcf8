package game

import "math"

// TicTacToeHeuristic scores a won game at ±(100 - moves made), so quicker wins and slower
// losses are preferred. Undecided and drawn boards score the number of moves made.
func TicTacToeHeuristic(mark Mark, b TicTacToe) float64 {
	moves := float64(b.MovesMade())
	winner, ok := b.Status().Winner()
	switch {
	case !ok:
		return moves
	case winner == mark:
		return 100 - moves
	default:
		return -100 + moves
	}
}

// ConnectFourHeuristic rewards a win with 100, marks in the three centre columns (the middle
// one counting double) and open threes: row windows of four holding three of mark's tokens
// and one free square.
func ConnectFourHeuristic(mark Mark, b ConnectFour) float64 {
	win := 0.0
	if winner, ok := b.Status().Winner(); ok {
		win = -1
		if winner == mark {
			win = 1
		}
	}

	centre := 0.0
	for i, weight := range [3]float64{1, 2, 1} {
		for row := 0; row < c4Rows; row++ {
			if b.At(Column(2+i), row) == mark {
				centre += weight
			}
		}
	}

	threes := 0.0
	for row := 0; row < c4Rows; row++ {
		for start := 0; start+4 <= c4Columns; start++ {
			own, free := 0, 0
			for col := start; col < start+4; col++ {
				switch b.At(Column(col), row) {
				case mark:
					own++
				case Empty:
					free++
				}
			}
			if own == 3 && free == 1 {
				threes++
			}
		}
	}

	return 100*win + centre + 5*threes
}

// UltimateHeuristic is a variant of the Powell and Merrill evaluation: ±Inf for a decided
// game, then sub-board balance ×100, the centre sub-board 30 and centre squares 10 each,
// plus the number of moves made.
func UltimateHeuristic(mark Mark, b Ultimate) float64 {
	if winner, ok := b.Status().Winner(); ok {
		if winner == mark {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}

	subBalance := 0.0
	for sub := 0; sub < 9; sub++ {
		subBalance += balance(mark, b.SubStatus(sub))
	}
	centreBoard := 0.0
	if b.SubStatus(4) == Won(mark) {
		centreBoard = 1
	}
	centreSquares := 0.0
	for sub := 0; sub < 9; sub++ {
		switch b.At(Square(sub*9 + 4)) {
		case mark:
			centreSquares++
		case mark.Other():
			centreSquares--
		}
	}

	return float64(b.MovesMade()) + 100*subBalance + 30*centreBoard + 10*centreSquares
}

// balance is 1 if status is a win for mark, -1 for a loss, 0 otherwise.
func balance(mark Mark, status Status) float64 {
	winner, ok := status.Winner()
	switch {
	case !ok:
		return 0
	case winner == mark:
		return 1
	default:
		return -1
	}
}
