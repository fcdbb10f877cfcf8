package agent

import "xoxo/game"

// Kit bundles what the players of one game need beyond the board itself.
type Kit[B game.Board[B, C], C game.Coordinate] struct {
	Type      game.Type
	Heuristic game.Heuristic[B]
	ParseMove func(string) (C, error)
	// Prompt tells a human how to type a move.
	Prompt string
	New    func() B
}

func TicTacToeKit() Kit[game.TicTacToe, game.Cell] {
	return Kit[game.TicTacToe, game.Cell]{
		Type:      game.TicTacToeType,
		Heuristic: game.TicTacToeHeuristic,
		ParseMove: game.ParseCell,
		Prompt:    "Enter a cell 1-9, row by row from the top left",
		New:       game.NewTicTacToe,
	}
}

func ConnectFourKit() Kit[game.ConnectFour, game.Column] {
	return Kit[game.ConnectFour, game.Column]{
		Type:      game.ConnectFourType,
		Heuristic: game.ConnectFourHeuristic,
		ParseMove: game.ParseColumn,
		Prompt:    "Enter a column 1-7",
		New:       game.NewConnectFour,
	}
}

func UltimateKit() Kit[game.Ultimate, game.Square] {
	return Kit[game.Ultimate, game.Square]{
		Type:      game.UltimateType,
		Heuristic: game.UltimateHeuristic,
		ParseMove: game.ParseSquare,
		Prompt:    "Enter board row, board column, row and column, each 1-3, e.g. \"2 2 1 3\"",
		New:       game.NewUltimate,
	}
}
