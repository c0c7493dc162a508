package tictactoe

import "github.com/rocketscienceinc/tictactoe-ai/internal/entity"

// WinCombos are scanned in this order; the first completed line decides the winner.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate - checks the board for a winner, a draw, or a game still in progress.
func Evaluate(board entity.Board) entity.Outcome {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.Empty && a == b && b == c {
			return entity.WinFor(a)
		}
	}

	// the game will continue until all the squares are full
	if !board.IsFull() {
		return entity.NoOutcome()
	}

	return entity.DrawOutcome()
}
