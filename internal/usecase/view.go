package usecase

import (
	"github.com/samber/lo"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
)

// GameView is what clients render: the viewed board, the status line and the step buttons.
type GameView struct {
	ID      string         `json:"id"`
	Board   entity.Board   `json:"board"`
	History []entity.Board `json:"history"`
	Step    int            `json:"step"`
	XIsNext bool           `json:"x_is_next"`
	Mode    entity.Mode    `json:"mode"`
	Status  string         `json:"status"`
	Outcome string         `json:"outcome"`
	Winner  entity.Mark    `json:"winner"`
	Restart bool           `json:"restart"`
	Steps   []StepView     `json:"steps"`
}

type StepView struct {
	Step  int    `json:"step"`
	Label string `json:"label"`
}

func NewGameView(game *entity.Game) *GameView {
	board := game.Current()
	outcome := tictactoe.Evaluate(board)

	return &GameView{
		ID:      game.ID,
		Board:   board,
		History: game.History,
		Step:    game.StepNum,
		XIsNext: game.XIsNext,
		Mode:    game.Mode,
		Status:  Status(game),
		Outcome: outcome.String(),
		Winner:  outcome.Winner,
		Restart: outcome.IsTerminal(),
		Steps: lo.Map(game.History, func(_ entity.Board, step int) StepView {
			return StepView{Step: step, Label: entity.StepLabel(step)}
		}),
	}
}

// Status - the line shown above the board.
func Status(game *entity.Game) string {
	outcome := tictactoe.Evaluate(game.Current())

	switch {
	case outcome.IsDraw():
		return "Draw"
	case outcome.IsWin():
		return "Winner: " + outcome.Winner.String()
	default:
		return "Next player: " + game.NextMark().String()
	}
}
