package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
)

// Game is a single play session: the boards after every step and the step being viewed.
type Game struct {
	ID      string  `json:"id"`
	History []Board `json:"history"`
	StepNum int     `json:"step"`
	XIsNext bool    `json:"x_is_next"`
	Mode    Mode    `json:"mode"`
}

func NewGame(id string, mode Mode) *Game {
	return &Game{
		ID:      id,
		History: []Board{{}},
		StepNum: 0,
		XIsNext: true,
		Mode:    mode,
	}
}

// Current returns the board at the step being viewed.
func (that *Game) Current() Board {
	return that.History[that.StepNum]
}

// NextMark is the mark placed by the next click.
func (that *Game) NextMark() Mark {
	if that.XIsNext {
		return PlayerX
	}
	return PlayerO
}

// Reset clears the board and history and switches to the given mode.
func (that *Game) Reset(mode Mode) {
	that.History = []Board{{}}
	that.StepNum = 0
	that.XIsNext = true
	that.Mode = mode
}

// JumpTo moves the view to an earlier step. History is kept until the next move.
func (that *Game) JumpTo(step int) error {
	if step < 0 || step >= len(that.History) {
		return fmt.Errorf("%w: step %d of %d", apperror.ErrInvalidStep, step, len(that.History))
	}

	that.StepNum = step
	if that.Mode.IsAI() {
		that.XIsNext = true
	} else {
		that.XIsNext = step%2 == 0
	}

	return nil
}

// Push drops any steps after the current one and appends board as the new current step.
func (that *Game) Push(board Board) {
	that.History = append(that.History[:that.StepNum+1], board)
	that.StepNum = len(that.History) - 1

	if !that.Mode.IsAI() {
		that.XIsNext = !that.XIsNext
	}
}

// StepLabel is the caption of a history entry.
func StepLabel(step int) string {
	if step == 0 {
		return "Game Start"
	}
	return fmt.Sprintf("Step %d", step)
}
