package service

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/minimax"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
)

type BotService interface {
	ChooseMove(board entity.Board, botMark entity.Mark, mode entity.Mode) (minimax.Result, error)
}

type botService struct {
	logger *slog.Logger
	rnd    minimax.RandSource

	// one selector per bot mark, so the search always maximizes for the bot
	selectors map[entity.Mark]*minimax.Selector
}

func NewBotService(logger *slog.Logger, rnd minimax.RandSource) BotService {
	selectors := make(map[entity.Mark]*minimax.Selector, 2)
	for _, mark := range []entity.Mark{entity.PlayerX, entity.PlayerO} {
		selectors[mark] = minimax.NewSelector(minimax.WithAIMark(mark), minimax.WithRandSource(rnd))
	}

	return &botService{
		logger:    logger.With("component", "bot"),
		rnd:       rnd,
		selectors: selectors,
	}
}

// ChooseMove - picks the computer's reply on board for the given mode.
func (that *botService) ChooseMove(board entity.Board, botMark entity.Mark, mode entity.Mode) (minimax.Result, error) {
	log := that.logger.With("method", "ChooseMove", "mode", mode.String())

	if !botMark.Valid() {
		return minimax.Result{}, fmt.Errorf("%w: %d", apperror.ErrInvalidMark, botMark)
	}

	difficulty, ok := mode.Difficulty()
	if !ok {
		return minimax.Result{}, apperror.ErrNoBotInMode
	}

	if tictactoe.Evaluate(board).IsTerminal() {
		return minimax.Result{}, apperror.ErrGameFinished
	}

	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return minimax.Result{}, apperror.ErrNoAvailableMoves
	}

	selector := that.selectors[botMark]

	var result minimax.Result
	switch difficulty {
	case entity.Easy:
		result = minimax.Result{Move: availableCells[that.rnd.Intn(len(availableCells))]}
	case entity.Medium, entity.Hard:
		result = selector.SelectMove(board, botMark, difficulty, false)
	case entity.Impossible:
		result = selector.SelectMove(board, botMark, difficulty, true)
	default:
		return minimax.Result{}, fmt.Errorf("%w: %s", apperror.ErrInvalidMode, difficulty)
	}

	log.Debug("bot chose a cell", "cell", result.Move, "score", result.Score)

	return result, nil
}
