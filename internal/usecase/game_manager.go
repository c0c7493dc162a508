package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/minimax"
	"github.com/rocketscienceinc/tictactoe-ai/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type botService interface {
	ChooseMove(board entity.Board, botMark entity.Mark, mode entity.Mode) (minimax.Result, error)
}

type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	bot      botService

	locks *gameLocks
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, bot botService) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo: gameRepo,
		bot:      bot,

		locks: newGameLocks(),
	}
}

// NewGame - starts a session with an empty board.
func (that *GameManager) NewGame(ctx context.Context, mode entity.Mode) (*entity.Game, error) {
	gameID, err := pkg.GenerateGameID()
	if err != nil {
		return nil, fmt.Errorf("error generating game ID: %w", err)
	}

	game := entity.NewGame(gameID, mode)
	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID, "mode", mode.String())

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	return that.getGameByID(ctx, id)
}

// MakeTurn - places the next mark on cell and, against the computer, adds its reply to the same step.
func (that *GameManager) MakeTurn(ctx context.Context, id string, cell int) (*entity.Game, error) {
	log := that.logger.With("method", "MakeTurn", "gameID", id)

	defer that.locks.lock(id)()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	board := game.Current()

	if tictactoe.Evaluate(board).IsTerminal() {
		return nil, apperror.ErrGameFinished
	}

	if cell < 0 || cell >= entity.BoardSize {
		return nil, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if board[cell] != entity.Empty {
		return nil, apperror.ErrCellOccupied
	}

	mark := game.NextMark()
	board[cell] = mark

	if game.Mode.IsAI() && !tictactoe.Evaluate(board).IsTerminal() {
		botMark := mark.Opponent()

		result, err := that.bot.ChooseMove(board, botMark, game.Mode)
		if err != nil {
			return nil, fmt.Errorf("bot failed to make turn: %w", err)
		}

		board[result.Move] = botMark
		log.Debug("bot answered", "cell", cell, "reply", result.Move)
	}

	game.Push(board)

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	if outcome := tictactoe.Evaluate(board); outcome.IsTerminal() {
		log.Info("game finished", "outcome", outcome.String(), "winner", outcome.Winner.String())
	}

	return game, nil
}

// JumpTo - shows an earlier step. Later steps are dropped by the next turn.
func (that *GameManager) JumpTo(ctx context.Context, id string, step int) (*entity.Game, error) {
	defer that.locks.lock(id)()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = game.JumpTo(step); err != nil {
		return nil, fmt.Errorf("failed to jump: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// ChangeMode - switching the mode always starts over.
func (that *GameManager) ChangeMode(ctx context.Context, id string, mode entity.Mode) (*entity.Game, error) {
	defer that.locks.lock(id)()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	game.Reset(mode)

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// Restart - clears the board and keeps the mode.
func (that *GameManager) Restart(ctx context.Context, id string) (*entity.Game, error) {
	defer that.locks.lock(id)()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	game.Reset(game.Mode)

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	defer that.locks.lock(id)()

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}

// SuggestMove - answers for clients that keep the board themselves.
func (that *GameManager) SuggestMove(board entity.Board, mover entity.Mark, mode entity.Mode) (minimax.Result, error) {
	result, err := that.bot.ChooseMove(board, mover, mode)
	if err != nil {
		return minimax.Result{}, fmt.Errorf("failed to choose move: %w", err)
	}

	return result, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}
