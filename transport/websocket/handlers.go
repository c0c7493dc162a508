package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/usecase"
)

var (
	errGameIDRequired = errors.New("game_id is required")
	errInvalidBoard   = errors.New("board must have 9 cells")
)

func gameResponse(game *entity.Game) ResponsePayload {
	return ResponsePayload{Game: usecase.NewGameView(game)}
}

func (that *Server) handleNewGame(ctx context.Context, payload *Payload) (ResponsePayload, error) {
	mode := that.defaultMode
	if payload.Mode != "" {
		var err error
		if mode, err = entity.ParseMode(payload.Mode); err != nil {
			return ResponsePayload{}, err
		}
	}

	game, err := that.uGame.NewGame(ctx, mode)
	if err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to create game: %w", err)
	}

	return gameResponse(game), nil
}

func (that *Server) handleGetGame(ctx context.Context, payload *Payload) (ResponsePayload, error) {
	if payload.GameID == "" {
		return ResponsePayload{}, errGameIDRequired
	}

	game, err := that.uGame.GetGame(ctx, payload.GameID)
	if err != nil {
		return ResponsePayload{}, err
	}

	return gameResponse(game), nil
}

func (that *Server) handleGameTurn(ctx context.Context, payload *Payload) (ResponsePayload, error) {
	if payload.GameID == "" {
		return ResponsePayload{}, errGameIDRequired
	}

	if payload.Cell == nil {
		return ResponsePayload{}, fmt.Errorf("%w: cell is required", apperror.ErrInvalidCell)
	}

	game, err := that.uGame.MakeTurn(ctx, payload.GameID, *payload.Cell)
	if err != nil {
		return ResponsePayload{}, err
	}

	return gameResponse(game), nil
}

func (that *Server) handleJump(ctx context.Context, payload *Payload) (ResponsePayload, error) {
	if payload.GameID == "" {
		return ResponsePayload{}, errGameIDRequired
	}

	if payload.Step == nil {
		return ResponsePayload{}, fmt.Errorf("%w: step is required", apperror.ErrInvalidStep)
	}

	game, err := that.uGame.JumpTo(ctx, payload.GameID, *payload.Step)
	if err != nil {
		return ResponsePayload{}, err
	}

	return gameResponse(game), nil
}

func (that *Server) handleMode(ctx context.Context, payload *Payload) (ResponsePayload, error) {
	if payload.GameID == "" {
		return ResponsePayload{}, errGameIDRequired
	}

	mode, err := entity.ParseMode(payload.Mode)
	if err != nil {
		return ResponsePayload{}, err
	}

	game, err := that.uGame.ChangeMode(ctx, payload.GameID, mode)
	if err != nil {
		return ResponsePayload{}, err
	}

	return gameResponse(game), nil
}

func (that *Server) handleRestart(ctx context.Context, payload *Payload) (ResponsePayload, error) {
	if payload.GameID == "" {
		return ResponsePayload{}, errGameIDRequired
	}

	game, err := that.uGame.Restart(ctx, payload.GameID)
	if err != nil {
		return ResponsePayload{}, err
	}

	return gameResponse(game), nil
}

func (that *Server) handleSuggestMove(_ context.Context, payload *Payload) (ResponsePayload, error) {
	if len(payload.Board) != entity.BoardSize {
		return ResponsePayload{}, fmt.Errorf("%w: got %d", errInvalidBoard, len(payload.Board))
	}

	var board entity.Board
	copy(board[:], payload.Board)

	mover := entity.PlayerO
	if payload.Mover != "" {
		var err error
		if mover, err = entity.ParseMark(payload.Mover); err != nil {
			return ResponsePayload{}, err
		}
	}

	mode := that.defaultMode
	if payload.Mode != "" {
		var err error
		if mode, err = entity.ParseMode(payload.Mode); err != nil {
			return ResponsePayload{}, err
		}
	}

	result, err := that.uGame.SuggestMove(board, mover, mode)
	if err != nil {
		return ResponsePayload{}, err
	}

	return ResponsePayload{Move: &result}, nil
}
