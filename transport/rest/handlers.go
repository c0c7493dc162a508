package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-ai/internal/usecase"
)

var errInvalidBoard = errors.New("board must have 9 cells")

type boardRequest struct {
	Board []entity.Mark `json:"board"`
	Mover string        `json:"mover,omitempty"`
	Mode  string        `json:"mode,omitempty"`
}

type outcomeResponse struct {
	Outcome string      `json:"outcome"`
	Winner  entity.Mark `json:"winner"`
}

type moveResponse struct {
	Cell  int `json:"cell"`
	Score int `json:"score"`
}

type gameRequest struct {
	Mode string `json:"mode,omitempty"`
	Cell *int   `json:"cell,omitempty"`
	Step *int   `json:"step,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req boardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, fmt.Errorf("%w: %w", errBadPayload, err))
		return
	}

	board, err := toBoard(req.Board)
	if err != nil {
		that.writeError(w, err)
		return
	}

	outcome := tictactoe.Evaluate(board)
	writeJSON(w, http.StatusOK, outcomeResponse{Outcome: outcome.String(), Winner: outcome.Winner})
}

func (that *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req boardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, fmt.Errorf("%w: %w", errBadPayload, err))
		return
	}

	board, err := toBoard(req.Board)
	if err != nil {
		that.writeError(w, err)
		return
	}

	mover := entity.PlayerO
	if req.Mover != "" {
		if mover, err = entity.ParseMark(req.Mover); err != nil {
			that.writeError(w, fmt.Errorf("%w: %w", apperror.ErrInvalidMark, err))
			return
		}
	}

	mode, err := that.parseMode(req.Mode)
	if err != nil {
		that.writeError(w, err)
		return
	}

	result, err := that.uGame.SuggestMove(board, mover, mode)
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, moveResponse{Cell: result.Move, Score: result.Score})
}

func (that *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	// the body is optional here
	var req gameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		that.writeError(w, fmt.Errorf("%w: %w", errBadPayload, err))
		return
	}

	mode, err := that.parseMode(req.Mode)
	if err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.uGame.NewGame(r.Context(), mode)
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, usecase.NewGameView(game))
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, usecase.NewGameView(game))
}

func (that *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.uGame.DeleteGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	req, ok := that.decodeGameRequest(w, r)
	if !ok {
		return
	}

	if req.Cell == nil {
		that.writeError(w, fmt.Errorf("%w: cell is required", apperror.ErrInvalidCell))
		return
	}

	game, err := that.uGame.MakeTurn(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, usecase.NewGameView(game))
}

func (that *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	req, ok := that.decodeGameRequest(w, r)
	if !ok {
		return
	}

	if req.Step == nil {
		that.writeError(w, fmt.Errorf("%w: step is required", apperror.ErrInvalidStep))
		return
	}

	game, err := that.uGame.JumpTo(r.Context(), chi.URLParam(r, "id"), *req.Step)
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, usecase.NewGameView(game))
}

func (that *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	req, ok := that.decodeGameRequest(w, r)
	if !ok {
		return
	}

	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.uGame.ChangeMode(r.Context(), chi.URLParam(r, "id"), mode)
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, usecase.NewGameView(game))
}

func (that *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.Restart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, usecase.NewGameView(game))
}

func (that *Server) decodeGameRequest(w http.ResponseWriter, r *http.Request) (gameRequest, bool) {
	var req gameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, fmt.Errorf("%w: %w", errBadPayload, err))
		return req, false
	}

	return req, true
}

func (that *Server) parseMode(name string) (entity.Mode, error) {
	if name == "" {
		return that.defaultMode, nil
	}

	return entity.ParseMode(name)
}

func toBoard(cells []entity.Mark) (entity.Board, error) {
	var board entity.Board
	if len(cells) != entity.BoardSize {
		return board, fmt.Errorf("%w: got %d", errInvalidBoard, len(cells))
	}

	copy(board[:], cells)
	return board, nil
}
