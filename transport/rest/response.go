package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository"
)

var errBadPayload = errors.New("invalid payload")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusCode - maps domain errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, repository.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrCellOccupied):
		return http.StatusConflict
	case errors.Is(err, errBadPayload),
		errors.Is(err, errInvalidBoard),
		errors.Is(err, entity.ErrUnknownMark),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrInvalidStep),
		errors.Is(err, apperror.ErrInvalidMark),
		errors.Is(err, apperror.ErrInvalidMode),
		errors.Is(err, apperror.ErrNoBotInMode),
		errors.Is(err, apperror.ErrNoAvailableMoves):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (that *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}
