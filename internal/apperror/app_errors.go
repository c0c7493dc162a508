package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrInvalidStep      = errors.New("invalid history step")
	ErrInvalidMark      = errors.New("invalid player mark")
	ErrInvalidMode      = errors.New("invalid game mode")
	ErrNoBotInMode      = errors.New("mode has no computer opponent")
	ErrNoAvailableMoves = errors.New("no available moves")
)
