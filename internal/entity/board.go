package entity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Mark is the content of a single board cell.
type Mark uint8

const (
	Empty Mark = iota
	PlayerX
	PlayerO
)

const BoardSize = 9

var ErrUnknownMark = errors.New("unknown mark")

// Board is a 3x3 grid in row-major order. It is a value type, so assignment copies it.
type Board [BoardSize]Mark

func (that Mark) String() string {
	switch that {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	default:
		return ""
	}
}

// Valid reports whether the mark belongs to a player.
func (that Mark) Valid() bool {
	return that == PlayerX || that == PlayerO
}

// Opponent returns the other player's mark.
func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func ParseMark(s string) (Mark, error) {
	switch s {
	case "":
		return Empty, nil
	case "X", "x":
		return PlayerX, nil
	case "O", "o":
		return PlayerO, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrUnknownMark, s)
	}
}

func (that Mark) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Mark) UnmarshalText(text []byte) error {
	mark, err := ParseMark(string(text))
	if err != nil {
		return err
	}

	*that = mark
	return nil
}

// MarshalJSON keeps empty cells as null, which is how the web client renders them.
func (that Mark) MarshalJSON() ([]byte, error) {
	if that == Empty {
		return []byte("null"), nil
	}
	return json.Marshal(that.String())
}

func (that *Mark) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*that = Empty
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal mark: %w", err)
	}

	return that.UnmarshalText([]byte(s))
}

// EmptyCells returns the indices of empty cells in ascending order.
func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == Empty {
			cells = append(cells, i)
		}
	}
	return cells
}

func (that Board) IsFull() bool {
	return !lo.Contains(that[:], Empty)
}

// With returns a copy of the board with mark placed at cell.
func (that Board) With(cell int, mark Mark) Board {
	that[cell] = mark
	return that
}

// OutcomeKind tells whether the game goes on, was won, or ended in a draw.
type OutcomeKind uint8

const (
	OutcomeNone OutcomeKind = iota
	OutcomeWin
	OutcomeDraw
)

// Outcome is the result of evaluating a board. Winner is set only for OutcomeWin.
type Outcome struct {
	Kind   OutcomeKind
	Winner Mark
}

func NoOutcome() Outcome {
	return Outcome{Kind: OutcomeNone}
}

func WinFor(mark Mark) Outcome {
	return Outcome{Kind: OutcomeWin, Winner: mark}
}

func DrawOutcome() Outcome {
	return Outcome{Kind: OutcomeDraw}
}

func (that Outcome) IsTerminal() bool {
	return that.Kind != OutcomeNone
}

func (that Outcome) IsWin() bool {
	return that.Kind == OutcomeWin
}

func (that Outcome) IsDraw() bool {
	return that.Kind == OutcomeDraw
}

func (that Outcome) String() string {
	switch that.Kind {
	case OutcomeWin:
		return "win"
	case OutcomeDraw:
		return "draw"
	default:
		return "none"
	}
}
