package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
)

// Difficulty is the strength of the computer opponent.
type Difficulty uint8

const (
	Easy Difficulty = iota
	Medium
	Hard
	Impossible
)

const TwoPlayerName = "2 Players"

func (that Difficulty) String() string {
	switch that {
	case Easy:
		return "Easy"
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	case Impossible:
		return "Impossible"
	default:
		return fmt.Sprintf("Difficulty(%d)", uint8(that))
	}
}

// GuessProbability returns the base chance that the search picks a random
// candidate instead of the best one. Easy and Impossible have none.
func (that Difficulty) GuessProbability() (float64, bool) {
	switch that {
	case Medium:
		return 0.15, true
	case Hard:
		return 0.03, true
	default:
		return 0, false
	}
}

// Mode is either a two-player game or a game against the computer at some difficulty.
// The zero value is a game against the computer on Easy.
type Mode struct {
	twoPlayer  bool
	difficulty Difficulty
}

func TwoPlayer() Mode {
	return Mode{twoPlayer: true}
}

func AI(difficulty Difficulty) Mode {
	return Mode{difficulty: difficulty}
}

// IsAI reports whether a computer opponent answers each move.
func (that Mode) IsAI() bool {
	return !that.twoPlayer
}

// Difficulty returns the opponent strength; ok is false in two-player mode.
func (that Mode) Difficulty() (Difficulty, bool) {
	if that.twoPlayer {
		return 0, false
	}
	return that.difficulty, true
}

func (that Mode) String() string {
	if that.twoPlayer {
		return TwoPlayerName
	}
	return that.difficulty.String()
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "Easy", "easy":
		return AI(Easy), nil
	case "Medium", "medium":
		return AI(Medium), nil
	case "Hard", "hard":
		return AI(Hard), nil
	case "Impossible", "impossible":
		return AI(Impossible), nil
	case TwoPlayerName, "two-player", "2p":
		return TwoPlayer(), nil
	default:
		return Mode{}, fmt.Errorf("%w: %q", apperror.ErrInvalidMode, s)
	}
}

func (that Mode) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*that = mode
	return nil
}
