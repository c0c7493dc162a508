package minimax

import (
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
)

const (
	// NoMove is returned as the move when the board is already decided.
	NoMove = -1

	winScore = 10

	// depthGuessStep raises the blunder chance for every ply already searched.
	depthGuessStep = 0.01
)

// Result is the chosen cell and its score. Scores only compare between siblings
// of the same search, not across searches with a different depth penalty setting.
type Result struct {
	Move  int `json:"cell"`
	Score int `json:"score"`
}

// Selector picks moves by exhaustive minimax search with optional random blunders.
type Selector struct {
	aiMark entity.Mark
	rnd    RandSource
}

type Option func(*Selector)

// WithRandSource replaces the frand source, mostly for tests.
func WithRandSource(rnd RandSource) Option {
	return func(s *Selector) {
		s.rnd = rnd
	}
}

// WithAIMark sets the mark the search maximizes for. Defaults to O.
func WithAIMark(mark entity.Mark) Option {
	return func(s *Selector) {
		s.aiMark = mark
	}
}

func NewSelector(opts ...Option) *Selector {
	selector := &Selector{
		aiMark: entity.PlayerO,
		rnd:    NewRandSource(),
	}

	for _, opt := range opts {
		opt(selector)
	}

	return selector
}

func (that *Selector) AIMark() entity.Mark {
	return that.aiMark
}

// SelectMove searches every continuation of board with mover to play.
// The board is taken by value, so the caller's copy is never changed.
// mover must be X or O.
func (that *Selector) SelectMove(board entity.Board, mover entity.Mark, difficulty entity.Difficulty, useDepthPenalty bool) Result {
	return that.search(board, mover, difficulty, useDepthPenalty, 0)
}

func (that *Selector) search(board entity.Board, mover entity.Mark, difficulty entity.Difficulty, useDepthPenalty bool, depth int) Result {
	if outcome := tictactoe.Evaluate(board); outcome.IsTerminal() {
		return Result{Move: NoMove, Score: that.leafScore(outcome, depth, useDepthPenalty)}
	}

	moves := board.EmptyCells()
	scores := make([]int, len(moves))
	for i, cell := range moves {
		scores[i] = that.search(board.With(cell, mover), mover.Opponent(), difficulty, useDepthPenalty, depth+1).Score
	}

	if that.shouldGuess(difficulty, depth) {
		guess := that.rnd.Intn(len(moves))
		return Result{Move: moves[guess], Score: scores[guess]}
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if mover == that.aiMark && scores[i] > scores[best] ||
			mover != that.aiMark && scores[i] < scores[best] {
			best = i
		}
	}

	return Result{Move: moves[best], Score: scores[best]}
}

func (that *Selector) leafScore(outcome entity.Outcome, depth int, useDepthPenalty bool) int {
	if !useDepthPenalty {
		depth = 0
	}

	switch {
	case outcome.IsWin() && outcome.Winner == that.aiMark:
		return winScore - depth
	case outcome.IsWin():
		return depth - winScore
	default:
		return 0
	}
}

// shouldGuess draws once from the source when the difficulty blunders at all.
func (that *Selector) shouldGuess(difficulty entity.Difficulty, depth int) bool {
	chance, ok := GuessChance(difficulty, depth)
	if !ok {
		return false
	}

	return that.rnd.Float64() < chance
}

// GuessChance is the probability of a random pick at the given search depth.
func GuessChance(difficulty entity.Difficulty, depth int) (float64, bool) {
	base, ok := difficulty.GuessProbability()
	if !ok {
		return 0, false
	}

	return base + depthGuessStep*float64(depth), true
}
