package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/minimax"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository"
	"github.com/rocketscienceinc/tictactoe-ai/internal/service"
)

const (
	x = entity.PlayerX
	o = entity.PlayerO
	e = entity.Empty
)

var (
	errBotBroken     = errors.New("bot is broken")
	errStorageIsFull = errors.New("storage is full")
)

type mockBot struct {
	mock.Mock
}

func (that *mockBot) ChooseMove(board entity.Board, botMark entity.Mark, mode entity.Mode) (minimax.Result, error) {
	args := that.Called(board, botMark, mode)
	return args.Get(0).(minimax.Result), args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	return that.Called(ctx, game).Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	return that.Called(ctx, id).Error(0)
}

// lastPick never blunders and always takes the last candidate.
type lastPick struct{}

func (lastPick) Float64() float64 { return 0.999 }
func (lastPick) Intn(n int) int   { return n - 1 }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newManager(bot botService) (*GameManager, repository.GameRepository) {
	repo := repository.NewMemoryGameRepository(time.Hour)
	return NewGameManager(discardLogger(), repo, bot), repo
}

func storeGame(t *testing.T, repo repository.GameRepository, game *entity.Game) {
	t.Helper()
	require.NoError(t, repo.CreateOrUpdate(context.Background(), game))
}

func TestGameManager_NewGame(t *testing.T) {
	ctx := context.Background()
	manager, repo := newManager(&mockBot{})

	// When: a new game is started
	game, err := manager.NewGame(ctx, entity.AI(entity.Hard))

	// Then: it is stored with an empty board
	require.NoError(t, err)
	assert.NotEmpty(t, game.ID)

	stored, err := repo.GetByID(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, game, stored)
	assert.Equal(t, entity.Board{}, stored.Current())
}

func TestGameManager_NewGame_StorageError(t *testing.T) {
	repo := &mockGameRepo{}
	repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(errStorageIsFull).Once()
	manager := NewGameManager(discardLogger(), repo, &mockBot{})

	_, err := manager.NewGame(context.Background(), entity.TwoPlayer())

	require.ErrorIs(t, err, errStorageIsFull)
	repo.AssertExpectations(t)
}

func TestGameManager_MakeTurn_TwoPlayer(t *testing.T) {
	ctx := context.Background()
	bot := &mockBot{}
	manager, _ := newManager(bot)

	game, err := manager.NewGame(ctx, entity.TwoPlayer())
	require.NoError(t, err)

	// When: X and then O move
	game, err = manager.MakeTurn(ctx, game.ID, 4)
	require.NoError(t, err)
	assert.False(t, game.XIsNext)

	game, err = manager.MakeTurn(ctx, game.ID, 0)
	require.NoError(t, err)

	// Then: each move is its own step and the bot was never asked
	assert.Equal(t, entity.Board{
		o, e, e,
		e, x, e,
		e, e, e,
	}, game.Current())
	assert.Len(t, game.History, 3)
	assert.True(t, game.XIsNext)
	bot.AssertNotCalled(t, "ChooseMove", mock.Anything, mock.Anything, mock.Anything)
}

func TestGameManager_MakeTurn_AI(t *testing.T) {
	ctx := context.Background()

	t.Run("Bot reply is added to the same step", func(t *testing.T) {
		// Given: a bot that answers on cell 8
		bot := &mockBot{}
		manager, _ := newManager(bot)
		game, err := manager.NewGame(ctx, entity.AI(entity.Medium))
		require.NoError(t, err)

		expectedBoard := entity.Board{}.With(0, x)
		bot.On("ChooseMove", expectedBoard, o, entity.AI(entity.Medium)).
			Return(minimax.Result{Move: 8, Score: 0}, nil).
			Once()

		// When: the human plays cell 0
		game, err = manager.MakeTurn(ctx, game.ID, 0)

		// Then: both marks land in one new step and X stays to move
		require.NoError(t, err)
		assert.Equal(t, expectedBoard.With(8, o), game.Current())
		assert.Len(t, game.History, 2)
		assert.Equal(t, 1, game.StepNum)
		assert.True(t, game.XIsNext)
		bot.AssertExpectations(t)
	})

	t.Run("Bot does not move after the human wins", func(t *testing.T) {
		// Given: X can finish the top row
		bot := &mockBot{}
		manager, repo := newManager(bot)
		storeGame(t, repo, &entity.Game{
			ID: "1",
			History: []entity.Board{{}, {
				x, x, e,
				o, o, e,
				e, e, e,
			}},
			StepNum: 1,
			XIsNext: true,
			Mode:    entity.AI(entity.Impossible),
		})

		// When: X completes the row
		game, err := manager.MakeTurn(ctx, "1", 2)

		// Then: the game is over and the bot stayed quiet
		require.NoError(t, err)
		assert.Equal(t, "Winner: X", Status(game))
		bot.AssertNotCalled(t, "ChooseMove", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Impossible bot blocks with the real search", func(t *testing.T) {
		// Given: the real bot service and X threatening the top row
		bot := service.NewBotService(discardLogger(), lastPick{})
		manager, repo := newManager(bot)
		storeGame(t, repo, &entity.Game{
			ID: "1",
			History: []entity.Board{{}, {
				x, e, e,
				e, o, e,
				e, e, e,
			}},
			StepNum: 1,
			XIsNext: true,
			Mode:    entity.AI(entity.Impossible),
		})

		// When: X takes cell 1
		game, err := manager.MakeTurn(ctx, "1", 1)

		// Then: O blocks on cell 2
		require.NoError(t, err)
		assert.Equal(t, o, game.Current()[2])
	})

	t.Run("Bot error is returned", func(t *testing.T) {
		bot := &mockBot{}
		manager, _ := newManager(bot)
		game, err := manager.NewGame(ctx, entity.AI(entity.Hard))
		require.NoError(t, err)

		bot.On("ChooseMove", mock.Anything, o, entity.AI(entity.Hard)).
			Return(minimax.Result{}, errBotBroken).
			Once()

		_, err = manager.MakeTurn(ctx, game.ID, 4)

		require.ErrorIs(t, err, errBotBroken)
	})
}

func TestGameManager_MakeTurn_Errors(t *testing.T) {
	ctx := context.Background()
	manager, repo := newManager(&mockBot{})

	storeGame(t, repo, &entity.Game{
		ID:      "ongoing",
		History: []entity.Board{entity.Board{}.With(4, x)},
		XIsNext: false,
		Mode:    entity.TwoPlayer(),
	})
	storeGame(t, repo, &entity.Game{
		ID: "finished",
		History: []entity.Board{{
			x, x, x,
			o, o, e,
			e, e, e,
		}},
		Mode: entity.TwoPlayer(),
	})

	t.Run("Occupied cell", func(t *testing.T) {
		game, err := manager.MakeTurn(ctx, "ongoing", 4)

		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Nil(t, game)

		stored, err := repo.GetByID(ctx, "ongoing")
		require.NoError(t, err)
		assert.Len(t, stored.History, 1)
	})

	t.Run("Cell out of range", func(t *testing.T) {
		game, err := manager.MakeTurn(ctx, "ongoing", 9)

		require.ErrorIs(t, err, apperror.ErrInvalidCell)
		assert.Nil(t, game)
	})

	t.Run("Finished game", func(t *testing.T) {
		game, err := manager.MakeTurn(ctx, "finished", 5)

		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Nil(t, game)
	})

	t.Run("Unknown game", func(t *testing.T) {
		_, err := manager.MakeTurn(ctx, "missing", 0)

		require.ErrorIs(t, err, repository.ErrGameNotFound)
	})
}

func TestGameManager_JumpTo(t *testing.T) {
	ctx := context.Background()
	manager, _ := newManager(&mockBot{})

	game, err := manager.NewGame(ctx, entity.TwoPlayer())
	require.NoError(t, err)
	for _, cell := range []int{0, 1, 2} {
		game, err = manager.MakeTurn(ctx, game.ID, cell)
		require.NoError(t, err)
	}

	t.Run("Jump keeps history until the next move", func(t *testing.T) {
		game, err = manager.JumpTo(ctx, game.ID, 1)
		require.NoError(t, err)

		assert.Equal(t, 1, game.StepNum)
		assert.Len(t, game.History, 4)
		assert.False(t, game.XIsNext)
		assert.Equal(t, "Next player: O", Status(game))
	})

	t.Run("Move after jump replaces later steps", func(t *testing.T) {
		game, err = manager.MakeTurn(ctx, game.ID, 8)
		require.NoError(t, err)

		assert.Len(t, game.History, 3)
		assert.Equal(t, entity.Board{}.With(0, x).With(8, o), game.Current())
	})

	t.Run("Invalid step", func(t *testing.T) {
		jumped, err := manager.JumpTo(ctx, game.ID, 10)

		require.ErrorIs(t, err, apperror.ErrInvalidStep)
		assert.Nil(t, jumped)
	})
}

func TestGameManager_ChangeModeAndRestart(t *testing.T) {
	ctx := context.Background()
	manager, _ := newManager(&mockBot{})

	game, err := manager.NewGame(ctx, entity.TwoPlayer())
	require.NoError(t, err)
	game, err = manager.MakeTurn(ctx, game.ID, 0)
	require.NoError(t, err)

	t.Run("Restart keeps the mode", func(t *testing.T) {
		game, err = manager.Restart(ctx, game.ID)
		require.NoError(t, err)

		assert.Equal(t, []entity.Board{{}}, game.History)
		assert.Equal(t, entity.TwoPlayer(), game.Mode)
	})

	t.Run("Mode change starts over", func(t *testing.T) {
		game, err = manager.MakeTurn(ctx, game.ID, 0)
		require.NoError(t, err)

		game, err = manager.ChangeMode(ctx, game.ID, entity.AI(entity.Impossible))
		require.NoError(t, err)

		assert.Equal(t, []entity.Board{{}}, game.History)
		assert.Equal(t, entity.AI(entity.Impossible), game.Mode)
		assert.True(t, game.XIsNext)
	})
}

func TestGameManager_DeleteGame(t *testing.T) {
	ctx := context.Background()
	manager, repo := newManager(&mockBot{})
	game, err := manager.NewGame(ctx, entity.AI(entity.Easy))
	require.NoError(t, err)

	require.NoError(t, manager.DeleteGame(ctx, game.ID))

	_, err = repo.GetByID(ctx, game.ID)
	require.ErrorIs(t, err, repository.ErrGameNotFound)
}

func TestGameManager_SuggestMove(t *testing.T) {
	manager, _ := newManager(service.NewBotService(discardLogger(), lastPick{}))

	t.Run("Stateless move for O", func(t *testing.T) {
		board := entity.Board{
			x, x, e,
			o, o, e,
			e, e, e,
		}

		result, err := manager.SuggestMove(board, o, entity.AI(entity.Impossible))

		require.NoError(t, err)
		assert.Equal(t, 5, result.Move)
	})

	t.Run("Two player mode has no suggestion", func(t *testing.T) {
		_, err := manager.SuggestMove(entity.Board{}, o, entity.TwoPlayer())

		require.ErrorIs(t, err, apperror.ErrNoBotInMode)
	})
}

func TestNewGameView(t *testing.T) {
	t.Run("Draw shows the restart button", func(t *testing.T) {
		game := &entity.Game{
			ID: "1",
			History: []entity.Board{{}, {
				x, o, x,
				x, o, o,
				o, x, x,
			}},
			StepNum: 1,
			XIsNext: true,
			Mode:    entity.AI(entity.Hard),
		}

		view := NewGameView(game)

		assert.Equal(t, "Draw", view.Status)
		assert.Equal(t, "draw", view.Outcome)
		assert.True(t, view.Restart)
		assert.Equal(t, []StepView{
			{Step: 0, Label: "Game Start"},
			{Step: 1, Label: "Step 1"},
		}, view.Steps)
	})

	t.Run("Ongoing game shows the next player", func(t *testing.T) {
		game := entity.NewGame("1", entity.TwoPlayer())

		view := NewGameView(game)

		assert.Equal(t, "Next player: X", view.Status)
		assert.Equal(t, "none", view.Outcome)
		assert.False(t, view.Restart)
		assert.Equal(t, entity.Empty, view.Winner)
	})
}

// slowRepo widens the gap between reading a game and writing it back.
type slowRepo struct {
	repository.GameRepository
	delay time.Duration
}

func (that *slowRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	time.Sleep(that.delay)
	return that.GameRepository.GetByID(ctx, id)
}

func TestGameManager_ConcurrentTurns(t *testing.T) {
	ctx := context.Background()

	// Given: a two player game behind a slow store
	repo := &slowRepo{GameRepository: repository.NewMemoryGameRepository(time.Hour), delay: 5 * time.Millisecond}
	manager := NewGameManager(discardLogger(), repo, &mockBot{})

	game, err := manager.NewGame(ctx, entity.TwoPlayer())
	require.NoError(t, err)

	// When: two turns arrive at the same time
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, cell := range []int{0, 8} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = manager.MakeTurn(ctx, game.ID, cell)
		}()
	}
	wg.Wait()

	// Then: both moves are kept, one after the other
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	stored, err := repo.GetByID(ctx, game.ID)
	require.NoError(t, err)

	board := stored.Current()
	assert.Len(t, stored.History, 3)
	assert.True(t, stored.XIsNext)
	assert.NotEqual(t, e, board[0])
	assert.NotEqual(t, e, board[8])
	assert.NotEqual(t, board[0], board[8])
	assert.Zero(t, manager.locks.size())
}

func TestGameLocks(t *testing.T) {
	locks := newGameLocks()

	t.Run("Same id waits", func(t *testing.T) {
		unlock := locks.lock("a")

		acquired := make(chan struct{})
		go func() {
			locks.lock("a")()
			close(acquired)
		}()

		select {
		case <-acquired:
			t.Fatal("second lock acquired while the first is held")
		case <-time.After(20 * time.Millisecond):
		}

		unlock()
		<-acquired
		assert.Zero(t, locks.size())
	})

	t.Run("Different ids do not block", func(t *testing.T) {
		unlockA := locks.lock("a")
		unlockB := locks.lock("b")

		assert.Equal(t, 2, locks.size())

		unlockB()
		unlockA()
		assert.Zero(t, locks.size())
	})
}
