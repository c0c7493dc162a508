package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-ai/internal/config"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/minimax"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository"
	"github.com/rocketscienceinc/tictactoe-ai/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-ai/internal/service"
	"github.com/rocketscienceinc/tictactoe-ai/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-ai/transport/rest"
	"github.com/rocketscienceinc/tictactoe-ai/transport/websocket"
)

var ErrUnknownSessionStore = errors.New("unknown session store")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	defaultMode, err := entity.ParseMode(conf.DefaultMode)
	if err != nil {
		return fmt.Errorf("invalid default mode: %w", err)
	}

	gameRepo, closeRepo, err := newGameRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	bot := service.NewBotService(logger, minimax.NewRandSource())
	gameUseCase := usecase.NewGameManager(logger, gameRepo, bot)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, gameUseCase, defaultMode)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameUseCase, defaultMode)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newGameRepository - picks the session store from config. The returned func releases it.
func newGameRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.GameRepository, func(), error) {
	switch conf.SessionStore {
	case config.SessionStoreMemory, "":
		log.Info("Using in-memory session store", "ttl", conf.SessionTTL.String())
		return repository.NewMemoryGameRepository(conf.SessionTTL), func() {}, nil

	case config.SessionStoreRedis:
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr(), conf.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		log.Info("Using redis session store", "addr", conf.Redis.GetRedisAddr(), "ttl", conf.SessionTTL.String())

		closeFn := func() {
			if err := redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}

		return repository.NewGameRepository(redisStorage.Connection, conf.SessionTTL), closeFn, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSessionStore, conf.SessionStore)
}
