// Command tictactoe-ai serves tic-tac-toe sessions against a minimax opponent
// with four difficulty levels, over REST and WebSocket.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	app "github.com/rocketscienceinc/tictactoe-ai/internal"
	"github.com/rocketscienceinc/tictactoe-ai/internal/config"
)

const configPathEnv = "TICTACTOE_CONFIG"

func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	conf := initConfig()
	logger := initLogger(conf)

	logger.Info("starting tic-tac-toe AI service",
		"http_port", conf.HTTPPort,
		"socket_port", conf.SocketPort,
		"default_mode", conf.DefaultMode,
		"session_store", conf.SessionStore,
	)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initConfig - reads config.yml from the working directory unless TICTACTOE_CONFIG points elsewhere.
func initConfig() *config.Config {
	if path := os.Getenv(configPathEnv); path != "" {
		return config.MustLoad(path)
	}

	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}

	return config.MustLoad(filepath.Join(baseDir, "config.yml"))
}

// initLogger - JSON logs on stdout, info level unless the config asks otherwise.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
