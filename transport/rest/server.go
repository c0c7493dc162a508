package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/minimax"
)

const shutdownTimeout = 5 * time.Second

type uGame interface {
	NewGame(ctx context.Context, mode entity.Mode) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error

	MakeTurn(ctx context.Context, id string, cell int) (*entity.Game, error)
	JumpTo(ctx context.Context, id string, step int) (*entity.Game, error)
	ChangeMode(ctx context.Context, id string, mode entity.Mode) (*entity.Game, error)
	Restart(ctx context.Context, id string) (*entity.Game, error)

	SuggestMove(board entity.Board, mover entity.Mark, mode entity.Mode) (minimax.Result, error)
}

type Server struct {
	logger      *slog.Logger
	uGame       uGame
	defaultMode entity.Mode
}

func New(logger *slog.Logger, uGame uGame, defaultMode entity.Mode) *Server {
	return &Server{
		logger:      logger.With("component", "rest"),
		uGame:       uGame,
		defaultMode: defaultMode,
	}
}

// Router - builds the HTTP routes.
func (that *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(that.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/evaluate", that.handleEvaluate)
		r.Post("/move", that.handleMove)

		r.Post("/games", that.handleNewGame)
		r.Route("/games/{id}", func(r chi.Router) {
			r.Get("/", that.handleGetGame)
			r.Delete("/", that.handleDeleteGame)
			r.Post("/turn", that.handleTurn)
			r.Post("/jump", that.handleJump)
			r.Post("/mode", that.handleMode)
			r.Post("/restart", that.handleRestart)
		})
	})

	return r
}

// Start - serves HTTP until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		that.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
