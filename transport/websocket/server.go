package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/minimax"
)

const (
	sendBufferSize  = 16
	shutdownTimeout = 5 * time.Second
)

type uGame interface {
	NewGame(ctx context.Context, mode entity.Mode) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)

	MakeTurn(ctx context.Context, id string, cell int) (*entity.Game, error)
	JumpTo(ctx context.Context, id string, step int) (*entity.Game, error)
	ChangeMode(ctx context.Context, id string, mode entity.Mode) (*entity.Game, error)
	Restart(ctx context.Context, id string) (*entity.Game, error)

	SuggestMove(board entity.Board, mover entity.Mark, mode entity.Mode) (minimax.Result, error)
}

type handlerFunc func(ctx context.Context, payload *Payload) (ResponsePayload, error)

type Server struct {
	logger      *slog.Logger
	uGame       uGame
	defaultMode entity.Mode
	upgrader    websocket.Upgrader

	// a peer that sends nothing, not even a pong, for this long is dropped
	pongWait time.Duration

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, uGame uGame, defaultMode entity.Mode) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		uGame:       uGame,
		defaultMode: defaultMode,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		pongWait: 3 * idlePingInterval,

		handlers: make(map[string]handlerFunc),
	}

	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:get"] = server.handleGetGame
	server.handlers["game:turn"] = server.handleGameTurn
	server.handlers["game:jump"] = server.handleJump
	server.handlers["game:mode"] = server.handleMode
	server.handlers["game:restart"] = server.handleRestart
	server.handlers["move:suggest"] = server.handleSuggestMove

	return server
}

// Handler - serves the /ws endpoint. ctx closes every open connection when canceled.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
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

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	if err = that.extendReadDeadline(conn); err != nil {
		log.Error("failed to set read deadline", "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return that.extendReadDeadline(conn)
	})

	send := make(chan []byte, sendBufferSize)
	done := make(chan struct{})

	go func() {
		defer close(done)

		if err := writeWithHeartbeat(conn, send); err != nil {
			log.Debug("writer stopped", "error", err)
		}
	}()

	if err = that.handleMessages(ctx, conn, send, done); err != nil {
		log.Error("error handling messages", "error", err)
	}

	close(send)
	<-done
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, send chan<- []byte, done <-chan struct{}) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || ctx.Err() != nil {
				return nil
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				that.logger.Debug("peer went silent, closing", "remote", conn.RemoteAddr().String())
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		if err = that.extendReadDeadline(conn); err != nil {
			return fmt.Errorf("failed to set read deadline: %w", err)
		}

		response := that.processMessage(ctx, data)

		select {
		case send <- response:
		case <-done:
			return nil
		}
	}
}

func (that *Server) extendReadDeadline(conn *websocket.Conn) error {
	return conn.SetReadDeadline(time.Now().Add(that.pongWait))
}
