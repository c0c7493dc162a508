package websocket

import (
	"context"
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/minimax"
	"github.com/rocketscienceinc/tictactoe-ai/internal/usecase"
)

const actionError = "error"

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is the union of every request field; each action reads what it needs.
type Payload struct {
	GameID string        `json:"game_id,omitempty"`
	Mode   string        `json:"mode,omitempty"`
	Cell   *int          `json:"cell,omitempty"`
	Step   *int          `json:"step,omitempty"`
	Board  []entity.Mark `json:"board,omitempty"`
	Mover  string        `json:"mover,omitempty"`
}

type ResponsePayload struct {
	Game  *usecase.GameView `json:"game,omitempty"`
	Move  *minimax.Result   `json:"move,omitempty"`
	Error string            `json:"error,omitempty"`
}

// processMessage - dispatches one client message and returns the encoded reply.
func (that *Server) processMessage(ctx context.Context, data []byte) []byte {
	log := that.logger.With("method", "processMessage")

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Error("failed to unmarshal message", "error", err)
		return encodeMessage(actionError, ResponsePayload{Error: "invalid message"})
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Error("unknown action", "action", message.Action)
		return encodeMessage(message.Action, ResponsePayload{Error: "unknown action"})
	}

	var payload Payload
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			log.Error("failed to unmarshal payload", "action", message.Action, "error", err)
			return encodeMessage(message.Action, ResponsePayload{Error: "invalid payload"})
		}
	}

	response, err := handler(ctx, &payload)
	if err != nil {
		log.Error("error processing message", "action", message.Action, "error", err)
		response = ResponsePayload{Error: err.Error()}
	}

	return encodeMessage(message.Action, response)
}

func encodeMessage(action string, payload ResponsePayload) []byte {
	return mustMarshal(Message{
		Action:  action,
		Payload: json.RawMessage(mustMarshal(payload)),
	})
}

func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
