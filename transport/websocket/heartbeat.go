package websocket

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

const (
	idlePingInterval = 30 * time.Second
	writeWait        = 10 * time.Second
)

// writeWithHeartbeat - the only writer of conn. Sends a ping when nothing was written for a while;
// the pong renews the read deadline on the reading side.
func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(idlePingInterval)
	defer ticker.Stop()

	lastWrite := time.Now()

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return fmt.Errorf("failed to write message: %w", err)
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < idlePingInterval {
				continue
			}

			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("failed to write ping: %w", err)
			}
			lastWrite = time.Now()
		}
	}
}
