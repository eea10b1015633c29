package webui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SafeConn wraps a WebSocket connection with write mutex and panic recovery
type SafeConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  bool
}

// NewSafeConn creates a new safe connection wrapper
func NewSafeConn(conn *websocket.Conn) *SafeConn {
	return &SafeConn{conn: conn}
}

// WriteJSON writes v unless the connection is closed.
func (sc *SafeConn) WriteJSON(v interface{}) (err error) {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()

	if sc.closed {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			sc.closed = true
			err = fmt.Errorf("websocket write panic: %v", r)
		}
	}()

	return sc.conn.WriteJSON(v)
}

// Close closes the underlying connection
func (sc *SafeConn) Close() error {
	sc.writeMu.Lock()
	sc.closed = true
	sc.writeMu.Unlock()
	return sc.conn.Close()
}

// Underlying returns the underlying websocket.Conn for reads.
func (sc *SafeConn) Underlying() *websocket.Conn {
	return sc.conn
}

// clientMessage is what browsers send: {"type": ..., "data": ...}.
type clientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// handleWebSocket streams view events to one browser.
func (ws *ViewServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			ws.logger.Logf("WebSocket handler panic: %v", rec)
		}
	}()

	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Logf("WebSocket upgrade error: %v", err)
		return
	}

	safeConn := NewSafeConn(conn)
	defer safeConn.Close()

	sessionID := "ws_" + uuid.NewString()
	ws.connections.Store(conn, &ConnectionInfo{
		SessionID:   sessionID,
		ConnectedAt: time.Now(),
	})
	defer ws.connections.Delete(conn)

	// Subscribe before announcing the session so no event published after
	// the client sees connection_status is lost.
	eventCh := ws.eventBus.Subscribe(sessionID)
	defer ws.eventBus.Unsubscribe(sessionID)

	ws.logger.Logf("WebSocket client connected: %s", sessionID)
	safeConn.WriteJSON(map[string]interface{}{
		"type": "connection_status",
		"data": map[string]interface{}{"connected": true, "session_id": sessionID},
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer func() {
			if rec := recover(); rec != nil {
				ws.logger.Logf("WebSocket read goroutine panic recovered: %v", rec)
			}
		}()

		conn.SetReadLimit(4 << 20)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			var msg clientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				var netErr net.Error
				switch {
				case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway),
					websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
					ws.logger.Logf("WebSocket %s closed: %v", sessionID, err)
				case errors.As(err, &netErr) && netErr.Timeout():
					ws.logger.Logf("WebSocket %s timed out", sessionID)
				default:
					ws.logger.Logf("WebSocket %s read error: %v", sessionID, err)
				}
				return
			}

			ws.handleWebSocketMessage(safeConn, msg)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-eventCh:
			if !ok {
				return
			}
			if err := safeConn.WriteJSON(event); err != nil {
				ws.logger.Logf("WebSocket %s write error: %v", sessionID, err)
				return
			}

		case <-readDone:
			return
		}
	}
}

// handleWebSocketMessage processes incoming WebSocket messages
func (ws *ViewServer) handleWebSocketMessage(safeConn *SafeConn, msg clientMessage) {
	switch msg.Type {
	case "ping":
		safeConn.WriteJSON(map[string]interface{}{
			"type": "pong",
			"data": map[string]interface{}{"timestamp": time.Now().Unix()},
		})

	case "envelope":
		// Accepted envelopes come back to every client through the bus.
		if err := ws.Ingest(msg.Data); err != nil {
			safeConn.WriteJSON(map[string]interface{}{
				"type": "error",
				"data": map[string]string{"message": err.Error()},
			})
		}

	case "request_state":
		safeConn.WriteJSON(map[string]interface{}{
			"type": "state",
			"data": ws.snapshot(),
		})
	}
}
