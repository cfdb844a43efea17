// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jontk/squeue-ocel/pkg/logging"
)

// Message is the envelope written to a WebSocket client for every
// "squeue-rows" update. The server only writes messages of Type "event";
// it never sets Error.
type Message struct {
	Type      string     `json:"type"`
	Stream    string     `json:"stream"`
	Data      RoundEvent `json:"data,omitempty"`
	Error     string     `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

const streamSqueueRows = "squeue-rows"

// WebSocketServer exposes a Bus's RoundEvents over a broadcast-only
// WebSocket: unlike the request/response stream protocol it's adapted from,
// a client has nothing to send — connecting subscribes it to every
// "squeue-rows" update until it disconnects.
type WebSocketServer struct {
	bus      *Bus
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewWebSocketServer wraps bus for WebSocket delivery.
func NewWebSocketServer(bus *Bus, opts ...WSOption) *WebSocketServer {
	ws := &WebSocketServer{
		bus: bus,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logging.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(ws)
	}
	return ws
}

// WSOption configures a WebSocketServer.
type WSOption func(*WebSocketServer)

// WithWSLogger attaches a logger for connection diagnostics.
func WithWSLogger(l logging.Logger) WSOption {
	return func(ws *WebSocketServer) { ws.logger = l }
}

// HandleWebSocket upgrades the HTTP connection and streams every
// subsequent RoundEvent published to the Bus until the client disconnects
// or the request context is cancelled.
func (ws *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Warn("websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_, events, unsubscribe := ws.bus.Subscribe()
	defer unsubscribe()

	go ws.detectClientClose(conn, cancel)
	ws.keepAlive(ctx, conn, events)
}

// detectClientClose watches for the client going away (close frame, dropped
// connection) so the subscription and keep-alive loop can unwind promptly.
func (ws *WebSocketServer) detectClientClose(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (ws *WebSocketServer) keepAlive(ctx context.Context, conn *websocket.Conn, events <-chan RoundEvent) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(Message{Type: "event", Stream: streamSqueueRows, Data: ev, Timestamp: time.Now()}); err != nil {
				ws.logger.Warn("websocket write failed", "error", err.Error())
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				ws.logger.Warn("websocket ping failed", "error", err.Error())
				return
			}
		}
	}
}
