// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jontk/squeue-ocel/pkg/logging"
)

// SSEServer exposes a Bus's RoundEvents over Server-Sent Events, for UI
// clients that prefer a plain HTTP stream over a WebSocket upgrade.
// Connecting subscribes the client to every "squeue-rows" update until it
// disconnects — there is no request format, since there is only one
// stream to subscribe to.
type SSEServer struct {
	bus    *Bus
	logger logging.Logger
}

// NewSSEServer wraps bus for SSE delivery.
func NewSSEServer(bus *Bus, opts ...SSEOption) *SSEServer {
	s := &SSEServer{bus: bus, logger: logging.NoOpLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SSEOption configures an SSEServer.
type SSEOption func(*SSEServer)

// WithSSELogger attaches a logger for connection diagnostics.
func WithSSELogger(l logging.Logger) SSEOption {
	return func(s *SSEServer) { s.logger = l }
}

// HandleSSE streams RoundEvents to r as Server-Sent Events until the
// client disconnects or the request context is cancelled.
func (s *SSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	_, events, unsubscribe := s.bus.Subscribe()
	defer unsubscribe()

	writeSSEEvent(w, flusher, "connected", map[string]string{"stream": streamSqueueRows, "status": "connected"})

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				writeSSEEvent(w, flusher, "stream_closed", map[string]string{"stream": streamSqueueRows, "status": "closed"})
				return
			}
			writeSSEEvent(w, flusher, "squeue-rows", ev)
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) {
	fmt.Fprintf(w, "event: %s\n", event)

	payload, err := json.Marshal(data)
	if err != nil {
		fmt.Fprint(w, "data: {\"error\": \"failed to marshal data\"}\n\n")
	} else {
		fmt.Fprintf(w, "data: %s\n\n", payload)
	}

	flusher.Flush()
}
