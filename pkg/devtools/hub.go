package devtools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a single frame write may take before the
// client is considered stalled and dropped.
const writeWait = 10 * time.Second

// StateFrame is one message on a store's live stream.
type StateFrame struct {
	Store   string `json:"store"`
	Initial bool   `json:"initial,omitempty"`
	State   any    `json:"state"`
}

// hub manages the WebSocket connections watching one store.
type hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Inspection tool; all origins allowed
			},
		},
	}
}

// handleWebSocket upgrades the request and keeps the connection
// registered until the client disconnects. onJoin is called with the
// new connection before it starts receiving broadcasts, so the client
// sees a snapshot first.
func (h *hub) handleWebSocket(w http.ResponseWriter, req *http.Request, onJoin func(conn *websocket.Conn)) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	if onJoin != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		onJoin(conn)
	}
	h.clients[conn] = true
	h.mu.Unlock()

	// Keep connection alive until client disconnects. Inbound frames
	// are discarded: the stream is read-only.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// broadcast sends a frame to all connected clients. A client whose
// write errors or overruns the write deadline is dropped; the remaining
// clients keep receiving.
func (h *hub) broadcast(frame StateFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Warn("devtools frame marshal failed", "store", frame.Store, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// closeAll disconnects every client.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
