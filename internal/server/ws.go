package server

import (
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// event is the WebSocket push message. Clients re-fetch /api/graph on
// graph-changed; settled tells them the layout is at rest.
type event struct {
	Type  string        `json:"type"` // "graph-changed" | "settled"
	Stats statsResponse `json:"stats"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API is same-process with its canvas clients; no cross-origin
	// restriction is enforced here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub fans events out to all connected WebSocket clients. Slow or dead
// clients are dropped instead of blocking the broadcast.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  *log.Logger
}

type client struct {
	conn *websocket.Conn
	send chan event
}

func newHub(logger *log.Logger) *hub {
	return &hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *hub) broadcast(ev event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			// Send buffer full: the client is not keeping up. Drop it.
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan event, 16)}
	s.hub.add(c)
	s.logger.Debug("websocket client connected", "remote", conn.RemoteAddr())

	go s.writeLoop(c)
	s.readLoop(c)
}

// writeLoop drains the client's send channel onto the wire. It exits when
// the hub closes the channel or a write fails.
func (s *Server) writeLoop(c *client) {
	defer c.conn.Close()
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			s.hub.remove(c)
			return
		}
	}
}

// readLoop consumes (and discards) client frames so pings and close frames
// are processed, unregistering the client on disconnect.
func (s *Server) readLoop(c *client) {
	defer func() {
		s.hub.remove(c)
		c.conn.Close()
		s.logger.Debug("websocket client disconnected", "remote", c.conn.RemoteAddr())
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
