package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/particlehands/internal/app"
	"github.com/ayusman/particlehands/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// sendBuffer is how many frames may queue per client before frames drop.
	sendBuffer = 4
	writeWait  = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans simulated frames out to WebSocket clients. A slow client drops
// frames rather than stalling the frame loop.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[string]*client
	closed  bool
	dropped uint64
}

// NewHub creates a Hub. A nil logger discards logs.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logging.OrNop(logger).Named("hub"),
		clients: make(map[string]*client),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many frames were dropped for slow clients.
func (h *Hub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Broadcast encodes f once and queues it for every client. It never blocks.
func (h *Hub) Broadcast(f app.Frame) {
	h.mu.RLock()
	if len(h.clients) == 0 {
		h.mu.RUnlock()
		return
	}
	h.mu.RUnlock()

	msg, err := EncodeFrame(f)
	if err != nil {
		h.logger.Warn("encode frame", zap.Error(err))
		return
	}

	var dropped uint64
	h.mu.RLock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			dropped++
		}
	}
	h.mu.RUnlock()

	if dropped > 0 {
		h.mu.Lock()
		h.dropped += dropped
		h.mu.Unlock()
	}
}

// ServeHTTP upgrades the request and streams frames until the client leaves
// or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade", zap.Error(err))
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(c) {
		conn.Close()
		return
	}
	h.logger.Info("client connected", zap.String("client", c.id), zap.String("remote", r.RemoteAddr))

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(c)
	}()

	// Reads only detect disconnects; clients send nothing meaningful.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	<-done
	conn.Close()
	h.logger.Info("client disconnected", zap.String("client", c.id))
}

func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			h.logger.Debug("write frame", zap.String("client", c.id), zap.Error(err))
			// Unblock the reader.
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	// Stop waiting for the peer's close reply after writeWait.
	c.conn.SetReadDeadline(time.Now().Add(writeWait))
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

// remove closes the client's queue once. It is safe to call after Close.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
}
