// Package feed broadcasts moderation events to connected operator clients
// over WebSocket. The feed is write-only: client frames are read solely to
// detect disconnects, and a connection that fails a write is dropped.
package feed

import (
	"io"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"

	"github.com/sweeper/mod-bot/internal/metrics"
)

// Event is one moderation action as pushed to feed clients.
type Event struct {
	ActionID  string `json:"action_id"`
	ChatLabel string `json:"chat_label"`
	UserLabel string `json:"user_label"`
	Keyword   string `json:"keyword"`
	Plural    bool   `json:"plural,omitempty"`
	SeenCount int64  `json:"seen_count"`
	Preview   string `json:"preview,omitempty"`
	Ts        int64  `json:"ts"`
}

// Hub tracks connected feed clients and fans events out to them.
type Hub struct {
	mu    sync.Mutex
	conns map[string]net.Conn
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]net.Conn)}
}

// Handler upgrades an HTTP request to a WebSocket feed connection and
// registers it with the hub.
func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		log.Printf("[feed] upgrade failed: %v", err)
		return
	}

	id := uuid.NewString()
	h.add(id, conn)
	log.Printf("[feed] client connected id=%s remote=%s", id, conn.RemoteAddr())

	// Drain client frames until the peer goes away; operators never send
	// anything we act on.
	go func() {
		for {
			if _, _, err := wsutil.ReadClientData(conn); err != nil {
				if err != io.EOF {
					log.Printf("[feed] client id=%s read: %v", id, err)
				}
				h.remove(id)
				return
			}
		}
	}()
}

// Broadcast sends data as a text frame to every connected client,
// dropping clients whose writes fail.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	snapshot := make(map[string]net.Conn, len(h.conns))
	for id, c := range h.conns {
		snapshot[id] = c
	}
	h.mu.Unlock()

	for id, c := range snapshot {
		if err := wsutil.WriteServerText(c, data); err != nil {
			log.Printf("[feed] write to id=%s failed, dropping: %v", id, err)
			h.remove(id)
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]net.Conn)
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	metrics.FeedClients.Set(0)
}

func (h *Hub) add(id string, conn net.Conn) {
	h.mu.Lock()
	h.conns[id] = conn
	h.mu.Unlock()
	metrics.FeedClients.Inc()
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	conn, ok := h.conns[id]
	if ok {
		delete(h.conns, id)
	}
	h.mu.Unlock()

	if ok {
		conn.Close()
		metrics.FeedClients.Dec()
	}
}
