package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Conn manages a single viewer WebSocket session
type Conn struct {
	ID     string
	ws     *websocket.Conn
	send   chan []byte
	mu     sync.Mutex // protects send and closed
	closed bool
}

// NewConn creates a new connection wrapper
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ID:   uuid.New().String(),
		ws:   ws,
		send: make(chan []byte, 16),
	}
}

// Enqueue queues data for the write pump. When the queue is full the frame is
// dropped so a slow viewer never stalls the loop.
func (c *Conn) Enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Send serializes msg to JSON and queues it.
func (c *Conn) Send(msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.Enqueue(data)
	return nil
}

// writePump writes queued messages until the connection closes.
func (c *Conn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// Close marks connection closed and stops the write pump.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	c.ws.Close()
}

// ViewerSet tracks connected viewers up to a fixed limit and fans frames out
// to them.
type ViewerSet struct {
	mu    sync.RWMutex
	conns map[string]*Conn
	limit int
}

// NewViewerSet creates an empty set that admits at most limit viewers.
func NewViewerSet(limit int) *ViewerSet {
	return &ViewerSet{conns: make(map[string]*Conn), limit: limit}
}

// Join registers c. Returns false when the set is already full.
func (s *ViewerSet) Join(c *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conns) >= s.limit {
		return false
	}
	s.conns[c.ID] = c
	return true
}

// Leave drops the viewer with the given id.
func (s *ViewerSet) Leave(id string) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// Len returns the number of connected viewers.
func (s *ViewerSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// Broadcast queues data on every viewer and reports how many accepted it.
func (s *ViewerSet) Broadcast(data []byte) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sent := 0
	for _, c := range s.conns {
		if c.Enqueue(data) {
			sent++
		}
	}
	return sent
}

// ReadLoop handles incoming viewer messages until the viewer disconnects.
// Compact protocol: single-char "t" field for message type.
//   "k" = key down/up, "r" = restart
// onMessage is called for every well-formed message.
// onDisconnect is called when the connection closes.
func (c *Conn) ReadLoop(
	log *zap.SugaredLogger,
	onMessage func(conn *Conn, msg ViewerMessage),
	onDisconnect func(conn *Conn),
) {
	defer func() {
		onDisconnect(c)
		c.Close()
	}()

	c.ws.SetReadLimit(4096)
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debugw("viewer read error", "conn", c.ID, "err", err)
			}
			return
		}

		var msg ViewerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Debugw("bad message from viewer", "conn", c.ID, "err", err)
			continue
		}
		onMessage(c, msg)
	}
}
