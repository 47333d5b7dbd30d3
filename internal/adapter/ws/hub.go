package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"outpost/internal/app/ports"
)

// Message is what clients receive: either a bus event or the initial state.
type Message struct {
	Type  string       `json:"type"`
	Event *ports.Event `json:"event,omitempty"`
	State any          `json:"state,omitempty"`
}

// Subscribe is the only message clients send. An empty list means all topics.
type Subscribe struct {
	Topics []string `json:"topics"`
}

type client struct {
	id     uint64
	send   chan []byte
	mu     sync.RWMutex
	topics map[string]bool
}

func (c *client) wants(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.topics) == 0 || c.topics[topic]
}

func (c *client) setTopics(list []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = map[string]bool{}
	for _, t := range list {
		c.topics[t] = true
	}
}

// Hub fans bus events out to websocket clients. Slow clients lose messages
// instead of stalling the game.
type Hub struct {
	log      *zap.Logger
	state    func() any
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	dropped  atomic.Uint64

	mu      sync.RWMutex
	clients map[uint64]*client
}

// NewHub takes state, called once per new connection to send the current view.
func NewHub(state func() any, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		log:   logger,
		state: state,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: map[uint64]*client{},
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Broadcast matches the session listener signature.
func (h *Hub) Broadcast(e ports.Event) {
	b, err := json.Marshal(Message{Type: "event", Event: &e})
	if err != nil {
		h.log.Warn("ws encode failed", zap.String("topic", e.Topic), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if !c.wants(e.Topic) {
			continue
		}
		select {
		case c.send <- b:
		default:
			h.dropped.Add(1)
		}
	}
}

func (h *Hub) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := &client{id: h.nextID.Add(1), send: make(chan []byte, 256)}
	if h.state != nil {
		if b, err := json.Marshal(Message{Type: "state", State: h.state()}); err == nil {
			c.send <- b
		}
	}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.log.Debug("ws client joined", zap.Uint64("client", c.id))
	defer func() {
		h.mu.Lock()
		delete(h.clients, c.id)
		h.mu.Unlock()
		h.log.Debug("ws client left", zap.Uint64("client", c.id))
	}()

	done := make(chan struct{})
	writeErr := make(chan error, 1)
	go func() {
		for {
			select {
			case <-done:
				writeErr <- nil
				return
			case b := <-c.send:
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					writeErr <- err
					return
				}
			}
		}
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var sub Subscribe
		if err := json.Unmarshal(msg, &sub); err != nil {
			continue
		}
		c.setTopics(sub.Topics)
	}

	close(done)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
}
