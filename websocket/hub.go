package websocket

import (
	"context"
	"sync"

	"github.com/anjiri1684/tutor_marketplace/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultClientBuffer  = 32
	defaultPublishBuffer = 256
)

// Conn is the write side of a websocket connection.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Envelope is the frame pushed to clients.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type Client struct {
	UserID uuid.UUID
	conn   Conn

	mu     sync.Mutex
	send   chan Envelope
	closed bool

	closeOnce sync.Once
}

type delivery struct {
	userID   uuid.UUID
	envelope Envelope
}

// Hub routes events to every live connection of a user. One goroutine (Run)
// owns the client registry; each client has its own writer goroutine so a
// slow socket never stalls the others.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	publish    chan delivery
	done       chan struct{}
	clients    map[uuid.UUID]map[*Client]struct{}

	mu     sync.RWMutex
	online map[uuid.UUID]int
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan delivery, defaultPublishBuffer),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		online:     make(map[uuid.UUID]int),
	}
}

// Run processes registrations and deliveries until ctx is cancelled, then
// closes every connection. Run must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					h.drop(c)
				}
			}
			return
		case c := <-h.register:
			set, ok := h.clients[c.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.UserID] = set
			}
			set[c] = struct{}{}
			h.setOnline(c.UserID, len(set))
			metrics.RealtimeConnections.Inc()
			log.Debug().Str("user_id", c.UserID.String()).Msg("websocket client registered")
		case c := <-h.unregister:
			if set, ok := h.clients[c.UserID]; ok {
				if _, ok := set[c]; ok {
					h.drop(c)
				}
			}
		case d := <-h.publish:
			for c := range h.clients[d.userID] {
				if !c.enqueue(d.envelope) {
					log.Warn().Str("user_id", d.userID.String()).Str("event", d.envelope.Event).Msg("websocket client buffer full, dropping event")
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	set := h.clients[c.UserID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	h.setOnline(c.UserID, len(set))
	metrics.RealtimeConnections.Dec()
	c.closeSend()
	log.Debug().Str("user_id", c.UserID.String()).Msg("websocket client unregistered")
}

func (h *Hub) setOnline(userID uuid.UUID, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n == 0 {
		delete(h.online, userID)
		return
	}
	h.online[userID] = n
}

// Online reports whether userID has at least one live connection.
func (h *Hub) Online(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.online[userID] > 0
}

// Register attaches conn to userID and starts its writer. The returned client
// must be passed to Unregister when the connection ends. Once the hub has
// stopped, the connection is closed straight away.
func (h *Hub) Register(userID uuid.UUID, conn Conn) *Client {
	c := &Client{UserID: userID, conn: conn, send: make(chan Envelope, defaultClientBuffer)}
	go c.writePump()
	select {
	case h.register <- c:
	case <-h.done:
		c.closeSend()
	}
	return c
}

// Unregister detaches c. It returns immediately when the hub has stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues event for every connection on channel, a user id string.
// It never blocks; events are dropped when the hub is saturated.
func (h *Hub) Publish(channel, event string, payload any) {
	userID, err := uuid.Parse(channel)
	if err != nil {
		log.Warn().Str("channel", channel).Msg("publish to invalid channel")
		return
	}
	select {
	case h.publish <- delivery{userID: userID, envelope: Envelope{Event: event, Payload: payload}}:
	default:
		metrics.RealtimeDropped.Inc()
		log.Warn().Str("event", event).Msg("websocket hub saturated, dropping event")
	}
}

// Reply queues a frame for one client only. Frames for a client the hub has
// already dropped are discarded.
func (c *Client) Reply(event string, payload any) {
	c.enqueue(Envelope{Event: event, Payload: payload})
}

// enqueue hands env to the writer without blocking. It reports false when the
// buffer is full or the client is closed.
func (c *Client) enqueue(env Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- env:
		return true
	default:
		metrics.RealtimeDropped.Inc()
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) writePump() {
	defer c.closeConn()
	for env := range c.send {
		if err := c.conn.WriteJSON(env); err != nil {
			log.Debug().Err(err).Str("user_id", c.UserID.String()).Msg("websocket write failed")
			// closing unblocks the reader, which unregisters the client
			c.closeConn()
			for range c.send {
			}
			return
		}
	}
}

func (c *Client) closeConn() {
	c.closeOnce.Do(func() { _ = c.conn.Close() })
}
