package ws

import (
	"net/http"
	"sync"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/screentime-labs/tracker/backend/internal/common/constants"
	"github.com/screentime-labs/tracker/backend/internal/common/logger"
	"github.com/screentime-labs/tracker/backend/internal/observability/metrics"
)

// Event is one live update pushed to dashboard subscribers: either a usage
// report or a day-rollover reset.
type Event struct {
	Type       string `json:"type"`
	WebsiteURL string `json:"website_url"`
	TimeUsed   int    `json:"time_used"`
	TimeLimit  int    `json:"time_limit"`
}

const (
	EventUsage = "usage"
	EventReset = "reset"
)

type client struct {
	conn *gorillaWS.Conn
	send chan Event
}

// Hub fans usage events out to the sockets subscribed to each account.
// A slow consumer loses events instead of blocking the publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*client]struct{}
	log         *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*client]struct{}),
		log:         log,
	}
}

func (h *Hub) Publish(accountID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.subscribers[accountID] {
		select {
		case c.send <- event:
		default:
		}
	}
}

func (h *Hub) Subscribers(accountID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[accountID])
}

func (h *Hub) add(accountID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[accountID] == nil {
		h.subscribers[accountID] = make(map[*client]struct{})
	}
	h.subscribers[accountID][c] = struct{}{}
	metrics.UsageFeedConnections.Inc()
}

func (h *Hub) remove(accountID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.subscribers[accountID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.subscribers, accountID)
	}
	metrics.UsageFeedConnections.Dec()
}

// Serve upgrades the request and streams events for accountID until the
// peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, accountID string) {
	upgrader := gorillaWS.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("usage feed upgrade failed: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan Event, constants.WSSendBufferSize),
	}
	h.add(accountID, c)

	go h.writePump(accountID, c)
	go h.readPump(accountID, c)
}

func (h *Hub) writePump(accountID string, c *client) {
	ticker := time.NewTicker(constants.WSPingPeriod)
	defer func() {
		ticker.Stop()
		h.remove(accountID, c)
		c.conn.Close()
	}()

	for {
		select {
		case event := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WSWriteWait))
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WSWriteWait))
			if err := c.conn.WriteMessage(gorillaWS.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains and discards client frames; the feed is one-way. It also
// notices the peer closing the socket.
func (h *Hub) readPump(accountID string, c *client) {
	defer func() {
		h.remove(accountID, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(constants.WSPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(constants.WSPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
