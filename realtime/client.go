package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	// Repeated subscribe/unsubscribe for the same topic inside this window
	// is dropped to prevent topic-churn abuse.
	topicCooldown = 2 * time.Second

	sendBufferSize = 256
)

// subscriptionRequest is the only inbound message clients may send.
type subscriptionRequest struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

type Client struct {
	ID     uuid.UUID
	hub    *Hub
	conn   *websocket.Conn
	origin string
	send   chan []byte
	logger *slog.Logger

	mu       sync.Mutex
	closed   bool
	topics   map[string]struct{}
	lastSeen map[string]time.Time
}

func NewClient(hub *Hub, conn *websocket.Conn, origin string, logger *slog.Logger) *Client {
	return &Client{
		ID:       uuid.New(),
		hub:      hub,
		conn:     conn,
		origin:   origin,
		send:     make(chan []byte, sendBufferSize),
		logger:   logger,
		topics:   make(map[string]struct{}),
		lastSeen: make(map[string]time.Time),
	}
}

// admitTopicRequest enforces the per-connection per-topic cooldown. The
// request timestamp is recorded even when rejected, so hammering a topic
// keeps extending the window.
func (c *Client) admitTopicRequest(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	last, seen := c.lastSeen[topic]
	c.lastSeen[topic] = now
	return !seen || now.Sub(last) >= topicCooldown
}

func (c *Client) trackTopic(topic string) {
	c.mu.Lock()
	c.topics[topic] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) untrackTopic(topic string) {
	c.mu.Lock()
	delete(c.topics, topic)
	c.mu.Unlock()
}

func (c *Client) subscribedTopics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.topics))
	for name := range c.topics {
		names = append(names, name)
	}
	return names
}

func (c *Client) trySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

// ReadPump consumes subscription requests until the connection drops. Each
// inbound request is counted against the origin's admission quota; once the
// quota is exceeded requests are dropped without disconnecting the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.RemoveClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error",
					slog.String("client", c.ID.String()), slog.Any("error", err))
			}
			return
		}

		if !c.hub.quota.Allow(c.origin) {
			c.logger.Debug("admission quota exceeded, request dropped",
				slog.String("origin", c.origin))
			continue
		}

		var req subscriptionRequest
		if err := json.Unmarshal(raw, &req); err != nil || req.Topic == "" {
			continue
		}
		switch req.Action {
		case "subscribe":
			c.hub.Subscribe(c, req.Topic)
		case "unsubscribe":
			c.hub.Unsubscribe(c, req.Topic)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain whatever queued up behind this message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
