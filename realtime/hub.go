package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is the envelope every subscriber receives.
type Message struct {
	Type    string      `json:"type"`
	Topic   string      `json:"topic,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub is the process-wide subscription registry. It is owned by the server
// process and exposes subscribe, unsubscribe, remove and publish as its only
// mutators. Each topic carries its own lock so unrelated matches' broadcasts
// never serialize on each other; the registry lock only guards the topic map.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]*topic
	quota  *OriginQuota
	logger *slog.Logger
}

type topic struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewHub(quota *OriginQuota, logger *slog.Logger) *Hub {
	return &Hub{
		topics: make(map[string]*topic),
		quota:  quota,
		logger: logger,
	}
}

func (h *Hub) topicFor(name string, create bool) *topic {
	h.mu.RLock()
	t, ok := h.topics[name]
	h.mu.RUnlock()
	if ok || !create {
		return t
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok = h.topics[name]; ok {
		return t
	}
	t = &topic{clients: make(map[*Client]struct{})}
	h.topics[name] = t
	return t
}

// Subscribe attaches the client to a topic. The request is dropped silently
// when the client re-requests the same topic inside the cooldown window; a
// duplicate subscription never results in double delivery either way.
func (h *Hub) Subscribe(c *Client, name string) bool {
	if !c.admitTopicRequest(name) {
		return false
	}

	t := h.topicFor(name, true)
	t.mu.Lock()
	t.clients[c] = struct{}{}
	t.mu.Unlock()

	c.trackTopic(name)
	h.logger.Debug("client subscribed", slog.String("topic", name), slog.String("client", c.ID.String()))
	return true
}

func (h *Hub) Unsubscribe(c *Client, name string) {
	if !c.admitTopicRequest(name) {
		return
	}
	h.detach(c, name)
	c.untrackTopic(name)
}

func (h *Hub) detach(c *Client, name string) {
	t := h.topicFor(name, false)
	if t == nil {
		return
	}
	t.mu.Lock()
	delete(t.clients, c)
	empty := len(t.clients) == 0
	t.mu.Unlock()

	if empty {
		h.mu.Lock()
		// Re-check under the registry lock: a subscriber may have raced in.
		t.mu.Lock()
		if len(t.clients) == 0 {
			delete(h.topics, name)
		}
		t.mu.Unlock()
		h.mu.Unlock()
	}
}

// RemoveClient detaches a disconnected client from every topic and closes
// its send channel.
func (h *Hub) RemoveClient(c *Client) {
	for _, name := range c.subscribedTopics() {
		h.detach(c, name)
	}
	c.closeSend()
	h.logger.Debug("client removed", slog.String("client", c.ID.String()))
}

// Publish fans a notification out to the topic's current subscribers.
// Delivery is best-effort: a client whose send buffer is full is skipped,
// and there is no backlog for clients not yet subscribed.
func (h *Hub) Publish(topicName string, event string, payload interface{}) {
	t := h.topicFor(topicName, false)
	if t == nil {
		return
	}

	raw, err := json.Marshal(Message{Type: event, Topic: topicName, Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal broadcast message",
			slog.String("topic", topicName), slog.Any("error", err))
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for c := range t.clients {
		if !c.trySend(raw) {
			h.logger.Warn("dropping message for slow client",
				slog.String("topic", topicName), slog.String("client", c.ID.String()))
		}
	}
}

// SubscriberCount reports the current number of subscribers on a topic.
func (h *Hub) SubscriberCount(topicName string) int {
	t := h.topicFor(topicName, false)
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}
