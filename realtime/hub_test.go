package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHub() *Hub {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHub(NewOriginQuota(1000, time.Minute), logger)
}

func testClient(h *Hub) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(h, nil, "10.0.0.1", logger)
}

// backdate moves a client's last request for a topic outside the cooldown
// window so the next request is admitted.
func backdate(c *Client, topic string) {
	c.mu.Lock()
	c.lastSeen[topic] = time.Now().Add(-topicCooldown - time.Second)
	c.mu.Unlock()
}

func TestSubscribeAndPublish(t *testing.T) {
	h := testHub()
	c := testClient(h)

	require.True(t, h.Subscribe(c, "match:1"))
	assert.Equal(t, 1, h.SubscriberCount("match:1"))

	h.Publish("match:1", "match:score_updated", map[string]int{"score1": 1})

	select {
	case raw := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "match:score_updated", msg.Type)
		assert.Equal(t, "match:1", msg.Topic)
	default:
		t.Fatal("expected a queued message")
	}
}

func TestSubscribeCooldownDropsChurn(t *testing.T) {
	h := testHub()
	c := testClient(h)

	require.True(t, h.Subscribe(c, "match:1"))
	assert.False(t, h.Subscribe(c, "match:1"))
	assert.Equal(t, 1, h.SubscriberCount("match:1"))

	backdate(c, "match:1")
	assert.True(t, h.Subscribe(c, "match:1"))
	assert.Equal(t, 1, h.SubscriberCount("match:1"))
}

func TestCooldownIsPerTopic(t *testing.T) {
	h := testHub()
	c := testClient(h)

	require.True(t, h.Subscribe(c, "match:1"))
	require.True(t, h.Subscribe(c, "category:5"))
	assert.Equal(t, 1, h.SubscriberCount("match:1"))
	assert.Equal(t, 1, h.SubscriberCount("category:5"))
}

func TestUnsubscribePrunesEmptyTopic(t *testing.T) {
	h := testHub()
	c := testClient(h)

	require.True(t, h.Subscribe(c, "match:1"))

	// Inside the cooldown the unsubscribe is dropped.
	h.Unsubscribe(c, "match:1")
	assert.Equal(t, 1, h.SubscriberCount("match:1"))

	backdate(c, "match:1")
	h.Unsubscribe(c, "match:1")
	assert.Equal(t, 0, h.SubscriberCount("match:1"))

	h.mu.RLock()
	_, exists := h.topics["match:1"]
	h.mu.RUnlock()
	assert.False(t, exists)
}

func TestPublishSkipsSlowClient(t *testing.T) {
	h := testHub()
	slow := testClient(h)
	fast := testClient(h)

	require.True(t, h.Subscribe(slow, "match:1"))
	require.True(t, h.Subscribe(fast, "match:1"))

	for i := 0; i < sendBufferSize; i++ {
		require.True(t, slow.trySend([]byte("x")))
	}

	// Must not block on the saturated client; the other still receives.
	done := make(chan struct{})
	go func() {
		h.Publish("match:1", "match:updated", nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow client")
	}

	assert.Len(t, slow.send, sendBufferSize)
	assert.Len(t, fast.send, 1)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	h := testHub()

	h.Publish("match:404", "match:updated", nil)

	h.mu.RLock()
	defer h.mu.RUnlock()
	assert.Empty(t, h.topics)
}

func TestRemoveClientDetachesEverything(t *testing.T) {
	h := testHub()
	c := testClient(h)
	other := testClient(h)

	require.True(t, h.Subscribe(c, "match:1"))
	require.True(t, h.Subscribe(c, "category:5"))
	require.True(t, h.Subscribe(other, "match:1"))

	h.RemoveClient(c)

	assert.Equal(t, 1, h.SubscriberCount("match:1"))
	assert.Equal(t, 0, h.SubscriberCount("category:5"))

	_, open := <-c.send
	assert.False(t, open)

	// Removal after the channel is closed must not panic or double close.
	h.RemoveClient(c)
	assert.False(t, c.trySend([]byte("late")))
}
