package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender collects delivered payloads; it can be told to fail to simulate
// a dead connection.
type fakeSender struct {
	mu       sync.Mutex
	key      string
	payloads [][]byte
	fail     bool
}

func (f *fakeSender) Key() string { return f.key }

func (f *fakeSender) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send: connection gone")
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeSender) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.payloads))
	copy(out, f.payloads)
	return out
}

func runHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	return hub, cancel
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestHub_TopicIsolation(t *testing.T) {
	hub, cancel := runHub(t)
	defer cancel()

	lineA := &fakeSender{key: "a"}
	lineB := &fakeSender{key: "b"}
	hub.Subscribe(LineTopic("111"), lineA)
	hub.Subscribe(LineTopic("222"), lineB)

	hub.Publish(LineTopic("111"), map[string]string{"type": "new_message"})

	waitFor(t, func() bool { return len(lineA.received()) == 1 })
	assert.Empty(t, lineB.received(), "other lines must not receive the event")
}

func TestHub_GlobalReceivesNothingUnlessPublished(t *testing.T) {
	hub, cancel := runHub(t)
	defer cancel()

	global := &fakeSender{key: "g"}
	hub.Subscribe(TopicGlobal, global)

	hub.Publish(LineTopic("111"), map[string]string{"type": "new_message"})
	hub.Publish(TopicGlobal, map[string]string{"type": "new_message"})

	waitFor(t, func() bool { return len(global.received()) == 1 })
	assert.Len(t, global.received(), 1, "global gets only events addressed to it")
}

func TestHub_SubscribeIsIdempotent(t *testing.T) {
	hub, cancel := runHub(t)
	defer cancel()

	s := &fakeSender{key: "a"}
	hub.Subscribe(LineTopic("111"), s)
	hub.Subscribe(LineTopic("111"), s)

	assert.Equal(t, 1, hub.Members(LineTopic("111")))

	hub.Publish(LineTopic("111"), map[string]string{"n": "1"})
	waitFor(t, func() bool { return len(s.received()) >= 1 })
	assert.Len(t, s.received(), 1, "double subscription must not double delivery")
}

func TestHub_DeadSubscriberIsPruned(t *testing.T) {
	hub, cancel := runHub(t)
	defer cancel()

	dead := &fakeSender{key: "dead", fail: true}
	alive := &fakeSender{key: "alive"}
	hub.Subscribe(LineTopic("111"), dead)
	hub.Subscribe(LineTopic("111"), alive)

	hub.Publish(LineTopic("111"), map[string]string{"n": "1"})

	waitFor(t, func() bool { return hub.Members(LineTopic("111")) == 1 })
	waitFor(t, func() bool { return len(alive.received()) == 1 })
}

func TestHub_UnsubscribeDropsEmptyTopic(t *testing.T) {
	hub, cancel := runHub(t)
	defer cancel()

	s := &fakeSender{key: "a"}
	hub.Subscribe(LineTopic("111"), s)
	hub.Unsubscribe(LineTopic("111"), s)

	assert.Equal(t, 0, hub.Members(LineTopic("111")))

	hub.mu.RLock()
	_, exists := hub.topics[LineTopic("111")]
	hub.mu.RUnlock()
	assert.False(t, exists, "empty non-global topics must be discarded")
}

func TestHub_DeliveryPreservesPublishOrder(t *testing.T) {
	hub, cancel := runHub(t)
	defer cancel()

	s := &fakeSender{key: "a"}
	hub.Subscribe(LineTopic("111"), s)

	const n = 20
	for i := 0; i < n; i++ {
		hub.Publish(LineTopic("111"), map[string]int{"seq": i})
	}

	waitFor(t, func() bool { return len(s.received()) == n })
	for i, payload := range s.received() {
		var msg map[string]int
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, i, msg["seq"])
	}
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	// No Run loop: the queue fills up and further publishes must drop, not hang.
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Publish(TopicGlobal, map[string]int{"seq": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a saturated queue")
	}
}
