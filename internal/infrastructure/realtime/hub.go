package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Topic is a named fanout destination. Membership is in-memory only and is
// rebuilt from scratch when the process restarts.
type Topic string

// TopicGlobal receives every published event (admin firehose). It is the only
// topic whose entry survives losing its last member.
const TopicGlobal Topic = "global"

// LineTopic is the per-phone-number event stream.
func LineTopic(phoneNumberID string) Topic { return Topic("line:" + phoneNumberID) }

// ChatListTopic carries chat-list summary updates for a phone number.
func ChatListTopic(phoneNumberID string) Topic { return Topic("chatlist:" + phoneNumberID) }

type envelope struct {
	topic   Topic
	payload []byte
}

// Hub tracks live subscribers per topic and fans published events out to them.
//
// Publish is fire-and-forget: events are handed to a buffered queue consumed
// by the Run loop, so a slow or dead subscriber never blocks the caller that
// produced the event. A failed delivery prunes that subscriber and nothing
// else. Per-topic delivery order follows publish order (single dispatch loop).
type Hub struct {
	mu     sync.RWMutex
	topics map[Topic]map[string]Sender

	queue chan envelope
}

// NewHub constructs a Hub. Call Run on its own goroutine to start dispatching.
func NewHub() *Hub {
	return &Hub{
		topics: map[Topic]map[string]Sender{
			TopicGlobal: {},
		},
		queue: make(chan envelope, 256),
	}
}

// Subscribe idempotently adds the sender to the topic's membership set.
func (h *Hub) Subscribe(topic Topic, s Sender) {
	h.mu.Lock()
	members := h.topics[topic]
	if members == nil {
		members = make(map[string]Sender)
		h.topics[topic] = members
	}
	members[s.Key()] = s
	h.mu.Unlock()
}

// Unsubscribe removes the sender from the topic. Empty non-global topics are
// discarded so the map never accumulates dangling entries.
func (h *Hub) Unsubscribe(topic Topic, s Sender) {
	h.mu.Lock()
	h.unsubscribeLocked(topic, s.Key())
	h.mu.Unlock()
}

func (h *Hub) unsubscribeLocked(topic Topic, key string) {
	members := h.topics[topic]
	if members == nil {
		return
	}
	delete(members, key)
	if len(members) == 0 && topic != TopicGlobal {
		delete(h.topics, topic)
	}
}

// Publish queues event for delivery to every current subscriber of topic.
// It never blocks: if the dispatch queue is saturated the event is dropped
// and logged, since fanout is best-effort notification, not source of truth.
func (h *Hub) Publish(topic Topic, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", string(topic)).Msg("realtime: encode event")
		return
	}
	select {
	case h.queue <- envelope{topic: topic, payload: payload}:
	default:
		log.Warn().Str("topic", string(topic)).Msg("realtime: dispatch queue full, event dropped")
	}
}

// Run consumes the dispatch queue until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-h.queue:
			h.dispatch(e)
		}
	}
}

func (h *Hub) dispatch(e envelope) {
	h.mu.RLock()
	members := h.topics[e.topic]
	targets := make([]Sender, 0, len(members))
	for _, s := range members {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	var dead []string
	for _, s := range targets {
		if err := s.Send(e.payload); err != nil {
			log.Debug().Err(err).Str("topic", string(e.topic)).Msg("realtime: delivery failed, pruning subscriber")
			dead = append(dead, s.Key())
		}
	}

	if len(dead) > 0 {
		h.mu.Lock()
		for _, key := range dead {
			h.unsubscribeLocked(e.topic, key)
		}
		h.mu.Unlock()
	}
}

// Members reports the current subscriber count for a topic.
func (h *Hub) Members(topic Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
