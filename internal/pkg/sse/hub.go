package sse

import (
	"sync"
)

// Event is one server-sent event addressed to a topic, such as a report ID.
type Event struct {
	Topic string
	Event string
	Data  interface{}
}

// Hub fans events out to the subscribers of each topic.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	bufferSize  int
}

// NewHub creates a hub whose subscriber channels buffer bufferSize events.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a subscriber for topic and returns its channel and cleanup function
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.bufferSize)

	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[chan Event]struct{})
	}
	h.subscribers[topic][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[topic], ch)
			close(ch)
			if len(h.subscribers[topic]) == 0 {
				delete(h.subscribers, topic)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of topic
func (h *Hub) Publish(topic string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.Topic = topic
	for ch := range h.subscribers[topic] {
		select {
		case ch <- event:
		default:
			// Slow subscriber, drop rather than block the pipeline.
		}
	}
}

// SubscriberCount returns the number of active subscribers for a topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[topic])
}

// TotalSubscribers returns the total number of active subscribers across all topics
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
