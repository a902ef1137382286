// Package hub is an in-process pub/sub channel for domain events. Engines
// publish every observable mutation here; the presentation layer subscribes
// to render notifications.
package hub

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const subscriptionBuffer = 64

type Event struct {
	Type      EventType
	ServerID  int64
	ChannelID int64
	UserID    int64
	Detail    string
}

type subscriber struct {
	id int64
	ch chan Event
}

type Subscription struct {
	C     <-chan Event
	id    int64
	topic string
	hub   *Hub
}

func (s *Subscription) Close() {
	s.hub.unsubscribe(s.topic, s.id)
}

type Hub struct {
	mutex       sync.RWMutex
	sugar       *zap.SugaredLogger
	nextID      int64
	subscribers map[string][]subscriber
}

func New(sugar *zap.SugaredLogger) *Hub {
	return &Hub{
		sugar:       sugar,
		subscribers: make(map[string][]subscriber),
	}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.nextID++
	ch := make(chan Event, subscriptionBuffer)
	h.subscribers[topic] = append(h.subscribers[topic], subscriber{id: h.nextID, ch: ch})

	return &Subscription{C: ch, id: h.nextID, topic: topic, hub: h}
}

func (h *Hub) unsubscribe(topic string, id int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	subs := h.subscribers[topic]
	for i := range subs {
		if subs[i].id == id {
			close(subs[i].ch)
			subs[i] = subs[len(subs)-1]
			h.subscribers[topic] = subs[:len(subs)-1]
			break
		}
	}

	// delete topic from map if no subscriber is left on it
	if len(h.subscribers[topic]) == 0 {
		delete(h.subscribers, topic)
	}
}

// Publish delivers an event to every subscriber of the topic. Delivery is
// non-blocking; a subscriber with a full buffer loses the event.
func (h *Hub) Publish(topic string, event Event) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for _, sub := range h.subscribers[topic] {
		select {
		case sub.ch <- event:
		default:
			h.sugar.Warnf("Dropping event [%s] for a slow subscriber of topic [%s]", event.Type, topic)
		}
	}
}

// ServerTopic is the per-server event topic.
func ServerTopic(serverID int64) string {
	return fmt.Sprintf("server:%d", serverID)
}

// TopicServers carries server lifecycle events (created/deleted).
const TopicServers = "servers"
