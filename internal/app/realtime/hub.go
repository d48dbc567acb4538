// Package realtime fans out newly created messages to per-user subscribers.
package realtime

import (
	"sync"

	"github.com/fireworld/fireworld/internal/app/domain/message"
	"github.com/fireworld/fireworld/pkg/logger"
)

const subscriberBuffer = 32

// Hub delivers message inserts to subscribers of either participant. Delivery
// is non-blocking: a subscriber whose buffer is full misses the event rather
// than wedging the sender.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
	log  *logger.Logger
}

type subscriber struct {
	ch     chan message.Message
	userID string
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewDefault("realtime")
	}
	return &Hub{
		subs: make(map[string]map[*subscriber]struct{}),
		log:  log,
	}
}

// Subscribe registers a listener for messages where userID is sender or
// recipient. The returned dispose func tears the subscription down and closes
// the channel; it is safe to call more than once.
func (h *Hub) Subscribe(userID string) (<-chan message.Message, func()) {
	sub := &subscriber{
		ch:     make(chan message.Message, subscriberBuffer),
		userID: userID,
	}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscriber]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	dispose := func() {
		once.Do(func() {
			h.mu.Lock()
			if set, ok := h.subs[userID]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(h.subs, userID)
				}
			}
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, dispose
}

// Publish delivers a message to every subscriber of its sender and recipient.
func (h *Hub) Publish(m message.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.deliverLocked(m.SenderID, m)
	if m.RecipientID != m.SenderID {
		h.deliverLocked(m.RecipientID, m)
	}
}

func (h *Hub) deliverLocked(userID string, m message.Message) {
	for sub := range h.subs[userID] {
		select {
		case sub.ch <- m:
		default:
			h.log.WithField("user_id", userID).Warn("subscriber buffer full, dropping message event")
		}
	}
}

// SubscriberCount reports active subscriptions for a user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
