package live

import (
	"sync"

	"github.com/plantsforlife/storefront/internal/orders"
)

// Subscription scopes.
const (
	ScopeMine = "mine"
	ScopeAll  = "all"
)

// Event kinds pushed to subscribers.
const (
	EventOrderPlaced    = "order_placed"
	EventStatusChanged  = "status_changed"
	EventOrderCancelled = "order_cancelled"
)

// Event is one committed order change.
type Event struct {
	Type  string       `json:"type"`
	Order orders.Order `json:"order"`
}

const subscriberBuffer = 16

type subscriber struct {
	scope  string
	userID string
	ch     chan Event
}

// Hub fans committed order events out to live subscribers. Publishing
// never blocks: a subscriber that falls more than subscriberBuffer events
// behind loses events rather than stalling writers. Every Subscribe must
// be paired with exactly one call to its release func.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

func NewHub() *Hub {
	return &Hub{subs: map[int]*subscriber{}}
}

// Subscribe registers a listener. Scope ScopeMine delivers only events for
// userID's orders; ScopeAll delivers everything. The returned release func
// unregisters the listener and closes its channel; it is safe to call once.
func (h *Hub) Subscribe(scope, userID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	sub := &subscriber{scope: scope, userID: userID, ch: make(chan Event, subscriberBuffer)}
	h.subs[id] = sub

	release := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if s, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, release
}

// Publish delivers an event to every matching subscriber.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if sub.scope == ScopeMine && sub.userID != ev.Order.UserID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// subscriber too slow, drop
		}
	}
}

// SubscriberCount reports active subscriptions. Used to verify releases.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
