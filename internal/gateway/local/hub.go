package local

import "sync"

// eventKind distinguishes the two row-change streams.
type eventKind int

const (
	eventInsert eventKind = iota
	eventUpdate
)

// subscriber is a registered callback bound to one recipient and one
// event kind.
type subscriber struct {
	recipientID string
	kind        eventKind
	fn          func(row notificationRow)
}

// hub keeps the in-process row-change subscribers for the embedded backend.
// Publish invokes matching callbacks synchronously while holding a read
// lock; closing a subscription takes the write lock, so once close returns
// no further callback can be in flight.
type hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]*subscriber
}

func newHub() *hub {
	return &hub{subs: make(map[int]*subscriber)}
}

// subscribe registers fn and returns its registry key.
func (h *hub) subscribe(recipientID string, kind eventKind, fn func(notificationRow)) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	h.subs[h.next] = &subscriber{
		recipientID: recipientID,
		kind:        kind,
		fn:          fn,
	}
	return h.next
}

// unsubscribe removes a subscriber. Waits for any in-flight publish.
func (h *hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// publish delivers a row to every subscriber matching its recipient and
// the event kind.
func (h *hub) publish(kind eventKind, row notificationRow) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.kind != kind || sub.recipientID != row.RecipientID {
			continue
		}
		sub.fn(row)
	}
}

// localSubscription adapts a hub registration to the gateway.Subscription
// contract.
type localSubscription struct {
	hub       *hub
	id        int
	closeOnce sync.Once
}

// Close removes the subscriber. Safe to call more than once.
func (s *localSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.hub.unsubscribe(s.id)
	})
	return nil
}
