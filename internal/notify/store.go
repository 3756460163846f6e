// Package notify holds the client-side notification state: a single
// mutable store reconciling the fetched baseline with live row-change
// events, the role visibility filter, and the action layer that ties
// store mutations to gateway calls.
package notify

import (
	"sync"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
)

// Phase is the loading state machine of the store:
// idle -> loading -> (ready | errored), re-entrant on every reload.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseErrored
)

// Store is the single source of truth for the notification list and the
// unread counter. All consumers read derived copies and dispatch actions;
// nobody mutates entries directly.
//
// Subscription delivery is at-least-once, so Add deduplicates by ID: an
// insert event racing the initial fetch must never produce a double entry
// or a double-counted unread.
//
// The unread counter is seeded once from the server-side count (which may
// exceed the loaded page) and adjusted by delta on every mutation, so it
// stays consistent with the list whenever it started consistent and never
// loses the off-page surplus.
type Store struct {
	mu          sync.Mutex
	list        []model.Notification
	unreadCount int
	phase       Phase
	errMsg      string
}

// NewStore creates an empty store in the idle phase.
func NewStore() *Store {
	return &Store{}
}

// SetAll replaces the list wholesale after an initial fetch. It does not
// touch the unread counter; that is seeded separately from the dedicated
// count fetch via SetUnreadCount.
func (s *Store) SetAll(list []model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.list = make([]model.Notification, len(list))
	copy(s.list, list)
}

// SetUnreadCount seeds the unread counter from the server-side count.
func (s *Store) SetUnreadCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 0 {
		n = 0
	}
	s.unreadCount = n
}

// Add prepends a notification if its ID is not already present and bumps
// the unread counter when the new entry is unread. Adding an ID that is
// already in the list is a no-op. Reports whether the entry was added.
func (s *Store) Add(n model.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(n.ID) >= 0 {
		return false
	}

	s.list = append([]model.Notification{n}, s.list...)
	if !n.IsRead {
		s.unreadCount++
	}
	return true
}

// Update replaces the entry with a matching ID, adjusting the unread
// counter when the read flag changed. Unknown IDs are ignored. Reports
// whether an entry was replaced.
func (s *Store) Update(n model.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(n.ID)
	if i < 0 {
		return false
	}

	wasRead := s.list[i].IsRead
	s.list[i] = n

	switch {
	case wasRead && !n.IsRead:
		s.unreadCount++
	case !wasRead && n.IsRead:
		s.decUnread()
	}
	return true
}

// Remove drops the entry with the given ID, decrementing the unread
// counter if the entry was unread.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}

	if !s.list[i].IsRead {
		s.decUnread()
	}
	s.list = append(s.list[:i], s.list[i+1:]...)
	return true
}

// MarkRead flags one entry read. Marking an already-read or unknown
// entry changes nothing.
func (s *Store) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 || s.list[i].IsRead {
		return
	}

	s.list[i].IsRead = true
	s.decUnread()
}

// MarkAllRead flags every entry read and zeroes the unread counter,
// including any off-page surplus. Idempotent.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.list {
		s.list[i].IsRead = true
	}
	s.unreadCount = 0
}

// Clear resets the store to its initial empty state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.list = nil
	s.unreadCount = 0
	s.phase = PhaseIdle
	s.errMsg = ""
}

// BeginLoading enters the loading phase and clears any previous error.
func (s *Store) BeginLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseLoading
	s.errMsg = ""
}

// SetReady marks the current load cycle complete.
func (s *Store) SetReady() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseReady
}

// SetError records a failure message. An empty message clears the error
// without leaving the current phase.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg == "" {
		s.errMsg = ""
		return
	}
	s.phase = PhaseErrored
	s.errMsg = msg
}

// Snapshot returns a copy of the full list, newest first.
func (s *Store) Snapshot() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Notification, len(s.list))
	copy(out, s.list)
	return out
}

// Unread returns a copy of the unread entries, newest first.
func (s *Store) Unread() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Notification
	for _, n := range s.list {
		if !n.IsRead {
			out = append(out, n)
		}
	}
	return out
}

// UnreadCount returns the tracked unread counter.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadCount
}

// Len returns the number of loaded entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}

// Phase returns the current loading phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Err returns the recorded error message, if any.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// indexOf returns the list index of id, or -1. Callers hold s.mu.
func (s *Store) indexOf(id string) int {
	for i, n := range s.list {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// decUnread decrements the counter without going negative. Callers hold s.mu.
func (s *Store) decUnread() {
	if s.unreadCount > 0 {
		s.unreadCount--
	}
}
