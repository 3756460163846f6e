// Package sync owns the realtime subscription lifecycle: for the current
// (recipient, role) pair it keeps exactly one insert stream and one update
// stream open, feeds their events through the role filter into the store,
// and bridges results into the Bubble Tea runtime.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/gateway"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/notify"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/sound"
)

// StreamState represents the health of the realtime streams.
type StreamState int

const (
	StreamIdle StreamState = iota
	StreamLive
	StreamError
)

// EventKind distinguishes the two realtime streams in UI messages.
type EventKind int

const (
	EventInserted EventKind = iota
	EventUpdated
)

// EventMsg is a tea.Msg sent when a realtime event has been merged into
// the store.
type EventMsg struct {
	Kind         EventKind
	Notification model.Notification
}

// InitialLoadedMsg is a tea.Msg sent when the initial page and unread
// count fetch completes.
type InitialLoadedMsg struct {
	Err error
}

// loadTimeout is the maximum time allowed for the initial load cycle.
const loadTimeout = 30 * time.Second

// Manager ensures at most one pair of live subscriptions exists for the
// active recipient at any time. Overlapping pairs would double-deliver
// into the store; the store's dedup-by-id is the safety net, not an
// excuse for sloppy lifecycle handling here.
type Manager struct {
	gw       gateway.Gateway
	store    *notify.Store
	player   *sound.Player
	pageSize int

	mu          gosync.Mutex
	svc         *notify.Service
	recipientID string
	insertSub   gateway.Subscription
	updateSub   gateway.Subscription
	state       StreamState
	streamErr   error

	eventCh chan EventMsg
}

// New creates a manager with no identity bound yet.
func New(gw gateway.Gateway, store *notify.Store, player *sound.Player, pageSize int) *Manager {
	return &Manager{
		gw:       gw,
		store:    store,
		player:   player,
		pageSize: pageSize,
		eventCh:  make(chan EventMsg, 16),
	}
}

// Service returns the action layer bound to the current identity, or nil
// before the first SetIdentity.
func (m *Manager) Service() *notify.Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.svc
}

// SetIdentity binds the manager to a (recipient, role) pair: any previous
// subscription pair is torn down first, the store is cleared, a fresh
// pair is opened, and the returned command runs the initial load.
func (m *Manager) SetIdentity(recipientID string, role model.Role) tea.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeSubsLocked()
	m.store.Clear()

	m.recipientID = recipientID
	svc := notify.NewService(m.gw, m.store, role)
	m.svc = svc

	insertSub, err := m.gw.SubscribeInserts(
		context.Background(), recipientID, func(n model.Notification) {
			if svc.Deliver(n) {
				m.player.Play(n.Type)
				m.sendEvent(EventMsg{Kind: EventInserted, Notification: n})
			}
		})
	if err != nil {
		m.state = StreamError
		m.streamErr = err
		return m.loadInitial(svc)
	}

	updateSub, err := m.gw.SubscribeUpdates(
		context.Background(), recipientID, func(n model.Notification) {
			if svc.Apply(n) {
				m.sendEvent(EventMsg{Kind: EventUpdated, Notification: n})
			}
		})
	if err != nil {
		// Never leave a half-open pair behind.
		insertSub.Close()
		m.state = StreamError
		m.streamErr = err
		return m.loadInitial(svc)
	}

	m.insertSub = insertSub
	m.updateSub = updateSub
	m.state = StreamLive
	m.streamErr = nil

	return m.loadInitial(svc)
}

// Start returns a command that listens for merged realtime events.
func (m *Manager) Start() tea.Cmd {
	return m.waitForEvent()
}

// Stop tears down the live subscription pair. Safe to call repeatedly.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeSubsLocked()
	m.state = StreamIdle
}

// Reload returns a command that reruns the initial load cycle for the
// current identity.
func (m *Manager) Reload() tea.Cmd {
	m.mu.Lock()
	svc := m.svc
	m.mu.Unlock()

	if svc == nil {
		return nil
	}
	return m.loadInitial(svc)
}

// Status returns the stream state and the last stream error, if any.
func (m *Manager) Status() (StreamState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.streamErr
}

// StatusLine renders a short stream status for the header.
func (m *Manager) StatusLine() string {
	state, err := m.Status()
	switch state {
	case StreamLive:
		return "live"
	case StreamError:
		return fmt.Sprintf("stream down: %v", err)
	default:
		return "offline"
	}
}

// closeSubsLocked closes both subscriptions unconditionally. Callers hold
// m.mu. After this returns, no stream callback can fire again.
func (m *Manager) closeSubsLocked() {
	if m.insertSub != nil {
		m.insertSub.Close()
		m.insertSub = nil
	}
	if m.updateSub != nil {
		m.updateSub.Close()
		m.updateSub = nil
	}
}

// loadInitial returns a command running one fetch + count cycle.
func (m *Manager) loadInitial(svc *notify.Service) tea.Cmd {
	pageSize := m.pageSize
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		err := svc.LoadInitial(ctx, pageSize)
		return InitialLoadedMsg{Err: err}
	}
}

// sendEvent sends an event message without blocking the stream callback.
func (m *Manager) sendEvent(msg EventMsg) {
	select {
	case m.eventCh <- msg:
	default:
		// Drop if channel is full; the store already holds the data
		// and the UI reloads from it on the next event.
	}
}

// waitForEvent returns a tea.Cmd that waits for the next merged event.
// After receiving one, the caller should invoke WaitForNextEvent to keep
// listening.
func (m *Manager) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.eventCh
		if !ok {
			return nil
		}
		return msg
	}
}

// WaitForNextEvent returns a tea.Cmd that waits for the next merged
// realtime event.
func (m *Manager) WaitForNextEvent() tea.Cmd {
	return m.waitForEvent()
}
