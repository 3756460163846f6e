package notify

import (
	"context"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/gateway"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
)

// Service is the action layer between the UI and the store: each action
// calls the gateway, then patches the store in place on success instead
// of refetching. Gateway failures are recorded in the store's error field
// and returned; they never crash the store or abort live subscriptions.
type Service struct {
	gw    gateway.Gateway
	store *Store
	role  model.Role
}

// NewService creates a service bound to one gateway, store, and role.
func NewService(gw gateway.Gateway, store *Store, role model.Role) *Service {
	return &Service{gw: gw, store: store, role: role}
}

// Store exposes the underlying store for read-only consumers.
func (s *Service) Store() *Store {
	return s.store
}

// Role returns the role this service filters for.
func (s *Service) Role() model.Role {
	return s.role
}

// LoadInitial runs one load cycle: page fetch plus server-side unread
// count, role-filtered, replacing the store contents. The two fetches
// and any live subscription events may interleave freely; Add's dedup
// keeps the result consistent either way.
func (s *Service) LoadInitial(ctx context.Context, limit int) error {
	s.store.BeginLoading()

	page, err := s.gw.FetchPage(ctx, limit)
	if err != nil {
		s.store.SetError(err.Error())
		return err
	}

	count, err := s.gw.FetchUnreadCount(ctx)
	if err != nil {
		s.store.SetError(err.Error())
		return err
	}

	visible := FilterByRole(page, s.role)

	// Events that arrived while the fetch was in flight are already in
	// the store; merge them instead of dropping them.
	streamed := s.store.Snapshot()

	s.store.SetAll(visible)
	s.store.SetUnreadCount(count)
	for _, n := range streamed {
		s.Deliver(n)
	}

	s.store.SetReady()
	return nil
}

// Deliver merges one streamed insert into the store, applying the role
// filter first. Duplicates of fetched rows are dropped by the store.
// Reports whether the notification became visible as a new entry.
func (s *Service) Deliver(n model.Notification) bool {
	if len(FilterByRole([]model.Notification{n}, s.role)) == 0 {
		return false
	}
	return s.store.Add(n)
}

// Apply merges one streamed row update into the store, applying the role
// filter first.
func (s *Service) Apply(n model.Notification) bool {
	if len(FilterByRole([]model.Notification{n}, s.role)) == 0 {
		return false
	}
	return s.store.Update(n)
}

// MarkRead marks one notification read on the backend and patches the
// store. Marking an already-read row is a silent success.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	if err := s.gw.MarkRead(ctx, id); err != nil {
		s.store.SetError(err.Error())
		return err
	}
	s.store.MarkRead(id)
	return nil
}

// MarkAllRead marks everything read on the backend and in the store.
func (s *Service) MarkAllRead(ctx context.Context) error {
	if err := s.gw.MarkAllRead(ctx); err != nil {
		s.store.SetError(err.Error())
		return err
	}
	s.store.MarkAllRead()
	return nil
}

// Delete removes a notification. A NotFound from the backend means the
// desired end state already holds, so it is treated as success.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, id); err != nil && !gateway.IsNotFound(err) {
		s.store.SetError(err.Error())
		return err
	}
	s.store.Remove(id)
	return nil
}

// Create inserts a new notification through the backend. The stored row
// comes back to us via the insert subscription, so the store is not
// patched here.
func (s *Service) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	created, err := s.gw.Create(ctx, n)
	if err != nil {
		s.store.SetError(err.Error())
		return model.Notification{}, err
	}
	return created, nil
}
