package gateway

import (
	"context"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
)

// Subscription is a live row-change stream that must be closed by its owner.
// After Close returns, the subscription's callback is never invoked again,
// even if the underlying transport delivers a late event.
type Subscription interface {
	Close() error
}

// InsertFunc receives each newly created notification addressed to the
// subscribed recipient.
type InsertFunc func(n model.Notification)

// UpdateFunc receives each changed notification row (typically a read-state
// change made from another session).
type UpdateFunc func(n model.Notification)

// Gateway defines the contract to the remote notification table. Delivery on
// the subscription streams is at-least-once with no ordering guarantee
// relative to FetchPage, so callers must deduplicate by ID.
type Gateway interface {
	// FetchPage retrieves up to limit notifications for the current
	// recipient, newest first. A non-positive limit uses the default
	// page size of 50.
	FetchPage(ctx context.Context, limit int) ([]model.Notification, error)

	// FetchUnreadCount returns the server-side count of unread rows for
	// the current recipient. This may exceed the fetched page.
	FetchUnreadCount(ctx context.Context) (int, error)

	// MarkRead marks one notification read. Marking an already-read row
	// succeeds silently.
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead marks every unread notification for the current
	// recipient read. Idempotent.
	MarkAllRead(ctx context.Context) error

	// Delete removes a notification. Returns a NotFound error if the
	// row is already gone; callers normally treat that as success.
	Delete(ctx context.Context, id string) error

	// Create inserts a new notification. A missing ID or CreatedAt is
	// filled in by the backend.
	Create(ctx context.Context, n model.Notification) (model.Notification, error)

	// SubscribeInserts opens a live stream of new rows addressed to
	// recipientID.
	SubscribeInserts(ctx context.Context, recipientID string, fn InsertFunc) (Subscription, error)

	// SubscribeUpdates opens a live stream of row updates addressed to
	// recipientID.
	SubscribeUpdates(ctx context.Context, recipientID string, fn UpdateFunc) (Subscription, error)
}
