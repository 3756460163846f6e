package rest

import (
	"time"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
)

// wireNotification is the row shape as it appears on the wire. Older backend
// rows use `read`/`timestamp` and lowercase type names; newer rows use
// `is_read`/`created_at` and the canonical enumeration. Both are accepted
// here and normalized, so nothing above the gateway ever sees the legacy
// shape.
type wireNotification struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	IsRead      *bool             `json:"is_read,omitempty"`
	Read        *bool             `json:"read,omitempty"`
	CreatedAt   *time.Time        `json:"created_at,omitempty"`
	Timestamp   *time.Time        `json:"timestamp,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	RecipientID string            `json:"recipient_id"`
}

// toModel normalizes a wire row into the canonical notification shape.
func (w wireNotification) toModel() model.Notification {
	n := model.Notification{
		ID:          w.ID,
		Type:        model.ParseNotificationType(w.Type),
		Title:       w.Title,
		Message:     w.Message,
		Metadata:    w.Metadata,
		RecipientID: w.RecipientID,
	}

	switch {
	case w.IsRead != nil:
		n.IsRead = *w.IsRead
	case w.Read != nil:
		n.IsRead = *w.Read
	}

	switch {
	case w.CreatedAt != nil:
		n.CreatedAt = *w.CreatedAt
	case w.Timestamp != nil:
		n.CreatedAt = *w.Timestamp
	}

	return n
}

// fromModel produces the canonical wire row for create requests.
func fromModel(n model.Notification) wireNotification {
	isRead := n.IsRead
	w := wireNotification{
		ID:          n.ID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		IsRead:      &isRead,
		Metadata:    n.Metadata,
		RecipientID: n.RecipientID,
	}
	if !n.CreatedAt.IsZero() {
		createdAt := n.CreatedAt
		w.CreatedAt = &createdAt
	}
	return w
}

// listResponse wraps a page of notification rows.
type listResponse struct {
	Data []wireNotification `json:"data"`
}

// countResponse wraps the server-side unread count.
type countResponse struct {
	Count int `json:"count"`
}

// createResponse wraps the stored row echoed back from a create.
type createResponse struct {
	Data wireNotification `json:"data"`
}

// errorResponse is the structured failure body returned by the backend.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// schemaMissing reports whether the backend error code indicates the
// notification table does not exist (undefined_table in Postgres, or the
// REST layer's table-not-found code).
func (e errorResponse) schemaMissing() bool {
	return e.Code == "42P01" || e.Code == "PGRST205"
}
