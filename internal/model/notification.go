package model

import "time"

// NotificationType identifies the kind of event a notification describes.
type NotificationType string

const (
	TypeOrderNew    NotificationType = "ORDER_NEW"
	TypeCartAbandon NotificationType = "CART_ABANDON"
	TypeSystemAlert NotificationType = "SYSTEM_ALERT"
)

// legacyTypes maps type names emitted by older backend rows onto the
// canonical enumeration.
var legacyTypes = map[string]NotificationType{
	"new_order":     TypeOrderNew,
	"user_signup":   TypeSystemAlert,
	"order_shipped": TypeOrderNew,
}

// ParseNotificationType normalizes a raw type string to the canonical
// enumeration. Legacy lowercase names are accepted; anything unknown
// falls back to SYSTEM_ALERT so a bad row never disappears silently.
func ParseNotificationType(raw string) NotificationType {
	switch NotificationType(raw) {
	case TypeOrderNew, TypeCartAbandon, TypeSystemAlert:
		return NotificationType(raw)
	}
	if t, ok := legacyTypes[raw]; ok {
		return t
	}
	return TypeSystemAlert
}

// Notification is a single alert addressed to a dashboard user.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Type classifies the event that produced this notification.
	Type NotificationType `json:"type"`

	// Title is the short headline shown in lists and the dropdown.
	Title string `json:"title"`

	// Message is the full human-readable notification text.
	Message string `json:"message"`

	// IsRead indicates whether the user has seen this notification.
	IsRead bool `json:"is_read"`

	// CreatedAt is when this notification was generated; rows are
	// ordered newest first everywhere.
	CreatedAt time.Time `json:"created_at"`

	// Metadata holds arbitrary key-value context from the producer
	// (order id, customer id, severity). Opaque to the client.
	Metadata map[string]string `json:"metadata,omitempty"`

	// RecipientID is the user this notification is addressed to.
	RecipientID string `json:"recipient_id"`
}
