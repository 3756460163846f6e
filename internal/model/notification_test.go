package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNotificationType(t *testing.T) {
	tests := []struct {
		raw      string
		expected NotificationType
	}{
		// Canonical names pass through.
		{"ORDER_NEW", TypeOrderNew},
		{"CART_ABANDON", TypeCartAbandon},
		{"SYSTEM_ALERT", TypeSystemAlert},

		// Legacy lowercase names map onto the canonical enumeration.
		{"new_order", TypeOrderNew},
		{"user_signup", TypeSystemAlert},
		{"order_shipped", TypeOrderNew},

		// Anything unrecognized lands on the alert bucket rather than
		// producing an invisible row.
		{"promo_blast", TypeSystemAlert},
		{"", TypeSystemAlert},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseNotificationType(tt.raw))
		})
	}
}

func TestRoleCanSee(t *testing.T) {
	assert.True(t, RoleAdmin.CanSee(TypeOrderNew))
	assert.True(t, RoleAdmin.CanSee(TypeCartAbandon))
	assert.True(t, RoleAdmin.CanSee(TypeSystemAlert))

	assert.True(t, RoleCS.CanSee(TypeOrderNew))
	assert.True(t, RoleCS.CanSee(TypeCartAbandon))
	assert.False(t, RoleCS.CanSee(TypeSystemAlert))

	assert.False(t, RoleAdvertiser.CanSee(TypeOrderNew))
	assert.True(t, RoleAdvertiser.CanSee(TypeCartAbandon))
	assert.True(t, RoleAdvertiser.CanSee(TypeSystemAlert))

	assert.False(t, Role("intern").CanSee(TypeOrderNew))
}

func TestRoleKnown(t *testing.T) {
	assert.True(t, RoleAdmin.Known())
	assert.True(t, RoleCS.Known())
	assert.True(t, RoleAdvertiser.Known())
	assert.False(t, Role("intern").Known())
	assert.False(t, Role("").Known())
}
