package testutil

import (
	"testing"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/gateway/local"
)

// NewTestBackend creates an in-memory local backend with all migrations
// applied, bound to the given recipient. It automatically closes the
// backend when the test completes.
func NewTestBackend(t *testing.T, recipientID string) *local.Backend {
	t.Helper()

	b, err := local.Open(":memory:", recipientID)
	if err != nil {
		t.Fatalf("creating test backend: %v", err)
	}

	t.Cleanup(func() {
		if err := b.Close(); err != nil {
			t.Errorf("closing test backend: %v", err)
		}
	})

	return b
}
