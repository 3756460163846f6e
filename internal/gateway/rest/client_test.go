package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/gateway"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, "test-token", "user-1", 5*time.Second)
}

func TestFetchPageNormalizesLegacyRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "user-1", r.URL.Query().Get("recipient"))

		w.Header().Set("Content-Type", "application/json")
		// One legacy row, one canonical row.
		w.Write([]byte(`{"data": [
			{"id": "old", "type": "new_order", "title": "Legacy",
			 "read": true, "timestamp": "2026-08-01T10:00:00Z"},
			{"id": "new", "type": "CART_ABANDON", "title": "Canonical",
			 "is_read": false, "created_at": "2026-08-02T10:00:00Z"}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	page, err := c.FetchPage(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, page, 2)

	assert.Equal(t, model.TypeOrderNew, page[0].Type)
	assert.True(t, page[0].IsRead)
	assert.Equal(t, 2026, page[0].CreatedAt.Year())

	assert.Equal(t, model.TypeCartAbandon, page[1].Type)
	assert.False(t, page[1].IsRead)
}

func TestFetchPageUnknownTypeFallsBackToSystemAlert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data": [{"id": "x", "type": "promo_blast", "is_read": false}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	page, err := c.FetchPage(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, model.TypeSystemAlert, page[0].Type)
}

func TestFetchUnreadCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/notifications/unread_count", r.URL.Path)
		w.Write([]byte(`{"count": 7}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	count, err := c.FetchUnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestRetriesOnTooManyRequests(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"count": 1}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	count, err := c.FetchUnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 3, attempts)
}

func TestRetriesExhaustedReturnsTransport(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchUnreadCount(context.Background())
	require.Error(t, err)

	var gwErr *gateway.Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, gateway.KindTransport, gwErr.Kind)
	assert.Equal(t, 4, attempts, "initial attempt plus three retries")
}

func TestRejectedCredentialsAreUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	err := c.MarkAllRead(context.Background())
	require.Error(t, err)
	assert.True(t, gateway.IsUnauthorized(err))
}

func TestMissingRowIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	err := c.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, gateway.IsNotFound(err))
}

func TestUndefinedTableIsSchemaMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code": "42P01", "message": "relation \"notifications\" does not exist"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchPage(context.Background(), 50)
	require.Error(t, err)
	assert.True(t, gateway.IsSchemaMissing(err))
}

func TestCreateSendsCanonicalShape(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"data": {"id": "stored", "type": "ORDER_NEW",
			"is_read": false, "created_at": "2026-08-03T09:00:00Z",
			"recipient_id": "user-1"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	created, err := c.Create(context.Background(), model.Notification{
		Type:  model.TypeOrderNew,
		Title: "Order #42",
	})
	require.NoError(t, err)
	assert.Equal(t, "stored", created.ID)

	// The request carries only canonical field names.
	assert.Equal(t, "ORDER_NEW", received["type"])
	assert.Contains(t, received, "is_read")
	assert.NotContains(t, received, "read")
	assert.NotContains(t, received, "timestamp")
	// Recipient defaulted from the client scope.
	assert.Equal(t, "user-1", received["recipient_id"])
}
