package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/gateway"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/notify"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/sound"
)

// fakeSubscription counts Close calls.
type fakeSubscription struct {
	closed int
}

func (s *fakeSubscription) Close() error {
	s.closed++
	return nil
}

// fakeGateway records subscription pairs handed to the manager.
type fakeGateway struct {
	insertSubs []*fakeSubscription
	updateSubs []*fakeSubscription

	insertFns []gateway.InsertFunc
	updateFns []gateway.UpdateFunc

	subscribeUpdatesErr error
}

func (f *fakeGateway) FetchPage(_ context.Context, _ int) ([]model.Notification, error) {
	return nil, nil
}

func (f *fakeGateway) FetchUnreadCount(_ context.Context) (int, error) {
	return 0, nil
}

func (f *fakeGateway) MarkRead(_ context.Context, _ string) error { return nil }

func (f *fakeGateway) MarkAllRead(_ context.Context) error { return nil }

func (f *fakeGateway) Delete(_ context.Context, _ string) error { return nil }

func (f *fakeGateway) Create(_ context.Context, n model.Notification) (model.Notification, error) {
	return n, nil
}

func (f *fakeGateway) SubscribeInserts(_ context.Context, _ string, fn gateway.InsertFunc) (gateway.Subscription, error) {
	sub := &fakeSubscription{}
	f.insertSubs = append(f.insertSubs, sub)
	f.insertFns = append(f.insertFns, fn)
	return sub, nil
}

func (f *fakeGateway) SubscribeUpdates(_ context.Context, _ string, fn gateway.UpdateFunc) (gateway.Subscription, error) {
	if f.subscribeUpdatesErr != nil {
		return nil, f.subscribeUpdatesErr
	}
	sub := &fakeSubscription{}
	f.updateSubs = append(f.updateSubs, sub)
	f.updateFns = append(f.updateFns, fn)
	return sub, nil
}

func newTestManager(gw gateway.Gateway) (*Manager, *notify.Store) {
	store := notify.NewStore()
	return New(gw, store, sound.NewPlayer(false), 50), store
}

func TestManagerOpensExactlyOnePairPerIdentity(t *testing.T) {
	gw := &fakeGateway{}
	m, _ := newTestManager(gw)

	m.SetIdentity("user-1", model.RoleAdmin)

	assert.Len(t, gw.insertSubs, 1)
	assert.Len(t, gw.updateSubs, 1)

	state, err := m.Status()
	assert.Equal(t, StreamLive, state)
	assert.NoError(t, err)
}

func TestManagerIdentityChangeTearsDownOldPair(t *testing.T) {
	gw := &fakeGateway{}
	m, store := newTestManager(gw)

	m.SetIdentity("user-1", model.RoleAdmin)
	store.Add(model.Notification{ID: "stale", Type: model.TypeOrderNew})

	m.SetIdentity("user-2", model.RoleCS)

	// Old pair closed, new pair open, no overlap.
	require.Len(t, gw.insertSubs, 2)
	require.Len(t, gw.updateSubs, 2)
	assert.Equal(t, 1, gw.insertSubs[0].closed)
	assert.Equal(t, 1, gw.updateSubs[0].closed)
	assert.Equal(t, 0, gw.insertSubs[1].closed)
	assert.Equal(t, 0, gw.updateSubs[1].closed)

	// Identity change empties the previous user's data.
	assert.Equal(t, 0, store.Len())
}

func TestManagerStopClosesPairAndIsIdempotent(t *testing.T) {
	gw := &fakeGateway{}
	m, _ := newTestManager(gw)

	m.SetIdentity("user-1", model.RoleAdmin)
	m.Stop()
	m.Stop()

	require.Len(t, gw.insertSubs, 1)
	assert.Equal(t, 1, gw.insertSubs[0].closed)
	assert.Equal(t, 1, gw.updateSubs[0].closed)

	state, _ := m.Status()
	assert.Equal(t, StreamIdle, state)
}

func TestManagerNeverLeavesHalfOpenPair(t *testing.T) {
	gw := &fakeGateway{
		subscribeUpdatesErr: errors.New("stream refused"),
	}
	m, _ := newTestManager(gw)

	m.SetIdentity("user-1", model.RoleAdmin)

	// The insert sub that succeeded must be closed when the update sub
	// fails to open.
	require.Len(t, gw.insertSubs, 1)
	assert.Equal(t, 1, gw.insertSubs[0].closed)

	state, err := m.Status()
	assert.Equal(t, StreamError, state)
	assert.Error(t, err)
}

func TestManagerInsertCallbackMergesAndEmitsEvent(t *testing.T) {
	gw := &fakeGateway{}
	m, store := newTestManager(gw)

	m.SetIdentity("user-1", model.RoleAdmin)
	require.Len(t, gw.insertFns, 1)

	gw.insertFns[0](model.Notification{ID: "n1", Type: model.TypeOrderNew})

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, store.UnreadCount())

	msg := m.WaitForNextEvent()()
	event, ok := msg.(EventMsg)
	require.True(t, ok)
	assert.Equal(t, EventInserted, event.Kind)
	assert.Equal(t, "n1", event.Notification.ID)
}

func TestManagerInsertCallbackDropsInvisibleTypes(t *testing.T) {
	gw := &fakeGateway{}
	m, store := newTestManager(gw)

	m.SetIdentity("user-1", model.RoleCS)
	require.Len(t, gw.insertFns, 1)

	gw.insertFns[0](model.Notification{ID: "n1", Type: model.TypeSystemAlert})

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, store.UnreadCount())
}

func TestManagerUpdateCallbackPatchesExistingRow(t *testing.T) {
	gw := &fakeGateway{}
	m, store := newTestManager(gw)

	m.SetIdentity("user-1", model.RoleAdmin)
	require.Len(t, gw.updateFns, 1)

	gw.insertFns[0](model.Notification{ID: "n1", Type: model.TypeOrderNew})
	// Drain the insert event so the update event is next.
	m.WaitForNextEvent()()

	gw.updateFns[0](model.Notification{ID: "n1", Type: model.TypeOrderNew, IsRead: true})

	assert.Equal(t, 0, store.UnreadCount())

	msg := m.WaitForNextEvent()()
	event, ok := msg.(EventMsg)
	require.True(t, ok)
	assert.Equal(t, EventUpdated, event.Kind)
}

func TestManagerStatusLine(t *testing.T) {
	gw := &fakeGateway{}
	m, _ := newTestManager(gw)

	assert.Equal(t, "offline", m.StatusLine())

	m.SetIdentity("user-1", model.RoleAdmin)
	assert.Equal(t, "live", m.StatusLine())

	m.Stop()
	assert.Equal(t, "offline", m.StatusLine())
}
