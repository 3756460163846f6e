package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/gateway"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
)

// fakeGateway is a scriptable in-memory gateway for service tests.
type fakeGateway struct {
	page        []model.Notification
	unreadCount int

	fetchPageErr error
	markReadErr  error
	deleteErr    error

	// duringFetch runs inside FetchPage, simulating realtime events
	// arriving while the initial fetch is in flight.
	duringFetch func()

	markedRead    []string
	markedAllRead int
	deleted       []string
}

func (f *fakeGateway) FetchPage(_ context.Context, _ int) ([]model.Notification, error) {
	if f.duringFetch != nil {
		f.duringFetch()
	}
	return f.page, f.fetchPageErr
}

func (f *fakeGateway) FetchUnreadCount(_ context.Context) (int, error) {
	return f.unreadCount, nil
}

func (f *fakeGateway) MarkRead(_ context.Context, id string) error {
	if f.markReadErr != nil {
		return f.markReadErr
	}
	f.markedRead = append(f.markedRead, id)
	return nil
}

func (f *fakeGateway) MarkAllRead(_ context.Context) error {
	f.markedAllRead++
	return nil
}

func (f *fakeGateway) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeGateway) Create(_ context.Context, n model.Notification) (model.Notification, error) {
	return n, nil
}

func (f *fakeGateway) SubscribeInserts(_ context.Context, _ string, _ gateway.InsertFunc) (gateway.Subscription, error) {
	return nil, errors.New("not used")
}

func (f *fakeGateway) SubscribeUpdates(_ context.Context, _ string, _ gateway.UpdateFunc) (gateway.Subscription, error) {
	return nil, errors.New("not used")
}

func TestServiceLoadInitialFiltersAndSeedsCount(t *testing.T) {
	gw := &fakeGateway{
		page: []model.Notification{
			typed("a", model.TypeOrderNew),
			typed("b", model.TypeSystemAlert),
		},
		unreadCount: 4,
	}
	store := NewStore()
	svc := NewService(gw, store, model.RoleCS)

	err := svc.LoadInitial(context.Background(), 50)
	require.NoError(t, err)

	// System alert is invisible to cs.
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 4, store.UnreadCount())
	assert.Equal(t, PhaseReady, store.Phase())
}

func TestServiceLoadInitialMergesEventsThatRacedTheFetch(t *testing.T) {
	// An insert event can arrive between the fetch leaving and its result
	// being applied. The snapshot-and-redeliver step must keep it, and the
	// dedup must stop it from appearing twice when the page also has it.
	store := NewStore()
	gw := &fakeGateway{
		page: []model.Notification{
			typed("fetched", model.TypeOrderNew),
			typed("racer", model.TypeOrderNew),
		},
		unreadCount: 2,
	}
	svc := NewService(gw, store, model.RoleAdmin)

	gw.duringFetch = func() {
		// Simulates the subscription callback firing mid-fetch: one row
		// the page also contains, one it does not.
		svc.Deliver(typed("racer", model.TypeOrderNew))
		svc.Deliver(typed("fresh", model.TypeOrderNew))
	}

	err := svc.LoadInitial(context.Background(), 50)
	require.NoError(t, err)

	snap := store.Snapshot()
	ids := make(map[string]int)
	for _, n := range snap {
		ids[n.ID]++
	}
	assert.Equal(t, 1, ids["fetched"])
	assert.Equal(t, 1, ids["racer"], "raced event must not duplicate the fetched row")
	assert.Equal(t, 1, ids["fresh"], "event missing from the page must survive the reload")
	assert.Equal(t, 3, store.Len())
}

func TestServiceLoadInitialRecordsFetchError(t *testing.T) {
	gw := &fakeGateway{
		fetchPageErr: gateway.NewError(gateway.KindTransport, "fetch page", errors.New("dial tcp: refused")),
	}
	store := NewStore()
	svc := NewService(gw, store, model.RoleAdmin)

	err := svc.LoadInitial(context.Background(), 50)
	require.Error(t, err)
	assert.Equal(t, PhaseErrored, store.Phase())
	assert.NotEmpty(t, store.Err())
}

func TestServiceDeliverAppliesRoleFilter(t *testing.T) {
	store := NewStore()
	svc := NewService(&fakeGateway{}, store, model.RoleCS)

	assert.True(t, svc.Deliver(typed("order", model.TypeOrderNew)))
	assert.False(t, svc.Deliver(typed("alert", model.TypeSystemAlert)))
	assert.Equal(t, 1, store.Len())
}

func TestServiceMarkReadPatchesStoreOnSuccess(t *testing.T) {
	store := NewStore()
	store.Add(makeNotification("n1", false))
	gw := &fakeGateway{}
	svc := NewService(gw, store, model.RoleAdmin)

	err := svc.MarkRead(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, gw.markedRead)
	assert.Equal(t, 0, store.UnreadCount())
}

func TestServiceMarkReadKeepsStoreOnFailure(t *testing.T) {
	store := NewStore()
	store.Add(makeNotification("n1", false))
	gw := &fakeGateway{
		markReadErr: gateway.NewError(gateway.KindTransport, "mark read", errors.New("timeout")),
	}
	svc := NewService(gw, store, model.RoleAdmin)

	err := svc.MarkRead(context.Background(), "n1")
	require.Error(t, err)
	assert.Equal(t, 1, store.UnreadCount(), "failed call must not patch the store")
	assert.NotEmpty(t, store.Err())
}

func TestServiceDeleteTreatsNotFoundAsSuccess(t *testing.T) {
	store := NewStore()
	store.Add(makeNotification("n1", false))
	gw := &fakeGateway{
		deleteErr: gateway.NewError(gateway.KindNotFound, "delete", errors.New("notification n1")),
	}
	svc := NewService(gw, store, model.RoleAdmin)

	err := svc.Delete(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len(), "row already gone server-side still leaves the store")
}
