package feed_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/feed"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository/mocks"
)

type feedFixture struct {
	manager   *feed.Manager
	events    chan domain.ChangeEvent
	closed    chan struct{}
	snapshots chan interface{}
	errs      chan error
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	stateRepo := new(mocks.StateRepository)
	events := make(chan domain.ChangeEvent, 8)
	closed := make(chan struct{}, 2)
	closeFeed := func() error {
		closed <- struct{}{}
		return nil
	}
	stateRepo.On("SubscribeChanges", context.Background(), "c-1").
		Return((<-chan domain.ChangeEvent)(events), closeFeed, nil)

	return &feedFixture{
		manager:   feed.NewManager(stateRepo),
		events:    events,
		closed:    closed,
		snapshots: make(chan interface{}, 8),
		errs:      make(chan error, 8),
	}
}

func (f *feedFixture) subscribe(t *testing.T, path string, load feed.LoadFunc) *feed.Subscription {
	t.Helper()
	sub, err := f.manager.Subscribe(context.Background(), "c-1", path, load,
		func(snapshot interface{}) { f.snapshots <- snapshot },
		func(err error) { f.errs <- err },
	)
	require.NoError(t, err)
	return sub
}

func (f *feedFixture) waitSnapshot(t *testing.T) interface{} {
	t.Helper()
	select {
	case snapshot := <-f.snapshots:
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func (f *feedFixture) assertNoSnapshot(t *testing.T) {
	t.Helper()
	select {
	case snapshot := <-f.snapshots:
		t.Fatalf("unexpected snapshot: %v", snapshot)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribe_DeliversInitialSnapshotBeforeReturning(t *testing.T) {
	f := newFeedFixture(t)

	f.subscribe(t, domain.PathPresence, func(context.Context) (interface{}, error) {
		return []string{"p1"}, nil
	})

	// Subscribe has returned, so the initial snapshot must already be queued.
	select {
	case snapshot := <-f.snapshots:
		assert.Equal(t, []string{"p1"}, snapshot)
	default:
		t.Fatal("no initial snapshot delivered")
	}
}

func TestSubscribe_ReloadsOnMatchingPathOnly(t *testing.T) {
	f := newFeedFixture(t)
	version := 0
	f.subscribe(t, domain.PathSessions, func(context.Context) (interface{}, error) {
		version++
		return version, nil
	})
	assert.Equal(t, 1, f.waitSnapshot(t))

	f.events <- domain.ChangeEvent{Path: domain.PathConversations}
	f.assertNoSnapshot(t)

	f.events <- domain.ChangeEvent{Path: domain.PathSessions}
	assert.Equal(t, 2, f.waitSnapshot(t))
}

func TestSubscription_NoCallbacksAfterCancel(t *testing.T) {
	f := newFeedFixture(t)
	sub := f.subscribe(t, domain.PathPresence, func(context.Context) (interface{}, error) {
		return nil, nil
	})
	f.waitSnapshot(t)

	sub.Cancel()
	select {
	case <-f.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not close the change feed")
	}

	f.events <- domain.ChangeEvent{Path: domain.PathPresence}
	f.assertNoSnapshot(t)

	// A second Cancel is a no-op, not a double close.
	sub.Cancel()
}

func TestSubscription_LoadErrorDegradesToEmptyValue(t *testing.T) {
	f := newFeedFixture(t)

	f.subscribe(t, domain.PathPresence, func(context.Context) (interface{}, error) {
		return []domain.Presence{}, assert.AnError
	})

	snapshot := f.waitSnapshot(t)
	assert.Equal(t, []domain.Presence{}, snapshot, "the loader's empty value still arrives")
	select {
	case err := <-f.errs:
		assert.ErrorIs(t, err, assert.AnError)
	default:
		t.Fatal("load error was not reported")
	}
}

func TestManager_CancelAll(t *testing.T) {
	f := newFeedFixture(t)
	load := func(context.Context) (interface{}, error) { return nil, nil }
	f.subscribe(t, domain.PathPresence, load)
	f.subscribe(t, domain.PathSessions, load)
	f.waitSnapshot(t)
	f.waitSnapshot(t)

	f.manager.CancelAll()

	f.events <- domain.ChangeEvent{Path: domain.PathPresence}
	f.events <- domain.ChangeEvent{Path: domain.PathSessions}
	f.assertNoSnapshot(t)
}
