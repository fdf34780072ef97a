// Package feed implements the change-feed subscription layer. A subscription
// delivers the full current snapshot of one logical path on attach and again
// after every published change on that path. Local state stays a disposable
// cache: there are no deltas to merge.
package feed

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository"
)

// LoadFunc produces the full current snapshot of a path. On error it must
// still return a usable empty value (an empty list, a zero struct), which the
// subscription delivers as the degraded fallback.
type LoadFunc func(ctx context.Context) (interface{}, error)

// SnapshotFunc receives each snapshot. It is never called concurrently with
// itself for one subscription, and never after Cancel has returned.
type SnapshotFunc func(snapshot interface{})

// ErrorFunc receives load and transport errors. Errors are not fatal to the
// subscription; delivery continues with the next change.
type ErrorFunc func(err error)

// Manager owns a set of subscriptions and tears all of them down together
// when its owning scope ends.
type Manager struct {
	state repository.StateRepository

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func NewManager(state repository.StateRepository) *Manager {
	if state == nil {
		panic("StateRepository cannot be nil for feed.Manager")
	}
	return &Manager{
		state: state,
		subs:  make(map[*Subscription]struct{}),
	}
}

// Subscription is a single live registration. Cancel is safe to call more
// than once and from any goroutine.
type Subscription struct {
	manager    *Manager
	campaignID string
	path       string

	load       LoadFunc
	onSnapshot SnapshotFunc
	onError    ErrorFunc

	// deliverMu serializes snapshot delivery against Cancel, so that once
	// Cancel returns no further callback can fire.
	deliverMu sync.Mutex
	canceled  bool

	closeFeed func() error
	done      chan struct{}
	once      sync.Once
}

// Subscribe attaches to a path. The initial snapshot is delivered from the
// subscribing goroutine before Subscribe returns, so callers start with the
// full current state rather than waiting for the first change.
func (m *Manager) Subscribe(ctx context.Context, campaignID, path string, load LoadFunc, onSnapshot SnapshotFunc, onError ErrorFunc) (*Subscription, error) {
	if load == nil || onSnapshot == nil {
		panic("feed: load and onSnapshot are required")
	}
	if onError == nil {
		onError = func(error) {}
	}

	events, closeFeed, err := m.state.SubscribeChanges(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		manager:    m,
		campaignID: campaignID,
		path:       path,
		load:       load,
		onSnapshot: onSnapshot,
		onError:    onError,
		closeFeed:  closeFeed,
		done:       make(chan struct{}),
	}

	m.mu.Lock()
	m.subs[sub] = struct{}{}
	m.mu.Unlock()

	sub.deliver(ctx)
	go sub.run(ctx, events)
	return sub, nil
}

// CancelAll tears down every live subscription the manager owns.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	subs := make([]*Subscription, 0, len(m.subs))
	for sub := range m.subs {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

func (m *Manager) forget(sub *Subscription) {
	m.mu.Lock()
	delete(m.subs, sub)
	m.mu.Unlock()
}

// run pumps change events into snapshot reloads until the feed closes or the
// context ends.
func (s *Subscription) run(ctx context.Context, events <-chan domain.ChangeEvent) {
	logCtx := logrus.WithFields(logrus.Fields{
		"campaign_id": s.campaignID,
		"path":        s.path,
	})
	for {
		select {
		case <-ctx.Done():
			s.Cancel()
			return
		case <-s.done:
			return
		case event, ok := <-events:
			if !ok {
				logCtx.Debug("feed: event channel closed")
				return
			}
			if event.Path != s.path {
				continue
			}
			s.deliver(ctx)
		}
	}
}

// deliver loads the full snapshot and hands it to the callback. A failed load
// degrades to the loader's empty value instead of surfacing a hard error;
// permission on freshly created records can lag the write, and the next
// change event retries implicitly.
func (s *Subscription) deliver(ctx context.Context) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.canceled {
		return
	}

	snapshot, err := s.load(ctx)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"campaign_id": s.campaignID,
			"path":        s.path,
		}).Warn("feed: snapshot load failed, delivering empty state")
		s.onError(err)
	}
	s.onSnapshot(snapshot)
}

// Cancel detaches the subscription. When it returns, no further onSnapshot or
// onError call will be made.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.deliverMu.Lock()
		s.canceled = true
		s.deliverMu.Unlock()

		close(s.done)
		if err := s.closeFeed(); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"campaign_id": s.campaignID,
				"path":        s.path,
			}).Warn("feed: error closing change subscription")
		}
		s.manager.forget(s)
	})
}
