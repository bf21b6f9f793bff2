package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/forgo/wander/engine/internal/database"
	"github.com/forgo/wander/engine/internal/model"
)

// ============================================================================
// Fake Streams
// ============================================================================

type fakeStream[T any] struct {
	updates chan T
	errs    chan error

	mu     sync.Mutex
	closed bool
}

func newFakeStream[T any]() *fakeStream[T] {
	return &fakeStream[T]{
		updates: make(chan T, 8),
		errs:    make(chan error, 1),
	}
}

func (s *fakeStream[T]) Updates() <-chan T { return s.updates }
func (s *fakeStream[T]) Err() <-chan error { return s.errs }

func (s *fakeStream[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeStream[T]) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type mockGroupWatchSource struct {
	stream *fakeStream[[]model.SharedGroup]
	err    error
}

func (m *mockGroupWatchSource) Watch(ctx context.Context, userID model.UserID) (database.Stream[[]model.SharedGroup], error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stream, nil
}

// mockTripWatchSource hands out one fake stream per group and remembers them
// so tests can count live watches.
type mockTripWatchSource struct {
	mu      sync.Mutex
	streams map[model.GroupID]*fakeStream[[]model.SharedTrip]
	opened  int
}

func newMockTripWatchSource() *mockTripWatchSource {
	return &mockTripWatchSource{streams: make(map[model.GroupID]*fakeStream[[]model.SharedTrip])}
}

func (m *mockTripWatchSource) Watch(ctx context.Context, groupID model.GroupID) (database.Stream[[]model.SharedTrip], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := newFakeStream[[]model.SharedTrip]()
	m.streams[groupID] = s
	m.opened++
	return s, nil
}

func (m *mockTripWatchSource) stream(groupID model.GroupID) *fakeStream[[]model.SharedTrip] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streams[groupID]
}

func (m *mockTripWatchSource) liveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.streams {
		if !s.isClosed() {
			n++
		}
	}
	return n
}

// ============================================================================
// Helper Functions
// ============================================================================

func newTestSyncService(groups *mockGroupWatchSource, trips *mockTripWatchSource) *SyncService {
	return NewSyncService(SyncServiceConfig{
		Groups: groups,
		Trips:  trips,
		Logger: slog.New(slog.DiscardHandler),
	})
}

func groupDoc(id model.GroupID, updated time.Time) model.SharedGroup {
	return model.SharedGroup{
		ID:            id,
		OwnerID:       "user:alice",
		SharedWith:    []model.UserID{"user:alice", "user:bob"},
		Collaborative: true,
		UpdatedOn:     updated,
	}
}

func tripDoc(id model.TripID, group model.GroupID, arrival *time.Time) model.SharedTrip {
	return model.SharedTrip{ID: id, GroupID: group, Arrival: arrival, Status: model.TripStatusUpcoming}
}

// waitFor reads snapshots off the feed until one satisfies the predicate.
// Intermediate snapshots are expected; the feed coalesces, so only the
// newest state matters.
func waitFor(t *testing.T, feed *GroupFeed, pred func([]model.GroupView) bool) []model.GroupView {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case views, ok := <-feed.Updates():
			if !ok {
				t.Fatal("feed closed before expected snapshot arrived")
			}
			if pred(views) {
				return views
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

// waitUntil polls a condition that is driven by the manager goroutine
// rather than by a feed emission.
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

// ============================================================================
// Subscribe Tests
// ============================================================================

func TestSubscribe_MissingUser_Rejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestSyncService(&mockGroupWatchSource{stream: newFakeStream[[]model.SharedGroup]()}, newMockTripWatchSource())

	_, err := svc.Subscribe(ctx, "")
	if !errors.Is(err, ErrMissingUser) {
		t.Errorf("expected ErrMissingUser, got %v", err)
	}
}

func TestSubscribe_GroupWatchFails_SurfacesError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestSyncService(&mockGroupWatchSource{err: errors.New("connection refused")}, newMockTripWatchSource())

	_, err := svc.Subscribe(ctx, "user:alice")
	if !errors.Is(err, model.ErrStoreUnavailable) {
		t.Errorf("expected store-unavailable category, got %v", err)
	}
}

func TestSubscribe_GroupVisibleAfterFirstTripSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	parent := newFakeStream[[]model.SharedGroup]()
	trips := newMockTripWatchSource()
	svc := newTestSyncService(&mockGroupWatchSource{stream: parent}, trips)

	feed, err := svc.Subscribe(ctx, "user:bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer feed.Close()

	parent.updates <- []model.SharedGroup{groupDoc("shared_group:g1", time.Now())}

	// Until the group's trips load, the group stays hidden.
	waitUntil(t, func() bool { return trips.stream("shared_group:g1") != nil })
	trips.stream("shared_group:g1").updates <- []model.SharedTrip{
		tripDoc("shared_trip:kyoto", "shared_group:g1", nil),
	}

	views := waitFor(t, feed, func(v []model.GroupView) bool { return len(v) == 1 })
	if views[0].Group.ID != "shared_group:g1" {
		t.Errorf("expected shared_group:g1, got %q", views[0].Group.ID)
	}
	if len(views[0].Trips) != 1 || views[0].Trips[0].ID != "shared_trip:kyoto" {
		t.Errorf("expected the group's trips nested in the view, got %v", views[0].Trips)
	}
}

func TestSubscribe_EmptyTripSnapshotHidesGroup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	parent := newFakeStream[[]model.SharedGroup]()
	trips := newMockTripWatchSource()
	svc := newTestSyncService(&mockGroupWatchSource{stream: parent}, trips)

	feed, err := svc.Subscribe(ctx, "user:bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer feed.Close()

	parent.updates <- []model.SharedGroup{groupDoc("shared_group:g1", time.Now())}
	waitUntil(t, func() bool { return trips.stream("shared_group:g1") != nil })

	ts := trips.stream("shared_group:g1")
	ts.updates <- []model.SharedTrip{tripDoc("shared_trip:kyoto", "shared_group:g1", nil)}
	waitFor(t, feed, func(v []model.GroupView) bool { return len(v) == 1 })

	// The last trip is removed; subscribers must never see the empty group
	// lingering while cleanup deletes the document.
	ts.updates <- []model.SharedTrip{}
	waitFor(t, feed, func(v []model.GroupView) bool { return len(v) == 0 })
}

func TestSubscribe_WatchPerGroup_ClosedWhenGroupLeaves(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	parent := newFakeStream[[]model.SharedGroup]()
	trips := newMockTripWatchSource()
	svc := newTestSyncService(&mockGroupWatchSource{stream: parent}, trips)

	feed, err := svc.Subscribe(ctx, "user:bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer feed.Close()

	now := time.Now()
	parent.updates <- []model.SharedGroup{
		groupDoc("shared_group:g1", now),
		groupDoc("shared_group:g2", now),
	}
	waitUntil(t, func() bool { return trips.liveCount() == 2 })

	// g1 leaves the snapshot: exactly its watch must be torn down.
	parent.updates <- []model.SharedGroup{groupDoc("shared_group:g2", now)}
	waitUntil(t, func() bool { return trips.liveCount() == 1 })

	if !trips.stream("shared_group:g1").isClosed() {
		t.Error("expected g1's trip watch closed after it left the parent snapshot")
	}
	if trips.stream("shared_group:g2").isClosed() {
		t.Error("expected g2's trip watch still live")
	}

	// The same group re-entering gets a fresh watch, never a reused one.
	parent.updates <- []model.SharedGroup{groupDoc("shared_group:g1", now), groupDoc("shared_group:g2", now)}
	waitUntil(t, func() bool { return trips.liveCount() == 2 })
}

func TestSubscribe_StaleTripUpdateForDroppedGroup_Ignored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	parent := newFakeStream[[]model.SharedGroup]()
	trips := newMockTripWatchSource()
	svc := newTestSyncService(&mockGroupWatchSource{stream: parent}, trips)

	feed, err := svc.Subscribe(ctx, "user:bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer feed.Close()

	parent.updates <- []model.SharedGroup{groupDoc("shared_group:g1", time.Now())}
	waitUntil(t, func() bool { return trips.stream("shared_group:g1") != nil })
	g1 := trips.stream("shared_group:g1")
	g1.updates <- []model.SharedTrip{tripDoc("shared_trip:kyoto", "shared_group:g1", nil)}
	waitFor(t, feed, func(v []model.GroupView) bool { return len(v) == 1 })

	// Drop g1, then deliver a late snapshot on its old stream.
	parent.updates <- []model.SharedGroup{}
	waitFor(t, feed, func(v []model.GroupView) bool { return len(v) == 0 })
	g1.updates <- []model.SharedTrip{tripDoc("shared_trip:oslo", "shared_group:g1", nil)}

	// The stale update must not resurrect the group.
	select {
	case views, ok := <-feed.Updates():
		if ok && len(views) != 0 {
			t.Errorf("stale trip update resurrected dropped group: %v", views)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribe_ViewsSortedByRecency_TripsByArrival(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	parent := newFakeStream[[]model.SharedGroup]()
	trips := newMockTripWatchSource()
	svc := newTestSyncService(&mockGroupWatchSource{stream: parent}, trips)

	feed, err := svc.Subscribe(ctx, "user:bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer feed.Close()

	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	parent.updates <- []model.SharedGroup{
		groupDoc("shared_group:old", older),
		groupDoc("shared_group:new", newer),
	}
	waitUntil(t, func() bool { return trips.liveCount() == 2 })

	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	january := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	trips.stream("shared_group:old").updates <- []model.SharedTrip{
		tripDoc("shared_trip:b", "shared_group:old", &march),
		tripDoc("shared_trip:c", "shared_group:old", &january),
		tripDoc("shared_trip:a", "shared_group:old", nil),
	}
	trips.stream("shared_group:new").updates <- []model.SharedTrip{
		tripDoc("shared_trip:d", "shared_group:new", nil),
	}

	views := waitFor(t, feed, func(v []model.GroupView) bool { return len(v) == 2 })

	if views[0].Group.ID != "shared_group:new" || views[1].Group.ID != "shared_group:old" {
		t.Errorf("expected most recently updated group first, got %q then %q",
			views[0].Group.ID, views[1].Group.ID)
	}

	got := views[1].Trips
	want := []model.TripID{"shared_trip:a", "shared_trip:c", "shared_trip:b"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("trips[%d] = %q, want %q (undated first, then by arrival)", i, got[i].ID, id)
		}
	}
}

func TestSubscribe_ParentError_Terminal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	parent := newFakeStream[[]model.SharedGroup]()
	trips := newMockTripWatchSource()
	svc := newTestSyncService(&mockGroupWatchSource{stream: parent}, trips)

	feed, err := svc.Subscribe(ctx, "user:bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer feed.Close()

	parent.updates <- []model.SharedGroup{groupDoc("shared_group:g1", time.Now())}
	waitUntil(t, func() bool { return trips.stream("shared_group:g1") != nil })

	parent.errs <- errors.New("websocket closed")

	select {
	case ferr := <-feed.Err():
		if !errors.Is(ferr, model.ErrStoreUnavailable) {
			t.Errorf("expected store-unavailable category, got %v", ferr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for terminal error")
	}

	// The feed shuts down fully: updates closes and every watch is released.
	waitUntil(t, func() bool { return trips.liveCount() == 0 })
	waitUntil(t, func() bool {
		select {
		case _, ok := <-feed.Updates():
			return !ok
		default:
			return false
		}
	})
	if !parent.isClosed() {
		t.Error("expected parent watch closed on terminal error")
	}
}

func TestSubscribe_TripWatchError_NotFatal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	parent := newFakeStream[[]model.SharedGroup]()
	trips := newMockTripWatchSource()
	svc := newTestSyncService(&mockGroupWatchSource{stream: parent}, trips)

	feed, err := svc.Subscribe(ctx, "user:bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer feed.Close()

	parent.updates <- []model.SharedGroup{groupDoc("shared_group:g1", time.Now())}
	waitUntil(t, func() bool { return trips.stream("shared_group:g1") != nil })
	ts := trips.stream("shared_group:g1")

	ts.updates <- []model.SharedTrip{tripDoc("shared_trip:kyoto", "shared_group:g1", nil)}
	waitFor(t, feed, func(v []model.GroupView) bool { return len(v) == 1 })

	// A transient fetch failure keeps the last known trips in place.
	ts.errs <- errors.New("query timeout")

	select {
	case ferr := <-feed.Err():
		t.Fatalf("trip watch error must not kill the feed, got %v", ferr)
	case <-time.After(100 * time.Millisecond):
	}

	// The stream recovers and the feed keeps flowing.
	ts.updates <- []model.SharedTrip{
		tripDoc("shared_trip:kyoto", "shared_group:g1", nil),
		tripDoc("shared_trip:oslo", "shared_group:g1", nil),
	}
	waitFor(t, feed, func(v []model.GroupView) bool {
		return len(v) == 1 && len(v[0].Trips) == 2
	})
}

func TestFeedClose_ReleasesAllWatches_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	parent := newFakeStream[[]model.SharedGroup]()
	trips := newMockTripWatchSource()
	svc := newTestSyncService(&mockGroupWatchSource{stream: parent}, trips)

	feed, err := svc.Subscribe(ctx, "user:bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := time.Now()
	parent.updates <- []model.SharedGroup{
		groupDoc("shared_group:g1", now),
		groupDoc("shared_group:g2", now),
		groupDoc("shared_group:g3", now),
	}
	waitUntil(t, func() bool { return trips.liveCount() == 3 })

	feed.Close()
	feed.Close()

	waitUntil(t, func() bool { return trips.liveCount() == 0 })
	if !parent.isClosed() {
		t.Error("expected parent watch closed")
	}
}
