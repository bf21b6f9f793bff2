package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/forgo/wander/engine/internal/database"
	"github.com/forgo/wander/engine/internal/model"
)

// GroupWatchSource opens live views over the groups a user participates in
type GroupWatchSource interface {
	Watch(ctx context.Context, userID model.UserID) (database.Stream[[]model.SharedGroup], error)
}

// TripWatchSource opens live views over one group's trips
type TripWatchSource interface {
	Watch(ctx context.Context, groupID model.GroupID) (database.Stream[[]model.SharedTrip], error)
}

// SyncService presents each subscriber with a live, deduplicated list of the
// shared groups they participate in, holding exactly one group watch plus
// one trip watch per currently visible group.
type SyncService struct {
	groups GroupWatchSource
	trips  TripWatchSource
	logger *slog.Logger
}

// SyncServiceConfig holds configuration for the sync service
type SyncServiceConfig struct {
	Groups GroupWatchSource
	Trips  TripWatchSource
	Logger *slog.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{
		groups: cfg.Groups,
		trips:  cfg.Trips,
		logger: logger,
	}
}

// GroupFeed is a subscriber's live view of their shared groups.
//
// Updates emits a fresh, fully sorted snapshot on every relevant change.
// Err emits at most one terminal error: once the parent group query fails the
// feed is dead and Updates is closed; the caller recreates the subscription.
// Close releases every watch the feed holds and is idempotent.
type GroupFeed struct {
	updates   chan []model.GroupView
	errs      chan error
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Updates yields group snapshots, newest state first when the consumer lags
func (f *GroupFeed) Updates() <-chan []model.GroupView {
	return f.updates
}

// Err yields the terminal feed error, if any
func (f *GroupFeed) Err() <-chan error {
	return f.errs
}

// Close tears down the feed and all of its watches. Safe to call repeatedly.
func (f *GroupFeed) Close() {
	f.closeOnce.Do(f.cancel)
}

// Subscribe opens a feed of the user's shared groups with nested trips.
//
// Internally one watch follows the parent group query; a per-group trip
// watch is started for every group that appears in the parent snapshot and
// cancelled for every group that leaves it. A group becomes visible once its
// trip watch has delivered a non-empty snapshot, and is hidden the moment a
// snapshot arrives empty, so subscribers never see the window between the
// last trip's removal and the group document's deletion.
func (s *SyncService) Subscribe(ctx context.Context, userID model.UserID) (*GroupFeed, error) {
	if userID.IsZero() {
		return nil, ErrMissingUser
	}

	parent, err := s.groups.Watch(ctx, userID)
	if err != nil {
		return nil, wrapStore(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	feed := &GroupFeed{
		updates: make(chan []model.GroupView, 1),
		errs:    make(chan error, 1),
		cancel:  cancel,
	}

	m := &feedManager{
		service: s,
		userID:  userID,
		feed:    feed,
		parent:  parent,
		tracked: make(map[model.GroupID]*trackedGroup),
		events:  make(chan tripEvent),
		errors:  make(chan tripError),
	}
	go m.run(ctx)

	return feed, nil
}

// trackedGroup is the manager's record of one group visible in the parent
// snapshot: its latest document, its trip watch, and the last trip snapshot
// that watch delivered.
type trackedGroup struct {
	group       model.SharedGroup
	stream      database.Stream[[]model.SharedTrip]
	trips       []model.SharedTrip
	hasSnapshot bool
}

type tripEvent struct {
	groupID model.GroupID
	trips   []model.SharedTrip
}

type tripError struct {
	groupID model.GroupID
	err     error
}

type feedManager struct {
	service *SyncService
	userID  model.UserID
	feed    *GroupFeed
	parent  database.Stream[[]model.SharedGroup]
	tracked map[model.GroupID]*trackedGroup
	events  chan tripEvent
	errors  chan tripError
}

func (m *feedManager) run(ctx context.Context) {
	defer func() {
		m.parent.Close()
		for _, tg := range m.tracked {
			tg.stream.Close()
		}
		close(m.feed.updates)
	}()

	for {
		select {
		case snapshot, ok := <-m.parent.Updates():
			if !ok {
				return
			}
			m.applyParentSnapshot(ctx, snapshot)
			m.emit(ctx)

		case err := <-m.parent.Err():
			// Parent failure is terminal: surface it and shut down.
			m.service.logger.Error("group feed failed",
				slog.String("user", string(m.userID)),
				slog.String("error", err.Error()),
			)
			select {
			case m.feed.errs <- wrapStore(err):
			default:
			}
			return

		case ev := <-m.events:
			// Trip updates for groups the parent has already dropped (or
			// never reported) are ignored; their watches are torn down on
			// the next parent diff at the latest.
			tg, ok := m.tracked[ev.groupID]
			if !ok {
				continue
			}
			tg.trips = ev.trips
			tg.hasSnapshot = true
			m.emit(ctx)

		case te := <-m.errors:
			// One group failing to load leaves its last known trips in
			// place; partial availability is not fatal.
			m.service.logger.Warn("trip watch error",
				slog.String("group", string(te.groupID)),
				slog.String("error", te.err.Error()),
			)

		case <-ctx.Done():
			return
		}
	}
}

// applyParentSnapshot diffs the new parent snapshot against the tracked set:
// watches are cancelled for groups that left the snapshot and started for
// groups that entered it, keyed by group id.
func (m *feedManager) applyParentSnapshot(ctx context.Context, snapshot []model.SharedGroup) {
	current := make(map[model.GroupID]model.SharedGroup, len(snapshot))
	for _, g := range snapshot {
		current[g.ID] = g
	}

	for id, tg := range m.tracked {
		if _, ok := current[id]; !ok {
			tg.stream.Close()
			delete(m.tracked, id)
		}
	}

	for id, g := range current {
		if tg, ok := m.tracked[id]; ok {
			tg.group = g
			continue
		}
		stream, err := m.service.trips.Watch(ctx, id)
		if err != nil {
			// Left untracked; the next parent snapshot retries the watch.
			m.service.logger.Warn("trip watch failed to start",
				slog.String("group", string(id)),
				slog.String("error", err.Error()),
			)
			continue
		}
		m.tracked[id] = &trackedGroup{group: g, stream: stream}
		go m.forward(ctx, id, stream)
	}
}

// forward funnels one trip stream into the manager's event channel
func (m *feedManager) forward(ctx context.Context, id model.GroupID, stream database.Stream[[]model.SharedTrip]) {
	for {
		select {
		case trips, ok := <-stream.Updates():
			if !ok {
				return
			}
			select {
			case m.events <- tripEvent{groupID: id, trips: trips}:
			case <-ctx.Done():
				return
			}
		case err := <-stream.Err():
			select {
			case m.errors <- tripError{groupID: id, err: err}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// emit publishes the current visible state, replacing any unconsumed
// snapshot so a slow subscriber only ever sees the freshest state.
func (m *feedManager) emit(ctx context.Context) {
	views := make([]model.GroupView, 0, len(m.tracked))
	for _, tg := range m.tracked {
		// Withhold groups whose trips have not loaded yet, and hide groups
		// whose trips just hit zero; cleanup deletes the document shortly.
		if !tg.hasSnapshot || len(tg.trips) == 0 {
			continue
		}
		views = append(views, model.GroupView{
			Group: tg.group,
			Trips: sortTrips(tg.trips),
		})
	}
	sortViews(views)

	select {
	case <-m.feed.updates:
	default:
	}
	select {
	case m.feed.updates <- views:
	case <-ctx.Done():
	}
}

// sortViews orders groups by recency, newest first, with the id as a
// deterministic tiebreaker.
func sortViews(views []model.GroupView) {
	sort.Slice(views, func(i, j int) bool {
		a, b := views[i].Group, views[j].Group
		if !a.UpdatedOn.Equal(b.UpdatedOn) {
			return a.UpdatedOn.After(b.UpdatedOn)
		}
		return a.ID < b.ID
	})
}

// sortTrips orders trips by arrival date ascending; trips without a date
// sort first, ties break on id.
func sortTrips(trips []model.SharedTrip) []model.SharedTrip {
	out := make([]model.SharedTrip, len(trips))
	copy(out, trips)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Arrival == nil && b.Arrival == nil:
			return a.ID < b.ID
		case a.Arrival == nil:
			return true
		case b.Arrival == nil:
			return false
		case !a.Arrival.Equal(*b.Arrival):
			return a.Arrival.Before(*b.Arrival)
		default:
			return a.ID < b.ID
		}
	})
	return out
}
