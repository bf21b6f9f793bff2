package service

import (
	"context"

	"github.com/forgo/wander/engine/internal/identity"
	"github.com/forgo/wander/engine/internal/model"
)

// PersonalTripLister lists a user's personal trips for sharing
type PersonalTripLister interface {
	ListByOwner(ctx context.Context, owner model.UserID) ([]*model.Trip, error)
}

// FriendLister lists a user's friendships
type FriendLister interface {
	ListByUser(ctx context.Context, userID model.UserID) ([]model.Friendship, error)
}

// Engine is the single entry point the application layer talks to. It
// resolves the acting user from the identity provider and delegates to the
// underlying services; every call fails with ErrNotAuthenticated when no
// user is signed in.
type Engine struct {
	identity    identity.Provider
	sync        *SyncService
	share       *ShareService
	mutate      *MutationService
	cleanup     *CleanupService
	materialize *MaterializeService
	trips       PersonalTripLister
	friends     FriendLister
}

// EngineConfig holds configuration for the engine facade
type EngineConfig struct {
	Identity    identity.Provider
	Sync        *SyncService
	Share       *ShareService
	Mutate      *MutationService
	Cleanup     *CleanupService
	Materialize *MaterializeService
	Trips       PersonalTripLister
	Friends     FriendLister
}

// NewEngine creates a new engine facade
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		identity:    cfg.Identity,
		sync:        cfg.Sync,
		share:       cfg.Share,
		mutate:      cfg.Mutate,
		cleanup:     cfg.Cleanup,
		materialize: cfg.Materialize,
		trips:       cfg.Trips,
		friends:     cfg.Friends,
	}
}

func (e *Engine) actor() (*model.User, error) {
	u := e.identity.CurrentUser()
	if u == nil || u.ID.IsZero() {
		return nil, ErrNotAuthenticated
	}
	return u, nil
}

// Subscribe opens the signed-in user's live shared-group feed
func (e *Engine) Subscribe(ctx context.Context) (*GroupFeed, error) {
	u, err := e.actor()
	if err != nil {
		return nil, err
	}
	return e.sync.Subscribe(ctx, u.ID)
}

// Share publishes the selected personal trips into a new shared group with
// the selected friends and returns the group's id.
func (e *Engine) Share(ctx context.Context, tripIDs []model.TripID, friendIDs []model.UserID) (model.GroupID, error) {
	u, err := e.actor()
	if err != nil {
		return "", err
	}
	owned, err := e.trips.ListByOwner(ctx, u.ID)
	if err != nil {
		return "", wrapStore(err)
	}
	personal := make([]model.Trip, 0, len(owned))
	for _, t := range owned {
		personal = append(personal, *t)
	}
	return e.share.Share(ctx, *u, personal, tripIDs, friendIDs)
}

// ToggleStatus advances a trip's status one step around the cycle
func (e *Engine) ToggleStatus(ctx context.Context, id model.TripID) error {
	u, err := e.actor()
	if err != nil {
		return err
	}
	return e.mutate.ToggleStatus(ctx, *u, id)
}

// EditTrip replaces a trip's editable fields with the patch
func (e *Engine) EditTrip(ctx context.Context, id model.TripID, patch model.TripPatch) error {
	u, err := e.actor()
	if err != nil {
		return err
	}
	return e.mutate.EditTrip(ctx, *u, id, patch)
}

// RemoveTrip deletes a trip, cleaning up its group if that emptied it
func (e *Engine) RemoveTrip(ctx context.Context, id model.TripID) error {
	u, err := e.actor()
	if err != nil {
		return err
	}
	return e.mutate.RemoveTrip(ctx, *u, id)
}

// Materialize copies a shared group's trips into the signed-in user's
// personal collection.
func (e *Engine) Materialize(ctx context.Context, groupID model.GroupID) error {
	u, err := e.actor()
	if err != nil {
		return err
	}
	return e.materialize.Materialize(ctx, u.ID, groupID)
}

// SweepEmptyGroups removes the signed-in user's lingering empty groups
func (e *Engine) SweepEmptyGroups(ctx context.Context) (SweepResult, error) {
	u, err := e.actor()
	if err != nil {
		return SweepResult{}, err
	}
	return e.cleanup.Sweep(ctx, u.ID)
}

// Friends lists the signed-in user's friendships
func (e *Engine) Friends(ctx context.Context) ([]model.Friendship, error) {
	u, err := e.actor()
	if err != nil {
		return nil, err
	}
	out, err := e.friends.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, wrapStore(err)
	}
	return out, nil
}
