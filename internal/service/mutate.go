package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgo/wander/engine/internal/model"
)

// SharedTripStore is the shared trip access the mutation service needs
type SharedTripStore interface {
	GetByID(ctx context.Context, id model.TripID) (*model.SharedTrip, error)
	UpdateStatus(ctx context.Context, id model.TripID, status model.TripStatus, editor model.User) error
	ApplyPatch(ctx context.Context, id model.TripID, patch model.TripPatch, editor model.User) error
	Delete(ctx context.Context, id model.TripID) error
}

// PersonalTripStore is the personal trip access the mutation service needs
type PersonalTripStore interface {
	GetByID(ctx context.Context, id model.TripID) (*model.Trip, error)
	UpdateStatus(ctx context.Context, id model.TripID, status model.TripStatus) error
	ApplyPatch(ctx context.Context, id model.TripID, patch model.TripPatch) error
	Delete(ctx context.Context, id model.TripID) error
}

// GroupReader loads and touches group documents
type GroupReader interface {
	GetByID(ctx context.Context, id model.GroupID) (*model.SharedGroup, error)
	Touch(ctx context.Context, id model.GroupID) error
}

// GroupCleaner is the follow-up hook run after a shared trip is removed.
// Implemented by CleanupService; the mutator never contains lifecycle logic
// itself.
type GroupCleaner interface {
	CheckGroup(ctx context.Context, actor model.UserID, groupID model.GroupID) error
}

// MutationService gates and applies edits to trips, shared or personal.
// Every shared mutation is authorized through model.CanEdit before any
// write; unauthorized attempts never reach the store.
type MutationService struct {
	sharedTrips   SharedTripStore
	personalTrips PersonalTripStore
	groups        GroupReader
	cleanup       GroupCleaner
}

// MutationServiceConfig holds configuration for the mutation service
type MutationServiceConfig struct {
	SharedTrips   SharedTripStore
	PersonalTrips PersonalTripStore
	Groups        GroupReader
	Cleanup       GroupCleaner
}

// NewMutationService creates a new mutation service
func NewMutationService(cfg MutationServiceConfig) *MutationService {
	return &MutationService{
		sharedTrips:   cfg.SharedTrips,
		personalTrips: cfg.PersonalTrips,
		groups:        cfg.Groups,
		cleanup:       cfg.Cleanup,
	}
}

// isShared reports whether a trip id addresses the shared collection
func isShared(id model.TripID) bool {
	return strings.HasPrefix(string(id), "shared_trip:")
}

// ToggleStatus advances a trip's status along the upcoming -> ongoing ->
// completed cycle. For shared trips the acting user must pass CanEdit and
// the parent group's recency is bumped.
func (s *MutationService) ToggleStatus(ctx context.Context, actor model.User, id model.TripID) error {
	if actor.ID.IsZero() {
		return ErrNotAuthenticated
	}

	if !isShared(id) {
		trip, err := s.personalTrips.GetByID(ctx, id)
		if err != nil {
			return wrapStore(err)
		}
		if trip == nil {
			return ErrTripNotFound
		}
		if trip.OwnerID != actor.ID {
			return ErrNotTripOwner
		}
		return wrapStore(s.personalTrips.UpdateStatus(ctx, id, trip.Status.Next()))
	}

	trip, group, err := s.authorizeShared(ctx, actor.ID, id)
	if err != nil {
		return err
	}
	if err := s.sharedTrips.UpdateStatus(ctx, id, trip.Status.Next(), actor); err != nil {
		return wrapStore(err)
	}
	return wrapStore(s.groups.Touch(ctx, group.ID))
}

// EditTrip replaces a trip's editable fields with the patch. Monetary fields
// are coerced, unparseable values becoming zero rather than failing the edit.
func (s *MutationService) EditTrip(ctx context.Context, actor model.User, id model.TripID, patch model.TripPatch) error {
	if actor.ID.IsZero() {
		return ErrNotAuthenticated
	}
	if !patch.Status.IsValid() {
		return fmt.Errorf("%w (%q)", ErrInvalidStatus, patch.Status)
	}

	if !isShared(id) {
		trip, err := s.personalTrips.GetByID(ctx, id)
		if err != nil {
			return wrapStore(err)
		}
		if trip == nil {
			return ErrTripNotFound
		}
		if trip.OwnerID != actor.ID {
			return ErrNotTripOwner
		}
		return wrapStore(s.personalTrips.ApplyPatch(ctx, id, patch))
	}

	_, group, err := s.authorizeShared(ctx, actor.ID, id)
	if err != nil {
		return err
	}
	if err := s.sharedTrips.ApplyPatch(ctx, id, patch, actor); err != nil {
		return wrapStore(err)
	}
	return wrapStore(s.groups.Touch(ctx, group.ID))
}

// RemoveTrip deletes a trip document. For shared trips the group's cleanup
// check runs as a follow-up step: the delete itself never reasons about
// group lifecycle.
func (s *MutationService) RemoveTrip(ctx context.Context, actor model.User, id model.TripID) error {
	if actor.ID.IsZero() {
		return ErrNotAuthenticated
	}

	if !isShared(id) {
		trip, err := s.personalTrips.GetByID(ctx, id)
		if err != nil {
			return wrapStore(err)
		}
		if trip == nil {
			// Delete of a missing trip is benign.
			return nil
		}
		if trip.OwnerID != actor.ID {
			return ErrNotTripOwner
		}
		return wrapStore(s.personalTrips.Delete(ctx, id))
	}

	trip, err := s.sharedTrips.GetByID(ctx, id)
	if err != nil {
		return wrapStore(err)
	}
	if trip == nil {
		return nil
	}
	group, err := s.groups.GetByID(ctx, trip.GroupID)
	if err != nil {
		return wrapStore(err)
	}
	if group == nil {
		// Orphaned trip; removing it is all there is to do.
		return wrapStore(s.sharedTrips.Delete(ctx, id))
	}
	if !model.CanEdit(group, actor.ID) {
		return ErrEditNotAllowed
	}
	if err := s.sharedTrips.Delete(ctx, id); err != nil {
		return wrapStore(err)
	}
	return s.cleanup.CheckGroup(ctx, actor.ID, group.ID)
}

// authorizeShared loads a shared trip with its group and applies CanEdit
func (s *MutationService) authorizeShared(ctx context.Context, actor model.UserID, id model.TripID) (*model.SharedTrip, *model.SharedGroup, error) {
	trip, err := s.sharedTrips.GetByID(ctx, id)
	if err != nil {
		return nil, nil, wrapStore(err)
	}
	if trip == nil {
		return nil, nil, ErrTripNotFound
	}
	group, err := s.groups.GetByID(ctx, trip.GroupID)
	if err != nil {
		return nil, nil, wrapStore(err)
	}
	if group == nil {
		return nil, nil, ErrGroupNotFound
	}
	if !model.CanEdit(group, actor) {
		return nil, nil, ErrEditNotAllowed
	}
	return trip, group, nil
}
