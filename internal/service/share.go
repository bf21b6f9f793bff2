package service

import (
	"context"
	"fmt"

	"github.com/forgo/wander/engine/internal/model"
)

// ShareGroupWriter creates group documents
type ShareGroupWriter interface {
	Create(ctx context.Context, g *model.SharedGroup) error
}

// ShareTripWriter creates shared trip documents in one atomic batch
type ShareTripWriter interface {
	CreateBatch(ctx context.Context, trips []*model.SharedTrip) error
}

// PersonalTripDeleter removes personal trips in one atomic batch
type PersonalTripDeleter interface {
	DeleteBatch(ctx context.Context, ids []model.TripID) error
}

// NotificationWriter creates notifications in one atomic batch
type NotificationWriter interface {
	CreateBatch(ctx context.Context, notifications []model.Notification) error
}

// ShareService materializes a new shared group out of selected personal
// trips and notifies the recipients.
type ShareService struct {
	groups        ShareGroupWriter
	sharedTrips   ShareTripWriter
	personalTrips PersonalTripDeleter
	notifications NotificationWriter
}

// ShareServiceConfig holds configuration for the share service
type ShareServiceConfig struct {
	Groups        ShareGroupWriter
	SharedTrips   ShareTripWriter
	PersonalTrips PersonalTripDeleter
	Notifications NotificationWriter
}

// NewShareService creates a new share service
func NewShareService(cfg ShareServiceConfig) *ShareService {
	return &ShareService{
		groups:        cfg.Groups,
		sharedTrips:   cfg.SharedTrips,
		personalTrips: cfg.PersonalTrips,
		notifications: cfg.Notifications,
	}
}

// Share moves the selected personal trips into a new shared group visible to
// the given friends, then notifies each friend. Returns the new group id.
//
// This is NOT one cross-collection transaction. It is four sequential
// writes, each individually atomic:
//
//  1. create the group document
//  2. create all shared trip copies in one batch
//  3. delete the personal originals in one batch
//  4. create one notification per friend in one batch
//
// A crash between 2 and 3 leaves a trip transiently existing in both
// personal and shared form; between 3 and 4 a group exists whose recipients
// were never notified. Both windows are accepted: a failure before step 2
// leaves an empty group for the cleanup sweep, and steps 3 and 4 are safe to
// retry because shared trip ids are content-derived and deletes are
// idempotent. A caller must not blindly re-invoke after an ambiguous failure
// without checking whether the group exists.
func (s *ShareService) Share(ctx context.Context, sharer model.User, personal []model.Trip, tripIDs []model.TripID, friendIDs []model.UserID) (model.GroupID, error) {
	if sharer.ID.IsZero() {
		return "", ErrMissingUser
	}
	if len(tripIDs) == 0 {
		return "", ErrNoTripsSelected
	}
	if len(friendIDs) == 0 {
		return "", ErrNoFriendsSelected
	}

	byID := make(map[model.TripID]model.Trip, len(personal))
	for _, t := range personal {
		byID[t.ID] = t
	}
	selected := make([]model.Trip, 0, len(tripIDs))
	for _, id := range tripIDs {
		t, ok := byID[id]
		if !ok {
			return "", fmt.Errorf("%w (%s)", ErrTripNotInList, id)
		}
		selected = append(selected, t)
	}

	group := &model.SharedGroup{
		ID:            newGroupID(),
		OwnerID:       sharer.ID,
		SharedWith:    participants(sharer.ID, friendIDs),
		Collaborative: true,
		TripCount:     len(selected),
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return "", fmt.Errorf("share: create group: %w", wrapStore(err))
	}

	shared := make([]*model.SharedTrip, 0, len(selected))
	for _, t := range selected {
		shared = append(shared, promote(t, group.ID, sharer))
	}
	if err := s.sharedTrips.CreateBatch(ctx, shared); err != nil {
		return "", fmt.Errorf("share: create shared trips: %w", wrapStore(err))
	}

	// From this point the shared copies are the canonical records; the
	// personal originals go away.
	if err := s.personalTrips.DeleteBatch(ctx, tripIDs); err != nil {
		return group.ID, fmt.Errorf("share: delete originals: %w", wrapStore(err))
	}

	notifications := make([]model.Notification, 0, len(friendIDs))
	for _, friendID := range friendIDs {
		n := model.NewShareNotification(friendID, sharer, group.ID, len(selected))
		n.ID = newNotificationID()
		notifications = append(notifications, n)
	}
	if err := s.notifications.CreateBatch(ctx, notifications); err != nil {
		return group.ID, fmt.Errorf("share: notify friends: %w", wrapStore(err))
	}

	return group.ID, nil
}

// participants builds the shared_with set: the friends plus the sharer,
// deduplicated, sharer first.
func participants(sharer model.UserID, friendIDs []model.UserID) []model.UserID {
	out := []model.UserID{sharer}
	seen := map[model.UserID]bool{sharer: true}
	for _, id := range friendIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// promote copies a personal trip into its shared form under the given group
func promote(t model.Trip, groupID model.GroupID, sharer model.User) *model.SharedTrip {
	return &model.SharedTrip{
		ID:                  sharedTripID(groupID, t.ID),
		GroupID:             groupID,
		OriginalID:          t.ID,
		OwnerID:             t.OwnerID,
		Name:                t.Name,
		Region:              t.Region,
		Arrival:             t.Arrival,
		Departure:           t.Departure,
		Status:              t.Status,
		BudgetTotal:         t.BudgetTotal,
		BudgetAccommodation: t.BudgetAccommodation,
		BudgetActivity:      t.BudgetActivity,
		Accommodation:       t.Accommodation,
		Activities:          t.Activities,
		Transport:           t.Transport,
		Notes:               t.Notes,
		LastEditedBy:        sharer.ID,
		LastEditedByName:    sharer.DisplayName,
	}
}
