package service

import (
	"context"
	"fmt"
	"time"

	"github.com/forgo/wander/engine/internal/model"
)

// MaterializeGroupStore is the group access the materializer needs
type MaterializeGroupStore interface {
	GetByID(ctx context.Context, id model.GroupID) (*model.SharedGroup, error)
	Touch(ctx context.Context, id model.GroupID) error
}

// MaterializeTripSource lists a group's trips
type MaterializeTripSource interface {
	ListByGroup(ctx context.Context, groupID model.GroupID) ([]model.SharedTrip, error)
}

// PersonalTripWriter creates personal trips in one atomic batch
type PersonalTripWriter interface {
	CreateBatch(ctx context.Context, trips []*model.Trip) error
}

// MaterializeService copies a shared group's trips into a participant's
// personal collection without touching the shared originals.
type MaterializeService struct {
	groups      MaterializeGroupStore
	sharedTrips MaterializeTripSource
	trips       PersonalTripWriter
}

// MaterializeServiceConfig holds configuration for the materialize service
type MaterializeServiceConfig struct {
	Groups      MaterializeGroupStore
	SharedTrips MaterializeTripSource
	Trips       PersonalTripWriter
}

// NewMaterializeService creates a new materialize service
func NewMaterializeService(cfg MaterializeServiceConfig) *MaterializeService {
	return &MaterializeService{
		groups:      cfg.Groups,
		sharedTrips: cfg.SharedTrips,
		trips:       cfg.Trips,
	}
}

// Materialize writes one personal copy of every trip in the group for the
// given user, stamped with its provenance. The copies get fresh identity;
// shared-only fields (group, original, last editor) are stripped. The whole
// copy lands in one atomic batch, bounded by the group's trip count, and the
// group's recency is bumped afterwards as a plain touch: materializing does
// not require edit rights.
func (s *MaterializeService) Materialize(ctx context.Context, userID model.UserID, groupID model.GroupID) error {
	if userID.IsZero() {
		return ErrMissingUser
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return wrapStore(err)
	}
	if group == nil {
		return ErrGroupNotFound
	}
	if !group.Contains(userID) {
		return ErrNotParticipant
	}

	shared, err := s.sharedTrips.ListByGroup(ctx, groupID)
	if err != nil {
		return wrapStore(err)
	}
	if len(shared) == 0 {
		return nil
	}

	now := time.Now().UTC()
	copies := make([]*model.Trip, 0, len(shared))
	for _, t := range shared {
		copies = append(copies, demote(t, userID, groupID, now))
	}
	if err := s.trips.CreateBatch(ctx, copies); err != nil {
		return fmt.Errorf("materialize: %w", wrapStore(err))
	}

	return wrapStore(s.groups.Touch(ctx, groupID))
}

// demote copies a shared trip into a personal trip owned by the given user
func demote(t model.SharedTrip, owner model.UserID, groupID model.GroupID, now time.Time) *model.Trip {
	return &model.Trip{
		ID:                  newPersonalTripID(),
		OwnerID:             owner,
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
		SharedFrom:          groupID,
		ImportedOn:          &now,
	}
}
