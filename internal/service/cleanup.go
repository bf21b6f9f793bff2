package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/forgo/wander/engine/internal/database"
	"github.com/forgo/wander/engine/internal/model"
)

// DefaultGracePeriod is how long a group is protected from the sweep after
// its last update. It covers the window between a group document's creation
// and the arrival of its first trip batch.
const DefaultGracePeriod = 2 * time.Second

// CleanupGroupStore is the group access the cleanup service needs
type CleanupGroupStore interface {
	GetByID(ctx context.Context, id model.GroupID) (*model.SharedGroup, error)
	ListOwnedBy(ctx context.Context, owner model.UserID) ([]model.SharedGroup, error)
	SetTripCount(ctx context.Context, id model.GroupID, count int) error
	RemoveMember(ctx context.Context, id model.GroupID, userID model.UserID) error
	Delete(ctx context.Context, id model.GroupID) error
}

// CleanupTripStore is the shared trip access the cleanup service needs
type CleanupTripStore interface {
	CountByGroup(ctx context.Context, groupID model.GroupID) (int, error)
	DeleteAllInGroup(ctx context.Context, groupID model.GroupID) (int, error)
}

// SweepResult reports what one sweep pass did
type SweepResult struct {
	Scanned int `json:"scanned"`
	Removed int `json:"removed"`
}

// CleanupService guarantees that no shared group with zero trips persists
// beyond a short grace period.
//
// Deletion authority is single-writer: only the group owner ever cascade
// deletes, so two participants leaving simultaneously can never race on the
// group document. A non-owner who empties a group merely removes themselves
// from shared_with; the document stays until the owner's next check or
// sweep. Deleting an already-deleted document is a store-level no-op, which
// makes the synchronous check racing the async sweep benign.
type CleanupService struct {
	groups CleanupGroupStore
	trips  CleanupTripStore
	grace  time.Duration
	logger *slog.Logger
}

// CleanupServiceConfig holds configuration for the cleanup service
type CleanupServiceConfig struct {
	Groups CleanupGroupStore
	Trips  CleanupTripStore
	// GracePeriod defaults to DefaultGracePeriod when zero
	GracePeriod time.Duration
	Logger      *slog.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(cfg CleanupServiceConfig) *CleanupService {
	grace := cfg.GracePeriod
	if grace == 0 {
		grace = DefaultGracePeriod
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupService{
		groups: cfg.Groups,
		trips:  cfg.Trips,
		grace:  grace,
		logger: logger,
	}
}

// CheckGroup is the synchronous post-delete check: re-read the group's trip
// count and either refresh the denormalized counters or, at zero, dispose of
// the group. The owner cascade deletes; anyone else removes themselves from
// the participant set.
func (s *CleanupService) CheckGroup(ctx context.Context, actor model.UserID, groupID model.GroupID) error {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return wrapStore(err)
	}
	if group == nil {
		// Someone else already cleaned up.
		return nil
	}

	count, err := s.trips.CountByGroup(ctx, groupID)
	if err != nil {
		return wrapStore(err)
	}
	if count > 0 {
		return wrapStore(s.groups.SetTripCount(ctx, groupID, count))
	}

	if actor == group.OwnerID {
		return s.cascadeDelete(ctx, groupID)
	}
	return wrapStore(s.groups.RemoveMember(ctx, groupID, actor))
}

// Sweep scans every group the owner holds and cascade deletes the ones that
// are empty and past the grace period. Groups updated less than the grace
// period ago are skipped: they may have been created moments ago and still
// be waiting for their first trip batch.
func (s *CleanupService) Sweep(ctx context.Context, owner model.UserID) (SweepResult, error) {
	var result SweepResult

	if owner.IsZero() {
		return result, ErrMissingUser
	}

	groups, err := s.groups.ListOwnedBy(ctx, owner)
	if err != nil {
		return result, wrapStore(err)
	}

	for _, group := range groups {
		result.Scanned++
		if time.Since(group.UpdatedOn) < s.grace {
			continue
		}

		count, err := s.trips.CountByGroup(ctx, group.ID)
		if err != nil {
			return result, wrapStore(err)
		}
		if count > 0 {
			continue
		}

		if err := s.cascadeDelete(ctx, group.ID); err != nil {
			return result, err
		}
		result.Removed++
		s.logger.Info("swept empty group",
			slog.String("group", string(group.ID)),
			slog.String("owner", string(owner)),
		)
	}

	return result, nil
}

// cascadeDelete removes any trips still under the group in bounded batches,
// then the group document itself. Missing documents are tolerated at every
// step so concurrent cleanups cannot surface spurious errors.
func (s *CleanupService) cascadeDelete(ctx context.Context, groupID model.GroupID) error {
	if _, err := s.trips.DeleteAllInGroup(ctx, groupID); err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("cleanup: cascade trips: %w", wrapStore(err))
	}
	if err := s.groups.Delete(ctx, groupID); err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("cleanup: delete group: %w", wrapStore(err))
	}
	return nil
}
