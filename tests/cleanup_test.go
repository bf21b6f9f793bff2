package tests

import (
	"context"
	"testing"
	"time"

	"github.com/forgo/wander/engine/internal/repository"
	"github.com/forgo/wander/engine/internal/service"
	"github.com/forgo/wander/engine/internal/testing/fixtures"
	"github.com/forgo/wander/engine/internal/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
FEATURE: Empty Group Cleanup
DOMAIN: Collaboration

ACCEPTANCE CRITERIA:
===================

AC-CLEAN-001: Owner Empties Group
  GIVEN a shared group whose last trip was just removed by its owner
  WHEN the post-delete check runs
  THEN the group and any leftover trips are deleted

AC-CLEAN-002: Participant Empties Group
  GIVEN a shared group whose last trip was just removed by a participant
  WHEN the post-delete check runs
  THEN the participant is withdrawn from the group
  AND the group itself survives for the owner

AC-CLEAN-003: Background Sweep
  GIVEN an owner with empty and non-empty groups of varying age
  WHEN the sweep runs
  THEN only empty groups past the grace period are removed

AC-CLEAN-004: Grace Period Protects Fresh Groups
  GIVEN an empty group created moments ago
  WHEN the sweep runs
  THEN the group is left alone
*/

func createCleanupService(t *testing.T, tdb *testdb.TestDB, grace time.Duration) *service.CleanupService {
	t.Helper()

	return service.NewCleanupService(service.CleanupServiceConfig{
		Groups:      repository.NewSharedGroupRepository(tdb.DB),
		Trips:       repository.NewSharedTripRepository(tdb.DB),
		GracePeriod: grace,
	})
}

func TestCleanup_OwnerEmptiesGroup(t *testing.T) {
	// AC-CLEAN-001: Owner Empties Group
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	cleanup := createCleanupService(t, tdb, time.Second)
	ctx := context.Background()

	alice := f.User("alice")
	bob := f.User("bob")
	group := f.CreateGroup(t, alice.ID, bob.ID)

	require.NoError(t, cleanup.CheckGroup(ctx, alice.ID, group.ID))

	groupRepo := repository.NewSharedGroupRepository(tdb.DB)
	got, err := groupRepo.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "empty group should be cascade deleted by its owner")
}

func TestCleanup_ParticipantWithdrawnFromEmptyGroup(t *testing.T) {
	// AC-CLEAN-002: Participant Empties Group
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	cleanup := createCleanupService(t, tdb, time.Second)
	ctx := context.Background()

	alice := f.User("alice")
	bob := f.User("bob")
	group := f.CreateGroup(t, alice.ID, bob.ID)

	require.NoError(t, cleanup.CheckGroup(ctx, bob.ID, group.ID))

	groupRepo := repository.NewSharedGroupRepository(tdb.DB)
	got, err := groupRepo.GetByID(ctx, group.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "group should survive a participant leaving")
	assert.False(t, got.Contains(bob.ID), "participant should be withdrawn")
	assert.True(t, got.Contains(alice.ID))
}

func TestCleanup_CheckGroupRefreshesCountWhenTripsRemain(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	cleanup := createCleanupService(t, tdb, time.Second)
	ctx := context.Background()

	alice := f.User("alice")
	group := f.CreateGroupWith(t, alice.ID, fixtures.GroupOpts{TripCount: 5})
	f.CreateSharedTrip(t, group.ID, alice.ID, fixtures.SharedTripOpts{Name: "Kyoto"})
	f.CreateSharedTrip(t, group.ID, alice.ID, fixtures.SharedTripOpts{Name: "Oslo"})

	require.NoError(t, cleanup.CheckGroup(ctx, alice.ID, group.ID))

	groupRepo := repository.NewSharedGroupRepository(tdb.DB)
	got, err := groupRepo.GetByID(ctx, group.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.TripCount, "stale denormalized count should be refreshed")
}

func TestCleanup_SweepRemovesOnlyStaleEmptyGroups(t *testing.T) {
	// AC-CLEAN-003: Background Sweep
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	cleanup := createCleanupService(t, tdb, time.Second)
	ctx := context.Background()

	alice := f.User("alice")
	staleEmpty := f.CreateGroupWith(t, alice.ID, fixtures.GroupOpts{UpdatedAgo: time.Minute})
	staleFull := f.CreateGroupWith(t, alice.ID, fixtures.GroupOpts{UpdatedAgo: time.Minute})
	f.CreateSharedTrip(t, staleFull.ID, alice.ID, fixtures.SharedTripOpts{Name: "Kyoto"})

	result, err := cleanup.Sweep(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 1, result.Removed)

	groupRepo := repository.NewSharedGroupRepository(tdb.DB)
	gone, err := groupRepo.GetByID(ctx, staleEmpty.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := groupRepo.GetByID(ctx, staleFull.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept, "group with trips must not be swept")
}

func TestCleanup_SweepSkipsFreshGroups(t *testing.T) {
	// AC-CLEAN-004: Grace Period Protects Fresh Groups
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	cleanup := createCleanupService(t, tdb, time.Hour)
	ctx := context.Background()

	alice := f.User("alice")
	fresh := f.CreateGroup(t, alice.ID)

	result, err := cleanup.Sweep(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 0, result.Removed)

	groupRepo := repository.NewSharedGroupRepository(tdb.DB)
	got, err := groupRepo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}
