package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/forgo/wander/engine/internal/database"
	"github.com/forgo/wander/engine/internal/model"
)

// Factory creates test entities in the database
type Factory struct {
	db database.Database
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{db: db}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ctx returns a context with timeout
func ctx() context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	// Store cancel to prevent leak warning
	_ = cancel
	return c
}

// ============================================================================
// User Fixtures
// ============================================================================

// User builds a user profile. Users live in the identity provider, not the
// engine's store, so nothing is written.
func (f *Factory) User(name string) model.User {
	return model.User{
		ID:          model.UserID("user:" + name),
		DisplayName: name,
	}
}

// ============================================================================
// Trip Fixtures
// ============================================================================

// TripOpts customizes trip creation
type TripOpts struct {
	Name        string
	Region      string
	Arrival     *time.Time
	Departure   *time.Time
	Status      model.TripStatus
	BudgetTotal float64
}

// CreateTrip inserts a personal trip owned by the given user
func (f *Factory) CreateTrip(t *testing.T, owner model.UserID, opts TripOpts) model.Trip {
	t.Helper()

	if opts.Name == "" {
		opts.Name = "Trip " + randomID()
	}
	if opts.Status == "" {
		opts.Status = model.TripStatusUpcoming
	}

	trip := model.Trip{
		ID:          model.TripID("trip:" + randomID()),
		OwnerID:     owner,
		Name:        opts.Name,
		Region:      opts.Region,
		Arrival:     opts.Arrival,
		Departure:   opts.Departure,
		Status:      opts.Status,
		BudgetTotal: opts.BudgetTotal,
	}

	query := `CREATE type::record($id) CONTENT {
		owner_id: $owner_id,
		name: $name,
		region: $region,
		arrival: $arrival,
		departure: $departure,
		status: $status,
		budget_total: $budget_total,
		created_on: time::now(),
		updated_on: time::now()
	}`
	f.exec(t, query, map[string]interface{}{
		"id":           string(trip.ID),
		"owner_id":     string(trip.OwnerID),
		"name":         trip.Name,
		"region":       trip.Region,
		"arrival":      trip.Arrival,
		"departure":    trip.Departure,
		"status":       string(trip.Status),
		"budget_total": trip.BudgetTotal,
	})
	return trip
}

// ============================================================================
// Group Fixtures
// ============================================================================

// GroupOpts customizes shared group creation
type GroupOpts struct {
	Collaborative *bool
	TripCount     int
	// UpdatedAgo backdates updated_on so cleanup grace-period paths can be
	// exercised without sleeping.
	UpdatedAgo time.Duration
}

// CreateGroup inserts a shared group owned by the first user with every
// listed user as participant. Collaborative defaults to true.
func (f *Factory) CreateGroup(t *testing.T, owner model.UserID, participants ...model.UserID) model.SharedGroup {
	return f.CreateGroupWith(t, owner, GroupOpts{}, participants...)
}

// CreateGroupWith is CreateGroup with explicit options
func (f *Factory) CreateGroupWith(t *testing.T, owner model.UserID, opts GroupOpts, participants ...model.UserID) model.SharedGroup {
	t.Helper()

	collaborative := true
	if opts.Collaborative != nil {
		collaborative = *opts.Collaborative
	}

	sharedWith := append([]model.UserID{owner}, participants...)
	group := model.SharedGroup{
		ID:            model.GroupID("shared_group:" + randomID()),
		OwnerID:       owner,
		SharedWith:    sharedWith,
		Collaborative: collaborative,
		TripCount:     opts.TripCount,
	}

	updated := "time::now()"
	vars := map[string]interface{}{
		"id":            string(group.ID),
		"owner_id":      string(group.OwnerID),
		"shared_with":   userIDStrings(sharedWith),
		"collaborative": group.Collaborative,
		"trip_count":    group.TripCount,
	}
	if opts.UpdatedAgo > 0 {
		updated = "$updated_on"
		vars["updated_on"] = time.Now().Add(-opts.UpdatedAgo).UTC()
	}

	query := fmt.Sprintf(`CREATE type::record($id) CONTENT {
		owner_id: $owner_id,
		shared_with: $shared_with,
		collaborative: $collaborative,
		trip_count: $trip_count,
		created_on: time::now(),
		updated_on: %s
	}`, updated)
	f.exec(t, query, vars)
	return group
}

// ============================================================================
// Shared Trip Fixtures
// ============================================================================

// SharedTripOpts customizes shared trip creation
type SharedTripOpts struct {
	Name    string
	Status  model.TripStatus
	Arrival *time.Time
}

// CreateSharedTrip inserts a trip under the given group
func (f *Factory) CreateSharedTrip(t *testing.T, group model.GroupID, owner model.UserID, opts SharedTripOpts) model.SharedTrip {
	t.Helper()

	if opts.Name == "" {
		opts.Name = "Trip " + randomID()
	}
	if opts.Status == "" {
		opts.Status = model.TripStatusUpcoming
	}

	trip := model.SharedTrip{
		ID:         model.TripID("shared_trip:" + randomID()),
		GroupID:    group,
		OriginalID: model.TripID("trip:" + randomID()),
		OwnerID:    owner,
		Name:       opts.Name,
		Status:     opts.Status,
		Arrival:    opts.Arrival,
	}

	query := `CREATE type::record($id) CONTENT {
		group_id: $group_id,
		original_id: $original_id,
		owner_id: $owner_id,
		name: $name,
		status: $status,
		arrival: $arrival,
		last_edited_by: $owner_id,
		created_on: time::now(),
		updated_on: time::now()
	}`
	f.exec(t, query, map[string]interface{}{
		"id":          string(trip.ID),
		"group_id":    string(trip.GroupID),
		"original_id": string(trip.OriginalID),
		"owner_id":    string(trip.OwnerID),
		"name":        trip.Name,
		"status":      string(trip.Status),
		"arrival":     trip.Arrival,
	})
	return trip
}

// ============================================================================
// Friendship Fixtures
// ============================================================================

// Befriend inserts directed friendship edges both ways between two users
func (f *Factory) Befriend(t *testing.T, a, b model.User) {
	t.Helper()

	query := `CREATE friendship CONTENT {
		user_id: $user_id,
		friend_id: $friend_id,
		friend_name: $friend_name,
		created_on: time::now()
	}`
	f.exec(t, query, map[string]interface{}{
		"user_id":     string(a.ID),
		"friend_id":   string(b.ID),
		"friend_name": b.DisplayName,
	})
	f.exec(t, query, map[string]interface{}{
		"user_id":     string(b.ID),
		"friend_id":   string(a.ID),
		"friend_name": a.DisplayName,
	})
}

// ============================================================================
// Internal
// ============================================================================

func (f *Factory) exec(t *testing.T, query string, vars map[string]interface{}) {
	t.Helper()
	if err := f.db.Execute(ctx(), query, vars); err != nil {
		t.Fatalf("fixtures: exec failed: %v\nQuery: %s", err, query)
	}
}

func userIDStrings(ids []model.UserID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
