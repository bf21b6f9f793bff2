package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/wander/engine/internal/database"
	"github.com/forgo/wander/engine/internal/model"
)

// SharedGroupRepository handles shared group documents
type SharedGroupRepository struct {
	db database.Database
}

// NewSharedGroupRepository creates a new shared group repository
func NewSharedGroupRepository(db database.Database) *SharedGroupRepository {
	return &SharedGroupRepository{db: db}
}

// Create writes a new group document. The caller assigns the id and the
// participant set; timestamps are server-assigned.
func (r *SharedGroupRepository) Create(ctx context.Context, g *model.SharedGroup) error {
	query := `
		CREATE type::record($id) CONTENT {
			owner_id: $owner_id,
			shared_with: $shared_with,
			collaborative: $collaborative,
			trip_count: $trip_count,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"id":            string(g.ID),
		"owner_id":      string(g.OwnerID),
		"shared_with":   userIDStrings(g.SharedWith),
		"collaborative": g.Collaborative,
		"trip_count":    g.TripCount,
	}
	return r.db.Execute(ctx, query, vars)
}

// GetByID retrieves a group by ID. Returns nil when the group does not exist.
func (r *SharedGroupRepository) GetByID(ctx context.Context, id model.GroupID) (*model.SharedGroup, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": string(id)}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	record, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected group record shape", database.ErrQuery)
	}
	return parseSharedGroup(record), nil
}

// ListForUser retrieves every group the user participates in, most recently
// updated first.
func (r *SharedGroupRepository) ListForUser(ctx context.Context, userID model.UserID) ([]model.SharedGroup, error) {
	query := `SELECT * FROM shared_group WHERE $user IN shared_with ORDER BY updated_on DESC`
	vars := map[string]interface{}{"user": string(userID)}
	return r.list(ctx, query, vars)
}

// ListOwnedBy retrieves every group the user owns
func (r *SharedGroupRepository) ListOwnedBy(ctx context.Context, owner model.UserID) ([]model.SharedGroup, error) {
	query := `SELECT * FROM shared_group WHERE owner_id = $owner`
	vars := map[string]interface{}{"owner": string(owner)}
	return r.list(ctx, query, vars)
}

// ListOwners returns the distinct owners across all groups (for the sweep
// daemon, which sweeps on behalf of every owner).
func (r *SharedGroupRepository) ListOwners(ctx context.Context) ([]model.UserID, error) {
	query := `SELECT array::distinct(owner_id) AS owners FROM shared_group GROUP ALL`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	records, _ := extractQueryResults(result)
	if len(records) == 0 {
		return nil, nil
	}
	m, ok := records[0].(map[string]interface{})
	if !ok {
		return nil, nil
	}

	owners := make([]model.UserID, 0)
	for _, s := range getStringSlice(m, "owners") {
		owners = append(owners, model.UserID(s))
	}
	return owners, nil
}

// Touch bumps the group's updated_on timestamp
func (r *SharedGroupRepository) Touch(ctx context.Context, id model.GroupID) error {
	query := `UPDATE type::record($id) SET updated_on = time::now()`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": string(id)})
}

// SetTripCount records the denormalized trip count and bumps updated_on
func (r *SharedGroupRepository) SetTripCount(ctx context.Context, id model.GroupID, count int) error {
	query := `UPDATE type::record($id) SET trip_count = $count, updated_on = time::now()`
	vars := map[string]interface{}{"id": string(id), "count": count}
	return r.db.Execute(ctx, query, vars)
}

// RemoveMember removes one participant from shared_with. Membership removal
// is the only group mutation a non-owner may perform.
func (r *SharedGroupRepository) RemoveMember(ctx context.Context, id model.GroupID, userID model.UserID) error {
	query := `UPDATE type::record($id) SET shared_with -= $user, updated_on = time::now()`
	vars := map[string]interface{}{"id": string(id), "user": string(userID)}
	return r.db.Execute(ctx, query, vars)
}

// Delete removes the group document. Deleting a missing group is a no-op,
// which is what makes concurrent cleanup attempts safe.
func (r *SharedGroupRepository) Delete(ctx context.Context, id model.GroupID) error {
	return r.db.Execute(ctx, `DELETE type::record($id)`, map[string]interface{}{"id": string(id)})
}

// Watch returns a live view of the groups the user participates in. Any
// change to the shared_group table triggers a re-run of the filtered SELECT.
func (r *SharedGroupRepository) Watch(ctx context.Context, userID model.UserID) (database.Stream[[]model.SharedGroup], error) {
	notifier, err := r.db.Notify(ctx, "shared_group")
	if err != nil {
		return nil, err
	}
	return database.NewWatch(ctx, notifier, func(ctx context.Context) ([]model.SharedGroup, error) {
		return r.ListForUser(ctx, userID)
	}), nil
}

func (r *SharedGroupRepository) list(ctx context.Context, query string, vars map[string]interface{}) ([]model.SharedGroup, error) {
	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records, _ := extractQueryResults(result)
	groups := make([]model.SharedGroup, 0, len(records))
	for _, rec := range records {
		if m, ok := rec.(map[string]interface{}); ok {
			groups = append(groups, *parseSharedGroup(m))
		}
	}
	return groups, nil
}

func parseSharedGroup(m map[string]interface{}) *model.SharedGroup {
	return &model.SharedGroup{
		ID:            model.GroupID(extractRecordID(m["id"])),
		OwnerID:       model.UserID(getString(m, "owner_id")),
		SharedWith:    getUserIDSlice(m, "shared_with"),
		Collaborative: getBool(m, "collaborative"),
		TripCount:     getInt(m, "trip_count"),
		CreatedOn:     getTime(m, "created_on"),
		UpdatedOn:     getTime(m, "updated_on"),
	}
}
