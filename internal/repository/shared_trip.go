package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/wander/engine/internal/database"
	"github.com/forgo/wander/engine/internal/model"
)

// SharedTripRepository handles trip documents inside shared groups
type SharedTripRepository struct {
	db database.Database
}

// NewSharedTripRepository creates a new shared trip repository
func NewSharedTripRepository(db database.Database) *SharedTripRepository {
	return &SharedTripRepository{db: db}
}

// CreateBatch writes shared trips in one atomic batch. Callers assign ids;
// the share operation derives them from the group and original ids so a
// retried batch lands on the same records instead of duplicating them.
func (r *SharedTripRepository) CreateBatch(ctx context.Context, trips []*model.SharedTrip) error {
	if len(trips) == 0 {
		return nil
	}

	batch := database.NewAtomicBatch()
	for _, t := range trips {
		batch.Add(createSharedTripQuery, sharedTripContentVars(t))
	}
	return batch.Execute(ctx, r.db)
}

// GetByID retrieves a shared trip by ID. Returns nil when it does not exist.
func (r *SharedTripRepository) GetByID(ctx context.Context, id model.TripID) (*model.SharedTrip, error) {
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
		return nil, fmt.Errorf("%w: unexpected shared trip record shape", database.ErrQuery)
	}
	return parseSharedTrip(record), nil
}

// ListByGroup retrieves all trips of one group
func (r *SharedTripRepository) ListByGroup(ctx context.Context, groupID model.GroupID) ([]model.SharedTrip, error) {
	query := `SELECT * FROM shared_trip WHERE group_id = $group`
	vars := map[string]interface{}{"group": string(groupID)}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records, _ := extractQueryResults(result)
	trips := make([]model.SharedTrip, 0, len(records))
	for _, rec := range records {
		if m, ok := rec.(map[string]interface{}); ok {
			trips = append(trips, *parseSharedTrip(m))
		}
	}
	return trips, nil
}

// CountByGroup counts the trips of one group
func (r *SharedTripRepository) CountByGroup(ctx context.Context, groupID model.GroupID) (int, error) {
	query := `SELECT count() AS count FROM shared_trip WHERE group_id = $group GROUP ALL`
	vars := map[string]interface{}{"group": string(groupID)}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	if m, ok := result.(map[string]interface{}); ok {
		return getInt(m, "count"), nil
	}
	return 0, nil
}

// UpdateStatus writes a new status with last-editor attribution and bumps
// updated_on.
func (r *SharedTripRepository) UpdateStatus(ctx context.Context, id model.TripID, status model.TripStatus, editor model.User) error {
	query := `
		UPDATE type::record($id) SET
			status = $status,
			last_edited_by = $editor,
			last_edited_by_name = $editor_name,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":          string(id),
		"status":      string(status),
		"editor":      string(editor.ID),
		"editor_name": editor.DisplayName,
	}
	return r.db.Execute(ctx, query, vars)
}

// ApplyPatch replaces the editable fields of a shared trip and bumps
// updated_on. Monetary fields must already be coerced by the caller.
func (r *SharedTripRepository) ApplyPatch(ctx context.Context, id model.TripID, patch model.TripPatch, editor model.User) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			region = $region,
			arrival = $arrival,
			departure = $departure,
			status = $status,
			budget_total = $budget_total,
			budget_accommodation = $budget_accommodation,
			budget_activity = $budget_activity,
			accommodation = $accommodation,
			activities = $activities,
			transport = $transport,
			notes = $notes,
			last_edited_by = $editor,
			last_edited_by_name = $editor_name,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":                   string(id),
		"name":                 patch.Name,
		"region":               patch.Region,
		"arrival":              patch.Arrival,
		"departure":            patch.Departure,
		"status":               string(patch.Status),
		"budget_total":         model.Amount(patch.BudgetTotal),
		"budget_accommodation": model.Amount(patch.BudgetAccommodation),
		"budget_activity":      model.Amount(patch.BudgetActivity),
		"accommodation":        patch.Accommodation,
		"activities":           patch.Activities,
		"transport":            patch.Transport,
		"notes":                patch.Notes,
		"editor":               string(editor.ID),
		"editor_name":          editor.DisplayName,
	}
	return r.db.Execute(ctx, query, vars)
}

// Delete removes one shared trip. No-op when the trip is already gone.
func (r *SharedTripRepository) Delete(ctx context.Context, id model.TripID) error {
	return r.db.Execute(ctx, `DELETE type::record($id)`, map[string]interface{}{"id": string(id)})
}

// DeleteAllInGroup removes every trip of a group in bounded atomic batches
// and reports how many records were deleted. Used by the cascade delete;
// bounding each batch keeps it under the store's per-batch operation limit.
func (r *SharedTripRepository) DeleteAllInGroup(ctx context.Context, groupID model.GroupID) (int, error) {
	deleted := 0
	for {
		query := `SELECT VALUE id FROM shared_trip WHERE group_id = $group LIMIT $limit`
		vars := map[string]interface{}{
			"group": string(groupID),
			"limit": model.MaxCascadeBatch,
		}
		result, err := r.db.Query(ctx, query, vars)
		if err != nil {
			return deleted, err
		}

		records, _ := extractQueryResults(result)
		if len(records) == 0 {
			return deleted, nil
		}

		batch := database.NewAtomicBatch()
		for _, rec := range records {
			id := extractRecordID(rec)
			if id == "" {
				continue
			}
			batch.Add(`DELETE type::record($id)`, map[string]interface{}{"id": id})
		}
		if err := batch.Execute(ctx, r.db); err != nil {
			return deleted, err
		}
		deleted += batch.Len()

		if len(records) < model.MaxCascadeBatch {
			return deleted, nil
		}
	}
}

// Watch returns a live view of one group's trips. Any change to the
// shared_trip table triggers a re-run of the group's SELECT.
func (r *SharedTripRepository) Watch(ctx context.Context, groupID model.GroupID) (database.Stream[[]model.SharedTrip], error) {
	notifier, err := r.db.Notify(ctx, "shared_trip")
	if err != nil {
		return nil, err
	}
	return database.NewWatch(ctx, notifier, func(ctx context.Context) ([]model.SharedTrip, error) {
		return r.ListByGroup(ctx, groupID)
	}), nil
}

const createSharedTripQuery = `
	CREATE type::record($id) CONTENT {
		group_id: $group_id,
		original_id: $original_id,
		owner_id: $owner_id,
		name: $name,
		region: $region,
		arrival: $arrival,
		departure: $departure,
		status: $status,
		budget_total: $budget_total,
		budget_accommodation: $budget_accommodation,
		budget_activity: $budget_activity,
		accommodation: $accommodation,
		activities: $activities,
		transport: $transport,
		notes: $notes,
		last_edited_by: $last_edited_by,
		last_edited_by_name: $last_edited_by_name,
		created_on: time::now(),
		updated_on: time::now()
	}
`

func sharedTripContentVars(t *model.SharedTrip) map[string]interface{} {
	return map[string]interface{}{
		"id":                   string(t.ID),
		"group_id":             string(t.GroupID),
		"original_id":          string(t.OriginalID),
		"owner_id":             string(t.OwnerID),
		"name":                 t.Name,
		"region":               t.Region,
		"arrival":              t.Arrival,
		"departure":            t.Departure,
		"status":               string(t.Status),
		"budget_total":         t.BudgetTotal,
		"budget_accommodation": t.BudgetAccommodation,
		"budget_activity":      t.BudgetActivity,
		"accommodation":        t.Accommodation,
		"activities":           t.Activities,
		"transport":            t.Transport,
		"notes":                t.Notes,
		"last_edited_by":       string(t.LastEditedBy),
		"last_edited_by_name":  t.LastEditedByName,
	}
}

func parseSharedTrip(m map[string]interface{}) *model.SharedTrip {
	return &model.SharedTrip{
		ID:                  model.TripID(extractRecordID(m["id"])),
		GroupID:             model.GroupID(getString(m, "group_id")),
		OriginalID:          model.TripID(getString(m, "original_id")),
		OwnerID:             model.UserID(getString(m, "owner_id")),
		Name:                getString(m, "name"),
		Region:              getString(m, "region"),
		Arrival:             getTimePtr(m, "arrival"),
		Departure:           getTimePtr(m, "departure"),
		Status:              model.TripStatus(getString(m, "status")),
		BudgetTotal:         getFloat(m, "budget_total"),
		BudgetAccommodation: getFloat(m, "budget_accommodation"),
		BudgetActivity:      getFloat(m, "budget_activity"),
		Accommodation:       getString(m, "accommodation"),
		Activities:          getStringSlice(m, "activities"),
		Transport:           getString(m, "transport"),
		Notes:               getString(m, "notes"),
		LastEditedBy:        model.UserID(getString(m, "last_edited_by")),
		LastEditedByName:    getString(m, "last_edited_by_name"),
		CreatedOn:           getTime(m, "created_on"),
		UpdatedOn:           getTime(m, "updated_on"),
	}
}
