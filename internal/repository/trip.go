package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/wander/engine/internal/database"
	"github.com/forgo/wander/engine/internal/model"
)

// TripRepository handles a user's personal trip collection
type TripRepository struct {
	db database.Database
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db database.Database) *TripRepository {
	return &TripRepository{db: db}
}

// GetByID retrieves a personal trip by ID. Returns nil when the trip does
// not exist.
func (r *TripRepository) GetByID(ctx context.Context, id model.TripID) (*model.Trip, error) {
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
		return nil, fmt.Errorf("%w: unexpected trip record shape", database.ErrQuery)
	}
	return parseTrip(record), nil
}

// ListByOwner retrieves all personal trips of one user
func (r *TripRepository) ListByOwner(ctx context.Context, owner model.UserID) ([]*model.Trip, error) {
	query := `SELECT * FROM trip WHERE owner_id = $owner ORDER BY arrival ASC`
	vars := map[string]interface{}{"owner": string(owner)}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records, _ := extractQueryResults(result)
	trips := make([]*model.Trip, 0, len(records))
	for _, rec := range records {
		if m, ok := rec.(map[string]interface{}); ok {
			trips = append(trips, parseTrip(m))
		}
	}
	return trips, nil
}

// CreateBatch writes trips in one atomic batch. Callers assign ids.
func (r *TripRepository) CreateBatch(ctx context.Context, trips []*model.Trip) error {
	if len(trips) == 0 {
		return nil
	}

	batch := database.NewAtomicBatch()
	for _, t := range trips {
		batch.Add(createTripQuery, tripContentVars(t))
	}
	return batch.Execute(ctx, r.db)
}

// DeleteBatch removes trips in one atomic batch. Deleting a missing trip is
// a no-op, so retried batches are safe.
func (r *TripRepository) DeleteBatch(ctx context.Context, ids []model.TripID) error {
	if len(ids) == 0 {
		return nil
	}

	batch := database.NewAtomicBatch()
	for _, id := range ids {
		batch.Add(`DELETE type::record($id)`, map[string]interface{}{"id": string(id)})
	}
	return batch.Execute(ctx, r.db)
}

// Delete removes one personal trip. No-op when the trip is already gone.
func (r *TripRepository) Delete(ctx context.Context, id model.TripID) error {
	return r.db.Execute(ctx, `DELETE type::record($id)`, map[string]interface{}{"id": string(id)})
}

// UpdateStatus writes a new status and bumps updated_on
func (r *TripRepository) UpdateStatus(ctx context.Context, id model.TripID, status model.TripStatus) error {
	query := `UPDATE type::record($id) SET status = $status, updated_on = time::now()`
	vars := map[string]interface{}{"id": string(id), "status": string(status)}
	return r.db.Execute(ctx, query, vars)
}

// ApplyPatch replaces the editable fields of a personal trip and bumps
// updated_on. Monetary fields must already be coerced by the caller.
func (r *TripRepository) ApplyPatch(ctx context.Context, id model.TripID, patch model.TripPatch) error {
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
	}
	return r.db.Execute(ctx, query, vars)
}

const createTripQuery = `
	CREATE type::record($id) CONTENT {
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
		shared_from: $shared_from,
		imported_on: $imported_on,
		created_on: time::now(),
		updated_on: time::now()
	}
`

func tripContentVars(t *model.Trip) map[string]interface{} {
	return map[string]interface{}{
		"id":                   string(t.ID),
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
		"shared_from":          string(t.SharedFrom),
		"imported_on":          t.ImportedOn,
	}
}

func parseTrip(m map[string]interface{}) *model.Trip {
	return &model.Trip{
		ID:                  model.TripID(extractRecordID(m["id"])),
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
		SharedFrom:          model.GroupID(getString(m, "shared_from")),
		ImportedOn:          getTimePtr(m, "imported_on"),
		CreatedOn:           getTime(m, "created_on"),
		UpdatedOn:           getTime(m, "updated_on"),
	}
}
