package model

import (
	"strconv"
	"time"
)

// TripStatus represents where a planned trip is in its lifecycle
type TripStatus string

const (
	TripStatusUpcoming  TripStatus = "upcoming"
	TripStatusOngoing   TripStatus = "ongoing"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// IsValid returns true if the status is one of the known values
func (s TripStatus) IsValid() bool {
	switch s {
	case TripStatusUpcoming, TripStatusOngoing, TripStatusCompleted, TripStatusCancelled:
		return true
	default:
		return false
	}
}

// Next returns the status the toggle operation advances to.
// The cycle is upcoming -> ongoing -> completed -> upcoming; a cancelled
// trip is not part of the cycle and stays cancelled.
func (s TripStatus) Next() TripStatus {
	switch s {
	case TripStatusUpcoming:
		return TripStatusOngoing
	case TripStatusOngoing:
		return TripStatusCompleted
	case TripStatusCompleted:
		return TripStatusUpcoming
	default:
		return s
	}
}

// Trip represents one planned destination in a user's personal collection
type Trip struct {
	ID                  TripID     `json:"id"`
	OwnerID             UserID     `json:"owner_id"`
	Name                string     `json:"name"`
	Region              string     `json:"region,omitempty"`
	Arrival             *time.Time `json:"arrival,omitempty"`
	Departure           *time.Time `json:"departure,omitempty"`
	Status              TripStatus `json:"status"`
	BudgetTotal         float64    `json:"budget_total"`
	BudgetAccommodation float64    `json:"budget_accommodation"`
	BudgetActivity      float64    `json:"budget_activity"`
	Accommodation       string     `json:"accommodation,omitempty"`
	Activities          []string   `json:"activities,omitempty"`
	Transport           string     `json:"transport,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	CreatedOn           time.Time  `json:"created_on"`
	UpdatedOn           time.Time  `json:"updated_on"`

	// Provenance for trips copied out of a shared group. Empty for trips the
	// user planned themselves.
	SharedFrom GroupID    `json:"shared_from,omitempty"`
	ImportedOn *time.Time `json:"imported_on,omitempty"`
}

// SharedTrip is a trip that lives inside a shared group. Same shape as Trip
// plus provenance back to the personal original and last-editor attribution.
type SharedTrip struct {
	ID                  TripID     `json:"id"`
	GroupID             GroupID    `json:"group_id"`
	OriginalID          TripID     `json:"original_id"`
	OwnerID             UserID     `json:"owner_id"`
	Name                string     `json:"name"`
	Region              string     `json:"region,omitempty"`
	Arrival             *time.Time `json:"arrival,omitempty"`
	Departure           *time.Time `json:"departure,omitempty"`
	Status              TripStatus `json:"status"`
	BudgetTotal         float64    `json:"budget_total"`
	BudgetAccommodation float64    `json:"budget_accommodation"`
	BudgetActivity      float64    `json:"budget_activity"`
	Accommodation       string     `json:"accommodation,omitempty"`
	Activities          []string   `json:"activities,omitempty"`
	Transport           string     `json:"transport,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	CreatedOn           time.Time  `json:"created_on"`
	UpdatedOn           time.Time  `json:"updated_on"`
	LastEditedBy        UserID     `json:"last_edited_by"`
	LastEditedByName    string     `json:"last_edited_by_name,omitempty"`
}

// TripPatch is a full-field replacement payload for editing a trip.
// Monetary fields are typed any because UI layers submit them as strings;
// Amount coerces them on apply.
type TripPatch struct {
	Name                string     `json:"name"`
	Region              string     `json:"region"`
	Arrival             *time.Time `json:"arrival"`
	Departure           *time.Time `json:"departure"`
	Status              TripStatus `json:"status"`
	BudgetTotal         any        `json:"budget_total"`
	BudgetAccommodation any        `json:"budget_accommodation"`
	BudgetActivity      any        `json:"budget_activity"`
	Accommodation       string     `json:"accommodation"`
	Activities          []string   `json:"activities"`
	Transport           string     `json:"transport"`
	Notes               string     `json:"notes"`
}

// Amount coerces a UI-submitted numeric value to a float64.
// Unparseable or missing values coerce to zero rather than failing the edit.
func Amount(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
