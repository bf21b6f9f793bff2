package model

import "time"

// SharedGroup is the unit of sharing: a batch of trips one user shared with a
// set of friends. SharedWith always includes the owner. A group whose trip
// count has reached zero is garbage and must not outlive the cleanup grace
// period.
type SharedGroup struct {
	ID            GroupID   `json:"id"`
	OwnerID       UserID    `json:"owner_id"`
	SharedWith    []UserID  `json:"shared_with"`
	Collaborative bool      `json:"collaborative"`
	TripCount     int       `json:"trip_count"`
	CreatedOn     time.Time `json:"created_on"`
	UpdatedOn     time.Time `json:"updated_on"`
}

// Contains reports whether the user is a participant of the group
func (g *SharedGroup) Contains(userID UserID) bool {
	for _, id := range g.SharedWith {
		if id == userID {
			return true
		}
	}
	return false
}

// CanEdit is the single authorization predicate for mutating shared trips.
// Every mutation path goes through this function; do not re-derive the rule
// at call sites. A non-collaborative group is read-only for everyone,
// including the owner.
func CanEdit(g *SharedGroup, userID UserID) bool {
	if g == nil || userID.IsZero() {
		return false
	}
	return g.Collaborative && (userID == g.OwnerID || g.Contains(userID))
}

// GroupView is a group together with its current trips, as presented to
// subscribers.
type GroupView struct {
	Group SharedGroup  `json:"group"`
	Trips []SharedTrip `json:"trips"`
}

// Business constraints
const (
	// MaxCascadeBatch bounds how many trip documents a cascade delete removes
	// per atomic batch. The store rejects batches above 500 operations.
	MaxCascadeBatch = 400
)
