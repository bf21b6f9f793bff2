package model

// Typed identifiers for the three entity families the engine moves between.
// Ownership and membership checks compare UserIDs; keeping them distinct from
// trip and group ids prevents a raw string from crossing families.

// UserID identifies a user account. Owned by the identity provider.
type UserID string

// GroupID identifies a shared group.
type GroupID string

// TripID identifies a trip, personal or shared.
type TripID string

// IsZero returns true if the id is unset
func (id UserID) IsZero() bool { return id == "" }

// IsZero returns true if the id is unset
func (id GroupID) IsZero() bool { return id == "" }

// IsZero returns true if the id is unset
func (id TripID) IsZero() bool { return id == "" }

func (id UserID) String() string  { return string(id) }
func (id GroupID) String() string { return string(id) }
func (id TripID) String() string  { return string(id) }
