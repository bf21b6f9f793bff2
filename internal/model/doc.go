// Package model defines domain entities and data structures for the Wander
// sharing engine.
//
// The model package contains all struct definitions for domain objects and
// the engine's error taxonomy. Models are used across all layers of the
// engine and by its UI callers.
//
// # Domain Entities
//
//   - Trip: a planned destination in a user's personal collection
//   - SharedGroup: the unit of sharing, owned by one user, visible to all
//     participants listed in SharedWith
//   - SharedTrip: a trip living inside a shared group, with provenance back
//     to the personal original it was promoted from
//   - Notification: fire-and-forget record telling a friend about a share
//   - Friendship: read-only edge of the social graph, with cached profile
//
// # Canonical Copy Invariant
//
// A trip's data exists as exactly one canonical record at any time: either a
// personal Trip or a SharedTrip, never both. The share operation deletes the
// personal original the moment the shared copy is durably written, and
// materializing a shared trip back into a personal collection creates a new
// record with fresh identity rather than resurrecting the original.
//
// # Authorization
//
// CanEdit is the single predicate gating every mutation of shared data:
//
//	model.CanEdit(group, userID)
//
// MutationService and CleanupService both call it; no other authorization
// rule exists for shared trips.
//
// # Error Taxonomy
//
// Four sentinel categories are defined in errors.go: ErrInvalidArgument,
// ErrPermissionDenied, ErrNotFound and ErrStoreUnavailable. Use errors.Is to
// classify any error the engine returns.
package model
