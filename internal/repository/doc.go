// Package repository implements the data access layer for the Wander sharing
// engine.
//
// The repository package contains all document-store operations using
// SurrealDB. Each repository struct handles the operations for one domain
// entity: personal trips, shared groups, shared trips, notifications and
// friendships.
//
// # Repository Pattern
//
// All repositories follow a consistent pattern:
//
//   - Constructor function (NewXxxRepository) accepts a database connection
//   - Methods implement specific data operations (Create, GetByID, Delete, Watch, etc.)
//   - SurrealQL queries are used for all database interactions
//   - Results are parsed and mapped to model structs
//
// # Watches
//
// SharedGroupRepository and SharedTripRepository expose Watch methods built
// on database.NewWatch: a live query on the table acts as an invalidation
// signal and the repository re-runs its filtered SELECT to produce each
// snapshot. Watches are the change-notification feed the sync service
// consumes; everything else is plain request/response.
//
// # Query Patterns
//
// Common query patterns used:
//
//   - Parameterized queries with $variable syntax for security
//   - type::record() for safe ID handling
//   - time::now() for server-assigned timestamps
//   - AtomicBatch for multi-record writes that must land together
//
// # Example Usage
//
//	repo := NewSharedGroupRepository(db)
//	group, err := repo.GetByID(ctx, "shared_group:abc123")
//	if err != nil {
//	    if errors.Is(err, database.ErrNotFound) {
//	        // Handle not found
//	    }
//	    return err
//	}
package repository
