// Package database provides the document-store abstraction layer for the
// Wander sharing engine.
//
// This package defines the Database interface that abstracts SurrealDB
// operations, allowing for clean separation between the engine's sharing
// semantics and data access.
//
// # Interface Design
//
// The Database interface provides three query methods:
//   - Query: Returns multiple results (for SELECT queries returning lists)
//   - QueryOne: Returns a single result (for SELECT by ID)
//   - Execute: No return value (for CREATE/UPDATE/DELETE mutations)
//
// Change notification is provided separately by the Notifier interface (see
// live.go) and the Watch type (see watch.go), which together turn SurrealDB
// live queries into streams of query snapshots.
//
// # Atomic Batches
//
// IMPORTANT: Atomicity in this package is BATCH-BASED, not connection-level.
// An AtomicBatch accumulates statements in memory; at Execute time they are
// wrapped in BEGIN TRANSACTION / COMMIT TRANSACTION and run as one unit.
// All statements in a batch succeed or fail together, but two consecutive
// batches are independent: the engine's share operation is explicitly a
// sequence of independent batches, not one cross-collection transaction.
// See transaction.go.
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: Record does not exist
//   - ErrConnection: Database connection issues
//   - ErrQuery: Query execution failures
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
//
// # Usage Example
//
//	db := database.NewSurrealDB(cfg)
//	db.Connect(ctx)
//	defer db.Close()
//
//	result, err := db.QueryOne(ctx, "SELECT * FROM type::record($id)", map[string]interface{}{"id": tripID})
package database

import (
	"context"
	"errors"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, invalid reference, etc.).
	ErrQuery = errors.New("query error")
)

// Database defines the interface for document-store operations
type Database interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns results
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error

	// Notify opens a change-notification stream for a table (see live.go)
	Notify(ctx context.Context, table string) (Notifier, error)
}

// Config holds database configuration
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}
