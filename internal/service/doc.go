// Package service implements the business logic of the Wander sharing engine.
//
// The service package contains all domain logic, validation rules, and
// orchestration of repository operations. Engine is the facade the
// application layer calls; it resolves the acting user from the identity
// provider and delegates to the focused services:
//
//   - SyncService keeps a live feed of the user's shared groups, joining
//     each group with its trips and tearing down per-group watches as
//     membership changes
//   - ShareService publishes selected personal trips into a new shared
//     group and notifies the invited friends
//   - MutationService applies status toggles, edits, and removals to both
//     personal and shared trips, enforcing group edit rights
//   - CleanupService removes empty shared groups, cascading owned groups
//     and withdrawing membership from groups owned by others
//   - MaterializeService copies a shared group's trips back into a
//     participant's personal collection
//
// # Service Pattern
//
// All services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts a config struct with repository dependencies
//   - Methods implement business operations with proper validation
//   - Errors are returned as sentinel errors or wrapped errors for context
//   - Context is passed through for cancellation and request-scoped values
//
// # Repository Interfaces
//
// Services define their own repository interfaces, allowing:
//
//   - Easy mocking for unit tests
//   - Decoupling from specific database implementations
//   - Clear contracts for data access requirements
//
// # Error Handling
//
// Services return domain-specific errors defined as package-level variables,
// each wrapping one of the model sentinels so callers can classify failures
// with errors.Is:
//
//	var (
//	    ErrGroupNotFound  = fmt.Errorf("%w: shared group not found", model.ErrNotFound)
//	    ErrEditNotAllowed = fmt.Errorf("%w: no edit rights on this group", model.ErrPermissionDenied)
//	)
//
// # Example Usage
//
//	engine := NewEngine(EngineConfig{
//	    Identity: provider,
//	    Sync:     syncService,
//	    Share:    shareService,
//	    Mutate:   mutationService,
//	})
//	feed, err := engine.Subscribe(ctx)
package service
