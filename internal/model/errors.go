package model

import "errors"

// Error taxonomy for the sharing engine.
//
// Every error returned by an engine operation wraps exactly one of these four
// categories, so callers branch with errors.Is regardless of which specific
// condition fired:
//
//	if errors.Is(err, model.ErrPermissionDenied) {
//	    // show "not allowed" state
//	}
//
// Specific conditions (empty selection, not a participant, ...) are defined in
// the service package and wrap these sentinels.
var (
	// ErrInvalidArgument indicates a caller-supplied argument is unusable
	// (empty trip selection, missing friend list, malformed id).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPermissionDenied indicates the acting user may not perform the
	// operation, or no user is authenticated at all.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound indicates a trip or group vanished between read and write.
	// Benign for deletes: removing a missing document is a no-op.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable wraps network or backend failures from the
	// document store. The underlying error is preserved in the chain.
	ErrStoreUnavailable = errors.New("store unavailable")
)
