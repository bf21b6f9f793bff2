package service

import (
	"errors"
	"fmt"

	"github.com/forgo/wander/engine/internal/database"
	"github.com/forgo/wander/engine/internal/model"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency.
// Each sentinel wraps one of the four taxonomy categories in the model
// package, so callers can branch on either the specific condition or the
// category:
//
//	errors.Is(err, ErrNoTripsSelected)       // specific
//	errors.Is(err, model.ErrInvalidArgument) // category

// ===== Invalid Argument =====
var (
	ErrNoTripsSelected   = fmt.Errorf("%w: no trips selected", model.ErrInvalidArgument)
	ErrNoFriendsSelected = fmt.Errorf("%w: no friends selected", model.ErrInvalidArgument)
	ErrTripNotInList     = fmt.Errorf("%w: selected trip is not in the personal collection", model.ErrInvalidArgument)
	ErrInvalidStatus     = fmt.Errorf("%w: unknown trip status", model.ErrInvalidArgument)
	ErrMissingUser       = fmt.Errorf("%w: user id is required", model.ErrInvalidArgument)
)

// ===== Permission Denied =====
var (
	ErrNotAuthenticated = fmt.Errorf("%w: no authenticated user", model.ErrPermissionDenied)
	ErrEditNotAllowed   = fmt.Errorf("%w: not allowed to edit this shared trip", model.ErrPermissionDenied)
	ErrNotTripOwner     = fmt.Errorf("%w: not the owner of this trip", model.ErrPermissionDenied)
	ErrNotParticipant   = fmt.Errorf("%w: not a participant of this group", model.ErrPermissionDenied)
)

// ===== Not Found =====
var (
	ErrTripNotFound  = fmt.Errorf("%w: trip", model.ErrNotFound)
	ErrGroupNotFound = fmt.Errorf("%w: group", model.ErrNotFound)
)

// wrapStore classifies an error coming out of the data layer into the
// engine's taxonomy, preserving the original chain.
func wrapStore(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: %w", model.ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
