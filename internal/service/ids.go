package service

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/forgo/wander/engine/internal/model"
)

// newGroupID mints a fresh group record id. Hyphens are stripped so the id
// never needs escaping in raw SurrealQL.
func newGroupID() model.GroupID {
	return model.GroupID("shared_group:" + strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// newPersonalTripID mints a fresh personal trip record id
func newPersonalTripID() model.TripID {
	return model.TripID("trip:" + strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// sharedTripID derives the shared trip id from the group and the personal
// original. The id is content-derived so a retried create batch lands on the
// same records instead of minting duplicates.
func sharedTripID(groupID model.GroupID, originalID model.TripID) model.TripID {
	sum := blake2b.Sum256([]byte(string(groupID) + "|" + string(originalID)))
	return model.TripID("shared_trip:" + hex.EncodeToString(sum[:16]))
}

// newNotificationID mints a time-ordered notification id, so a recipient's
// notification feed sorts chronologically by id alone.
func newNotificationID() string {
	return ulid.Make().String()
}
