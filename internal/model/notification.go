package model

import (
	"fmt"
	"time"
)

// NotificationType represents the kind of notification being delivered
type NotificationType string

const (
	// NotificationTypeTripsShared tells a friend that trips were shared with them
	NotificationTypeTripsShared NotificationType = "trips_shared"
)

// Notification is a fire-and-forget record delivered to one recipient.
// The engine only ever writes these; reading and marking them is the
// notification UI's concern.
type Notification struct {
	ID         string           `json:"id"`
	Recipient  UserID           `json:"recipient"`
	Type       NotificationType `json:"type"`
	Message    string           `json:"message"`
	Read       bool             `json:"read"`
	SharerID   UserID           `json:"sharer_id"`
	SharerName string           `json:"sharer_name"`
	TripCount  int              `json:"trip_count"`
	GroupID    GroupID          `json:"group_id"`
	CreatedOn  time.Time        `json:"created_on"`
}

// NewShareNotification builds the notification a friend receives when trips
// are shared with them. The caller assigns the id.
func NewShareNotification(recipient UserID, sharer User, groupID GroupID, tripCount int) Notification {
	noun := "trips"
	if tripCount == 1 {
		noun = "trip"
	}
	return Notification{
		Recipient:  recipient,
		Type:       NotificationTypeTripsShared,
		Message:    fmt.Sprintf("%s shared %d %s with you", sharer.DisplayName, tripCount, noun),
		SharerID:   sharer.ID,
		SharerName: sharer.DisplayName,
		TripCount:  tripCount,
		GroupID:    groupID,
	}
}
