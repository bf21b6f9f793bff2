package repository

import (
	"context"
	"strings"

	"github.com/forgo/wander/engine/internal/database"
	"github.com/forgo/wander/engine/internal/model"
)

// NotificationRepository writes share notifications. The engine only reads
// them back for verification; marking them read is the notification UI's
// concern.
type NotificationRepository struct {
	db database.Database
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db database.Database) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch writes all notifications of one share in a single atomic batch
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	query := `
		CREATE type::record($id) CONTENT {
			recipient: $recipient,
			type: $type,
			message: $message,
			read: false,
			sharer_id: $sharer_id,
			sharer_name: $sharer_name,
			trip_count: $trip_count,
			group_id: $group_id,
			created_on: time::now()
		}
	`

	batch := database.NewAtomicBatch()
	for _, n := range notifications {
		batch.Add(query, map[string]interface{}{
			"id":          "notification:" + n.ID,
			"recipient":   string(n.Recipient),
			"type":        string(n.Type),
			"message":     n.Message,
			"sharer_id":   string(n.SharerID),
			"sharer_name": n.SharerName,
			"trip_count":  n.TripCount,
			"group_id":    string(n.GroupID),
		})
	}
	return batch.Execute(ctx, r.db)
}

// ListByRecipient retrieves one user's notifications, newest first
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient model.UserID) ([]model.Notification, error) {
	query := `SELECT * FROM notification WHERE recipient = $recipient ORDER BY created_on DESC`
	vars := map[string]interface{}{"recipient": string(recipient)}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records, _ := extractQueryResults(result)
	notifications := make([]model.Notification, 0, len(records))
	for _, rec := range records {
		if m, ok := rec.(map[string]interface{}); ok {
			notifications = append(notifications, parseNotification(m))
		}
	}
	return notifications, nil
}

func parseNotification(m map[string]interface{}) model.Notification {
	return model.Notification{
		ID:         strings.TrimPrefix(extractRecordID(m["id"]), "notification:"),
		Recipient:  model.UserID(getString(m, "recipient")),
		Type:       model.NotificationType(getString(m, "type")),
		Message:    getString(m, "message"),
		Read:       getBool(m, "read"),
		SharerID:   model.UserID(getString(m, "sharer_id")),
		SharerName: getString(m, "sharer_name"),
		TripCount:  getInt(m, "trip_count"),
		GroupID:    model.GroupID(getString(m, "group_id")),
		CreatedOn:  getTime(m, "created_on"),
	}
}
