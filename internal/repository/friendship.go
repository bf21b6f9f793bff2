package repository

import (
	"context"

	"github.com/forgo/wander/engine/internal/database"
	"github.com/forgo/wander/engine/internal/model"
)

// FriendshipRepository reads the social graph. The sharing engine never
// writes friendships; the friends feature owns them.
type FriendshipRepository struct {
	db database.Database
}

// NewFriendshipRepository creates a new friendship repository
func NewFriendshipRepository(db database.Database) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

// ListByUser retrieves the user's friends with their cached profile fields
func (r *FriendshipRepository) ListByUser(ctx context.Context, userID model.UserID) ([]model.Friendship, error) {
	query := `SELECT * FROM friendship WHERE user_id = $user ORDER BY friend_name ASC`
	vars := map[string]interface{}{"user": string(userID)}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records, _ := extractQueryResults(result)
	friends := make([]model.Friendship, 0, len(records))
	for _, rec := range records {
		m, ok := rec.(map[string]interface{})
		if !ok {
			continue
		}
		friends = append(friends, model.Friendship{
			UserID:         model.UserID(getString(m, "user_id")),
			FriendID:       model.UserID(getString(m, "friend_id")),
			FriendName:     getString(m, "friend_name"),
			FriendPhotoURL: getString(m, "friend_photo_url"),
			CreatedOn:      getTime(m, "created_on"),
		})
	}
	return friends, nil
}
