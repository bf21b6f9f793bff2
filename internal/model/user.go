package model

import "time"

// User is the profile of an authenticated user as reported by the identity
// provider. The engine references users but never mutates them.
type User struct {
	ID          UserID `json:"id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// Friendship is a directed edge from a user to one of their friends, with the
// friend's profile fields cached at edge-creation time. Read-only to the
// sharing engine; the social graph is maintained elsewhere.
type Friendship struct {
	UserID         UserID    `json:"user_id"`
	FriendID       UserID    `json:"friend_id"`
	FriendName     string    `json:"friend_name"`
	FriendPhotoURL string    `json:"friend_photo_url,omitempty"`
	CreatedOn      time.Time `json:"created_on"`
}
