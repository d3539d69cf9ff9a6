package types

import "time"

const (
	// MinMessageLength and MaxMessageLength bound a trimmed thought message,
	// counted in characters.
	MinMessageLength = 5
	MaxMessageLength = 140
)

// Thought is a short text post that other users can heart.
type Thought struct {
	// ID is the unique identifier of the thought.
	ID string `json:"_id" db:"id"`

	// Message is the trimmed text of the thought.
	Message string `json:"message" db:"message"`

	// Hearts counts likes. It never drops below zero.
	Hearts int `json:"hearts" db:"hearts"`

	// CreatedAt is when the thought was posted.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UserID references the author. The reference is not enforced, so it
	// may point at a user that no longer exists.
	UserID string `json:"userId" db:"user_id"`
}

// ThoughtUpdate describes the independent edits of the combined update
// endpoint. A nil Message leaves the text untouched.
type ThoughtUpdate struct {
	Message *string
	Unlike  bool
}

// Empty reports whether the update would change nothing.
func (u ThoughtUpdate) Empty() bool {
	return u.Message == nil && !u.Unlike
}
