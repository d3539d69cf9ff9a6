package types

import "time"

// User represents an account that can author thoughts.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Name is the unique display name chosen by the user.
	Name string `json:"name" db:"name"`

	// Email is the user's unique email address.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the salted hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// AccessToken is the opaque bearer credential issued at sign-up.
	// It stays valid until the record is deleted or the field is overwritten.
	AccessToken string `json:"-" db:"access_token"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
