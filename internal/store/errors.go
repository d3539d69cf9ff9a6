package store

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would duplicate a unique field.
	ErrConflict = errors.New("duplicate key")

	// ErrInvalidID is returned when an identifier is malformed for the backend.
	ErrInvalidID = errors.New("invalid id")
)

// PlaceholderUserID is stored on seeded thoughts that carry no author.
const PlaceholderUserID = "000000000000000000000000"
